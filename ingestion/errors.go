package ingestion

import "errors"

var (
	// ErrTaskRepositoryRequired is returned when a task repository is not provided.
	ErrTaskRepositoryRequired = errors.New("task repository required")

	// ErrSkeletonRepositoryRequired is returned when a skeleton repository is not provided.
	ErrSkeletonRepositoryRequired = errors.New("skeleton repository required")

	// ErrSessionRepositoryRequired is returned when an import session repository is not provided.
	ErrSessionRepositoryRequired = errors.New("import session repository required")

	// ErrIndexerRequired is returned when an indexer is not provided.
	ErrIndexerRequired = errors.New("indexer required")

	// ErrUnsupportedFormat is returned for files that are not JSONL, CSV or YAML.
	ErrUnsupportedFormat = errors.New("unsupported task file format")

	// ErrMissingColumn is returned when a CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
)
