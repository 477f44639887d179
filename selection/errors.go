package selection

import "errors"

var (
	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrTaskRepositoryRequired is returned when a task repository is not provided.
	ErrTaskRepositoryRequired = errors.New("task repository required")

	// ErrSkeletonRepositoryRequired is returned when a skeleton repository is not provided.
	ErrSkeletonRepositoryRequired = errors.New("skeleton repository required")
)
