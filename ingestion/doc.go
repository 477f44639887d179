// Package ingestion imports exam tasks into the catalogue.
//
// The Importer type manages the import workflow, including:
//   - Parsing JSONL, CSV and YAML task files
//   - Deriving each statement's skeleton and fingerprint
//   - Storing skeletons and tasks
//   - Indexing stored tasks for hybrid search
//
// Every file, batch or directory import runs under an ImportSession that
// records progress and per-task errors. Tasks within one import are created
// concurrently using a worker pool. A task that is stored but fails to index
// still counts as imported; the failure is logged.
package ingestion
