// Package reindex rebuilds the vector and lexical indexes from the stored
// task catalogue.
//
// Tasks are read in ID order in batches, embedded with retry and
// exponential backoff, normalized to unit length and written to both
// indexes. Progress is reported to a writer as the run proceeds.
package reindex
