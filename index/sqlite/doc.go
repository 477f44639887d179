// Package sqlite implements index.LexicalIndex on SQLite FTS5.
//
// Documents live in a plain task_documents table; an external-content FTS5
// table mirrors the searchable columns and is kept in sync by triggers.
// Queries OR together the distinct query terms and are ranked with bm25().
// The raw rank reported for a hit is 1/(-bm25), so lower is better and the
// value approaches 0 for strong matches.
//
// The pure-Go modernc.org/sqlite driver is used, so no cgo is required.
package sqlite
