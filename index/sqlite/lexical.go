// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
)

// LexicalIndex implements index.LexicalIndex on SQLite FTS5.
type LexicalIndex struct {
	db     *sql.DB
	owned  bool
	logger *slog.Logger
}

// New applies the schema to an already opened database and returns the
// index. The caller keeps ownership of db.
func New(db *sql.DB, logger *slog.Logger) (*LexicalIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("lexical index: apply schema: %w", err)
	}
	return &LexicalIndex{
		db:     db,
		logger: logger.With("component", "lexical-index"),
	}, nil
}

// Close closes the database if it was opened by Open.
func (l *LexicalIndex) Close() error {
	if !l.owned {
		return nil
	}
	return l.db.Close()
}

// AddDocument inserts or replaces doc.
func (l *LexicalIndex) AddDocument(ctx context.Context, doc index.Document) error {
	if doc.ID == 0 {
		return index.ErrInvalidID
	}
	var fingerprint string
	if !doc.Fingerprint.IsZero() {
		fingerprint = doc.Fingerprint.String()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO task_documents (id, statement_text, topic, subtopic, difficulty, tags, skills, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			statement_text = excluded.statement_text,
			topic = excluded.topic,
			subtopic = excluded.subtopic,
			difficulty = excluded.difficulty,
			tags = excluded.tags,
			skills = excluded.skills,
			fingerprint = excluded.fingerprint`,
		int64(doc.ID), doc.Text, doc.Topic, doc.Subtopic, doc.Difficulty,
		strings.Join(doc.Tags, " "), strings.Join(doc.Skills, " "), fingerprint)
	if err != nil {
		return fmt.Errorf("add document %d: %w", doc.ID, err)
	}
	return nil
}

// Search runs a BM25-ranked FTS5 query. A query without searchable terms
// lists filtered documents by ID without ranking.
func (l *LexicalIndex) Search(ctx context.Context, query string, filter index.Filter, limit int) ([]index.LexicalHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	terms := index.QueryTerms(query)
	if len(terms) == 0 {
		return l.list(ctx, filter, limit)
	}

	where, args := filterClause(filter)
	stmt := `SELECT d.id, bm25(task_documents_fts) AS score
		FROM task_documents_fts
		JOIN task_documents d ON d.id = task_documents_fts.rowid
		WHERE task_documents_fts MATCH ?` + where + `
		ORDER BY score, d.id
		LIMIT ?`
	args = append([]any{matchExpression(terms)}, args...)
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []index.LexicalHit
	for rows.Next() {
		var (
			id    int64
			score sql.NullFloat64
		)
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		hit := index.LexicalHit{ID: core.ID(id)}
		// bm25() is negative; more negative is more relevant.
		if score.Valid && score.Float64 < 0 {
			hit.Rank = 1 / -score.Float64
			hit.Ranked = true
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

func (l *LexicalIndex) list(ctx context.Context, filter index.Filter, limit int) ([]index.LexicalHit, error) {
	where, args := filterClause(filter)
	args = append(args, limit)
	rows, err := l.db.QueryContext(ctx,
		`SELECT d.id FROM task_documents d WHERE 1 = 1`+where+` ORDER BY d.id LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var hits []index.LexicalHit
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan listed document: %w", err)
		}
		hits = append(hits, index.LexicalHit{ID: core.ID(id)})
	}
	return hits, rows.Err()
}

// Stats counts indexed documents.
func (l *LexicalIndex) Stats(ctx context.Context) (index.LexicalStats, error) {
	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_documents`).Scan(&count); err != nil {
		return index.LexicalStats{}, fmt.Errorf("stats: %w", err)
	}
	return index.LexicalStats{DocumentCount: count}, nil
}

// filterClause translates a filter into SQL predicates on d.
func filterClause(f index.Filter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	if f.Topic != "" {
		b.WriteString(" AND d.topic = ?")
		args = append(args, f.Topic)
	}
	if f.Difficulty != nil {
		b.WriteString(" AND d.difficulty BETWEEN ? AND ?")
		args = append(args, f.Difficulty.Min, f.Difficulty.Max)
	}
	return b.String(), args
}

// matchExpression ORs quoted terms so any term can match.
func matchExpression(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

var _ index.LexicalIndex = (*LexicalIndex)(nil)
