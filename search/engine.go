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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/taskrag/ai"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/skeleton"
)

// DefaultBranchTimeout bounds each search branch unless overridden.
const DefaultBranchTimeout = 2 * time.Second

// Query describes one hybrid search.
type Query struct {
	Text string
	// Topic restricts results to an exact topic when non-empty.
	Topic string
	// Difficulty restricts results to an inclusive range when non-nil.
	// A range with Min > Max is ignored.
	Difficulty *index.Range
	// Limit caps the number of results. Zero means DefaultLimit.
	Limit int
}

// CollectionInfo is a diagnostic snapshot of both indexes.
type CollectionInfo struct {
	Vector  index.VectorStats
	Lexical index.LexicalStats
}

// Engine runs hybrid searches and indexes tasks.
type Engine struct {
	status        Status
	embedder      ai.Embedder
	branchTimeout time.Duration
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithBranchTimeout sets how long each search branch may run.
// Default is DefaultBranchTimeout.
func WithBranchTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return ErrInvalidTimeout
		}
		e.branchTimeout = d
		return nil
	}
}

// NewEngine creates a search engine over status. An unavailable status is
// not an error; the engine then returns empty results.
func NewEngine(status Status, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		status:        status,
		embedder:      embedder,
		branchTimeout: DefaultBranchTimeout,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "search")

	if !status.IsAvailable() {
		e.logger.Warn("search engine unavailable, searches will return no results", "reason", status.Reason())
	}
	if ai.IsDegraded(embedder) {
		e.logger.Warn("search engine running with a random embedder, vector ranking is meaningless")
	}
	return e, nil
}

// Available reports whether the backing indexes initialized.
func (e *Engine) Available() bool {
	return e.status.IsAvailable()
}

// Search runs a hybrid search. It never fails: backend problems reduce the
// result set, down to empty.
func (e *Engine) Search(ctx context.Context, q Query) []*core.SearchResult {
	return e.SearchWithMonitor(ctx, q, nil)
}

// SearchWithMonitor runs a hybrid search and reports each stage to monitor.
func (e *Engine) SearchWithMonitor(ctx context.Context, q Query, monitor Monitor) []*core.SearchResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	monitor.Start(q)

	if !e.status.IsAvailable() {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results
	}

	filter := index.NewFilter(q.Topic, q.Difficulty)

	var (
		wg          sync.WaitGroup
		vectorHits  []index.VectorHit
		vectorErr   error
		lexicalHits []index.LexicalHit
		lexicalErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorHits, vectorErr = withTimeout(ctx, e.branchTimeout, func(ctx context.Context) ([]index.VectorHit, error) {
			return e.searchVector(ctx, q.Text, filter, q.Limit)
		})
	}()
	go func() {
		defer wg.Done()
		lexicalHits, lexicalErr = withTimeout(ctx, e.branchTimeout, func(ctx context.Context) ([]index.LexicalHit, error) {
			return e.status.lexical.Search(ctx, q.Text, filter, q.Limit)
		})
	}()
	wg.Wait()

	if vectorErr != nil {
		e.logger.Error("vector search failed", "query", q.Text, "err", vectorErr)
		monitor.BranchFailed(BranchVector, vectorErr)
		vectorHits = nil
	}
	monitor.AfterVectorSearch(vectorHits)

	if lexicalErr != nil {
		e.logger.Error("lexical search failed", "query", q.Text, "err", lexicalErr)
		monitor.BranchFailed(BranchLexical, lexicalErr)
		lexicalHits = nil
	}
	monitor.AfterLexicalSearch(lexicalHits)

	results := Fuse(vectorHits, lexicalHits, q.Limit)
	monitor.Finish(results)
	return results
}

// searchVector embeds the query and searches the vector index. A blank
// query has no meaningful embedding and yields no vector hits.
func (e *Engine) searchVector(ctx context.Context, text string, filter index.Filter, limit int) ([]index.VectorHit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	vector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return e.status.vector.Search(ctx, vector, filter, limit)
}

// IndexTask derives the normalized text and fingerprint of task and writes
// it to both indexes. It reports false on any failure instead of returning
// an error.
func (e *Engine) IndexTask(ctx context.Context, task *core.Task) bool {
	if !e.status.IsAvailable() {
		return false
	}
	if task == nil || task.ID == 0 {
		e.logger.Error("cannot index task without an id")
		return false
	}

	analysis := skeleton.Analyze(task.StatementText)

	vector, err := e.embedder.EmbedText(ctx, analysis.Normalized)
	if err != nil {
		e.logger.Error("error indexing task", "taskID", task.ID, "err", fmt.Errorf("embed statement: %w", err))
		return false
	}

	meta := index.Metadata{
		Topic:       task.Topic,
		Subtopic:    task.Subtopic,
		Difficulty:  task.Difficulty,
		Fingerprint: analysis.Fingerprint,
	}
	if err := e.status.vector.Upsert(ctx, task.ID, vector, meta); err != nil {
		e.logger.Error("error indexing task", "taskID", task.ID, "err", fmt.Errorf("vector upsert: %w", err))
		return false
	}

	doc := index.Document{
		ID:          task.ID,
		Text:        analysis.Normalized,
		Topic:       task.Topic,
		Subtopic:    task.Subtopic,
		Difficulty:  task.Difficulty,
		Tags:        task.Tags,
		Skills:      task.Skills,
		Fingerprint: analysis.Fingerprint,
	}
	if err := e.status.lexical.AddDocument(ctx, doc); err != nil {
		e.logger.Error("error indexing task", "taskID", task.ID, "err", fmt.Errorf("lexical add: %w", err))
		return false
	}

	e.logger.Debug("indexed task", "taskID", task.ID, "fingerprint", analysis.Fingerprint.String())
	return true
}

// CollectionInfo returns the record counts of both indexes.
func (e *Engine) CollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	if !e.status.IsAvailable() {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, e.status.Reason())
	}

	vstats, err := e.status.vector.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector stats: %w", err)
	}
	lstats, err := e.status.lexical.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("lexical stats: %w", err)
	}
	return &CollectionInfo{Vector: vstats, Lexical: lstats}, nil
}

// withTimeout runs fn under a deadline and gives up waiting once it passes,
// even if fn ignores its context.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
