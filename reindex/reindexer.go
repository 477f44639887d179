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

package reindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/taskrag/ai"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/storage"
)

// Config holds configuration for a reindex run.
type Config struct {
	// BatchSize is the number of tasks embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of tasks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Result summarizes a finished run.
type Result struct {
	Indexed int
	Elapsed time.Duration
}

// Reindexer rebuilds both search indexes from the task repository.
type Reindexer struct {
	tasks     storage.TaskRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *TaskIterator
	logger    *slog.Logger
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	tasks storage.TaskRepository,
	vector index.VectorIndex,
	lexical index.LexicalIndex,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) (*Reindexer, error) {
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if vector == nil || lexical == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	logger := slog.Default().With("component", "reindex")
	if ai.IsDegraded(embedder) {
		logger.Warn("reindexing with a degraded embedder, vector search quality will be poor")
	}

	return &Reindexer{
		tasks:     tasks,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(vector, lexical, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewTaskIterator(tasks, config.BatchSize),
		logger:    logger,
	}, nil
}

// Run indexes every stored task. It stops at the first failed batch.
func (r *Reindexer) Run(ctx context.Context) (*Result, error) {
	total, err := r.tasks.CountTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No tasks found in database (0 tasks)\n")
		return &Result{}, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d tasks (batch size: %d)\n", total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(tasks []*core.Task) error {
		if err := r.processor.Process(ctx, tasks); err != nil {
			return fmt.Errorf("failed to process batch starting at task %d: %w", tasks[0].ID, err)
		}
		tracker.Add(len(tasks))
		return nil
	})
	if err != nil {
		r.logger.Error("reindex aborted", "indexed", tracker.Current(), "total", total, "err", err)
		return &Result{Indexed: tracker.Current(), Elapsed: tracker.Elapsed()}, err
	}

	tracker.Finish()
	result := &Result{Indexed: tracker.Current(), Elapsed: tracker.Elapsed()}
	fmt.Fprintf(r.progress, "Reindex complete. Indexed %d tasks in %v\n",
		result.Indexed, result.Elapsed.Round(time.Millisecond))
	return result, nil
}
