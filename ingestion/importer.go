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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/skeleton"
	"github.com/poiesic/taskrag/storage"
)

// Indexer makes stored tasks searchable. search.Engine implements it.
type Indexer interface {
	IndexTask(ctx context.Context, task *core.Task) bool
}

// Importer creates tasks and runs import sessions.
type Importer struct {
	tasks     storage.TaskRepository
	skeletons storage.SkeletonRepository
	sessions  storage.ImportSessionRepository
	indexer   Indexer
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for concurrent task creation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(imp *Importer) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if imp.pool != nil {
			imp.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		imp.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(imp *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		imp.logger = logger
		return nil
	}
}

// NewImporter creates a new importer.
func NewImporter(
	tasks storage.TaskRepository,
	skeletons storage.SkeletonRepository,
	sessions storage.ImportSessionRepository,
	indexer Indexer,
	opts ...Option,
) (*Importer, error) {
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if skeletons == nil {
		return nil, ErrSkeletonRepositoryRequired
	}
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	imp := &Importer{
		tasks:     tasks,
		skeletons: skeletons,
		sessions:  sessions,
		indexer:   indexer,
		pool:      pool,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(imp); optErr != nil {
			imp.Release()
			return nil, optErr
		}
	}
	imp.logger = imp.logger.With("component", "importer")

	return imp, nil
}

// Release releases the worker pool.
// The importer should not be used after calling Release.
func (imp *Importer) Release() {
	if imp.pool != nil {
		imp.pool.Release()
	}
}

// CreateTask validates task, attaches its skeleton, stores it and indexes
// it. A task that is stored but fails to index is still returned without
// error.
func (imp *Importer) CreateTask(ctx context.Context, task *core.Task) (*core.Task, error) {
	if err := core.ValidateTask(task); err != nil {
		return nil, err
	}
	if task.Format == "" {
		task.Format = core.DefaultTaskFormat
	}

	analysis := skeleton.Analyze(task.StatementText)
	skel, err := imp.skeletons.GetOrCreateSkeleton(ctx, analysis.Skeleton, analysis.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("skeleton: %w", err)
	}
	task.SkeletonID = skel.ID
	task.Fingerprint = skel.Fingerprint

	added, err := imp.tasks.AddTasks(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("store task: %w", err)
	}
	stored := added[0]

	if !imp.indexer.IndexTask(ctx, stored) {
		imp.logger.Warn("task stored but not indexed", "taskID", stored.ID)
	}
	return stored, nil
}

// ImportTasks imports a batch of tasks under a new session named name.
func (imp *Importer) ImportTasks(ctx context.Context, name string, tasks []*core.Task) (*core.ImportSession, error) {
	session, err := imp.openSession(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := imp.markProcessing(ctx, session, len(tasks)); err != nil {
		return nil, err
	}

	imported, errs := imp.createAll(ctx, tasks)
	session.ImportedTasks = imported
	session.Errors = errs
	return session, imp.finish(ctx, session, core.ImportStatusCompleted)
}

// ImportFile parses path and imports its tasks under a new session. A file
// that cannot be parsed yields a failed session, not an error.
func (imp *Importer) ImportFile(ctx context.Context, path string) (*core.ImportSession, error) {
	session, err := imp.openSession(ctx, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return session, imp.importFile(ctx, session, path)
}

func (imp *Importer) importFile(ctx context.Context, session *core.ImportSession, path string) error {
	if err := imp.markProcessing(ctx, session, 0); err != nil {
		return err
	}

	parsed, err := ParseFile(path)
	if err != nil {
		imp.logger.Error("error parsing task file", "path", path, "err", err)
		session.Errors = []string{err.Error()}
		return imp.finish(ctx, session, core.ImportStatusFailed)
	}

	tasks := make([]*core.Task, len(parsed.Records))
	for i, record := range parsed.Records {
		tasks[i] = record.Task()
	}

	session.TotalTasks = len(tasks) + len(parsed.Errors)
	if err := imp.sessions.SaveImportSession(ctx, session); err != nil {
		return err
	}

	imported, errs := imp.createAll(ctx, tasks)
	session.ImportedTasks = imported
	session.Errors = append(parsed.Errors, errs...)
	return imp.finish(ctx, session, core.ImportStatusCompleted)
}

// ImportDirectory imports every task file directly inside dir. Each file
// gets its own session; the returned session sums them.
func (imp *Importer) ImportDirectory(ctx context.Context, dir string) (*core.ImportSession, error) {
	session, err := imp.openSession(ctx, dir)
	if err != nil {
		return nil, err
	}
	if err := imp.markProcessing(ctx, session, 0); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		session.Errors = []string{err.Error()}
		return session, imp.finish(ctx, session, core.ImportStatusFailed)
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsSupportedFile(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			session.Errors = append(session.Errors, err.Error())
			return session, imp.finish(ctx, session, core.ImportStatusFailed)
		}

		fileSession, err := imp.ImportFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return session, err
		}
		session.TotalTasks += fileSession.TotalTasks
		session.ImportedTasks += fileSession.ImportedTasks
		for _, msg := range fileSession.Errors {
			session.Errors = append(session.Errors, entry.Name()+": "+msg)
		}
	}

	return session, imp.finish(ctx, session, core.ImportStatusCompleted)
}

// createAll creates tasks concurrently and returns the number stored and
// one message per failed task, in input order.
func (imp *Importer) createAll(ctx context.Context, tasks []*core.Task) (int, []string) {
	failures := make([]error, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		err := imp.pool.Submit(func() {
			defer wg.Done()
			if _, err := imp.CreateTask(ctx, task); err != nil {
				failures[i] = err
			}
		})
		if err != nil {
			wg.Done()
			failures[i] = err
		}
	}
	wg.Wait()

	imported := 0
	var errs []string
	for i, err := range failures {
		if err != nil {
			errs = append(errs, fmt.Sprintf("task %d: %v", i+1, err))
			continue
		}
		imported++
	}
	return imported, errs
}

func (imp *Importer) openSession(ctx context.Context, name string) (*core.ImportSession, error) {
	key, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	session := &core.ImportSession{
		Key:      key.String(),
		Filename: name,
		Status:   core.ImportStatusPending,
	}
	if err := imp.sessions.SaveImportSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save import session: %w", err)
	}
	return session, nil
}

func (imp *Importer) markProcessing(ctx context.Context, session *core.ImportSession, total int) error {
	session.Status = core.ImportStatusProcessing
	session.TotalTasks = total
	imp.logger.Info("import started", "session", session.Key, "name", session.Filename)
	return imp.sessions.SaveImportSession(ctx, session)
}

func (imp *Importer) finish(ctx context.Context, session *core.ImportSession, status core.ImportStatus) error {
	session.Status = status
	session.CompletedAt = time.Now().UTC()
	imp.logger.Info("import finished",
		"session", session.Key,
		"name", session.Filename,
		"status", status.String(),
		"total", session.TotalTasks,
		"imported", session.ImportedTasks,
		"errors", len(session.Errors),
	)
	// The session outlives a cancelled import.
	return imp.sessions.SaveImportSession(context.WithoutCancel(ctx), session)
}
