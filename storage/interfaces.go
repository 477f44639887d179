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

package storage

import (
	"context"

	"github.com/poiesic/taskrag/core"
)

// Repository is the lifecycle shared by all repositories.
type Repository interface {
	// Close releases resources held by the repository. The shared backend
	// is closed separately.
	Close() error
}

// TaskRepository stores exam tasks.
type TaskRepository interface {
	Repository
	// AddTasks adds one or more tasks to storage.
	// Always generates new IDs from sequence.
	// Sets CreatedAt timestamp if not already set.
	// Returns the tasks with generated IDs and timestamps populated.
	AddTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error)

	// UpdateTasks replaces existing tasks.
	// Returns ErrNotFound if any task doesn't exist.
	UpdateTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error)

	// DeleteTasks removes tasks by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any task doesn't exist.
	DeleteTasks(ctx context.Context, ids ...core.ID) error

	// GetTask retrieves a single task by ID.
	// Returns ErrNotFound if the task doesn't exist.
	GetTask(ctx context.Context, id core.ID) (*core.Task, error)

	// GetTasks retrieves multiple tasks by their IDs.
	// Returns only the tasks that exist (no error for missing tasks).
	GetTasks(ctx context.Context, ids ...core.ID) ([]*core.Task, error)

	// FindTasksByTopic returns every task whose topic contains topic,
	// compared case-insensitively, ordered by ID.
	FindTasksByTopic(ctx context.Context, topic string) ([]*core.Task, error)

	// GetTasksBySkeleton returns IDs of tasks sharing a skeleton, ascending.
	GetTasksBySkeleton(ctx context.Context, skeletonID core.ID) ([]core.ID, error)

	// ListTasks returns up to limit tasks with ID greater than afterID,
	// ordered by ID. Pass afterID=0 to start from the beginning.
	ListTasks(ctx context.Context, afterID core.ID, limit int) ([]*core.Task, error)

	// CountTasks returns the number of stored tasks.
	CountTasks(ctx context.Context) (int, error)
}

// SkeletonRepository stores skeletons keyed by fingerprint.
type SkeletonRepository interface {
	Repository
	// GetSkeleton retrieves a skeleton by ID.
	// Returns ErrNotFound if the skeleton doesn't exist.
	GetSkeleton(ctx context.Context, id core.ID) (*core.Skeleton, error)

	// FindSkeletonByFingerprint finds the skeleton with the given fingerprint.
	// Returns ErrNotFound if no matching skeleton exists.
	FindSkeletonByFingerprint(ctx context.Context, fp core.Fingerprint) (*core.Skeleton, error)

	// GetOrCreateSkeleton returns the skeleton for fp, creating it from
	// text if it does not exist yet.
	// Thread-safe: handles concurrent creation attempts.
	GetOrCreateSkeleton(ctx context.Context, text string, fp core.Fingerprint) (*core.Skeleton, error)

	// CountSkeletons returns the number of stored skeletons.
	CountSkeletons(ctx context.Context) (int, error)
}

// ImportSessionRepository stores import sessions.
type ImportSessionRepository interface {
	// SaveImportSession inserts or updates a session. A session with ID 0
	// gets a new ID and CreatedAt timestamp.
	SaveImportSession(ctx context.Context, session *core.ImportSession) error

	// LoadImportSession retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist.
	LoadImportSession(ctx context.Context, id core.ID) (*core.ImportSession, error)

	// FindImportSessionByKey retrieves a session by its UUID key.
	// Returns ErrNotFound if the session doesn't exist.
	FindImportSessionByKey(ctx context.Context, key string) (*core.ImportSession, error)
}
