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

package badger

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/storage"
)

// TaskRepository implements storage.TaskRepository for BadgerDB.
type TaskRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(backend *Backend) (*TaskRepository, error) {
	idSeq, err := backend.GetSequence(taskIDSeq)
	if err != nil {
		return nil, err
	}

	return &TaskRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TaskRepository) Close() error {
	return r.idSeq.Release()
}

// AddTasks adds one or more tasks to storage.
func (r *TaskRepository) AddTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, task := range tasks {
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			task.ID = id
			if task.CreatedAt.IsZero() {
				task.CreatedAt = time.Now().UTC()
			}

			key := makeTaskKey(task.ID)
			if err := tx.Set(key, storage.MarshalTask(task)); err != nil {
				return err
			}

			if err := r.updateSkeletonIndex(tx, task); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return tasks, err
}

// UpdateTasks replaces existing tasks.
func (r *TaskRepository) UpdateTasks(ctx context.Context, tasks ...*core.Task) ([]*core.Task, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, task := range tasks {
			key := makeTaskKey(task.ID)

			old, err := readTask(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}
			if task.CreatedAt.IsZero() {
				task.CreatedAt = old.CreatedAt
			}

			if err := tx.Set(key, storage.MarshalTask(task)); err != nil {
				return err
			}

			if old.SkeletonID != task.SkeletonID {
				if err := r.deleteSkeletonIndex(tx, old); err != nil {
					return err
				}
				if err := r.updateSkeletonIndex(tx, task); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return tasks, err
}

// DeleteTasks removes tasks by their IDs.
func (r *TaskRepository) DeleteTasks(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeTaskKey(id)

			task, err := readTask(tx, key)
			if err != nil {
				return err
			}
			if task == nil {
				return storage.ErrNotFound
			}

			if err := r.deleteSkeletonIndex(tx, task); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetTask retrieves a single task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id core.ID) (*core.Task, error) {
	var result *core.Task
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTask(tx, makeTaskKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetTasks retrieves multiple tasks by their IDs, in the order requested.
func (r *TaskRepository) GetTasks(ctx context.Context, ids ...core.ID) ([]*core.Task, error) {
	var result []*core.Task
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			task, err := readTask(tx, makeTaskKey(id))
			if err != nil {
				return err
			}
			if task != nil {
				result = append(result, task)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindTasksByTopic scans all tasks for a case-insensitive topic substring match.
func (r *TaskRepository) FindTasksByTopic(ctx context.Context, topic string) ([]*core.Task, error) {
	needle := strings.ToLower(strings.TrimSpace(topic))

	var results []*core.Task
	err := r.scanTasks(0, func(task *core.Task) bool {
		if strings.Contains(strings.ToLower(task.Topic), needle) {
			results = append(results, task)
		}
		return true
	})
	return results, err
}

// GetTasksBySkeleton retrieves IDs of tasks sharing a skeleton.
func (r *TaskRepository) GetTasksBySkeleton(ctx context.Context, skeletonID core.ID) ([]core.ID, error) {
	var taskIDs []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialTaskSkeletonKey(skeletonID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			taskIDs = append(taskIDs, idFromKey(iter.Item().Key()))
		}
		return nil
	}, false)

	return taskIDs, err
}

// ListTasks returns a page of tasks ordered by ID.
func (r *TaskRepository) ListTasks(ctx context.Context, afterID core.ID, limit int) ([]*core.Task, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.Task
	err := r.scanTasks(afterID, func(task *core.Task) bool {
		results = append(results, task)
		return len(results) < limit
	})
	return results, err
}

// CountTasks returns the number of stored tasks.
func (r *TaskRepository) CountTasks(ctx context.Context) (int, error) {
	return r.backend.countPrefix(taskRecordPrefix)
}

// Helper methods

// scanTasks visits tasks with ID greater than afterID in ID order until
// visit returns false.
func (r *TaskRepository) scanTasks(afterID core.ID, visit func(*core.Task) bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := scanPrefix(taskRecordPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := prefix
		if afterID > 0 {
			start = makeTaskKey(afterID + 1)
		}

		for iter.Seek(start); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var task *core.Task
			err := item.Value(func(val []byte) error {
				var err error
				task, err = storage.UnmarshalTask(val)
				return err
			})
			if err != nil {
				return err
			}
			if !visit(task) {
				break
			}
		}
		return nil
	}, false)
}

// readTask reads a task from the transaction. Returns nil, nil when absent.
func readTask(tx *badger.Txn, key []byte) (*core.Task, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var task *core.Task
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		task, unmarshalErr = storage.UnmarshalTask(val)
		return unmarshalErr
	})
	return task, err
}

// updateSkeletonIndex adds the skeleton index entry for a task.
func (r *TaskRepository) updateSkeletonIndex(tx *badger.Txn, task *core.Task) error {
	if task.SkeletonID == 0 {
		return nil
	}
	key := makeTaskSkeletonKey(task.SkeletonID, task.ID)
	return tx.Set(key, storage.MarshalID(task.ID))
}

// deleteSkeletonIndex removes the skeleton index entry for a task.
func (r *TaskRepository) deleteSkeletonIndex(tx *badger.Txn, task *core.Task) error {
	if task.SkeletonID == 0 {
		return nil
	}
	return tx.Delete(makeTaskSkeletonKey(task.SkeletonID, task.ID))
}
