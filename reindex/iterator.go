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

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/storage"
)

// DefaultBatchSize is the default number of tasks fetched per batch.
const DefaultBatchSize = 100

// TaskIterator pages through every stored task in ID order.
type TaskIterator struct {
	repo      storage.TaskRepository
	batchSize int
}

// NewTaskIterator creates a new task iterator.
// batchSize <= 0 selects DefaultBatchSize.
func NewTaskIterator(repo storage.TaskRepository, batchSize int) *TaskIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &TaskIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with successive batches until the catalogue is
// exhausted, fn fails or ctx is done.
func (it *TaskIterator) ForEach(ctx context.Context, fn func([]*core.Task) error) error {
	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := it.repo.ListTasks(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}

		after = batch[len(batch)-1].ID
		if len(batch) < it.batchSize {
			return nil
		}
	}
}
