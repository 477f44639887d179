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

package selection

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/search"
	"github.com/poiesic/taskrag/skeleton"
	"github.com/poiesic/taskrag/storage"
)

// candidatesPerSlot is how many search results are requested per task asked for.
const candidatesPerSlot = 3

// Searcher is the part of search.Engine the selector depends on.
type Searcher interface {
	Available() bool
	Search(ctx context.Context, q search.Query) []*core.SearchResult
}

var _ Searcher = (*search.Engine)(nil)

// Selector picks tasks for one topic at a time.
type Selector struct {
	searcher  Searcher
	tasks     storage.TaskRepository
	skeletons storage.SkeletonRepository
	random    func() float64
	logger    *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRandom sets the source of the synthetic fallback scores.
// Default is math/rand/v2.Float64.
func WithRandom(random func() float64) Option {
	return func(s *Selector) error {
		if random == nil {
			random = rand.Float64
		}
		s.random = random
		return nil
	}
}

// NewSelector creates a new selector.
func NewSelector(
	searcher Searcher,
	tasks storage.TaskRepository,
	skeletons storage.SkeletonRepository,
	opts ...Option,
) (*Selector, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if skeletons == nil {
		return nil, ErrSkeletonRepositoryRequired
	}

	s := &Selector{
		searcher:  searcher,
		tasks:     tasks,
		skeletons: skeletons,
		random:    rand.Float64,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "selector")

	return s, nil
}

// BaseDifficulty maps a target exam score onto the difficulty scale.
func BaseDifficulty(targetScore int) int {
	return core.ClampDifficulty(targetScore / 20)
}

// Select returns at most count tasks for topic, none sharing a skeleton
// fingerprint with each other or with anything already in used. Every
// selected fingerprint is added to used.
func (s *Selector) Select(ctx context.Context, topic string, count int, student core.StudentContext, used *UsedFingerprints) []*core.Candidate {
	if used == nil {
		used = NewUsedFingerprints()
	}
	if count <= 0 {
		return []*core.Candidate{}
	}

	if !s.searcher.Available() {
		s.logger.Warn("search engine unavailable, using fallback selection", "topic", topic)
		return s.fallback(ctx, topic, count, used)
	}

	target := student.Target()
	base := BaseDifficulty(target)

	var candidates []*core.Candidate
	for _, difficulty := range []int{base, base + 1} {
		if difficulty > core.MaxDifficulty {
			continue
		}

		results := s.searcher.Search(ctx, search.Query{
			Text:       topic,
			Topic:      topic,
			Difficulty: &index.Range{Min: difficulty, Max: difficulty},
			Limit:      count * candidatesPerSlot,
		})

		for _, result := range results {
			task, fp, ok := s.resolve(ctx, result.TaskID)
			if !ok || used.Contains(fp) {
				continue
			}
			used.Add(fp)
			candidates = append(candidates, &core.Candidate{
				Task:          task,
				VectorScore:   result.VectorScore,
				BM25Score:     result.BM25Score,
				CombinedScore: result.CombinedScore,
				Reason:        fmt.Sprintf("Difficulty %d for target score %d", difficulty, target),
			})
		}
	}

	slices.SortStableFunc(candidates, func(a, b *core.Candidate) int {
		return cmp.Compare(b.CombinedScore, a.CombinedScore)
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	if candidates == nil {
		candidates = []*core.Candidate{}
	}
	return candidates
}

// fallback picks stored tasks whose topic contains topic, in ID order.
func (s *Selector) fallback(ctx context.Context, topic string, count int, used *UsedFingerprints) []*core.Candidate {
	tasks, err := s.tasks.FindTasksByTopic(ctx, topic)
	if err != nil {
		s.logger.Error("fallback selection failed", "topic", topic, "err", err)
		return []*core.Candidate{}
	}

	selected := make([]*core.Candidate, 0, count)
	for _, task := range tasks {
		fp, ok := s.fingerprint(ctx, task)
		if !ok || used.Contains(fp) {
			continue
		}
		used.Add(fp)
		selected = append(selected, &core.Candidate{
			Task:          task,
			VectorScore:   0.8 + s.random()*0.2,
			BM25Score:     0.7 + s.random()*0.3,
			CombinedScore: 0.75 + s.random()*0.25,
			Reason:        fmt.Sprintf("Matches topic %q, suitable difficulty", topic),
		})
		if len(selected) >= count {
			break
		}
	}
	return selected
}

// resolve loads a task and its skeleton fingerprint.
func (s *Selector) resolve(ctx context.Context, id core.ID) (*core.Task, core.Fingerprint, bool) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		s.logger.Warn("search hit without a stored task", "taskID", id, "err", err)
		return nil, core.Fingerprint{}, false
	}
	fp, ok := s.fingerprint(ctx, task)
	return task, fp, ok
}

// fingerprint returns the task's skeleton fingerprint, consulting the
// skeleton record and finally the statement itself when the task carries
// none.
func (s *Selector) fingerprint(ctx context.Context, task *core.Task) (core.Fingerprint, bool) {
	if !task.Fingerprint.IsZero() {
		return task.Fingerprint, true
	}
	if task.SkeletonID != 0 {
		skel, err := s.skeletons.GetSkeleton(ctx, task.SkeletonID)
		if err == nil && !skel.Fingerprint.IsZero() {
			return skel.Fingerprint, true
		}
		s.logger.Warn("task skeleton lookup failed", "taskID", task.ID, "skeletonID", task.SkeletonID, "err", err)
	}
	if task.StatementText == "" {
		return core.Fingerprint{}, false
	}
	return skeleton.Analyze(task.StatementText).Fingerprint, true
}
