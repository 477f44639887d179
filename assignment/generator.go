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

package assignment

import (
	"context"
	"log/slog"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/selection"
)

// TaskSelector picks candidates for one topic. selection.Selector
// implements it.
type TaskSelector interface {
	Select(ctx context.Context, topic string, count int, student core.StudentContext, used *selection.UsedFingerprints) []*core.Candidate
}

var _ TaskSelector = (*selection.Selector)(nil)

// Item is one numbered entry of an assignment.
type Item struct {
	Order         int
	Topic         string
	Task          *core.Task
	Reason        string
	VectorScore   float64
	BM25Score     float64
	CombinedScore float64
}

// Assignment is the generated task list for a student.
type Assignment struct {
	Student core.StudentContext
	Topics  []TopicRequest
	Items   []Item
}

// Generator builds assignments.
type Generator struct {
	selector TaskSelector
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a new assignment generator.
func NewGenerator(selector TaskSelector, opts ...Option) (*Generator, error) {
	if selector == nil {
		return nil, ErrSelectorRequired
	}

	g := &Generator{
		selector: selector,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "assignment")
	return g, nil
}

// Generate selects tasks for every topic in topicsText. No skeleton
// appears twice in one assignment. Items are numbered from 1 in topic
// order. A topic with too few matching tasks yields fewer items.
func (g *Generator) Generate(ctx context.Context, student core.StudentContext, topicsText string) (*Assignment, error) {
	topics := ParseTopics(topicsText)
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}

	result := &Assignment{Student: student, Topics: topics}
	used := selection.NewUsedFingerprints()

	for _, req := range topics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates := g.selector.Select(ctx, req.Topic, req.Count, student, used)
		if len(candidates) < req.Count {
			g.logger.Warn("topic under-filled",
				"topic", req.Topic,
				"requested", req.Count,
				"selected", len(candidates),
			)
		}

		for _, c := range candidates {
			result.Items = append(result.Items, Item{
				Order:         len(result.Items) + 1,
				Topic:         req.Topic,
				Task:          c.Task,
				Reason:        c.Reason,
				VectorScore:   c.VectorScore,
				BM25Score:     c.BM25Score,
				CombinedScore: c.CombinedScore,
			})
		}
	}

	g.logger.Debug("assignment generated",
		"student", student.Name,
		"topics", len(topics),
		"items", len(result.Items),
	)
	return result, nil
}
