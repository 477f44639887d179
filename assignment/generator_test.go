package assignment

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSelector hands out tasks with distinct fingerprints per topic and
// records the used set it is given.
type stubSelector struct {
	perTopic map[string]int
	seenSets []*selection.UsedFingerprints
	nextID   core.ID
}

func (s *stubSelector) Select(_ context.Context, topic string, count int, _ core.StudentContext, used *selection.UsedFingerprints) []*core.Candidate {
	s.seenSets = append(s.seenSets, used)
	available := s.perTopic[topic]
	var out []*core.Candidate
	for i := 0; i < available && len(out) < count; i++ {
		s.nextID++
		var fp core.Fingerprint
		copy(fp[:], fmt.Sprintf("%s-%d", topic, i))
		if !used.Add(fp) {
			continue
		}
		out = append(out, &core.Candidate{
			Task:          &core.Task{ID: s.nextID, Topic: topic, Fingerprint: fp},
			Reason:        "stub",
			CombinedScore: 0.5,
		})
	}
	return out
}

func TestNewGenerator_RequiresSelector(t *testing.T) {
	_, err := NewGenerator(nil)
	assert.ErrorIs(t, err, ErrSelectorRequired)
}

func TestGenerator_Generate(t *testing.T) {
	stub := &stubSelector{perTopic: map[string]int{"Algebra": 5, "Geometry": 1}}
	g, err := NewGenerator(stub)
	require.NoError(t, err)

	student := core.StudentContext{Name: "Sam", TargetScore: 60}
	result, err := g.Generate(context.Background(), student, "Algebra — 2, Geometry - 3")
	require.NoError(t, err)

	require.Len(t, result.Items, 3)
	for i, item := range result.Items {
		assert.Equal(t, i+1, item.Order)
		assert.Equal(t, "stub", item.Reason)
	}
	assert.Equal(t, "Algebra", result.Items[0].Topic)
	assert.Equal(t, "Algebra", result.Items[1].Topic)
	assert.Equal(t, "Geometry", result.Items[2].Topic)
	assert.Equal(t, student, result.Student)
	assert.Equal(t, []TopicRequest{{"Algebra", 2}, {"Geometry", 3}}, result.Topics)

	// One used set shared across the run.
	require.Len(t, stub.seenSets, 2)
	assert.Same(t, stub.seenSets[0], stub.seenSets[1])
	assert.Equal(t, 3, stub.seenSets[0].Len())
}

func TestGenerator_Generate_FreshSetPerRun(t *testing.T) {
	stub := &stubSelector{perTopic: map[string]int{"Algebra": 1}}
	g, err := NewGenerator(stub)
	require.NoError(t, err)

	first, err := g.Generate(context.Background(), core.StudentContext{}, "Algebra")
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), core.StudentContext{}, "Algebra")
	require.NoError(t, err)

	assert.Len(t, first.Items, 1)
	assert.Len(t, second.Items, 1)
	assert.NotSame(t, stub.seenSets[0], stub.seenSets[1])
}

func TestGenerator_Generate_NoTopics(t *testing.T) {
	g, err := NewGenerator(&stubSelector{})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), core.StudentContext{}, " , ")
	assert.ErrorIs(t, err, ErrNoTopics)
}

func TestGenerator_Generate_Cancelled(t *testing.T) {
	g, err := NewGenerator(&stubSelector{perTopic: map[string]int{"Algebra": 1}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, core.StudentContext{}, "Algebra")
	assert.ErrorIs(t, err, context.Canceled)
}
