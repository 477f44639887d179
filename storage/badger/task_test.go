package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(topic, statement string, difficulty int) *core.Task {
	return &core.Task{
		Source:        "ege-2024",
		Topic:         topic,
		Difficulty:    difficulty,
		StatementText: statement,
		Answer:        "42",
		Tags:          []string{"practice"},
		Skills:        []string{"arithmetic"},
		Format:        core.DefaultTaskFormat,
	}
}

func TestTaskBasics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	task := newTestTask("Алгебра", "Решите уравнение x^2 - 5x + 6 = 0", 2)
	added, err := repos.Tasks.AddTasks(ctx, task)
	if err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(added))
	}
	if added[0].ID == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}

	retrieved, err := repos.Tasks.GetTask(ctx, added[0].ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if retrieved.StatementText != task.StatementText {
		t.Fatalf("Expected %q, got %q", task.StatementText, retrieved.StatementText)
	}
}

func TestAddTasks_SequentialIDs(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	added, err := repos.Tasks.AddTasks(ctx,
		newTestTask("Алгебра", "one", 1),
		newTestTask("Алгебра", "two", 1),
		newTestTask("Геометрия", "three", 1),
	)
	require.NoError(t, err)
	require.Len(t, added, 3)

	assert.Less(t, added[0].ID, added[1].ID)
	assert.Less(t, added[1].ID, added[2].ID)

	count, err := repos.Tasks.CountTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGetTask_NotFound(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = repos.Tasks.GetTask(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetTasks_SkipsMissing(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	added, err := repos.Tasks.AddTasks(ctx, newTestTask("Алгебра", "one", 1), newTestTask("Алгебра", "two", 2))
	require.NoError(t, err)

	tasks, err := repos.Tasks.GetTasks(ctx, added[1].ID, 999, added[0].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, added[1].ID, tasks[0].ID)
	assert.Equal(t, added[0].ID, tasks[1].ID)
}

func TestUpdateTasks(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	added, err := repos.Tasks.AddTasks(ctx, newTestTask("Алгебра", "one", 1))
	require.NoError(t, err)
	created := added[0].CreatedAt

	t.Run("replaces fields and keeps created time", func(t *testing.T) {
		task := *added[0]
		task.Difficulty = 4
		task.SkeletonID = 77
		_, err := repos.Tasks.UpdateTasks(ctx, &task)
		require.NoError(t, err)

		got, err := repos.Tasks.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Difficulty)
		assert.WithinDuration(t, created, got.CreatedAt, time.Millisecond)

		ids, err := repos.Tasks.GetTasksBySkeleton(ctx, 77)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{task.ID}, ids)
	})

	t.Run("moves skeleton index", func(t *testing.T) {
		task, err := repos.Tasks.GetTask(ctx, added[0].ID)
		require.NoError(t, err)
		task.SkeletonID = 88
		_, err = repos.Tasks.UpdateTasks(ctx, task)
		require.NoError(t, err)

		ids, err := repos.Tasks.GetTasksBySkeleton(ctx, 77)
		require.NoError(t, err)
		assert.Empty(t, ids)

		ids, err = repos.Tasks.GetTasksBySkeleton(ctx, 88)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{task.ID}, ids)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := repos.Tasks.UpdateTasks(ctx, &core.Task{ID: 999, Topic: "x", StatementText: "y", Difficulty: 1})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDeleteTasks(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	task := newTestTask("Алгебра", "one", 1)
	task.SkeletonID = 5
	added, err := repos.Tasks.AddTasks(ctx, task)
	require.NoError(t, err)

	require.NoError(t, repos.Tasks.DeleteTasks(ctx, added[0].ID))

	_, err = repos.Tasks.GetTask(ctx, added[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	ids, err := repos.Tasks.GetTasksBySkeleton(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = repos.Tasks.DeleteTasks(ctx, added[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindTasksByTopic(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	_, err = repos.Tasks.AddTasks(ctx,
		newTestTask("Алгебра", "one", 1),
		newTestTask("Геометрия", "two", 2),
		newTestTask("Линейная алгебра", "three", 3),
	)
	require.NoError(t, err)

	tests := []struct {
		name     string
		topic    string
		expected []string
	}{
		{name: "exact", topic: "Геометрия", expected: []string{"two"}},
		{name: "case-insensitive substring", topic: "алгебра", expected: []string{"one", "three"}},
		{name: "surrounding space", topic: "  АЛГЕБРА ", expected: []string{"one", "three"}},
		{name: "no match", topic: "Физика", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repos.Tasks.FindTasksByTopic(ctx, tt.topic)
			require.NoError(t, err)
			var statements []string
			for _, task := range tasks {
				statements = append(statements, task.StatementText)
			}
			assert.Equal(t, tt.expected, statements)
		})
	}
}

func TestListTasks_Pagination(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := repos.Tasks.AddTasks(ctx, newTestTask("Алгебра", "task", 1))
		require.NoError(t, err)
	}

	var seen []core.ID
	var after core.ID
	for {
		page, err := repos.Tasks.ListTasks(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 2)
		for _, task := range page {
			seen = append(seen, task.ID)
		}
		after = page[len(page)-1].ID
	}

	require.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.Less(t, seen[i-1], seen[i])
	}

	_, err = repos.Tasks.ListTasks(ctx, 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestGetTasksBySkeleton(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	a := newTestTask("Алгебра", "one", 1)
	a.SkeletonID = 10
	b := newTestTask("Алгебра", "two", 1)
	b.SkeletonID = 11
	c := newTestTask("Алгебра", "three", 1)
	c.SkeletonID = 10
	added, err := repos.Tasks.AddTasks(ctx, a, b, c)
	require.NoError(t, err)

	ids, err := repos.Tasks.GetTasksBySkeleton(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{added[0].ID, added[2].ID}, ids)
}
