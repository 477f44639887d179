package taskrag

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/taskrag/ai"
	"github.com/poiesic/taskrag/ai/mock"
	"github.com/poiesic/taskrag/config"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/reindex"
	"github.com/poiesic/taskrag/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockFactory(*ai.Config) (ai.Embedder, error) {
	return mock.NewMockEmbedder(), nil
}

func openTestDatabase(t *testing.T, opts ...DatabaseOption) *Database {
	t.Helper()
	opts = append([]DatabaseOption{WithEmbedderFactory(mockFactory)}, opts...)
	db, err := NewDatabase(context.Background(), filepath.Join(t.TempDir(), "test_db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		db := openTestDatabase(t)

		assert.NotNil(t, db.TaskRepository())
		assert.NotNil(t, db.SkeletonRepository())
		assert.NotNil(t, db.ImportSessionRepository())
		assert.True(t, db.SearchStatus().IsAvailable())
		assert.False(t, ai.IsDegraded(db.Embedder()))
	})

	t.Run("in memory", func(t *testing.T) {
		db := openTestDatabase(t, WithInMemory())
		assert.True(t, db.SearchStatus().IsAvailable())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		db, err := NewDatabase(context.Background(), tmpFile, WithEmbedderFactory(mockFactory))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("unreachable embedder falls back to random vectors", func(t *testing.T) {
		db := openTestDatabase(t, WithEmbedderFactory(func(*ai.Config) (ai.Embedder, error) {
			return nil, errors.New("connection refused")
		}))
		assert.True(t, ai.IsDegraded(db.Embedder()))
		assert.True(t, db.SearchStatus().IsAvailable())
	})

	t.Run("lexical index failure leaves search unavailable", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		db := openTestDatabase(t, WithLexicalPath(filepath.Join(blocker, "lexical.db")))
		assert.False(t, db.SearchStatus().IsAvailable())

		_, err := db.NewReindexer(nil, nil)
		assert.ErrorIs(t, err, search.ErrUnavailable)
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	db := openTestDatabase(t, WithInMemory(), WithCircuitBreaker(index.DefaultBreakerConfig()))
	ctx := context.Background()

	importer, err := db.NewImporter()
	require.NoError(t, err)
	defer importer.Release()

	session, err := importer.ImportTasks(ctx, "seed", []*core.Task{
		{Topic: "Algebra", Difficulty: 4, StatementText: "Solve 2x + 5 = 13"},
		{Topic: "Algebra", Difficulty: 4, StatementText: "Solve 3x + 7 = 22"},
		{Topic: "Algebra", Difficulty: 4, StatementText: "Factor x^2 - 9"},
		{Topic: "Geometry", Difficulty: 4, StatementText: "Find the area of a circle with radius 3"},
	})
	require.NoError(t, err)
	require.Equal(t, 4, session.ImportedTasks)

	engine, err := db.NewEngine()
	require.NoError(t, err)
	info, err := engine.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, info.Vector.RecordCount)
	assert.Equal(t, 4, info.Lexical.DocumentCount)

	generator, err := db.NewGenerator()
	require.NoError(t, err)
	result, err := generator.Generate(ctx, core.StudentContext{TargetScore: 80}, "Algebra — 3")
	require.NoError(t, err)

	// The two linear equations share a skeleton.
	require.Len(t, result.Items, 2)
	assert.NotEqual(t, result.Items[0].Task.Fingerprint, result.Items[1].Task.Fingerprint)

	var out bytes.Buffer
	r, err := db.NewReindexer(&reindex.Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 1, RetryDelay: time.Millisecond}, &out)
	require.NoError(t, err)
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Indexed)
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(context.Background(), t.TempDir(), WithEmbedderFactory(mockFactory))
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.LexicalPath = "/tmp/lexical.db"
	cfg.CircuitBreaker.Enabled = false

	options := &databaseOptions{}
	for _, opt := range OptionsFromConfig(cfg) {
		opt(options)
	}
	assert.Equal(t, "/tmp/lexical.db", options.lexicalPath)
	assert.Nil(t, options.breaker)
	assert.Equal(t, cfg.Search.BranchTimeout, options.branchTimeout)
	assert.Equal(t, cfg.Import.Workers, options.importWorkers)
	assert.Equal(t, cfg.Embedding.Model, options.aiConfig.EmbeddingModel)
}
