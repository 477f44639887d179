package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/taskrag/ai"
	"github.com/poiesic/taskrag/ai/mock"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/index/memory"
	"github.com/poiesic/taskrag/skeleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	engine   *Engine
	vector   *memory.VectorIndex
	lexical  *memory.LexicalIndex
	embedder *mock.MockEmbedder
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	vector := memory.NewVectorIndex(embedder.Dimension)
	lexical := memory.NewLexicalIndex()

	engine, err := NewEngine(Available(vector, lexical), embedder, opts...)
	require.NoError(t, err)
	return &testEnv{engine: engine, vector: vector, lexical: lexical, embedder: embedder}
}

type recordingMonitor struct {
	started      []Query
	vectorHits   []index.VectorHit
	lexicalHits  []index.LexicalHit
	failedBranch map[string]error
	finished     []*core.SearchResult
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{failedBranch: make(map[string]error)}
}

func (m *recordingMonitor) Start(q Query)                            { m.started = append(m.started, q) }
func (m *recordingMonitor) AfterVectorSearch(hits []index.VectorHit)   { m.vectorHits = hits }
func (m *recordingMonitor) AfterLexicalSearch(hits []index.LexicalHit) { m.lexicalHits = hits }
func (m *recordingMonitor) BranchFailed(branch string, err error)      { m.failedBranch[branch] = err }
func (m *recordingMonitor) Finish(results []*core.SearchResult)        { m.finished = results }

func algebraTasks() []*core.Task {
	return []*core.Task{
		{ID: 1, Topic: "Алгебра", Difficulty: 3, StatementText: "Решите квадратное уравнение x^2 - 7x + 12 = 0"},
		{ID: 2, Topic: "Алгебра", Difficulty: 3, StatementText: "Найдите корни уравнения 2x + 5 = 11"},
		{ID: 3, Topic: "Алгебра", Difficulty: 4, StatementText: "Решите квадратное уравнение x^2 + px + q = 0 с параметром"},
	}
}

func TestNewEngine(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	status := Available(memory.NewVectorIndex(embedder.Dimension), memory.NewLexicalIndex())

	t.Run("valid configuration", func(t *testing.T) {
		engine, err := NewEngine(status, embedder)
		require.NoError(t, err)
		assert.True(t, engine.Available())
		assert.Equal(t, DefaultBranchTimeout, engine.branchTimeout)
	})

	t.Run("with custom logger", func(t *testing.T) {
		engine, err := NewEngine(status, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		engine, err := NewEngine(status, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("custom branch timeout", func(t *testing.T) {
		engine, err := NewEngine(status, embedder, WithBranchTimeout(time.Second))
		require.NoError(t, err)
		assert.Equal(t, time.Second, engine.branchTimeout)
	})

	t.Run("invalid branch timeout", func(t *testing.T) {
		_, err := NewEngine(status, embedder, WithBranchTimeout(0))
		assert.Equal(t, ErrInvalidTimeout, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewEngine(status, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("unavailable status is not an error", func(t *testing.T) {
		engine, err := NewEngine(Unavailable(errors.New("boom")), embedder)
		require.NoError(t, err)
		assert.False(t, engine.Available())
	})

	t.Run("degraded embedder is accepted", func(t *testing.T) {
		engine, err := NewEngine(status, ai.NewRandomEmbedder(ai.DefaultDimension, 1))
		require.NoError(t, err)
		assert.True(t, engine.Available())
	})
}

func TestIndexTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := &core.Task{
		ID:            10,
		Topic:         "Алгебра",
		Subtopic:      "Уравнения",
		Difficulty:    3,
		StatementText: "  Решите   УРАВНЕНИЕ x^2 - 7x + 12 = 0 ",
		Tags:          []string{"квадратные"},
		Skills:        []string{"факторизация"},
	}
	require.True(t, env.engine.IndexTask(ctx, task))

	analysis := skeleton.Analyze(task.StatementText)

	meta, ok := env.vector.Metadata(10)
	require.True(t, ok)
	assert.Equal(t, "Алгебра", meta.Topic)
	assert.Equal(t, "Уравнения", meta.Subtopic)
	assert.Equal(t, 3, meta.Difficulty)
	assert.Equal(t, analysis.Fingerprint, meta.Fingerprint)

	doc, ok := env.lexical.Document(10)
	require.True(t, ok)
	assert.Equal(t, "решите уравнение x^2 - 7x + 12 = 0", doc.Text)
	assert.Equal(t, analysis.Fingerprint, doc.Fingerprint)
	assert.Equal(t, task.Tags, doc.Tags)
	assert.Equal(t, task.Skills, doc.Skills)

	t.Run("reindexing is idempotent", func(t *testing.T) {
		require.True(t, env.engine.IndexTask(ctx, task))
		info, err := env.engine.CollectionInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, info.Vector.RecordCount)
		assert.Equal(t, 1, info.Lexical.DocumentCount)
	})
}

func TestIndexTask_Failures(t *testing.T) {
	ctx := context.Background()
	task := &core.Task{ID: 1, Topic: "Алгебра", Difficulty: 2, StatementText: "2 + 2 = ?"}

	t.Run("vector store error", func(t *testing.T) {
		env := newTestEnv(t)
		env.vector.SetError(errors.New("qdrant down"))
		assert.False(t, env.engine.IndexTask(ctx, task))
	})

	t.Run("lexical store error", func(t *testing.T) {
		env := newTestEnv(t)
		env.lexical.SetError(errors.New("meili down"))
		assert.False(t, env.engine.IndexTask(ctx, task))
	})

	t.Run("embedding error", func(t *testing.T) {
		env := newTestEnv(t)
		env.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model not loaded")
		}
		assert.False(t, env.engine.IndexTask(ctx, task))
	})

	t.Run("missing id", func(t *testing.T) {
		env := newTestEnv(t)
		assert.False(t, env.engine.IndexTask(ctx, &core.Task{Topic: "Алгебра", StatementText: "x"}))
		assert.False(t, env.engine.IndexTask(ctx, nil))
	})

	t.Run("unavailable engine", func(t *testing.T) {
		engine, err := NewEngine(Unavailable(nil), mock.NewMockEmbedder())
		require.NoError(t, err)
		assert.False(t, engine.IndexTask(ctx, task))
	})
}

func TestSearch_TopicAndDifficultyFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}

	results := env.engine.Search(ctx, Query{
		Text:       "квадратное уравнение",
		Topic:      "Алгебра",
		Difficulty: &index.Range{Min: 3, Max: 3},
	})

	require.NotEmpty(t, results)
	ids := resultIDs(results)
	assert.ElementsMatch(t, []core.ID{1, 2}, ids)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].CombinedScore, results[i].CombinedScore)
	}

	// The only difficulty-3 task mentioning both words ranks first.
	assert.Equal(t, core.ID(1), results[0].TaskID)
	assert.Greater(t, results[0].BM25Score, 0.0)
}

func TestSearch_WrongTopicFindsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}

	results := env.engine.Search(ctx, Query{Text: "квадратное уравнение", Topic: "Геометрия"})
	assert.Empty(t, results)
}

func TestSearch_InvertedRangeMeansNoFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}

	results := env.engine.Search(ctx, Query{
		Text:       "уравнение",
		Topic:      "Алгебра",
		Difficulty: &index.Range{Min: 5, Max: 1},
	})
	assert.ElementsMatch(t, []core.ID{1, 2, 3}, resultIDs(results))
}

func TestSearch_Limit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}

	results := env.engine.Search(ctx, Query{Text: "уравнение", Limit: 2})
	assert.Len(t, results, 2)
}

func TestSearch_Unavailable(t *testing.T) {
	engine, err := NewEngine(Unavailable(errors.New("vector store unreachable")), mock.NewMockEmbedder())
	require.NoError(t, err)

	monitor := newRecordingMonitor()
	results := engine.SearchWithMonitor(context.Background(), Query{Text: "уравнение"}, monitor)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	require.Len(t, monitor.started, 1)
	assert.Equal(t, DefaultLimit, monitor.started[0].Limit)

	_, err = engine.CollectionInfo(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSearch_BothBranchesFailing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}

	env.vector.SetError(errors.New("vector down"))
	env.lexical.SetError(errors.New("lexical down"))

	monitor := newRecordingMonitor()
	results := env.engine.SearchWithMonitor(ctx, Query{Text: "уравнение"}, monitor)
	assert.Empty(t, results)
	assert.Contains(t, monitor.failedBranch, BranchVector)
	assert.Contains(t, monitor.failedBranch, BranchLexical)
}

func TestSearch_LexicalFailureKeepsVectorResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}
	env.lexical.SetError(errors.New("lexical down"))

	results := env.engine.Search(ctx, Query{Text: "уравнение"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Zero(t, r.BM25Score)
		assert.InDelta(t, VectorWeight*r.VectorScore, r.CombinedScore, 1e-12)
	}
}

func TestSearch_EmbeddingFailureKeepsLexicalResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}
	env.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model not loaded")
	}

	monitor := newRecordingMonitor()
	results := env.engine.SearchWithMonitor(ctx, Query{Text: "квадратное"}, monitor)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Zero(t, r.VectorScore)
	}
	assert.Contains(t, monitor.failedBranch, BranchVector)
	assert.NotContains(t, monitor.failedBranch, BranchLexical)
}

func TestSearch_BranchTimeout(t *testing.T) {
	env := newTestEnv(t, WithBranchTimeout(50*time.Millisecond))
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}
	env.vector.SetDelay(time.Second)

	monitor := newRecordingMonitor()
	start := time.Now()
	results := env.engine.SearchWithMonitor(ctx, Query{Text: "квадратное"}, monitor)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 900*time.Millisecond)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Zero(t, r.VectorScore)
	}
	assert.ErrorIs(t, monitor.failedBranch[BranchVector], context.DeadlineExceeded)
}

func TestSearch_BlankQuery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}
	calls := env.embedder.CallCount()

	results := env.engine.Search(ctx, Query{Text: "   ", Topic: "Алгебра"})
	assert.Equal(t, calls, env.embedder.CallCount())
	require.Len(t, results, 3)
	for _, r := range results {
		assert.InDelta(t, LexicalWeight/(1+MissingRank), r.CombinedScore, 1e-12)
	}
	assert.Equal(t, []core.ID{1, 2, 3}, resultIDs(results))
}

func TestSearchWithMonitor_Hooks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}

	monitor := newRecordingMonitor()
	results := env.engine.SearchWithMonitor(ctx, Query{Text: "квадратное уравнение", Limit: 5}, monitor)

	require.Len(t, monitor.started, 1)
	assert.Equal(t, "квадратное уравнение", monitor.started[0].Text)
	assert.Len(t, monitor.vectorHits, 3)
	assert.NotEmpty(t, monitor.lexicalHits)
	assert.Empty(t, monitor.failedBranch)
	assert.Equal(t, results, monitor.finished)
}

func TestCollectionInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, task := range algebraTasks() {
		require.True(t, env.engine.IndexTask(ctx, task))
	}

	info, err := env.engine.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Vector.RecordCount)
	assert.Equal(t, env.embedder.Dimension, info.Vector.Dimension)
	assert.Equal(t, 3, info.Lexical.DocumentCount)

	env.lexical.SetError(errors.New("lexical down"))
	_, err = env.engine.CollectionInfo(ctx)
	assert.Error(t, err)
}
