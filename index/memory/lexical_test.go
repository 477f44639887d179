package memory

import (
	"context"
	"testing"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLexical(t *testing.T) *LexicalIndex {
	t.Helper()
	ctx := context.Background()
	l := NewLexicalIndex()
	docs := []index.Document{
		{ID: 1, Text: "решите квадратное уравнение x^2 - 7x + 12 = 0", Topic: "Алгебра", Difficulty: 3},
		{ID: 2, Text: "найдите корни уравнения 2x + 3 = 7", Topic: "Алгебра", Difficulty: 3},
		{ID: 3, Text: "квадратное уравнение с параметром a", Topic: "Алгебра", Difficulty: 4},
		{ID: 4, Text: "найдите площадь треугольника", Topic: "Геометрия", Difficulty: 3},
	}
	for _, d := range docs {
		require.NoError(t, l.AddDocument(ctx, d))
	}
	return l
}

func TestLexicalIndex_Search(t *testing.T) {
	l := seedLexical(t)

	hits, err := l.Search(context.Background(), "квадратное уравнение", index.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.True(t, h.Ranked)
		assert.Greater(t, h.Rank, 0.0)
	}
	assert.LessOrEqual(t, hits[0].Rank, hits[1].Rank)
	assert.ElementsMatch(t, []core.ID{1, 3}, []core.ID{hits[0].ID, hits[1].ID})
}

func TestLexicalIndex_Filter(t *testing.T) {
	l := seedLexical(t)

	hits, err := l.Search(context.Background(), "квадратное уравнение", index.NewFilter("Алгебра", &index.Range{Min: 3, Max: 3}), 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, core.ID(1), hits[0].ID)
}

func TestLexicalIndex_EmptyQueryListsUnranked(t *testing.T) {
	l := seedLexical(t)

	hits, err := l.Search(context.Background(), "  ", index.NewFilter("Алгебра", nil), 2)
	require.NoError(t, err)
	assert.Equal(t, []index.LexicalHit{{ID: 1}, {ID: 2}}, hits)
}

func TestLexicalIndex_ReplaceAndStats(t *testing.T) {
	ctx := context.Background()
	l := seedLexical(t)

	require.NoError(t, l.AddDocument(ctx, index.Document{ID: 4, Text: "новый текст", Topic: "Геометрия", Difficulty: 2}))

	stats, err := l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.DocumentCount)

	doc, ok := l.Document(4)
	require.True(t, ok)
	assert.Equal(t, "новый текст", doc.Text)
}
