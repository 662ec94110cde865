package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-rag/backend/internal/vector"
)

func TestIndex_SearchRanksByCosineSimilarity(t *testing.T) {
	idx := NewIndex()

	err := idx.Upsert(context.Background(), []vector.Record{
		{ID: "a", Embedding: []float32{1, 0}, Text: "Skógafoss waterfall"},
		{ID: "b", Embedding: []float32{0, 1}, Text: "Gullfoss waterfall"},
		{ID: "c", Embedding: []float32{0.9, 0.1}, Text: "Seljalandsfoss waterfall"},
	})
	require.NoError(t, err)

	results, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
}

func TestIndex_SearchEmptyIndex(t *testing.T) {
	idx := NewIndex()

	results, err := idx.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_SkipsRecordsWithoutText(t *testing.T) {
	idx := NewIndex()

	err := idx.Upsert(context.Background(), []vector.Record{
		{ID: "a", Embedding: []float32{1, 0}, Text: ""},
		{ID: "b", Embedding: []float32{1, 0}, Text: "Gullfoss waterfall"},
	})
	require.NoError(t, err)

	results, err := idx.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestIndex_UpsertOverwritesExistingID(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	id := vector.RecordID("iceland", "waterfalls.csv", 0)
	require.NoError(t, idx.Upsert(ctx, []vector.Record{
		{ID: id, Embedding: []float32{1, 0}, Text: "old text"},
	}))
	require.NoError(t, idx.Upsert(ctx, []vector.Record{
		{ID: id, Embedding: []float32{1, 0}, Text: "new text"},
	}))

	assert.Equal(t, 1, idx.Len())

	results, err := idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, "new text", results[0].Text)
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "iceland_hotels.csv_chunk_3", vector.RecordID("iceland", "hotels.csv", 3))
}
