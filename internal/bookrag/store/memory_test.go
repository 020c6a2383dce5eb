package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCollection = "book_content"

func newTestStore(t *testing.T, dim int) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	err := s.EnsureCollection(context.Background(), &CollectionConfig{
		Name:      testCollection,
		Dimension: dim,
	})
	require.NoError(t, err)
	return s
}

func TestEnsureCollectionIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 3)

	_, err := s.Upsert(ctx, testCollection, []*Chunk{
		{ID: "c1", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	// Without Recreate the existing data survives.
	require.NoError(t, s.EnsureCollection(ctx, &CollectionConfig{Name: testCollection, Dimension: 3}))
	count, err := s.Count(ctx, testCollection)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Recreate wipes the collection.
	require.NoError(t, s.EnsureCollection(ctx, &CollectionConfig{Name: testCollection, Dimension: 3, Recreate: true}))
	count, err = s.Count(ctx, testCollection)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestUpsertOverwritesSameID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 3)

	_, err := s.Upsert(ctx, testCollection, []*Chunk{
		{ID: "c1", Text: "old", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	_, err = s.Upsert(ctx, testCollection, []*Chunk{
		{ID: "c1", Text: "new", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	count, err := s.Count(ctx, testCollection)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	results, err := s.Search(ctx, testCollection, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Text)
}

func TestSearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 3)

	_, err := s.Upsert(ctx, testCollection, []*Chunk{
		{ID: "exact", Embedding: []float32{1, 0, 0}},
		{ID: "close", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "orthogonal", Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, testCollection, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
	assert.Equal(t, "close", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestUpsertDimensionMismatchFailsBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 3)

	// First batch (100 chunks) is valid, second batch contains one bad
	// vector and must fail as a whole.
	chunks := make([]*Chunk, 0, 150)
	for i := 0; i < 150; i++ {
		emb := []float32{1, 0, 0}
		if i == 120 {
			emb = []float32{1, 0}
		}
		chunks = append(chunks, &Chunk{ID: fmt.Sprintf("c%03d", i), Embedding: emb})
	}

	written, err := s.Upsert(ctx, testCollection, chunks)
	require.Error(t, err)
	assert.Equal(t, UpsertBatchSize, written)

	count, err := s.Count(ctx, testCollection)
	require.NoError(t, err)
	assert.EqualValues(t, UpsertBatchSize, count)
}

func TestSearchMissingCollection(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Search(context.Background(), "nope", []float32{1}, 5)
	assert.Error(t, err)
}

func TestSearchTopKBounds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 2)

	_, err := s.Upsert(ctx, testCollection, []*Chunk{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, testCollection, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.Search(ctx, testCollection, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
