package memory

import (
	"context"
	"testing"

	"ai-docchat-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisEmbedder maps known phrases to fixed unit vectors so cosine
// ranking in tests is exact.
type axisEmbedder struct {
	vectors map[string][]float32
}

func (a *axisEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if v, ok := a.vectors[text]; ok {
		return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: v}}, nil
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0, 0, 1}}}, nil
}

func testStore(vectors map[string][]float32) *Store {
	gateway := embedding.NewGateway(&axisEmbedder{vectors: vectors}, 3, nil)
	return NewStore(gateway)
}

func TestStoreSearchRanksByCosine(t *testing.T) {
	vectors := map[string][]float32{
		"topic: python\n":  {1, 0, 0},
		"topic: cooking\n": {0, 1, 0},
		"python question":  {0.9, 0.1, 0},
	}
	store := testStore(vectors)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "lang", map[string]interface{}{"topic": "python"}))
	require.NoError(t, store.Put(ctx, "s1", "food", map[string]interface{}{"topic": "cooking"}))

	facts, err := store.Search(ctx, "s1", "python question")
	require.NoError(t, err)
	require.Len(t, facts, 2)

	assert.Equal(t, "python", facts[0]["topic"], "closest fact must rank first")
	assert.Equal(t, "cooking", facts[1]["topic"])
}

func TestStoreSearchEmptyQuery(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "k", map[string]interface{}{"a": "b"}))

	facts, err := store.Search(ctx, "s1", "   ")
	require.NoError(t, err)
	assert.Empty(t, facts, "listing without a query is not supported")
}

func TestStoreSearchLimitsToFive(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		require.NoError(t, store.Put(ctx, "s1", key, map[string]interface{}{"k": key}))
	}

	facts, err := store.Search(ctx, "s1", "anything")
	require.NoError(t, err)
	assert.Len(t, facts, 5)
}

func TestStoreNamespaceIsolation(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "k", map[string]interface{}{"owner": "s1"}))

	facts, err := store.Search(ctx, "s2", "anything")
	require.NoError(t, err)
	assert.Empty(t, facts, "facts must not leak across sessions")
}

func TestStorePutReplacesByKey(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "prefs", map[string]interface{}{"v": 1}))
	require.NoError(t, store.Put(ctx, "s1", "prefs", map[string]interface{}{"v": 2}))

	facts, err := store.Search(ctx, "s1", "anything")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, 2, facts[0]["v"])
}

func TestStoreClear(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "k", map[string]interface{}{"a": "b"}))
	store.Clear("s1")

	facts, err := store.Search(ctx, "s1", "anything")
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStoreHas(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	assert.False(t, store.Has("s1"), "fresh session has no facts")

	require.NoError(t, store.Put(ctx, "s1", "k", map[string]interface{}{"a": "b"}))
	assert.True(t, store.Has("s1"))
	assert.False(t, store.Has("s2"))

	store.Clear("s1")
	assert.False(t, store.Has("s1"))
}

func TestStoreClearAll(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "k", map[string]interface{}{"a": "b"}))
	require.NoError(t, store.Put(ctx, "s2", "k", map[string]interface{}{"c": "d"}))

	store.ClearAll()

	assert.False(t, store.Has("s1"))
	assert.False(t, store.Has("s2"))
}
