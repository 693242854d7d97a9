package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	mu      sync.Mutex
	calls   int
	failOn  map[string]bool
	byInput map[string][]float32
}

func (p *scriptedProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.failOn[text] {
		return nil, errors.New("provider unavailable")
	}
	if v, ok := p.byInput[text]; ok {
		return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: v}}, nil
	}
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: []float32{1, 2, 3}}}, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]float32
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]float32)}
}

func (c *mapCache) Get(ctx context.Context, text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[text]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[text] = vector
}

func TestEmbedOneEmptyTextShortCircuits(t *testing.T) {
	provider := &scriptedProvider{}
	g := NewGateway(provider, 4, nil)

	vector, err := g.EmbedOne(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, vector)
	assert.Equal(t, 0, provider.calls, "provider must not be called for blank input")
}

func TestEmbedOnePropagatesError(t *testing.T) {
	provider := &scriptedProvider{failOn: map[string]bool{"boom": true}}
	g := NewGateway(provider, 4, nil)

	_, err := g.EmbedOne(context.Background(), "boom")
	assert.Error(t, err)
}

func TestEmbedOneUsesCache(t *testing.T) {
	provider := &scriptedProvider{}
	cache := newMapCache()
	g := NewGateway(provider, 3, nil, WithCache(cache))

	first, err := g.EmbedOne(context.Background(), "hello")
	require.NoError(t, err)

	second, err := g.EmbedOne(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second call must come from cache")
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	byInput := make(map[string][]float32)
	texts := make([]string, 40)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
		byInput[texts[i]] = []float32{float32(i)}
	}

	g := NewGateway(&scriptedProvider{byInput: byInput}, 1, nil, WithWorkers(8))

	results := g.EmbedBatch(context.Background(), texts)
	require.Len(t, results, 40)
	for i, vector := range results {
		assert.Equal(t, []float32{float32(i)}, vector, "result %d out of order", i)
	}
}

func TestEmbedBatchFailedItemYieldsZeroVector(t *testing.T) {
	provider := &scriptedProvider{
		failOn:  map[string]bool{"bad": true},
		byInput: map[string][]float32{"good": {9, 9}},
	}
	g := NewGateway(provider, 2, nil)

	results := g.EmbedBatch(context.Background(), []string{"good", "bad", "good"})
	require.Len(t, results, 3)

	assert.Equal(t, []float32{9, 9}, results[0])
	assert.Equal(t, []float32{0, 0}, results[1], "failed item becomes a zero vector")
	assert.Equal(t, []float32{9, 9}, results[2])
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	g := NewGateway(&scriptedProvider{}, 2, nil)
	results := g.EmbedBatch(context.Background(), nil)
	assert.Empty(t, results)
}
