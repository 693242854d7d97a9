package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ai-docchat-be/internal/pkg/logger"
)

const defaultWorkers = 15

// Gateway fronts an EmbeddingProvider with batching, caching and
// failure isolation. Batch items that fail come back as zero vectors of
// the configured dimensionality so one bad chunk never sinks a whole
// ingestion run.
type Gateway struct {
	provider EmbeddingProvider
	cache    VectorCache // optional
	dim      int
	workers  int
	logger   logger.ILogger
}

type GatewayOption func(*Gateway)

func WithCache(cache VectorCache) GatewayOption {
	return func(g *Gateway) {
		g.cache = cache
	}
}

func WithWorkers(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.workers = n
		}
	}
}

func NewGateway(provider EmbeddingProvider, dim int, log logger.ILogger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		provider: provider,
		dim:      dim,
		workers:  defaultWorkers,
		logger:   log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EmbedOne embeds a single text. Unlike EmbedBatch it propagates provider
// errors, so callers on the query path can surface failures.
func (g *Gateway) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return g.zeroVector(), nil
	}

	if g.cache != nil {
		if vector, ok := g.cache.Get(ctx, text); ok {
			return vector, nil
		}
	}

	resp, err := g.provider.Generate(text, "search_query")
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}

	vector := resp.Embedding.Values
	if g.cache != nil {
		g.cache.Set(ctx, text, vector)
	}
	return vector, nil
}

// EmbedBatch embeds texts concurrently with a bounded worker pool.
// Output index i always corresponds to input index i regardless of
// completion order. Failed items yield a zero vector and a warning;
// the batch itself never errors.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results
	}

	type job struct {
		index int
		text  string
	}

	jobs := make(chan job)
	var wg sync.WaitGroup

	workers := g.workers
	if workers > len(texts) {
		workers = len(texts)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = g.embedOrZero(ctx, j.index, j.text)
			}
		}()
	}

	for i, text := range texts {
		jobs <- job{index: i, text: text}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (g *Gateway) embedOrZero(ctx context.Context, index int, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return g.zeroVector()
	}

	vector, err := g.EmbedOne(ctx, text)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("embedding", "batch item failed, using zero vector", map[string]interface{}{
				"index": index,
				"error": err.Error(),
			})
		}
		return g.zeroVector()
	}
	return vector
}

func (g *Gateway) zeroVector() []float32 {
	return make([]float32, g.dim)
}
