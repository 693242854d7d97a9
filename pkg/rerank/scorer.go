package rerank

import "context"

// Scorer scores (query, text) relevance with a cross-encoder. Higher is
// more relevant. Implementations must be safe for concurrent use once
// constructed.
type Scorer interface {
	// Score returns one relevance score per text, in input order.
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
	ModelName() string
}
