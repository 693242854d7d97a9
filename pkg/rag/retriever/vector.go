package retriever

import (
	"context"
	"fmt"
)

// VectorRetriever is the plain single-stage strategy: embed the query
// and take the nearest chunks under the configured distance threshold.
type VectorRetriever struct {
	deps Deps
}

func NewVectorRetriever(deps Deps) *VectorRetriever {
	return &VectorRetriever{deps: deps}
}

var _ Retriever = &VectorRetriever{}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, topK int) (*Result, error) {
	vector, err := r.deps.Gateway.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := r.deps.Chunks.SearchNearest(ctx, vector, topK, r.deps.Threshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	result := &Result{
		Documents: make([]string, len(scored)),
		Metadatas: make([]map[string]interface{}, len(scored)),
	}
	for i, s := range scored {
		result.Documents[i] = s.Chunk.Content
		result.Metadatas[i] = s.Chunk.Metadata
	}
	return result, nil
}
