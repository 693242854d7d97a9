package retriever

import (
	"context"
	"fmt"
	"sort"
)

// RerankRetriever is the two-stage strategy: a wide, permissive vector
// pass pulls a candidate pool, then a cross-encoder rescoring pass picks
// the final topK. The permissive stage-1 cutoff lets the cross-encoder
// see candidates the embedding distance alone would have discarded.
type RerankRetriever struct {
	deps Deps
}

func NewRerankRetriever(deps Deps) *RerankRetriever {
	return &RerankRetriever{deps: deps}
}

var _ Retriever = &RerankRetriever{}

func (r *RerankRetriever) Retrieve(ctx context.Context, query string, topK int) (*Result, error) {
	vector, err := r.deps.Gateway.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	stage1K := r.deps.Stage1K
	if stage1K <= 0 {
		stage1K = 50
	}

	candidates, err := r.deps.Chunks.SearchNearest(ctx, vector, stage1K, r.deps.Stage1Threshold)
	if err != nil {
		return nil, fmt.Errorf("stage 1 search: %w", err)
	}

	if len(candidates) == 0 {
		// Nothing to rescore, the reranker is never touched
		return &Result{Documents: []string{}, Metadatas: []map[string]interface{}{}}, nil
	}

	scorer, err := r.deps.Rerankers.Get(r.deps.RerankerModel)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Chunk.Content
	}

	scores, err := scorer.Score(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank scoring: %w", err)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	// Stable descending by score; ties keep stage-1 order
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}

	result := &Result{
		Documents: make([]string, topK),
		Metadatas: make([]map[string]interface{}, topK),
		Audit:     make([]RerankAudit, topK),
	}

	for finalIdx := 0; finalIdx < topK; finalIdx++ {
		initialIdx := order[finalIdx]
		chunk := candidates[initialIdx].Chunk
		result.Documents[finalIdx] = chunk.Content
		result.Metadatas[finalIdx] = chunk.Metadata
		result.Audit[finalIdx] = RerankAudit{
			InitialRank: initialIdx + 1,
			FinalRank:   finalIdx + 1,
			Score:       scores[initialIdx],
			Filename:    metaString(chunk.Metadata, "filename"),
			Page:        metaInt(chunk.Metadata, "page"),
		}
	}

	if r.deps.Logger != nil {
		r.deps.Logger.Debug("retriever", "rerank pass complete", map[string]interface{}{
			"model":      scorer.ModelName(),
			"candidates": len(candidates),
			"returned":   topK,
		})
	}

	return result, nil
}

func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]interface{}, key string) int {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
