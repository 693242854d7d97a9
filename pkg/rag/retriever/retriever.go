package retriever

import (
	"context"

	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/rerank"

	"ai-docchat-be/internal/pkg/logger"
)

// RerankAudit records where a chunk sat before and after reranking.
// Ranks are 1-based.
type RerankAudit struct {
	InitialRank int     `json:"initial_rank"`
	FinalRank   int     `json:"final_rank"`
	Score       float64 `json:"score"`
	Filename    string  `json:"filename"`
	Page        int     `json:"page"`
}

// Result is the output of a retrieval pass. Documents[i] pairs with
// Metadatas[i]. Audit is nil unless a reranking strategy produced it.
type Result struct {
	Documents []string
	Metadatas []map[string]interface{}
	Audit     []RerankAudit
}

// Retriever selects the evidence passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) (*Result, error)
}

// Deps bundles the collaborators a retrieval strategy needs.
type Deps struct {
	Gateway         *embedding.Gateway
	Chunks          contract.DocumentChunkRepository
	Rerankers       *rerank.Registry
	Logger          logger.ILogger
	Threshold       float64 // similarity threshold for the single-stage path
	RerankerModel   string
	Stage1K         int     // candidate pool size for reranking
	Stage1Threshold float64 // permissive distance cutoff for stage 1
}
