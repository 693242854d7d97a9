package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/implementation"
	"ai-docchat-be/pkg/database"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/rag/retriever"
	"ai-docchat-be/pkg/rerank"

	"github.com/fatih/color"
)

// Retrieval diagnostic: runs a set of queries against the live chunk
// store with and without reranking and prints where each threshold
// lands. Usage: go run ./cmd/debug ["query ..."]
func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	sysLogger := logger.NewIsolatedLogger("logs/diagnostic.log")

	embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	gateway := embedding.NewGateway(embeddingProvider, cfg.Ai.EmbeddingDim, sysLogger)

	chunkRepo := implementation.NewDocumentChunkRepository(db)
	rerankers := rerank.NewRegistry(func(model string) (rerank.Scorer, error) {
		return rerank.NewHTTPScorer(cfg.Rag.RerankerBaseURL, model), nil
	})

	deps := retriever.Deps{
		Gateway:         gateway,
		Chunks:          chunkRepo,
		Rerankers:       rerankers,
		Logger:          sysLogger,
		Threshold:       cfg.Rag.SimilarityThreshold,
		RerankerModel:   cfg.Rag.RerankerModel,
		Stage1K:         cfg.Rag.Stage1K,
		Stage1Threshold: cfg.Rag.Stage1Threshold,
	}

	queries := []string{
		"What is the refund policy?",
		"shipping time estimate",
		"how do I reset my password",
	}
	if len(os.Args) > 1 {
		queries = os.Args[1:]
	}

	ctx := context.Background()

	color.Cyan("RETRIEVAL DIAGNOSTIC")
	color.Cyan(strings.Repeat("=", 70))
	fmt.Printf("Distance threshold: %.2f | TopK: %d | Stage1K: %d\n\n",
		cfg.Rag.SimilarityThreshold, cfg.Rag.TopK, cfg.Rag.Stage1K)

	for _, query := range queries {
		color.Yellow("\nQuery: %q", query)

		// Single-stage vector pass
		vec := retriever.NewVectorRetriever(deps)
		result, err := vec.Retrieve(ctx, query, cfg.Rag.TopK)
		if err != nil {
			color.Red("  vector retrieve failed: %v", err)
			continue
		}
		color.Green("  vector: %d passages", len(result.Documents))
		printPassages(result)

		// Two-stage rerank pass
		rr := retriever.NewRerankRetriever(deps)
		reranked, err := rr.Retrieve(ctx, query, cfg.Rag.TopK)
		if err != nil {
			color.Red("  rerank retrieve failed: %v", err)
			continue
		}
		color.Green("  rerank: %d passages", len(reranked.Documents))
		for _, a := range reranked.Audit {
			fmt.Printf("    #%d (was #%d) score=%.4f  %s p.%d\n",
				a.FinalRank, a.InitialRank, a.Score, a.Filename, a.Page)
		}
	}
}

func printPassages(result *retriever.Result) {
	for i, doc := range result.Documents {
		preview := doc
		if len(preview) > 70 {
			preview = preview[:70] + "..."
		}
		filename := "?"
		if i < len(result.Metadatas) {
			if f, ok := result.Metadatas[i]["filename"].(string); ok {
				filename = f
			}
		}
		fmt.Printf("    %d. [%s] %s\n", i+1, filename, strings.ReplaceAll(preview, "\n", " "))
	}
}
