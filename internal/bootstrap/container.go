package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/implementation"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/embedding/jina"
	"ai-docchat-be/pkg/llm/factory"
	"ai-docchat-be/pkg/memory"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/rag/history"
	"ai-docchat-be/pkg/rag/response"
	"ai-docchat-be/pkg/rag/retriever"
	"ai-docchat-be/pkg/rerank"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController  controller.ISessionController
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	}

	// Redis-backed embedding cache (best effort; gateway works without it)
	gatewayOpts := []embedding.GatewayOption{
		embedding.WithWorkers(cfg.Ai.EmbedWorkers),
	}
	if rdb, err := embedding.NewRedisClient(cfg.App.RedisURL); err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v (embedding cache disabled)", err)
	} else if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (embedding cache disabled)", err)
	} else {
		gatewayOpts = append(gatewayOpts, embedding.WithCache(embedding.NewRedisVectorCache(rdb, 24*time.Hour)))
	}

	gateway := embedding.NewGateway(embeddingProvider, cfg.Ai.EmbeddingDim, sysLogger, gatewayOpts...)

	// 4. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Reranker Registry
	rerankers := rerank.NewRegistry(func(model string) (rerank.Scorer, error) {
		return rerank.NewHTTPScorer(cfg.Rag.RerankerBaseURL, model), nil
	})

	// 6. NATS Event Publisher (auxiliary)
	var eventPublisher service.EventPublisher
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	// 7. Conversation + Semantic Memory
	turnStore := service.NewTurnStore(uowFactory)
	histories := history.NewManager(turnStore, cfg.Rag.MemoryTurns)
	memories := memory.NewStore(gateway)

	// 8. RAG Pipeline
	chunkRepo := implementation.NewDocumentChunkRepository(db)
	retrieverDeps := retriever.Deps{
		Gateway:         gateway,
		Chunks:          chunkRepo,
		Rerankers:       rerankers,
		Logger:          sysLogger,
		Threshold:       cfg.Rag.SimilarityThreshold,
		RerankerModel:   cfg.Rag.RerankerModel,
		Stage1K:         cfg.Rag.Stage1K,
		Stage1Threshold: cfg.Rag.Stage1Threshold,
	}
	generator := response.NewGenerator(llmProvider, memories, sysLogger)

	// 9. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IngestedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestedTopic,
		uowFactory,
		gateway,
		eventPublisher,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
		sysLogger,
	)

	sessionService := service.NewSessionService(uowFactory, histories, memories, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		histories,
		memories,
		generator,
		retrieverDeps,
		cfg.Rag.TopK,
		cfg.Rag.RerankEnabled,
		eventPublisher,
		sysLogger,
	)
	ingestionService := service.NewIngestionService(uowFactory, publisherService, cfg.App.DataFolder, sysLogger)

	// 10. Controllers
	return &Container{
		SessionController:  controller.NewSessionController(sessionService),
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(ingestionService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
