package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	DataFolder         string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "jina"
	EmbeddingModel    string
	EmbeddingDim      int
	EmbedWorkers      int
	OllamaBaseURL     string
	LLMProvider       string // "ollama"
	LLMModel          string
}

type RagConfig struct {
	TopK                int
	SimilarityThreshold float64 // cosine distance cutoff, lower distance = more similar
	ChunkSize           int
	ChunkOverlap        int
	MemoryTurns         int

	// Two-stage reranking
	RerankEnabled   bool
	RerankerModel   string
	RerankerBaseURL string
	Stage1K         int
	Stage1Threshold float64 // permissive by default so the reranker governs relevance
}

type APIKeys struct {
	Jina          string
	IngestedTopic string // internal embedding topic
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			DataFolder:         getEnv("DATA_FOLDER", "./data"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDim:      getEnvAsInt("EMBEDDING_DIM", 768),
			EmbedWorkers:      getEnvAsInt("EMBED_WORKERS", 15),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Rag: RagConfig{
			TopK:                getEnvAsInt("TOP_K_RESULTS", 5),
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.7),
			ChunkSize:           getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:        getEnvAsInt("CHUNK_OVERLAP", 200),
			MemoryTurns:         getEnvAsInt("MAX_MEMORY_TURNS", 5),
			RerankEnabled:       getEnvAsBool("CROSS_ENCODER_ENABLED", false),
			RerankerModel:       getEnv("RERANKER_MODEL", "cross-encoder/ms-marco-MiniLM-L-6-v2"),
			RerankerBaseURL:     getEnv("RERANKER_BASE_URL", "http://localhost:8787"),
			Stage1K:             getEnvAsInt("TOP_K_STAGE1", 50),
			Stage1Threshold:     getEnvAsFloat("STAGE1_DISTANCE_THRESHOLD", 1000.0),
		},
		Keys: APIKeys{
			Jina:          getEnv("JINA_API_KEY", ""),
			IngestedTopic: getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT_CHUNKS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
