package dto

import (
	"ai-docchat-be/pkg/rag/retriever"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	SessionId        uuid.UUID `json:"session_id" validate:"required"`
	Message          string    `json:"message" validate:"required"`
	UseKnowledgeBase bool      `json:"use_knowledge_base"`
	// UseReranker overrides the process-wide reranking default for this
	// call when set.
	UseReranker *bool `json:"use_reranker,omitempty"`
}

type SendChatResponse struct {
	SessionId        uuid.UUID               `json:"session_id"`
	UserMessage      *MessageResponse        `json:"user_message"`
	AssistantMessage *MessageResponse        `json:"assistant_message"`
	Sources          []string                `json:"sources"`
	RerankAudit      []retriever.RerankAudit `json:"rerank_audit,omitempty"`
}
