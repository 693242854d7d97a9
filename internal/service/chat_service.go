package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/events"
	"ai-docchat-be/pkg/memory"
	"ai-docchat-be/pkg/rag/history"
	"ai-docchat-be/pkg/rag/response"
	"ai-docchat-be/pkg/rag/retriever"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// EventPublisher is the outbound event bus. Nil-able: eventing is
// auxiliary and must never fail a chat request.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IChatService interface {
	Send(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	histories      *history.Manager
	memories       *memory.Store
	generator      *response.Generator
	retrieverDeps  retriever.Deps
	topK           int
	defaultRerank  bool
	eventPublisher EventPublisher
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	histories *history.Manager,
	memories *memory.Store,
	generator *response.Generator,
	retrieverDeps retriever.Deps,
	topK int,
	defaultRerank bool,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		histories:      histories,
		memories:       memories,
		generator:      generator,
		retrieverDeps:  retrieverDeps,
		topK:           topK,
		defaultRerank:  defaultRerank,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *chatService) Send(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	// Snapshot history before this turn lands in the window. The window may
	// already hold the seeded greeting, so "first message" means no prior
	// user turn, not an empty window.
	rawHistory, err := s.histories.History(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}
	hasPriorUserTurn := false
	for _, msg := range rawHistory {
		if msg.Role == constant.ChatMessageRoleUser {
			hasPriorUserTurn = true
			break
		}
	}

	if err := s.histories.Append(ctx, req.SessionId, constant.ChatMessageRoleUser, req.Message); err != nil {
		return nil, fmt.Errorf("record user turn: %w", err)
	}

	if !hasPriorUserTurn {
		s.nameSessionFromMessage(ctx, session.Id, req.Message)
	}
	if !s.memories.Has(session.Id.String()) {
		s.seedSessionMemory(ctx, session.Id)
	}

	var (
		docContext string
		sources    []string
		audit      []retriever.RerankAudit
	)

	if req.UseKnowledgeBase {
		strategy := retriever.NewRetriever(s.retrieverDeps, s.defaultRerank, req.UseReranker)
		result, err := strategy.Retrieve(ctx, req.Message, s.topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve context: %w", err)
		}

		formatted := retriever.BuildContext(result.Documents, result.Metadatas)
		docContext = formatted.Text
		sources = formatted.Sources
		audit = result.Audit
	}

	answer, err := s.generator.Generate(ctx, req.SessionId.String(), req.Message, docContext, rawHistory, req.UseKnowledgeBase)
	if err != nil {
		return nil, err
	}

	if err := s.histories.Append(ctx, req.SessionId, constant.ChatMessageRoleAssistant, answer); err != nil {
		return nil, fmt.Errorf("record assistant turn: %w", err)
	}

	if s.eventPublisher != nil {
		evt := events.ChatCompleted(req.SessionId.String(), req.UseKnowledgeBase, len(sources))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("chat", "failed to publish CHAT_COMPLETED event", map[string]interface{}{
				"session_id": req.SessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	now := time.Now()
	if sources == nil {
		sources = []string{}
	}

	return &dto.SendChatResponse{
		SessionId: req.SessionId,
		UserMessage: &dto.MessageResponse{
			Id:        uuid.New(),
			Role:      constant.ChatMessageRoleUser,
			Content:   req.Message,
			CreatedAt: now,
		},
		AssistantMessage: &dto.MessageResponse{
			Id:        uuid.New(),
			Role:      constant.ChatMessageRoleAssistant,
			Content:   answer,
			CreatedAt: now,
		},
		Sources:     sources,
		RerankAudit: audit,
	}, nil
}

// nameSessionFromMessage gives a fresh session a descriptive name taken
// from its first user message.
func (s *chatService) nameSessionFromMessage(ctx context.Context, sessionId uuid.UUID, message string) {
	name := strings.TrimSpace(message)
	if name == "" {
		return
	}
	runes := []rune(name)
	if len(runes) > 50 {
		name = string(runes[:47]) + "..."
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil || session == nil {
		return
	}
	session.Name = name
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		s.logger.Warn("chat", "failed to auto-name session", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}

// seedSessionMemory installs the default preference fact on the first
// turn, so the generator has session rules to ground on.
func (s *chatService) seedSessionMemory(ctx context.Context, sessionId uuid.UUID) {
	err := s.memories.Put(ctx, sessionId.String(), "preferences", map[string]interface{}{
		"rules": []string{
			"User likes short, direct language",
			"User only speaks English & Python",
		},
	})
	if err != nil {
		s.logger.Warn("chat", "failed to seed session memory", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}
