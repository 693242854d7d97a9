package service

import (
	"context"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/history"

	"github.com/google/uuid"
)

// gormTurnStore adapts the chat message repository to the history
// manager's durable store contract.
type gormTurnStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTurnStore(uowFactory unitofwork.RepositoryFactory) history.TurnStore {
	return &gormTurnStore{uowFactory: uowFactory}
}

func (s *gormTurnStore) SaveTurn(ctx context.Context, sessionId uuid.UUID, role, content string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          role,
		Content:       content,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	})
}

func (s *gormTurnStore) RecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]llm.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.ChatMessageRepository().FindRecent(ctx, sessionId, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, len(rows))
	for i, row := range rows {
		messages[i] = llm.Message{Role: row.Role, Content: row.Content}
	}
	return messages, nil
}
