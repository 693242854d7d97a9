package service

import (
	"context"
	"fmt"
	"time"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/memory"
	"ai-docchat-be/pkg/rag/history"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAll(ctx context.Context) ([]*dto.SessionSummaryResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.SessionDetailResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	histories  *history.Manager
	memories   *memory.Store
	logger     logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	histories *history.Manager,
	memories *memory.Store,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		histories:  histories,
		memories:   memories,
		logger:     log,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("Chat Session %s", time.Now().UTC().Format("2006-01-02 15:04"))
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	// Seed the visible history with a greeting. Assembly drops a leading
	// assistant turn, so this never reaches the model out of order.
	if err := s.histories.Append(ctx, session.Id, constant.ChatMessageRoleAssistant, constant.SessionGreeting); err != nil {
		s.logger.Warn("session", "failed to seed greeting", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}

	s.logger.Info("session", "session created", map[string]interface{}{
		"session_id": session.Id.String(),
	})

	return &dto.CreateSessionResponse{
		Id:        session.Id,
		Name:      session.Name,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (s *sessionService) GetAll(ctx context.Context) ([]*dto.SessionSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SessionSummaryResponse, len(sessions))
	for i, session := range sessions {
		result[i] = &dto.SessionSummaryResponse{
			Id:        session.Id,
			Name:      session.Name,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return result, nil
}

func (s *sessionService) Show(ctx context.Context, id uuid.UUID) (*dto.SessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	detail := &dto.SessionDetailResponse{
		Id:        session.Id,
		Name:      session.Name,
		CreatedAt: session.CreatedAt,
		Messages:  make([]dto.MessageResponse, len(messages)),
	}
	for i, msg := range messages {
		detail.Messages[i] = dto.MessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
	}
	return detail, nil
}

func (s *sessionService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if session == nil {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.histories.Forget(id)
	s.memories.Clear(id.String())
	return nil
}

func (s *sessionService) DeleteAll(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteAllUnscoped(ctx); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ChatSessionRepository().DeleteAllUnscoped(ctx); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.histories.ForgetAll()
	s.memories.ClearAll()
	return nil
}
