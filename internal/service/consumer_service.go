package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/events"
	"ai-docchat-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the embed-document topic: it splits the
// document, embeds the chunks through the gateway's worker pool and
// swaps the stored chunks inside one transaction.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	gateway        *embedding.Gateway
	eventPublisher EventPublisher
	chunkSize      int
	chunkOverlap   int
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	gateway *embedding.Gateway,
	eventPublisher EventPublisher,
	chunkSize int,
	chunkOverlap int,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		gateway:        gateway,
		eventPublisher: eventPublisher,
		chunkSize:      chunkSize,
		chunkOverlap:   chunkOverlap,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads must not loop forever
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("consumer", "failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		msg.Nack() // retriable
		return
	}
	if document == nil {
		// Deleted between publish and consume
		msg.Ack()
		return
	}

	texts := utils.SplitText(payload.Content, cs.chunkSize, cs.chunkOverlap)
	vectors := cs.gateway.EmbedBatch(ctx, texts)

	chunks := make([]*entity.DocumentChunk, len(texts))
	for i, text := range texts {
		chunks[i] = &entity.DocumentChunk{
			Id:             uuid.New(),
			DocumentId:     document.Id,
			Content:        text,
			EmbeddingValue: vectors[i],
			ChunkIndex:     i,
			Metadata: map[string]interface{}{
				"filename":    document.Filename,
				"chunk_index": i,
				"page":        0,
				"source":      document.SourcePath,
			},
			CreatedAt: time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("consumer", "failed to begin transaction", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	// Re-ingestion replaces prior chunks wholesale
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		uow.Rollback()
		cs.logger.Error("consumer", "failed to clear old chunks", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		uow.Rollback()
		cs.logger.Error("consumer", "failed to store chunks", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	document.ChunkCount = len(chunks)
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		uow.Rollback()
		cs.logger.Error("consumer", "failed to update chunk count", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		cs.logger.Error("consumer", "failed to commit chunks", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("consumer", "document embedded", map[string]interface{}{
		"document_id": document.Id.String(),
		"filename":    document.Filename,
		"chunks":      len(chunks),
	})

	if cs.eventPublisher != nil {
		evt := events.DocumentIngested(document.Id.String(), document.Filename, len(chunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("consumer", "failed to publish DOCUMENT_INGESTED event", map[string]interface{}{
				"document_id": document.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	msg.Ack()
}
