package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIngestionService interface {
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
	IngestFolder(ctx context.Context) (*dto.IngestFolderResponse, error)
	GetAll(ctx context.Context) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*dto.KnowledgeBaseStatsResponse, error)
}

type ingestionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	dataFolder       string
	logger           logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	dataFolder string,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		dataFolder:       dataFolder,
		logger:           log,
	}
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Ingest registers a document and queues it for chunking + embedding.
// Content is hashed so an unchanged document is skipped instead of
// re-embedded; a changed one replaces its prior chunks.
func (s *ingestionService) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hash := contentHash(req.Content)

	document, err := uow.DocumentRepository().FindByFilename(ctx, req.Filename)
	if err != nil {
		return nil, err
	}

	if document != nil && document.FileHash == hash {
		s.logger.Info("ingestion", "skipping unchanged document", map[string]interface{}{
			"filename": req.Filename,
		})
		return &dto.IngestResponse{
			DocumentId: document.Id,
			Filename:   document.Filename,
			Skipped:    true,
			ChunkCount: document.ChunkCount,
		}, nil
	}

	if document == nil {
		document = &entity.Document{
			Id:         uuid.New(),
			Filename:   req.Filename,
			SourcePath: req.SourcePath,
			FileHash:   hash,
			IngestedAt: time.Now(),
		}
		if err := uow.DocumentRepository().Create(ctx, document); err != nil {
			return nil, fmt.Errorf("create document: %w", err)
		}
	} else {
		document.FileHash = hash
		if req.SourcePath != "" {
			document.SourcePath = req.SourcePath
		}
		if err := uow.DocumentRepository().Update(ctx, document); err != nil {
			return nil, fmt.Errorf("update document: %w", err)
		}
	}

	payload := dto.PublishEmbedDocumentMessage{
		DocumentId: document.Id,
		Content:    req.Content,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
		return nil, fmt.Errorf("queue document for embedding: %w", err)
	}

	return &dto.IngestResponse{
		DocumentId: document.Id,
		Filename:   document.Filename,
		Skipped:    false,
		ChunkCount: document.ChunkCount,
	}, nil
}

// IngestFolder walks the configured data folder and ingests every
// supported file, skipping those whose content hash is unchanged.
func (s *ingestionService) IngestFolder(ctx context.Context) (*dto.IngestFolderResponse, error) {
	result := &dto.IngestFolderResponse{
		ProcessedFiles:   []string{},
		SkippedFilesList: []string{},
	}

	entries, err := os.ReadDir(s.dataFolder)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("ingestion", "data folder not found", map[string]interface{}{
				"path": s.dataFolder,
			})
			return result, nil
		}
		return nil, fmt.Errorf("read data folder: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(s.dataFolder, entry.Name()))
		if err != nil {
			s.logger.Error("ingestion", "failed to read file", map[string]interface{}{
				"filename": entry.Name(),
				"error":    err.Error(),
			})
			continue
		}

		resp, err := s.Ingest(ctx, &dto.IngestRequest{
			Filename:   entry.Name(),
			Content:    string(content),
			SourcePath: filepath.Join(s.dataFolder, entry.Name()),
		})
		if err != nil {
			return nil, err
		}

		result.TotalFiles++
		if resp.Skipped {
			result.SkippedFiles++
			result.SkippedFilesList = append(result.SkippedFilesList, entry.Name())
		} else {
			result.NewFilesProcessed++
			result.ProcessedFiles = append(result.ProcessedFiles, entry.Name())
		}
	}

	return result, nil
}

func (s *ingestionService) GetAll(ctx context.Context) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.DocumentResponse, len(documents))
	for i, doc := range documents {
		result[i] = &dto.DocumentResponse{
			Id:         doc.Id,
			Filename:   doc.Filename,
			ChunkCount: doc.ChunkCount,
			IngestedAt: doc.IngestedAt,
		}
	}
	return result, nil
}

func (s *ingestionService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (s *ingestionService) Stats(ctx context.Context) (*dto.KnowledgeBaseStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documentCount, err := uow.DocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	chunkCount, err := uow.DocumentChunkRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.KnowledgeBaseStatsResponse{
		DocumentCount: documentCount,
		ChunkCount:    chunkCount,
	}, nil
}
