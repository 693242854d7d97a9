package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestRequest struct {
	Filename   string `json:"filename" validate:"required"`
	Content    string `json:"content" validate:"required"`
	SourcePath string `json:"source_path,omitempty"`
}

type IngestResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Skipped    bool      `json:"skipped"` // true when the content hash was unchanged
	ChunkCount int       `json:"chunk_count"`
}

type IngestFolderResponse struct {
	TotalFiles        int      `json:"total_files"`
	NewFilesProcessed int      `json:"new_files_processed"`
	SkippedFiles      int      `json:"skipped_files"`
	ProcessedFiles    []string `json:"processed_files"`
	SkippedFilesList  []string `json:"skipped_files_list"`
}

type DocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

type KnowledgeBaseStatsResponse struct {
	DocumentCount int64 `json:"document_count"`
	ChunkCount    int64 `json:"chunk_count"`
}

// PublishEmbedDocumentMessage is the internal pubsub payload that hands a
// stored document to the embedding consumer.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
}
