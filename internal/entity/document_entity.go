package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID
	Filename   string
	SourcePath string
	FileHash   string
	ChunkCount int
	IngestedAt time.Time
	UpdatedAt  *time.Time
}
