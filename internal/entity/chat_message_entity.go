package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	Role          string
	Content       string
	ChatSessionId uuid.UUID
	CreatedAt     time.Time
}
