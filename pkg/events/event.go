package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// DocumentIngested is emitted after a document's chunks are embedded and stored.
func DocumentIngested(documentID, filename string, chunkCount int) Event {
	return BaseEvent{
		Type: "DOCUMENT_INGESTED",
		Data: map[string]interface{}{
			"document_id": documentID,
			"filename":    filename,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// ChatCompleted is emitted after an answer has been generated for a session.
func ChatCompleted(sessionID string, grounded bool, sourceCount int) Event {
	return BaseEvent{
		Type: "CHAT_COMPLETED",
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"grounded":     grounded,
			"source_count": sourceCount,
		},
		OccurredAt: time.Now(),
	}
}
