package history

import (
	"context"
	"fmt"
	"time"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TurnStore is the durable side of conversation history. The gorm
// chat message repository satisfies it through a thin adapter.
type TurnStore interface {
	SaveTurn(ctx context.Context, sessionId uuid.UUID, role, content string) error
	RecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]llm.Message, error)
}

// Manager keeps one rolling Window per session. Windows live in an
// in-process cache; on a cold start (restart, eviction) the window is
// reseeded from the durable store so history survives the process.
type Manager struct {
	windows *cache.Cache
	store   TurnStore
	turns   int
}

func NewManager(store TurnStore, turns int) *Manager {
	// Windows idle for an hour get purged; the durable store reseeds them
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &Manager{
		windows: c,
		store:   store,
		turns:   turns,
	}
}

func (m *Manager) window(ctx context.Context, sessionId uuid.UUID) (*Window, error) {
	key := sessionId.String()
	if x, found := m.windows.Get(key); found {
		return x.(*Window), nil
	}

	w := NewWindow(m.turns)
	if m.store != nil {
		seeded, err := m.store.RecentTurns(ctx, sessionId, w.Capacity())
		if err != nil {
			return nil, fmt.Errorf("seed history window: %w", err)
		}
		for _, msg := range seeded {
			w.Push(msg)
		}
	}

	m.windows.Set(key, w, cache.DefaultExpiration)
	return w, nil
}

// Append persists a turn and pushes it onto the session's window.
func (m *Manager) Append(ctx context.Context, sessionId uuid.UUID, role, content string) error {
	if role != constant.ChatMessageRoleUser && role != constant.ChatMessageRoleAssistant {
		return fmt.Errorf("unknown chat role %q", role)
	}

	w, err := m.window(ctx, sessionId)
	if err != nil {
		return err
	}

	if m.store != nil {
		if err := m.store.SaveTurn(ctx, sessionId, role, content); err != nil {
			return fmt.Errorf("persist turn: %w", err)
		}
	}

	w.Push(llm.Message{Role: role, Content: content})
	m.windows.Set(sessionId.String(), w, cache.DefaultExpiration)
	return nil
}

// History returns a copy of the session's current window, oldest first.
func (m *Manager) History(ctx context.Context, sessionId uuid.UUID) ([]llm.Message, error) {
	w, err := m.window(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return w.Messages(), nil
}

// Forget drops the in-process window for a session. Used when the
// session itself is deleted.
func (m *Manager) Forget(sessionId uuid.UUID) {
	m.windows.Delete(sessionId.String())
}

// ForgetAll drops every in-process window. Used when all sessions are
// wiped at once.
func (m *Manager) ForgetAll() {
	m.windows.Flush()
}
