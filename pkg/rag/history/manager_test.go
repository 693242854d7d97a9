package history

import (
	"context"
	"testing"

	"ai-docchat-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTurnStore struct {
	turns map[uuid.UUID][]llm.Message
}

func newFakeTurnStore() *fakeTurnStore {
	return &fakeTurnStore{turns: make(map[uuid.UUID][]llm.Message)}
}

func (f *fakeTurnStore) SaveTurn(ctx context.Context, sessionId uuid.UUID, role, content string) error {
	f.turns[sessionId] = append(f.turns[sessionId], llm.Message{Role: role, Content: content})
	return nil
}

func (f *fakeTurnStore) RecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]llm.Message, error) {
	all := f.turns[sessionId]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]llm.Message, len(all))
	copy(out, all)
	return out, nil
}

func TestManagerAppendAndHistory(t *testing.T) {
	store := newFakeTurnStore()
	m := NewManager(store, 5)
	sessionId := uuid.New()
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, sessionId, "user", "hello"))
	require.NoError(t, m.Append(ctx, sessionId, "assistant", "hi there"))

	history, err := m.History(ctx, sessionId)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "hi there", history[1].Content)

	// Turns also reached the durable store
	assert.Len(t, store.turns[sessionId], 2)
}

func TestManagerRejectsUnknownRole(t *testing.T) {
	m := NewManager(newFakeTurnStore(), 5)
	err := m.Append(context.Background(), uuid.New(), "system", "nope")
	assert.Error(t, err)
}

func TestManagerColdStartReseedsFromStore(t *testing.T) {
	store := newFakeTurnStore()
	sessionId := uuid.New()
	ctx := context.Background()

	// Simulate turns persisted by a previous process
	require.NoError(t, store.SaveTurn(ctx, sessionId, "user", "old question"))
	require.NoError(t, store.SaveTurn(ctx, sessionId, "assistant", "old answer"))

	m := NewManager(store, 5)
	history, err := m.History(ctx, sessionId)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "old question", history[0].Content)
}

func TestManagerForget(t *testing.T) {
	store := newFakeTurnStore()
	m := NewManager(store, 5)
	sessionId := uuid.New()
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, sessionId, "user", "hello"))
	m.Forget(sessionId)

	// The next access reseeds from the store, so nothing durable is lost
	history, err := m.History(ctx, sessionId)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestManagerWindowBoundsHistory(t *testing.T) {
	store := newFakeTurnStore()
	m := NewManager(store, 2) // window holds 4 messages
	sessionId := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Append(ctx, sessionId, "user", "q"))
		require.NoError(t, m.Append(ctx, sessionId, "assistant", "a"))
	}

	history, err := m.History(ctx, sessionId)
	require.NoError(t, err)
	assert.Len(t, history, 4, "window must cap at turns*2 messages")

	// The store keeps everything regardless of the window
	assert.Len(t, store.turns[sessionId], 6)
}

func TestManagerForgetAll(t *testing.T) {
	store := newFakeTurnStore()
	m := NewManager(store, 5)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	require.NoError(t, m.Append(ctx, a, "user", "from a"))
	require.NoError(t, m.Append(ctx, b, "user", "from b"))

	m.ForgetAll()

	// Durable turns survive; only the in-process windows were dropped
	historyA, err := m.History(ctx, a)
	require.NoError(t, err)
	assert.Len(t, historyA, 1)

	store.turns = map[uuid.UUID][]llm.Message{}
	m.ForgetAll()

	historyB, err := m.History(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, historyB, "no window and no durable turns means empty history")
}
