package response

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingLLM struct {
	lastMessages []llm.Message
	lastOptions  llm.Options
	answer       string
	err          error
}

func (c *capturingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	c.lastMessages = history
	c.lastOptions = llm.Options{}
	for _, opt := range options {
		opt(&c.lastOptions)
	}
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

func (c *capturingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type constantEmbedder struct{}

func (constantEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

func testMemories(t *testing.T, sessionId string, rules []interface{}) *memory.Store {
	t.Helper()
	gateway := embedding.NewGateway(constantEmbedder{}, 3, nil)
	store := memory.NewStore(gateway)
	if rules != nil {
		err := store.Put(context.Background(), sessionId, "preferences", map[string]interface{}{
			"rules": rules,
		})
		require.NoError(t, err)
	}
	return store
}

func TestGenerateGroundedPrompt(t *testing.T) {
	provider := &capturingLLM{answer: "grounded answer"}
	g := NewGenerator(provider, nil, noopLogger{})

	answer, err := g.Generate(context.Background(), "s1", "what is X?", "some doc context", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)

	require.NotEmpty(t, provider.lastMessages)
	assert.Equal(t, "system", provider.lastMessages[0].Role)
	assert.Equal(t, constant.GroundedSystemPrompt, provider.lastMessages[0].Content)

	last := provider.lastMessages[len(provider.lastMessages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, "Context from knowledge base:\nsome doc context")
	assert.Contains(t, last.Content, "User question: what is X?")

	assert.InDelta(t, 0.1, provider.lastOptions.Temperature, 1e-9)
}

func TestGenerateEmptyContextBecomesNone(t *testing.T) {
	provider := &capturingLLM{answer: "ok"}
	g := NewGenerator(provider, nil, noopLogger{})

	_, err := g.Generate(context.Background(), "s1", "question", "", nil, true)
	require.NoError(t, err)

	last := provider.lastMessages[len(provider.lastMessages)-1]
	assert.Contains(t, last.Content, "Context from knowledge base:\nNone")
}

func TestGenerateUngroundedIgnoresContext(t *testing.T) {
	provider := &capturingLLM{answer: "ok"}
	g := NewGenerator(provider, nil, noopLogger{})

	_, err := g.Generate(context.Background(), "s1", "question", "should be ignored", nil, false)
	require.NoError(t, err)

	assert.Equal(t, constant.UngroundedSystemPrompt, provider.lastMessages[0].Content)
	last := provider.lastMessages[len(provider.lastMessages)-1]
	assert.Equal(t, "question", last.Content)
	assert.NotContains(t, last.Content, "should be ignored")
}

func TestGenerateMergesIntoTrailingUserTurn(t *testing.T) {
	provider := &capturingLLM{answer: "ok"}
	g := NewGenerator(provider, nil, noopLogger{})

	rawHistory := []llm.Message{
		{Role: "user", Content: "earlier question"},
	}

	_, err := g.Generate(context.Background(), "s1", "followup", "", rawHistory, true)
	require.NoError(t, err)

	// system + one merged user turn, never two consecutive user turns
	require.Len(t, provider.lastMessages, 2)
	merged := provider.lastMessages[1]
	assert.Equal(t, "user", merged.Role)
	assert.True(t, strings.HasPrefix(merged.Content, "earlier question\n\n--- Next Question ---\n"))
	assert.Contains(t, merged.Content, "User question: followup")
}

func TestGenerateIncludesMemoryRules(t *testing.T) {
	provider := &capturingLLM{answer: "ok"}
	memories := testMemories(t, "s1", []interface{}{
		"User likes short, direct language",
		"User only speaks English & Python",
	})
	g := NewGenerator(provider, memories, noopLogger{})

	_, err := g.Generate(context.Background(), "s1", "question", "doc text", nil, true)
	require.NoError(t, err)

	last := provider.lastMessages[len(provider.lastMessages)-1]
	assert.Contains(t, last.Content, "Session Context/Rules:\n- User likes short, direct language\n- User only speaks English & Python")
	assert.Contains(t, last.Content, "Document Context:\ndoc text")
}

func TestGenerateMemoryAloneWhenNoDocContext(t *testing.T) {
	provider := &capturingLLM{answer: "ok"}
	memories := testMemories(t, "s1", []interface{}{"Keep answers brief"})
	g := NewGenerator(provider, memories, noopLogger{})

	_, err := g.Generate(context.Background(), "s1", "question", "", nil, true)
	require.NoError(t, err)

	last := provider.lastMessages[len(provider.lastMessages)-1]
	assert.Contains(t, last.Content, "Session Context/Rules:\n- Keep answers brief")
	assert.NotContains(t, last.Content, "Document Context:")
}

func TestGenerateDropsRefusalHistory(t *testing.T) {
	provider := &capturingLLM{answer: "ok"}
	g := NewGenerator(provider, nil, noopLogger{})

	rawHistory := []llm.Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "I don't have enough information in my knowledge base to answer that question."},
	}

	_, err := g.Generate(context.Background(), "s1", "second", "", rawHistory, true)
	require.NoError(t, err)

	for _, msg := range provider.lastMessages {
		assert.NotContains(t, msg.Content, "don't have enough information")
	}
}

func TestGeneratePropagatesLLMError(t *testing.T) {
	provider := &capturingLLM{err: errors.New("model offline")}
	g := NewGenerator(provider, nil, noopLogger{})

	_, err := g.Generate(context.Background(), "s1", "question", "", nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}
