package response

import (
	"context"
	"fmt"
	"strings"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/memory"
	"ai-docchat-be/pkg/rag/history"
)

// Generator composes the grounding block and produces the final answer.
// The formatted document context plus session memory facts are the only
// evidence the model is allowed to use.
type Generator struct {
	llmProvider llm.LLMProvider
	memories    *memory.Store
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, memories *memory.Store, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		memories:    memories,
		logger:      log,
	}
}

// Generate answers the query against the formatted document context.
// When useKnowledgeBase is false the ungrounded template applies and the
// context is ignored. LLM transport errors propagate unchanged.
func (g *Generator) Generate(
	ctx context.Context,
	sessionId string,
	query string,
	docContext string,
	rawHistory []llm.Message,
	useKnowledgeBase bool,
) (string, error) {

	fullContext := docContext
	if g.memories != nil && useKnowledgeBase {
		memoryBlock, err := g.memoryBlock(ctx, sessionId, query)
		if err != nil {
			// Memory is an enrichment; a failed lookup must not kill the answer
			g.logger.Warn("response", "memory lookup failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		} else if memoryBlock != "" {
			if docContext != "" {
				fullContext = fmt.Sprintf("%s\n\nDocument Context:\n%s", memoryBlock, docContext)
			} else {
				fullContext = memoryBlock
			}
		}
	}

	messages := history.AssembleForLLM(rawHistory)

	var userContent string
	if useKnowledgeBase {
		contextText := fullContext
		if contextText == "" {
			contextText = "None"
		}
		userContent = fmt.Sprintf("Context from knowledge base:\n%s\n\nUser question: %s", contextText, query)
	} else {
		userContent = query
	}

	// Never let two consecutive user turns reach the model
	if n := len(messages); n > 0 && messages[n-1].Role == constant.ChatMessageRoleUser {
		messages[n-1].Content += fmt.Sprintf("\n\n--- Next Question ---\n%s", userContent)
	} else {
		messages = append(messages, llm.Message{
			Role:    constant.ChatMessageRoleUser,
			Content: userContent,
		})
	}

	systemPrompt := constant.GroundedSystemPrompt
	if !useKnowledgeBase {
		systemPrompt = constant.UngroundedSystemPrompt
	}

	full := make([]llm.Message, 0, len(messages)+1)
	full = append(full, llm.Message{Role: "system", Content: systemPrompt})
	full = append(full, messages...)

	answer, err := g.llmProvider.Chat(ctx, full, llm.WithTemperature(0.1))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return answer, nil
}

// memoryBlock flattens the session's relevant `rules` facts into the
// "Session Context/Rules:" bullet list the prompt carries.
func (g *Generator) memoryBlock(ctx context.Context, sessionId, query string) (string, error) {
	facts, err := g.memories.Search(ctx, sessionId, query)
	if err != nil {
		return "", err
	}

	var rules []string
	for _, fact := range facts {
		raw, ok := fact["rules"]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []string:
			rules = append(rules, v...)
		case []interface{}:
			for _, item := range v {
				rules = append(rules, fmt.Sprintf("%v", item))
			}
		}
	}

	if len(rules) == 0 {
		return "", nil
	}

	return "Session Context/Rules:\n- " + strings.Join(rules, "\n- "), nil
}
