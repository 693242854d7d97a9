package history

import (
	"strings"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/pkg/llm"
)

// AssembleForLLM shapes raw history into what the model API accepts:
// strict user/assistant alternation starting with a user turn.
// Refusal turns are dropped first so an earlier "I don't know" cannot
// anchor the model into refusing again. Storage is never modified;
// this runs at assembly time only.
func AssembleForLLM(messages []llm.Message) []llm.Message {
	filtered := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == constant.ChatMessageRoleAssistant && isRefusal(msg.Content) {
			continue
		}
		filtered = append(filtered, msg)
	}

	// Merge consecutive same-role turns with a blank line between them
	merged := make([]llm.Message, 0, len(filtered))
	for _, msg := range filtered {
		if n := len(merged); n > 0 && merged[n-1].Role == msg.Role {
			merged[n-1].Content = merged[n-1].Content + "\n\n" + msg.Content
			continue
		}
		merged = append(merged, msg)
	}

	// The first turn the model sees must be from the user
	if len(merged) > 0 && merged[0].Role == constant.ChatMessageRoleAssistant {
		merged = merged[1:]
	}

	return merged
}

func isRefusal(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range constant.NoAnswerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
