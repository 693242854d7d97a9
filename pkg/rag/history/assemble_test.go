package history

import (
	"testing"

	"ai-docchat-be/pkg/llm"
)

func msg(role, content string) llm.Message {
	return llm.Message{Role: role, Content: content}
}

func TestAssembleForLLM(t *testing.T) {
	tests := []struct {
		name  string
		input []llm.Message
		want  []llm.Message
	}{
		{
			name:  "empty history",
			input: nil,
			want:  []llm.Message{},
		},
		{
			name: "already alternating",
			input: []llm.Message{
				msg("user", "hi"),
				msg("assistant", "hello"),
			},
			want: []llm.Message{
				msg("user", "hi"),
				msg("assistant", "hello"),
			},
		},
		{
			name: "refusal turns dropped",
			input: []llm.Message{
				msg("user", "what is X?"),
				msg("assistant", "I don't have enough information in my knowledge base to answer that question."),
				msg("user", "what about Y?"),
				msg("assistant", "Y is explained on page 3."),
			},
			want: []llm.Message{
				msg("user", "what is X?\n\nwhat about Y?"),
				msg("assistant", "Y is explained on page 3."),
			},
		},
		{
			name: "kb-disabled refusal dropped case-insensitively",
			input: []llm.Message{
				msg("user", "tell me"),
				msg("assistant", "Please enable the Knowledge Base in the UI to ask questions about the documents."),
			},
			want: []llm.Message{
				msg("user", "tell me"),
			},
		},
		{
			name: "consecutive same-role merged",
			input: []llm.Message{
				msg("user", "first"),
				msg("user", "second"),
				msg("assistant", "reply"),
			},
			want: []llm.Message{
				msg("user", "first\n\nsecond"),
				msg("assistant", "reply"),
			},
		},
		{
			name: "leading assistant greeting dropped",
			input: []llm.Message{
				msg("assistant", "Hi, how can I help you ?"),
				msg("user", "question"),
			},
			want: []llm.Message{
				msg("user", "question"),
			},
		},
		{
			name: "refusal leaves leading assistant which is then dropped",
			input: []llm.Message{
				msg("assistant", "greeting"),
				msg("assistant", "another greeting"),
				msg("user", "question"),
			},
			want: []llm.Message{
				msg("user", "question"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssembleForLLM(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%+v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("msg[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
