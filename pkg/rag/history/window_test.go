package history

import (
	"fmt"
	"testing"

	"ai-docchat-be/pkg/llm"
)

func TestWindowEviction(t *testing.T) {
	w := NewWindow(2) // capacity 4 messages

	if w.Capacity() != 4 {
		t.Fatalf("Capacity = %d, want 4", w.Capacity())
	}

	for i := 0; i < 6; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		w.Push(llm.Message{Role: role, Content: fmt.Sprintf("m%d", i)})
	}

	msgs := w.Messages()
	if len(msgs) != 4 {
		t.Fatalf("Len = %d, want 4", len(msgs))
	}

	// Oldest two were evicted
	for i, want := range []string{"m2", "m3", "m4", "m5"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d].Content = %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestWindowMessagesIsCopy(t *testing.T) {
	w := NewWindow(2)
	w.Push(llm.Message{Role: "user", Content: "original"})

	msgs := w.Messages()
	msgs[0].Content = "mutated"

	if got := w.Messages()[0].Content; got != "original" {
		t.Errorf("window content = %q, mutation leaked through", got)
	}
}

func TestWindowDefaultsTurns(t *testing.T) {
	w := NewWindow(0)
	if w.Capacity() != 10 {
		t.Errorf("Capacity = %d, want 10 for non-positive turns", w.Capacity())
	}
}
