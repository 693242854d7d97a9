package history

import "ai-docchat-be/pkg/llm"

// Window is a fixed-capacity FIFO of chat turns. Pushing past capacity
// evicts from the front, so the window always holds the most recent
// turns. Capacity is turns*2: one user and one assistant message per
// exchange.
type Window struct {
	capacity int
	messages []llm.Message
}

func NewWindow(turns int) *Window {
	if turns <= 0 {
		turns = 5
	}
	capacity := turns * 2
	return &Window{
		capacity: capacity,
		messages: make([]llm.Message, 0, capacity),
	}
}

func (w *Window) Push(msg llm.Message) {
	if len(w.messages) == w.capacity {
		copy(w.messages, w.messages[1:])
		w.messages = w.messages[:w.capacity-1]
	}
	w.messages = append(w.messages, msg)
}

// Messages returns a defensive copy of the current contents, oldest
// first.
func (w *Window) Messages() []llm.Message {
	out := make([]llm.Message, len(w.messages))
	copy(out, w.messages)
	return out
}

func (w *Window) Len() int {
	return len(w.messages)
}

func (w *Window) Capacity() int {
	return w.capacity
}
