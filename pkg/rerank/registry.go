package rerank

import (
	"fmt"
	"sync"
)

// Registry keeps at most one loaded scorer per model id for the life of
// the process. Loading a cross-encoder is expensive, so concurrent first
// requests must not double-load, and a failed load must leave no
// partially-initialized entry behind.
type Registry struct {
	mu      sync.Mutex
	scorers map[string]Scorer
	loader  func(model string) (Scorer, error)
}

func NewRegistry(loader func(model string) (Scorer, error)) *Registry {
	return &Registry{
		scorers: make(map[string]Scorer),
		loader:  loader,
	}
}

// Get returns the scorer for model, loading it on first use.
func (r *Registry) Get(model string) (Scorer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.scorers[model]; ok {
		return s, nil
	}

	s, err := r.loader(model)
	if err != nil {
		return nil, fmt.Errorf("load reranker %q: %w", model, err)
	}

	r.scorers[model] = s
	return s, nil
}

// Loaded reports whether model already has a live scorer.
func (r *Registry) Loaded(model string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.scorers[model]
	return ok
}
