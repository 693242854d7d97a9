package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"ai-docchat-be/pkg/embedding"

	"github.com/patrickmn/go-cache"
)

// Fact is one remembered item in a session's namespace.
type Fact struct {
	Key    string
	Value  map[string]interface{}
	vector []float32
}

// Store holds semantic session memories. Facts are namespaced per
// session, indexed by an embedding of their text rendering, and never
// expire on their own.
type Store struct {
	mu      sync.RWMutex
	gateway *embedding.Gateway
	facts   *cache.Cache
}

func NewStore(gateway *embedding.Gateway) *Store {
	return &Store{
		gateway: gateway,
		facts:   cache.New(cache.NoExpiration, 0),
	}
}

func namespaceKey(sessionId string) string {
	return sessionId + ":context"
}

// Put stores (or replaces) a fact under the session namespace. The
// fact's value is rendered to text and embedded for later search.
func (s *Store) Put(ctx context.Context, sessionId, key string, value map[string]interface{}) error {
	vector, err := s.gateway.EmbedOne(ctx, renderFact(value))
	if err != nil {
		return fmt.Errorf("embed memory fact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var facts map[string]*Fact
	if x, found := s.facts.Get(namespaceKey(sessionId)); found {
		facts = x.(map[string]*Fact)
	} else {
		facts = make(map[string]*Fact)
	}

	facts[key] = &Fact{Key: key, Value: value, vector: vector}
	s.facts.Set(namespaceKey(sessionId), facts, cache.NoExpiration)
	return nil
}

// Search returns up to 5 facts from the session namespace ranked by
// cosine similarity to the query. An empty query returns an empty list:
// listing without a query is not supported.
func (s *Store) Search(ctx context.Context, sessionId, query string) ([]map[string]interface{}, error) {
	if strings.TrimSpace(query) == "" {
		return []map[string]interface{}{}, nil
	}

	queryVector, err := s.gateway.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed memory query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	x, found := s.facts.Get(namespaceKey(sessionId))
	if !found {
		return []map[string]interface{}{}, nil
	}
	facts := x.(map[string]*Fact)

	type scored struct {
		fact  *Fact
		score float64
	}
	ranked := make([]scored, 0, len(facts))
	for _, f := range facts {
		ranked = append(ranked, scored{fact: f, score: cosineSimilarity(queryVector, f.vector)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score == ranked[j].score {
			return ranked[i].fact.Key < ranked[j].fact.Key
		}
		return ranked[i].score > ranked[j].score
	})

	limit := 5
	if limit > len(ranked) {
		limit = len(ranked)
	}

	out := make([]map[string]interface{}, limit)
	for i := 0; i < limit; i++ {
		out[i] = ranked[i].fact.Value
	}
	return out, nil
}

// Has reports whether the session namespace holds any facts.
func (s *Store) Has(sessionId string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	x, found := s.facts.Get(namespaceKey(sessionId))
	if !found {
		return false
	}
	return len(x.(map[string]*Fact)) > 0
}

// Clear drops all facts for a session.
func (s *Store) Clear(sessionId string) {
	s.facts.Delete(namespaceKey(sessionId))
}

// ClearAll drops the facts of every session.
func (s *Store) ClearAll() {
	s.facts.Flush()
}

// renderFact flattens a fact value into the text that gets embedded.
func renderFact(value map[string]interface{}) string {
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(fmt.Sprintf("%v", value[k]))
		b.WriteString("\n")
	}
	return b.String()
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
