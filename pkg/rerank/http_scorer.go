package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// HTTPScorer talks to a TEI-style /rerank endpoint hosting a
// cross-encoder model.
type HTTPScorer struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewHTTPScorer(baseURL, model string) *HTTPScorer {
	return &HTTPScorer{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

var _ Scorer = &HTTPScorer{}

type rerankRequest struct {
	Query    string   `json:"query"`
	Texts    []string `json:"texts"`
	RawScore bool     `json:"raw_scores"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func (s *HTTPScorer) ModelName() string {
	return s.model
}

func (s *HTTPScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}

	payload, err := json.Marshal(rerankRequest{
		Query:    query,
		Texts:    texts,
		RawScore: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	url := s.baseURL + "/rerank"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// TEI returns results sorted by score; re-key them by input index
	var results []rerankResult
	if err := json.Unmarshal(bodyBytes, &results); err != nil {
		return nil, fmt.Errorf("unmarshal rerank response: %w", err)
	}

	if len(results) != len(texts) {
		return nil, fmt.Errorf("rerank returned %d scores for %d texts", len(results), len(texts))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	scores := make([]float64, len(texts))
	for i, r := range results {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("rerank returned out-of-range index %d", r.Index)
		}
		scores[i] = r.Score
	}
	return scores, nil
}
