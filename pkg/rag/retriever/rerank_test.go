package retriever

import (
	"context"
	"fmt"
	"testing"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/rerank"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

type fakeChunkRepo struct {
	scored []*contract.ScoredDocumentChunk

	gotLimit     int
	gotThreshold float64
}

func (f *fakeChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }
func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}
func (f *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}
func (f *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.scored)), nil
}
func (f *fakeChunkRepo) SearchNearest(ctx context.Context, emb []float32, limit int, threshold float64) ([]*contract.ScoredDocumentChunk, error) {
	f.gotLimit = limit
	f.gotThreshold = threshold
	if len(f.scored) > limit {
		return f.scored[:limit], nil
	}
	return f.scored, nil
}

type fakeScorer struct {
	scores []float64
	calls  int
	err    error
}

func (f *fakeScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.scores[:len(texts)], nil
}

func (f *fakeScorer) ModelName() string { return "fake-cross-encoder" }

func makeCandidates(n int) []*contract.ScoredDocumentChunk {
	out := make([]*contract.ScoredDocumentChunk, n)
	for i := 0; i < n; i++ {
		out[i] = &contract.ScoredDocumentChunk{
			Chunk: &entity.DocumentChunk{
				Id:      uuid.New(),
				Content: fmt.Sprintf("chunk %d", i),
				Metadata: map[string]interface{}{
					"filename": "manual.pdf",
					"page":     float64(i + 1), // JSON round-trips numbers as float64
				},
			},
			Distance: float64(i) * 0.01,
		}
	}
	return out
}

func testDeps(repo *fakeChunkRepo, scorer *fakeScorer) Deps {
	gateway := embedding.NewGateway(&fakeEmbedder{}, 3, nil)
	registry := rerank.NewRegistry(func(model string) (rerank.Scorer, error) {
		return scorer, nil
	})
	return Deps{
		Gateway:         gateway,
		Chunks:          repo,
		Rerankers:       registry,
		Threshold:       0.7,
		RerankerModel:   "fake-cross-encoder",
		Stage1K:         50,
		Stage1Threshold: 1000.0,
	}
}

func TestRerankRetrieverAudit(t *testing.T) {
	// 50 candidates; the scorer puts candidate index 46 (initial rank 47)
	// on top, so the audit must show the promotion.
	candidates := makeCandidates(50)
	scores := make([]float64, 50)
	for i := range scores {
		scores[i] = 0.1
	}
	scores[46] = 0.99
	scores[0] = 0.5

	repo := &fakeChunkRepo{scored: candidates}
	scorer := &fakeScorer{scores: scores}
	r := NewRerankRetriever(testDeps(repo, scorer))

	result, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, result.Documents, 5)
	require.Len(t, result.Audit, 5)

	assert.Equal(t, 50, repo.gotLimit, "stage 1 should pull the full candidate pool")
	assert.Equal(t, 1000.0, repo.gotThreshold, "stage 1 threshold should be permissive")

	top := result.Audit[0]
	assert.Equal(t, 47, top.InitialRank)
	assert.Equal(t, 1, top.FinalRank)
	assert.InDelta(t, 0.99, top.Score, 1e-9)
	assert.Equal(t, "manual.pdf", top.Filename)
	assert.Equal(t, 47, top.Page)
	assert.Equal(t, "chunk 46", result.Documents[0])

	second := result.Audit[1]
	assert.Equal(t, 1, second.InitialRank)
	assert.Equal(t, 2, second.FinalRank)
}

func TestRerankRetrieverTiesKeepStage1Order(t *testing.T) {
	candidates := makeCandidates(4)
	repo := &fakeChunkRepo{scored: candidates}
	scorer := &fakeScorer{scores: []float64{0.5, 0.5, 0.5, 0.5}}
	r := NewRerankRetriever(testDeps(repo, scorer))

	result, err := r.Retrieve(context.Background(), "query", 4)
	require.NoError(t, err)

	for i, audit := range result.Audit {
		assert.Equal(t, i+1, audit.InitialRank, "equal scores must preserve stage-1 order")
		assert.Equal(t, i+1, audit.FinalRank)
	}
}

func TestRerankRetrieverNoCandidates(t *testing.T) {
	repo := &fakeChunkRepo{scored: nil}
	scorer := &fakeScorer{scores: nil}
	r := NewRerankRetriever(testDeps(repo, scorer))

	result, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)

	assert.Empty(t, result.Documents)
	assert.Nil(t, result.Audit)
	assert.Equal(t, 0, scorer.calls, "scorer must never run on an empty pool")
}

func TestRerankRetrieverTopKClamped(t *testing.T) {
	candidates := makeCandidates(3)
	repo := &fakeChunkRepo{scored: candidates}
	scorer := &fakeScorer{scores: []float64{0.1, 0.2, 0.3}}
	r := NewRerankRetriever(testDeps(repo, scorer))

	result, err := r.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	assert.Len(t, result.Documents, 3)
}

func TestVectorRetriever(t *testing.T) {
	candidates := makeCandidates(2)
	repo := &fakeChunkRepo{scored: candidates}
	deps := testDeps(repo, &fakeScorer{})
	r := NewVectorRetriever(deps)

	result, err := r.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"chunk 0", "chunk 1"}, result.Documents)
	assert.Nil(t, result.Audit, "single-stage retrieval has no audit")
	assert.Equal(t, 0.7, repo.gotThreshold, "single-stage path uses the strict threshold")
}

func TestNewRetrieverStrategySelection(t *testing.T) {
	deps := testDeps(&fakeChunkRepo{}, &fakeScorer{})
	on := true
	off := false

	tests := []struct {
		name          string
		defaultRerank bool
		override      *bool
		wantRerank    bool
	}{
		{"default off, no override", false, nil, false},
		{"default on, no override", true, nil, true},
		{"default off, override on", false, &on, true},
		{"default on, override off", true, &off, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetriever(deps, tt.defaultRerank, tt.override)
			_, isRerank := r.(*RerankRetriever)
			if isRerank != tt.wantRerank {
				t.Errorf("got rerank=%v, want %v", isRerank, tt.wantRerank)
			}
		})
	}
}
