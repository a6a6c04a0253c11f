package retrieval

import (
	"context"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/integration/gemini"
	"github.com/softsite/advisor-backend/internal/usecase/ingest"
)

// memoryStore keeps ingested chunks in a slice and matches them with a
// brute-force cosine scan, standing in for the pgvector repository.
type memoryStore struct {
	chunks []entity.DocumentChunk
}

func (s *memoryStore) InsertChunks(_ context.Context, chunks []entity.DocumentChunk) error {
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *memoryStore) MatchChunks(_ context.Context, embedding []float32, threshold float64, limit int) ([]entity.RetrievedChunk, error) {
	var out []entity.RetrievedChunk
	for _, c := range s.chunks {
		sim := cosineSimilarity(embedding, c.Embedding)
		if sim >= threshold {
			out = append(out, entity.RetrievedChunk{
				Content:    c.Content,
				Metadata:   c.Metadata,
				Similarity: sim,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestIngestThenSearchRoundTrip(t *testing.T) {
	connector := gemini.NewMockConnector(64, zap.NewNop())
	store := &memoryStore{}

	ingestUC := ingest.NewUseCase(connector, store,
		config.IngestConfig{ChunkSize: 200, ChunkOverlap: 40}, zap.NewNop())
	searchUC := NewUseCase(connector, store,
		config.RetrievalConfig{ChatTopK: 3, SearchTopK: 5, Threshold: 0.5}, zap.NewNop())

	document := strings.Join([]string{
		"Start-Up Nation grants cover up to 200000 RON for newly registered companies. " +
			"Applicants must keep the business active for at least two years after the final payment.",
		"Eligible expenses include production equipment, software licenses and up to three salaries. " +
			"Real estate purchases and used vehicles are excluded from the financing plan.",
		"Scoring favors digitalization components and founders without prior company ownership. " +
			"Applications are ranked by score and funded until the yearly budget is exhausted.",
		"The implementation period runs twelve months from contract signing. " +
			"Every acquisition must be documented with three comparative offers before purchase.",
	}, "\n\n")

	stored, err := ingestUC.Ingest(context.Background(), document, "startup-nation.md")
	require.NoError(t, err)
	require.Greater(t, stored, 1)
	require.Len(t, store.chunks, stored)

	// Querying with the verbatim text of a stored chunk must surface
	// that chunk first, at full similarity.
	target := store.chunks[1]
	results, err := searchUC.Search(context.Background(), target.Content, 3, 0.5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, target.Content, results[0].Content)
	assert.Equal(t, target.Metadata.ChunkIndex, results[0].Metadata.ChunkIndex)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
}
