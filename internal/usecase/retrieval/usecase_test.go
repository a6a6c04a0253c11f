package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeStore struct {
	chunks        []entity.RetrievedChunk
	err           error
	gotThreshold  float64
	gotLimit      int
	gotEmbedding  []float32
	calls         int
}

func (f *fakeStore) MatchChunks(_ context.Context, embedding []float32, threshold float64, limit int) ([]entity.RetrievedChunk, error) {
	f.calls++
	f.gotEmbedding = embedding
	f.gotThreshold = threshold
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func newTestUseCase(embedder Embedder, store DocumentStore) *UseCase {
	cfg := config.RetrievalConfig{ChatTopK: 3, SearchTopK: 5, Threshold: 0.5}
	return NewUseCase(embedder, store, cfg, zap.NewNop())
}

func TestSearch(t *testing.T) {
	t.Run("blank query is a validation error", func(t *testing.T) {
		store := &fakeStore{}
		uc := newTestUseCase(&fakeEmbedder{vector: []float32{1}}, store)

		for _, query := range []string{"", "   "} {
			_, err := uc.Search(context.Background(), query, 5, 0.5)
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrEmptyQuery)
		}
		assert.Zero(t, store.calls)
	})

	t.Run("passes query embedding and tuning to the store", func(t *testing.T) {
		store := &fakeStore{chunks: []entity.RetrievedChunk{
			{Content: "eligibility rules", Similarity: 0.91},
		}}
		uc := newTestUseCase(&fakeEmbedder{vector: []float32{0.1, 0.2}}, store)

		chunks, err := uc.Search(context.Background(), "who is eligible", 7, 0.8)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, []float32{0.1, 0.2}, store.gotEmbedding)
		assert.Equal(t, 0.8, store.gotThreshold)
		assert.Equal(t, 7, store.gotLimit)
	})

	t.Run("defaults apply when tuning is not set", func(t *testing.T) {
		store := &fakeStore{}
		uc := newTestUseCase(&fakeEmbedder{vector: []float32{1}}, store)

		_, err := uc.Search(context.Background(), "budget limits", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, store.gotLimit)
		assert.Equal(t, 0.5, store.gotThreshold)
	})

	t.Run("no matches is a valid empty answer", func(t *testing.T) {
		store := &fakeStore{}
		uc := newTestUseCase(&fakeEmbedder{vector: []float32{1}}, store)

		chunks, err := uc.Search(context.Background(), "unrelated topic", 5, 0.5)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("embedder failure is returned", func(t *testing.T) {
		store := &fakeStore{}
		uc := newTestUseCase(&fakeEmbedder{err: errors.New("provider down")}, store)

		_, err := uc.Search(context.Background(), "anything", 5, 0.5)
		require.Error(t, err)
		assert.Zero(t, store.calls)
	})

	t.Run("store failure is a retrieval error", func(t *testing.T) {
		store := &fakeStore{err: errors.New("connection reset")}
		uc := newTestUseCase(&fakeEmbedder{vector: []float32{1}}, store)

		_, err := uc.Search(context.Background(), "anything", 5, 0.5)
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrRetrieval)
	})

	t.Run("chat search uses the chat limit", func(t *testing.T) {
		store := &fakeStore{}
		uc := newTestUseCase(&fakeEmbedder{vector: []float32{1}}, store)

		_, err := uc.ForChat(context.Background(), "am I eligible")
		require.NoError(t, err)
		assert.Equal(t, 3, store.gotLimit)
		assert.Equal(t, 0.5, store.gotThreshold)
	})
}
