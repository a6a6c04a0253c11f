package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type DocumentStore interface {
	MatchChunks(ctx context.Context, embedding []float32, threshold float64, limit int) ([]entity.RetrievedChunk, error)
}

// UseCase answers similarity queries against the ingested documentation.
type UseCase struct {
	embedder Embedder
	store    DocumentStore
	cfg      config.RetrievalConfig
	logger   *zap.Logger
}

func NewUseCase(embedder Embedder, store DocumentStore, cfg config.RetrievalConfig, logger *zap.Logger) *UseCase {
	return &UseCase{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search returns the chunks most similar to the query, best match first.
// Non-positive topK and threshold fall back to the configured defaults.
// An empty result set is a valid answer, not an error.
func (u *UseCase) Search(ctx context.Context, query string, topK int, threshold float64) ([]entity.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is empty", entity.ErrEmptyQuery)
	}
	if topK <= 0 {
		topK = u.cfg.SearchTopK
	}
	if threshold <= 0 {
		threshold = u.cfg.Threshold
	}

	embedding, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := u.store.MatchChunks(ctx, embedding, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: matching chunks: %v", entity.ErrRetrieval, err)
	}

	u.logger.Debug("similarity search finished",
		zap.Int("top_k", topK),
		zap.Float64("threshold", threshold),
		zap.Int("matches", len(chunks)))

	return chunks, nil
}

// ForChat runs a search tuned for conversation context assembly.
func (u *UseCase) ForChat(ctx context.Context, query string) ([]entity.RetrievedChunk, error) {
	return u.Search(ctx, query, u.cfg.ChatTopK, u.cfg.Threshold)
}
