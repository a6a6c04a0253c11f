package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/pkg/splitter"
)

// UseCase splits documents into chunks, embeds them and saves the
// result into the vector store. Every chunk of one Ingest call shares
// a generated document id so the source can be traced back later.
type UseCase struct {
	embedder Embedder
	store    DocumentStore
	cfg      config.IngestConfig
	logger   *zap.Logger
}

func NewUseCase(embedder Embedder, store DocumentStore, cfg config.IngestConfig, logger *zap.Logger) *UseCase {
	return &UseCase{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Ingest processes one document and returns the number of chunks stored.
// A document that yields no chunks (for example, only whitespace after
// trimming) is not an error: nothing is written and zero is returned.
func (u *UseCase) Ingest(ctx context.Context, content, filename string) (int, error) {
	if content == "" {
		return 0, fmt.Errorf("%w: document content is empty", entity.ErrEmptyContent)
	}

	parts := splitter.Split(content, u.cfg.ChunkSize, u.cfg.ChunkOverlap)
	if len(parts) == 0 {
		u.logger.Info("document produced no chunks, nothing to store",
			zap.String("filename", filename))
		return 0, nil
	}

	embeddings, err := u.embedder.EmbedBatch(ctx, parts)
	if err != nil {
		return 0, fmt.Errorf("embedding document %q: %w", filename, err)
	}

	documentID := uuid.NewString()
	chunks := make([]entity.DocumentChunk, len(parts))
	for i, part := range parts {
		chunks[i] = entity.DocumentChunk{
			Content: part,
			Metadata: entity.ChunkMetadata{
				Filename:   filename,
				DocumentID: documentID,
				ChunkIndex: i,
			},
			Embedding: embeddings[i],
		}
	}

	if err := u.store.InsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("%w: storing chunks of %q: %v", entity.ErrPersistence, filename, err)
	}

	u.logger.Info("document ingested",
		zap.String("filename", filename),
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)))

	return len(chunks), nil
}
