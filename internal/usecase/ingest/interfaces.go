package ingest

import (
	"context"

	"github.com/softsite/advisor-backend/internal/entity"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type DocumentStore interface {
	InsertChunks(ctx context.Context, chunks []entity.DocumentChunk) error
}
