package search

import (
	"context"

	"github.com/softsite/advisor-backend/internal/entity"
)

type SearchUsecase interface {
	Search(ctx context.Context, query string, topK int, threshold float64) ([]entity.RetrievedChunk, error)
}
