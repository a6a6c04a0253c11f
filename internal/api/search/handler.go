package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/pkg/logger"
	"github.com/softsite/advisor-backend/internal/pkg/response"
)

type Handler struct {
	usecase SearchUsecase
}

func NewHandler(usecase SearchUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Search handles POST /search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Search")

	var req entity.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode search request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunks, err := h.usecase.Search(ctx, req.Query, req.TopK, req.Threshold)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	docs := make([]entity.SearchResultDocument, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, entity.SearchResultDocument{
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
			Similarity: chunk.Similarity,
		})
	}

	ctxzap.Info(ctx, "search finished", zap.Int("matches", len(docs)))

	response.Success(w, entity.SearchResponse{Documents: docs})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrEmptyQuery) {
		ctxzap.Warn(ctx, "search validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ctxzap.Error(ctx, "search failed", zap.Error(err))
	response.Error(w, http.StatusInternalServerError, "failed to search documents")
}
