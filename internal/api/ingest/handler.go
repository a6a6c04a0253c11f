package ingest

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
	usecase IngestUsecase
}

func NewHandler(usecase IngestUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Ingest handles POST /admin/ingest
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ingest")

	if r.Header.Get("Authorization") == "" {
		ctxzap.Warn(ctx, "ingest request without credentials")
		response.Error(w, http.StatusUnauthorized, "authorization required")
		return
	}

	var req entity.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode ingest request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunks, err := h.usecase.Ingest(ctx, req.Content, req.Filename)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "document ingested",
		zap.String("filename", req.Filename),
		zap.Int("chunks", chunks),
	)

	response.Success(w, entity.IngestResponse{
		Success:         true,
		ChunksProcessed: chunks,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrEmptyContent) {
		ctxzap.Warn(ctx, "ingest validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ctxzap.Error(ctx, "ingestion failed", zap.Error(err))
	response.Error(w, http.StatusInternalServerError, "failed to ingest document")
}
