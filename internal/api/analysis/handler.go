package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/pkg/logger"
	"github.com/softsite/advisor-backend/internal/pkg/response"
)

const (
	analysisSEO    = "seo"
	analysisSpeed  = "speed"
	analysisBudget = "budget"
)

type Handler struct {
	usecase AnalysisUsecase
}

func NewHandler(usecase AnalysisUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Analyze handles POST /analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Analyze")

	var req entity.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode analyze request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctxzap.Info(ctx, "running analysis", zap.String("type", req.Type))

	var (
		result any
		err    error
	)
	switch req.Type {
	case analysisSEO:
		result, err = h.usecase.AnalyzeSEO(ctx, req.Data.URL, req.Data.Keyword)
	case analysisSpeed:
		result, err = h.usecase.AnalyzeSpeed(ctx, req.Data.URL)
	case analysisBudget:
		result, err = h.usecase.BudgetPlan(ctx, req.Data.Industry, req.Data.Location)
	default:
		err = fmt.Errorf("%w: %q", entity.ErrUnsupportedAnalysis, req.Type)
	}
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// ExportBudget handles GET /analyze/budget/export
func (h *Handler) ExportBudget(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportBudget")

	q := r.URL.Query()
	format := entity.ResultFormat(q.Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	data, contentType, ext, err := h.usecase.ExportBudgetPlan(ctx, q.Get("industry"), q.Get("location"), format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=budget-plan%s", ext))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrUnsupportedAnalysis) || errors.Is(err, entity.ErrInvalidParameter) {
		ctxzap.Warn(ctx, "analysis validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ctxzap.Error(ctx, "analysis failed", zap.Error(err))
	response.Error(w, http.StatusInternalServerError, "failed to run analysis")
}
