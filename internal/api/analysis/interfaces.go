package analysis

import (
	"context"

	"github.com/softsite/advisor-backend/internal/entity"
)

type AnalysisUsecase interface {
	AnalyzeSEO(ctx context.Context, url, keyword string) (*entity.SeoReport, error)
	AnalyzeSpeed(ctx context.Context, url string) (*entity.SpeedReport, error)
	BudgetPlan(ctx context.Context, industry, location string) ([]entity.BudgetItem, error)
	ExportBudgetPlan(ctx context.Context, industry, location string, format entity.ResultFormat) ([]byte, string, string, error)
}
