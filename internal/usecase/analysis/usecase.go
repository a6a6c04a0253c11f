package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/pkg/formatter"
)

type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage, out any) error
}

// UseCase runs the advisory analysis tools. Reports are cached per
// request so repeated dashboard refreshes do not burn model quota, and
// model calls are retried because these endpoints sit outside the chat
// path and can afford the extra latency.
type UseCase struct {
	model     JSONGenerator
	factory   *formatter.Factory
	cache     *gocache.Cache
	retryOpts []retry.Option
	logger    *zap.Logger
}

func NewUseCase(model JSONGenerator, factory *formatter.Factory, cfg config.AnalysisConfig, logger *zap.Logger) *UseCase {
	return &UseCase{
		model:     model,
		factory:   factory,
		cache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		retryOpts: cfg.Retry.ToRetryOptions(),
		logger:    logger,
	}
}

// AnalyzeSEO audits a website for search visibility.
func (u *UseCase) AnalyzeSEO(ctx context.Context, url, keyword string) (*entity.SeoReport, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required for an seo report", entity.ErrInvalidParameter)
	}

	key := cacheKey("seo", url, keyword)
	if cached, ok := u.cache.Get(key); ok {
		return cached.(*entity.SeoReport), nil
	}

	prompt := fmt.Sprintf(
		"Audit the website %s for search engine visibility. Target keyword: %q. "+
			"Score it from 0 to 100, suggest a better page title and list prioritized "+
			"recommendations and relevant keywords.",
		url, keyword)

	report, err := generateReport[entity.SeoReport](ctx, u, prompt, seoReportSchema)
	if err != nil {
		return nil, err
	}
	report.URL = url

	u.cache.SetDefault(key, report)
	return report, nil
}

// AnalyzeSpeed estimates page performance in the PageSpeed vocabulary.
func (u *UseCase) AnalyzeSpeed(ctx context.Context, url string) (*entity.SpeedReport, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required for a speed report", entity.ErrInvalidParameter)
	}

	key := cacheKey("speed", url)
	if cached, ok := u.cache.Get(key); ok {
		return cached.(*entity.SpeedReport), nil
	}

	prompt := fmt.Sprintf(
		"Estimate the loading performance of %s. Report a performance score from "+
			"0 to 100, typical FCP, LCP and CLS values and concrete recommendations "+
			"to make the page faster.",
		url)

	report, err := generateReport[entity.SpeedReport](ctx, u, prompt, speedReportSchema)
	if err != nil {
		return nil, err
	}
	report.URL = url

	u.cache.SetDefault(key, report)
	return report, nil
}

// BudgetPlan drafts a website budget that maximizes the portion covered
// by the grant program.
func (u *UseCase) BudgetPlan(ctx context.Context, industry, location string) ([]entity.BudgetItem, error) {
	if strings.TrimSpace(industry) == "" {
		return nil, fmt.Errorf("%w: industry is required for a budget plan", entity.ErrInvalidParameter)
	}

	key := cacheKey("budget", industry, location)
	if cached, ok := u.cache.Get(key); ok {
		return cached.([]entity.BudgetItem), nil
	}

	prompt := fmt.Sprintf(
		"Draft a website budget plan for a small %s business in %s applying to a "+
			"start-up website grant. For every line item give the category, a short "+
			"item name, an estimated cost in euros, whether the grant covers it and why.",
		industry, location)

	var items []entity.BudgetItem
	err := retry.Do(func() error {
		items = items[:0]
		return u.model.GenerateJSON(ctx, prompt, budgetPlanSchema, &items)
	}, append(u.retryOpts, retry.Context(ctx))...)
	if err != nil {
		return nil, fmt.Errorf("generating budget plan: %w", err)
	}

	u.cache.SetDefault(key, items)
	return items, nil
}

// ExportBudgetPlan renders a budget plan in the requested format.
func (u *UseCase) ExportBudgetPlan(ctx context.Context, industry, location string, format entity.ResultFormat) ([]byte, string, string, error) {
	items, err := u.BudgetPlan(ctx, industry, location)
	if err != nil {
		return nil, "", "", err
	}

	f, err := u.factory.Create(format)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}

	data, err := f.Format(renderBudgetPlan(items))
	if err != nil {
		return nil, "", "", fmt.Errorf("rendering budget plan: %w", err)
	}
	return data, f.ContentType(), f.FileExtension(), nil
}

func generateReport[T any](ctx context.Context, u *UseCase, prompt string, schema json.RawMessage) (*T, error) {
	report, err := retry.DoWithData(func() (*T, error) {
		var out T
		if err := u.model.GenerateJSON(ctx, prompt, schema, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}, append(u.retryOpts, retry.Context(ctx))...)
	if err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}
	return report, nil
}

func renderBudgetPlan(items []entity.BudgetItem) string {
	var sb strings.Builder
	var total, eligible float64

	for _, item := range items {
		status := "not covered"
		if item.IsEligible {
			status = "covered by the grant"
			eligible += item.EstimatedCost
		}
		total += item.EstimatedCost
		fmt.Fprintf(&sb, "%s / %s: %.2f EUR (%s)\n%s\n\n",
			item.Category, item.Item, item.EstimatedCost, status, item.Reason)
	}
	fmt.Fprintf(&sb, "Total: %.2f EUR, of which %.2f EUR grant eligible.", total, eligible)

	return sb.String()
}

func cacheKey(kind string, parts ...string) string {
	return kind + "|" + strings.Join(parts, "|")
}
