package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/pkg/formatter"
	"github.com/softsite/advisor-backend/internal/pkg/retry"
)

type fakeGenerator struct {
	calls    int
	failures int
	fill     func(out any)
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, _ string, _ json.RawMessage, out any) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("model overloaded")
	}
	if f.fill != nil {
		f.fill(out)
	}
	return nil
}

func newTestUseCase(gen JSONGenerator) *UseCase {
	cfg := config.AnalysisConfig{
		CacheTTL: time.Minute,
		Retry:    retry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}
	return NewUseCase(gen, formatter.NewFactory(), cfg, zap.NewNop())
}

func seoFill(out any) {
	report := out.(*entity.SeoReport)
	report.Score = 72
	report.Title = "Better title"
	report.Keywords = []string{"grants"}
}

func budgetFill(out any) {
	items := out.(*[]entity.BudgetItem)
	*items = []entity.BudgetItem{
		{Category: "Design", Item: "Landing page", EstimatedCost: 1200, IsEligible: true, Reason: "one-off setup cost"},
		{Category: "Marketing", Item: "Ad campaign", EstimatedCost: 500, IsEligible: false, Reason: "recurring spend"},
	}
}

func TestAnalyzeSEO(t *testing.T) {
	t.Run("missing url is rejected", func(t *testing.T) {
		uc := newTestUseCase(&fakeGenerator{fill: seoFill})

		_, err := uc.AnalyzeSEO(context.Background(), "  ", "keyword")
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	})

	t.Run("report carries the requested url", func(t *testing.T) {
		uc := newTestUseCase(&fakeGenerator{fill: seoFill})

		report, err := uc.AnalyzeSEO(context.Background(), "https://example.com", "grants")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", report.URL)
		assert.Equal(t, 72.0, report.Score)
	})

	t.Run("repeated requests hit the cache", func(t *testing.T) {
		gen := &fakeGenerator{fill: seoFill}
		uc := newTestUseCase(gen)

		first, err := uc.AnalyzeSEO(context.Background(), "https://example.com", "grants")
		require.NoError(t, err)
		second, err := uc.AnalyzeSEO(context.Background(), "https://example.com", "grants")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("a different keyword misses the cache", func(t *testing.T) {
		gen := &fakeGenerator{fill: seoFill}
		uc := newTestUseCase(gen)

		_, err := uc.AnalyzeSEO(context.Background(), "https://example.com", "grants")
		require.NoError(t, err)
		_, err = uc.AnalyzeSEO(context.Background(), "https://example.com", "funding")
		require.NoError(t, err)
		assert.Equal(t, 2, gen.calls)
	})

	t.Run("transient model failures are retried", func(t *testing.T) {
		gen := &fakeGenerator{failures: 2, fill: seoFill}
		uc := newTestUseCase(gen)

		report, err := uc.AnalyzeSEO(context.Background(), "https://example.com", "grants")
		require.NoError(t, err)
		assert.Equal(t, 3, gen.calls)
		assert.Equal(t, 72.0, report.Score)
	})

	t.Run("persistent failure is returned after retries", func(t *testing.T) {
		gen := &fakeGenerator{failures: 10, fill: seoFill}
		uc := newTestUseCase(gen)

		_, err := uc.AnalyzeSEO(context.Background(), "https://example.com", "grants")
		require.Error(t, err)
		assert.Equal(t, 3, gen.calls)
	})
}

func TestBudgetPlan(t *testing.T) {
	t.Run("missing industry is rejected", func(t *testing.T) {
		uc := newTestUseCase(&fakeGenerator{fill: budgetFill})

		_, err := uc.BudgetPlan(context.Background(), "", "Berlin")
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	})

	t.Run("plan items come back as generated", func(t *testing.T) {
		uc := newTestUseCase(&fakeGenerator{fill: budgetFill})

		items, err := uc.BudgetPlan(context.Background(), "bakery", "Berlin")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.True(t, items[0].IsEligible)
		assert.False(t, items[1].IsEligible)
	})
}

func TestExportBudgetPlan(t *testing.T) {
	t.Run("markdown export contains items and totals", func(t *testing.T) {
		uc := newTestUseCase(&fakeGenerator{fill: budgetFill})

		data, contentType, ext, err := uc.ExportBudgetPlan(context.Background(), "bakery", "Berlin", entity.FormatMarkdown)
		require.NoError(t, err)
		assert.Equal(t, "text/markdown; charset=utf-8", contentType)
		assert.Equal(t, ".md", ext)

		text := string(data)
		assert.Contains(t, text, "Landing page")
		assert.Contains(t, text, "Total: 1700.00 EUR")
		assert.Contains(t, text, "1200.00 EUR grant eligible")
	})

	t.Run("unknown format is rejected", func(t *testing.T) {
		uc := newTestUseCase(&fakeGenerator{fill: budgetFill})

		_, _, _, err := uc.ExportBudgetPlan(context.Background(), "bakery", "Berlin", "xlsx")
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	})
}
