package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/integration/gemini"
)

func TestSeoReportSchema(t *testing.T) {
	var schema struct {
		Properties struct {
			Recommendations struct {
				Items struct {
					Properties struct {
						Priority struct {
							Enum []string `json:"enum"`
						} `json:"priority"`
					} `json:"properties"`
				} `json:"items"`
			} `json:"recommendations"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(seoReportSchema, &schema))

	enum := schema.Properties.Recommendations.Items.Properties.Priority.Enum
	require.NotEmpty(t, enum)

	t.Run("priority enum uses capitalized values", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"High", "Medium", "Low"}, enum)
	})

	t.Run("provider output satisfies the enum", func(t *testing.T) {
		allowed := make(map[string]bool, len(enum))
		for _, v := range enum {
			allowed[v] = true
		}

		var report entity.SeoReport
		connector := gemini.NewMockConnector(3, zap.NewNop())
		require.NoError(t, connector.GenerateJSON(context.Background(), "seo audit", seoReportSchema, &report))

		require.NotEmpty(t, report.Recommendations)
		for _, rec := range report.Recommendations {
			assert.True(t, allowed[rec.Priority], "priority %q is outside the schema enum", rec.Priority)
		}
	})
}
