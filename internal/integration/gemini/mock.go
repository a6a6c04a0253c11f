package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/softsite/advisor-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is a deterministic stand-in for the Gemini API, selected by
// ENABLE_MOCKS. Embeddings are derived from the input text so identical
// texts collide and retrieval behaves plausibly in local development.
type MockConnector struct {
	dim    int
	logger *zap.Logger
}

func NewMockConnector(dim int, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		dim:    dim,
		logger: logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding text", zap.Int("text_length", len(text)))

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	// Cheap xorshift expansion of the text hash into a unit-ish vector.
	embedding := make([]float32, m.dim)
	state := seed | 1
	for i := range embedding {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		embedding[i] = float32(int64(state%2000)-1000) / 1000
	}
	return embedding, nil
}

func (m *MockConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding batch", zap.Int("text_count", len(texts)))

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

func (m *MockConnector) Generate(ctx context.Context, system string, history []entity.ChatMessage, message string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating chat completion", zap.Int("history_turns", len(history)))

	return fmt.Sprintf(
		"[MOCK] Thanks for your question about %q. Under the Start-up Nation 2025 rules the maximum grant is 250,000 RON with a minimum 10%% own contribution. Ask me about eligible expenses, the evaluation grid, or budget planning.",
		message,
	), nil
}

func (m *MockConnector) GenerateStream(ctx context.Context, system string, history []entity.ChatMessage, message string, onDelta func(full string)) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating streamed chat completion")

	full, err := m.Generate(ctx, system, history, message)
	if err != nil {
		return "", err
	}

	// Deliver in three growing prefixes to exercise stream consumers.
	if onDelta != nil {
		for _, cut := range []int{len(full) / 3, 2 * len(full) / 3, len(full)} {
			onDelta(full[:cut])
		}
	}
	return full, nil
}

func (m *MockConnector) GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage, out any) error {
	ctxzap.Info(ctx, "[MOCK] generating structured completion")

	switch v := out.(type) {
	case *entity.SeoReport:
		*v = entity.SeoReport{
			URL:   "https://example.com",
			Score: 72,
			Title: "Improved page title with target keyword",
			Recommendations: []entity.SeoRecommendation{
				{Priority: "High", Text: "Add a descriptive meta description"},
				{Priority: "Medium", Text: "Compress hero images"},
			},
			Keywords: []string{"startup grant", "finantare", "start-up nation", "eligibility", "afn"},
		}
	case *entity.SpeedReport:
		*v = entity.SpeedReport{
			URL:              "https://example.com",
			PerformanceScore: 61,
			FCP:              "1.8s",
			LCP:              "3.4s",
			CLS:              "0.12",
			Recommendations: []string{
				"Serve images in next-gen formats",
				"Reduce unused JavaScript",
				"Enable text compression",
			},
		}
	case *[]entity.BudgetItem:
		*v = []entity.BudgetItem{
			{Category: "IT", Item: "Laptop", EstimatedCost: 8000, IsEligible: true, Reason: "Mandatory digitalization criteria"},
			{Category: "Software", Item: "Company website", EstimatedCost: 25000, IsEligible: true, Reason: "Digitalization, capped at 25k RON"},
			{Category: "Equipment", Item: "Solar panels", EstimatedCost: 30000, IsEligible: true, Reason: "Green energy score (20 points)"},
		}
	default:
		return fmt.Errorf("%w: no mock output for %T", entity.ErrModelProvider, out)
	}
	return nil
}
