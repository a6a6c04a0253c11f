package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/integration/common"
	pkghttp "github.com/softsite/advisor-backend/pkg/http"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Connector speaks to the Gemini REST API for embeddings, chat generation
// and structured-output generation. One instance is created per process and
// shared; it holds no per-request state.
type Connector struct {
	config    config.GeminiConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.GeminiConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Embed converts text into a fixed-length embedding vector.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &embedRequest{
		Model:   "models/" + c.config.EmbeddingModel,
		Content: content{Parts: []part{{Text: text}}},
	}

	endpoint := fmt.Sprintf("/v1beta/models/%s:embedContent", c.config.EmbeddingModel)

	var resp embedResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: embed content: %v", entity.ErrEmbeddingProvider, err)
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", entity.ErrEmbeddingProvider)
	}

	if len(resp.Embedding.Values) != c.config.EmbeddingDim {
		return nil, fmt.Errorf("%w: embedding dimension %d, expected %d",
			entity.ErrEmbeddingProvider, len(resp.Embedding.Values), c.config.EmbeddingDim)
	}

	return resp.Embedding.Values, nil
}

// EmbedBatch embeds every text concurrently, one outstanding call per text.
// The result is positionally aligned with the input. Any single failure
// fails the whole batch.
func (c *Connector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "embedding batch", zap.Int("text_count", len(texts)))

	embeddings := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			embedding, err := c.Embed(gctx, text)
			if err != nil {
				return err
			}
			embeddings[i] = embedding
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return embeddings, nil
}

// Generate sends the system instruction, role-tagged history and the new
// user message to the chat model and returns the complete answer.
func (c *Connector) Generate(ctx context.Context, system string, history []entity.ChatMessage, message string) (string, error) {
	ctxzap.Debug(ctx, "generating chat completion", zap.Int("history_turns", len(history)))

	req := c.buildGenerateRequest(system, history, message, nil)
	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", c.config.ChatModel)

	var resp generateResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return "", fmt.Errorf("%w: generate content: %v", entity.ErrModelProvider, err)
	}

	text := resp.text()
	if text == "" {
		return "", fmt.Errorf("%w: empty completion returned", entity.ErrModelProvider)
	}

	return text, nil
}

// GenerateStream behaves like Generate but delivers the answer
// incrementally: onDelta receives the full accumulated text after every
// server event, so each call sees a superset of the previous one.
func (c *Connector) GenerateStream(ctx context.Context, system string, history []entity.ChatMessage, message string, onDelta func(full string)) (string, error) {
	ctxzap.Debug(ctx, "generating streamed chat completion", zap.Int("history_turns", len(history)))

	req := c.buildGenerateRequest(system, history, message, nil)
	endpoint := fmt.Sprintf("/v1beta/models/%s:streamGenerateContent?alt=sse", c.config.ChatModel)

	var full strings.Builder
	err := c.connector.DoStreamRequest(ctx, http.MethodPost, endpoint, req, func(data []byte) error {
		var event generateResponse
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("decode stream event: %w", err)
		}
		if text := event.text(); text != "" {
			full.WriteString(text)
			if onDelta != nil {
				onDelta(full.String())
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: stream content: %v", entity.ErrModelProvider, err)
	}

	if full.Len() == 0 {
		return "", fmt.Errorf("%w: empty completion returned", entity.ErrModelProvider)
	}

	return full.String(), nil
}

// GenerateJSON asks the model for output constrained by a response schema
// and decodes the returned JSON into out.
func (c *Connector) GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage, out any) error {
	ctxzap.Debug(ctx, "generating structured completion")

	req := &generateRequest{
		Contents: []content{{Role: roleUser, Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}
	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", c.config.ChatModel)

	var resp generateResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return fmt.Errorf("%w: generate structured content: %v", entity.ErrModelProvider, err)
	}

	text := resp.text()
	if text == "" {
		return fmt.Errorf("%w: empty completion returned", entity.ErrModelProvider)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: malformed structured output: %v", entity.ErrModelProvider, err)
	}

	return nil
}

const (
	roleUser  = "user"
	roleModel = "model"
)

func (c *Connector) buildGenerateRequest(system string, history []entity.ChatMessage, message string, cfg *generationConfig) *generateRequest {
	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		role := roleUser
		if turn.Role == entity.RoleAssistant {
			role = roleModel
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: turn.Content}}})
	}
	contents = append(contents, content{Role: roleUser, Parts: []part{{Text: message}}})

	req := &generateRequest{
		Contents:         contents,
		GenerationConfig: cfg,
	}
	if req.GenerationConfig == nil {
		temperature := c.config.Temperature
		req.GenerationConfig = &generationConfig{Temperature: &temperature}
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	return req
}
