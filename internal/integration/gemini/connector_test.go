package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
)

func testConnector(t *testing.T, handler http.Handler) *Connector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.GeminiConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:   server.URL,
			Token: "test-token",
		},
		ChatModel:      "gemini-2.5-flash",
		EmbeddingModel: "text-embedding-004",
		EmbeddingDim:   3,
		Temperature:    0.7,
	}
	return NewConnector(cfg, zap.NewNop())
}

func writeGenerateResponse(w http.ResponseWriter, text string) {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	json.NewEncoder(w).Encode(resp)
}

func TestEmbed(t *testing.T) {
	t.Run("returns the embedding and sends the api key", func(t *testing.T) {
		var gotHeader, gotPath string
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Get("x-goog-api-key")
			gotPath = r.URL.Path
			json.NewEncoder(w).Encode(map[string]any{
				"embedding": map[string]any{"values": []float32{0.1, 0.2, 0.3}},
			})
		}))

		vec, err := conn.Embed(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
		assert.Equal(t, "test-token", gotHeader)
		assert.Equal(t, "/v1beta/models/text-embedding-004:embedContent", gotPath)
	})

	t.Run("wrong dimension is a provider error", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"embedding": map[string]any{"values": []float32{0.1}},
			})
		}))

		_, err := conn.Embed(context.Background(), "hello")
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrEmbeddingProvider)
	})

	t.Run("empty embedding is a provider error", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"embedding":{"values":[]}}`))
		}))

		_, err := conn.Embed(context.Background(), "hello")
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrEmbeddingProvider)
	})

	t.Run("upstream failure is a provider error", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))

		_, err := conn.Embed(context.Background(), "hello")
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrEmbeddingProvider)
	})
}

func TestEmbedBatch(t *testing.T) {
	t.Run("results align with the input order", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			// Derive a distinct vector from the text so order mixups
			// are detectable.
			v := float32(len(req.Content.Parts[0].Text))
			json.NewEncoder(w).Encode(map[string]any{
				"embedding": map[string]any{"values": []float32{v, v, v}},
			})
		}))

		texts := []string{"a", "bb", "cccc"}
		vectors, err := conn.EmbedBatch(context.Background(), texts)
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		for i, text := range texts {
			assert.Equal(t, float32(len(text)), vectors[i][0])
		}
	})

	t.Run("one failure fails the whole batch", func(t *testing.T) {
		var calls atomic.Int32
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 2 {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"embedding": map[string]any{"values": []float32{1, 2, 3}},
			})
		}))

		_, err := conn.EmbedBatch(context.Background(), []string{"a", "b", "c"})
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrEmbeddingProvider)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("returns the completion text", func(t *testing.T) {
		var gotReq generateRequest
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			writeGenerateResponse(w, "the answer")
		}))

		history := []entity.ChatMessage{
			{Role: entity.RoleUser, Content: "earlier"},
			{Role: entity.RoleAssistant, Content: "reply"},
		}
		text, err := conn.Generate(context.Background(), "you are an advisor", history, "question")
		require.NoError(t, err)
		assert.Equal(t, "the answer", text)

		require.NotNil(t, gotReq.SystemInstruction)
		assert.Equal(t, "you are an advisor", gotReq.SystemInstruction.Parts[0].Text)

		require.Len(t, gotReq.Contents, 3)
		assert.Equal(t, "user", gotReq.Contents[0].Role)
		assert.Equal(t, "model", gotReq.Contents[1].Role)
		assert.Equal(t, "question", gotReq.Contents[2].Parts[0].Text)

		require.NotNil(t, gotReq.GenerationConfig)
		require.NotNil(t, gotReq.GenerationConfig.Temperature)
		assert.Equal(t, 0.7, *gotReq.GenerationConfig.Temperature)
	})

	t.Run("empty completion is a provider error", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		}))

		_, err := conn.Generate(context.Background(), "", nil, "question")
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrModelProvider)
	})
}

func TestGenerateStream(t *testing.T) {
	t.Run("deltas accumulate monotonically", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, piece := range []string{"The ", "cap ", "is 100k"} {
				payload, _ := json.Marshal(map[string]any{
					"candidates": []map[string]any{
						{"content": map[string]any{"parts": []map[string]any{{"text": piece}}}},
					},
				})
				fmt.Fprintf(w, "data: %s\n\n", payload)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
		}))

		var got []string
		full, err := conn.GenerateStream(context.Background(), "", nil, "question", func(s string) {
			got = append(got, s)
		})
		require.NoError(t, err)
		assert.Equal(t, "The cap is 100k", full)

		require.Len(t, got, 3)
		for i := 1; i < len(got); i++ {
			assert.True(t, strings.HasPrefix(got[i], got[i-1]))
		}
		assert.Equal(t, full, got[len(got)-1])
	})

	t.Run("empty stream is a provider error", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: [DONE]\n\n")
		}))

		_, err := conn.GenerateStream(context.Background(), "", nil, "question", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrModelProvider)
	})
}

func TestGenerateJSON(t *testing.T) {
	t.Run("decodes structured output", func(t *testing.T) {
		var gotReq generateRequest
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			writeGenerateResponse(w, `{"url":"https://example.com","score":81}`)
		}))

		schema := json.RawMessage(`{"type":"OBJECT"}`)
		var report entity.SeoReport
		err := conn.GenerateJSON(context.Background(), "audit it", schema, &report)
		require.NoError(t, err)
		assert.Equal(t, 81.0, report.Score)

		require.NotNil(t, gotReq.GenerationConfig)
		assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMIMEType)
	})

	t.Run("malformed output is a provider error", func(t *testing.T) {
		conn := testConnector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeGenerateResponse(w, "not json at all")
		}))

		var report entity.SeoReport
		err := conn.GenerateJSON(context.Background(), "audit it", json.RawMessage(`{}`), &report)
		require.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrModelProvider)
	})
}
