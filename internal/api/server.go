package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	analysisapi "github.com/softsite/advisor-backend/internal/api/analysis"
	chatapi "github.com/softsite/advisor-backend/internal/api/chat"
	"github.com/softsite/advisor-backend/internal/api/docs"
	ingestapi "github.com/softsite/advisor-backend/internal/api/ingest"
	"github.com/softsite/advisor-backend/internal/api/middleware"
	searchapi "github.com/softsite/advisor-backend/internal/api/search"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	ingestHandler *ingestapi.Handler,
	searchHandler *searchapi.Handler,
	chatHandler *chatapi.Handler,
	analysisHandler *analysisapi.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(120 * time.Second)) // Streamed answers can take a while

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	docs.RegisterRoutes(r)

	ingestapi.RegisterRoutes(r, ingestHandler)
	searchapi.RegisterRoutes(r, searchHandler)
	chatapi.RegisterRoutes(r, chatHandler)
	analysisapi.RegisterRoutes(r, analysisHandler)

	return r
}
