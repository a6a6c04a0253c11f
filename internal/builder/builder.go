package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/softsite/advisor-backend/internal/api"
	analysisapi "github.com/softsite/advisor-backend/internal/api/analysis"
	chatapi "github.com/softsite/advisor-backend/internal/api/chat"
	ingestapi "github.com/softsite/advisor-backend/internal/api/ingest"
	searchapi "github.com/softsite/advisor-backend/internal/api/search"
	"github.com/softsite/advisor-backend/internal/config"
	"github.com/softsite/advisor-backend/internal/entity"
	"github.com/softsite/advisor-backend/internal/integration/gemini"
	"github.com/softsite/advisor-backend/internal/pkg/formatter"
	"github.com/softsite/advisor-backend/internal/repository"
	"github.com/softsite/advisor-backend/internal/telegram"
	"github.com/softsite/advisor-backend/internal/usecase/analysis"
	"github.com/softsite/advisor-backend/internal/usecase/chat"
	"github.com/softsite/advisor-backend/internal/usecase/ingest"
	"github.com/softsite/advisor-backend/internal/usecase/retrieval"
)

// geminiConnector is the full surface both the real and the mock
// connector provide.
type geminiConnector interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Generate(ctx context.Context, system string, history []entity.ChatMessage, message string) (string, error)
	GenerateStream(ctx context.Context, system string, history []entity.ChatMessage, message string, onDelta func(full string)) (string, error)
	GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage, out any) error
}

// buildGeminiConnector picks the real or the mock model provider. Mocks
// keep local development working without a GEMINI_TOKEN.
func buildGeminiConnector(cfg *config.Config, logger *zap.Logger) geminiConnector {
	if cfg.EnableMocks {
		logger.Info("Using mock Gemini connector")
		return gemini.NewMockConnector(cfg.GeminiCfg.EmbeddingDim, logger)
	}
	logger.Info("Using real Gemini connector")
	return gemini.NewConnector(cfg.GeminiCfg, logger)
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	documentRepo := repository.NewDocumentPostgres(db)
	chatMessageRepo := repository.NewChatMessagePostgres(db)
	logger.Info("Repositories initialized")

	model := buildGeminiConnector(cfg, logger)

	ingestUC := ingest.NewUseCase(model, documentRepo, cfg.IngestCfg, logger)
	retrievalUC := retrieval.NewUseCase(model, documentRepo, cfg.RetrievalCfg, logger)
	chatUC := chat.NewUseCase(retrievalUC, model, chatMessageRepo, cfg.PolicyDocument, logger)
	analysisUC := analysis.NewUseCase(model, formatter.NewFactory(), cfg.AnalysisCfg, logger)
	logger.Info("Use cases initialized")

	router := api.SetupRouter(
		ingestapi.NewHandler(ingestUC),
		searchapi.NewHandler(retrievalUC),
		chatapi.NewHandler(chatUC),
		analysisapi.NewHandler(analysisUC),
		logger,
	)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
		// Write timeout must cover a whole streamed answer.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram advisor bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	documentRepo := repository.NewDocumentPostgres(db)
	chatMessageRepo := repository.NewChatMessagePostgres(db)

	model := buildGeminiConnector(cfg, logger)

	retrievalUC := retrieval.NewUseCase(model, documentRepo, cfg.RetrievalCfg, logger)
	chatUC := chat.NewUseCase(retrievalUC, model, chatMessageRepo, cfg.PolicyDocument, logger)

	bot, err := telegram.NewBot(&cfg.TelegramCfg, chatUC, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}
