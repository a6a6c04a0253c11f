package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/softsite/advisor-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configuration
	GeminiCfg GeminiConnectorConfig `envPrefix:"GEMINI_"`

	// RAG pipeline configuration
	IngestCfg    IngestConfig    `envPrefix:"INGEST_"`
	RetrievalCfg RetrievalConfig `envPrefix:"RETRIEVAL_"`

	// Analysis tools configuration
	AnalysisCfg AnalysisConfig `envPrefix:"ANALYSIS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Static advisor policy document (loaded from file)
	PolicyDocument string

	// Environment (set from flag, not from env var)
	Environment string
}

// GeminiConnectorConfig holds the model provider configuration.
type GeminiConnectorConfig struct {
	HTTPClientConfig
	ChatModel      string  `env:"CHAT_MODEL" envDefault:"gemini-2.5-flash"`
	EmbeddingModel string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	EmbeddingDim   int     `env:"EMBEDDING_DIM" envDefault:"768"`
	Temperature    float64 `env:"TEMPERATURE" envDefault:"0.7"`
}

// IngestConfig holds text-splitting parameters.
type IngestConfig struct {
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"200"`
}

// RetrievalConfig holds similarity search parameters.
type RetrievalConfig struct {
	ChatTopK   int     `env:"CHAT_TOP_K" envDefault:"3"`
	SearchTopK int     `env:"SEARCH_TOP_K" envDefault:"5"`
	Threshold  float64 `env:"THRESHOLD" envDefault:"0.5"`
}

// AnalysisConfig holds report caching and retry parameters.
type AnalysisConfig struct {
	CacheTTL time.Duration        `env:"CACHE_TTL" envDefault:"15m"`
	Retry    pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"30"`
	MaxHistoryTurns    int    `env:"MAX_HISTORY_TURNS" envDefault:"20"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"` // seconds
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://generativelanguage.googleapis.com"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load the advisor policy document from file
	if err := loadPolicyDocument(cfg); err != nil {
		return nil, fmt.Errorf("load policy document: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.IngestCfg.ChunkSize <= 0 {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_SIZE must be positive, got %d", cfg.IngestCfg.ChunkSize))
	}

	if cfg.IngestCfg.ChunkOverlap < 0 || cfg.IngestCfg.ChunkOverlap >= cfg.IngestCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_OVERLAP must be in [0, chunk size), got %d", cfg.IngestCfg.ChunkOverlap))
	}

	if cfg.RetrievalCfg.ChatTopK < 1 || cfg.RetrievalCfg.ChatTopK > 50 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_CHAT_TOP_K must be between 1 and 50, got %d", cfg.RetrievalCfg.ChatTopK))
	}

	if cfg.RetrievalCfg.SearchTopK < 1 || cfg.RetrievalCfg.SearchTopK > 50 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_SEARCH_TOP_K must be between 1 and 50, got %d", cfg.RetrievalCfg.SearchTopK))
	}

	if cfg.RetrievalCfg.Threshold < 0 || cfg.RetrievalCfg.Threshold > 1 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_THRESHOLD must be between 0 and 1, got %f", cfg.RetrievalCfg.Threshold))
	}

	if cfg.GeminiCfg.EmbeddingDim < 1 {
		errors = append(errors, fmt.Sprintf("GEMINI_EMBEDDING_DIM must be positive, got %d", cfg.GeminiCfg.EmbeddingDim))
	}

	if !cfg.EnableMocks && cfg.GeminiCfg.Token == "" {
		errors = append(errors, "GEMINI_TOKEN is required unless ENABLE_MOCKS is set")
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
