package common

import (
	"github.com/softsite/advisor-backend/internal/config"
	pkgHTTP "github.com/softsite/advisor-backend/pkg/http"
	"go.uber.org/zap"
)

// apiKeyHeader is how the Generative Language API expects its credential.
const apiKeyHeader = "x-goog-api-key"

func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthHeader(apiKeyHeader, cfg.Token),
	)
}
