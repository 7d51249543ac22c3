package common

import (
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/segaai/testcase-backend/internal/config"
	pkgHTTP "github.com/segaai/testcase-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds the shared outbound HTTP connector for an
// endpoint group: timeouts, bearer auth, request logging, transient
// retry and, when configured, a mutual-TLS client certificate.
func NewBaseConnector(cfg config.HTTPClientConfig, retryOpts []retry.Option, logger *zap.Logger) (*pkgHTTP.Connector, error) {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:    logger,
		BaseURL:   cfg.Url,
		RetryOpts: retryOpts,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}

	if cfg.CertPath != "" {
		certOpt, err := pkgHTTP.WithClientCertificate(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("configure mTLS for %s: %w", cfg.Url, err)
		}
		opts = append(opts, certOpt)
	}

	return pkgHTTP.NewConnector(connCfg, opts...), nil
}
