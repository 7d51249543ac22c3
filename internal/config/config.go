package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/segaai/testcase-backend/internal/pkg/retry"
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

	// External service configurations
	LLMConnectorCfg    LLMConnectorConfig    `envPrefix:"LLM_"`
	ZephyrConnectorCfg ZephyrConnectorConfig `envPrefix:"ZEPHYR_"`

	// Input data ingestion configuration
	InputDataCfg InputDataConfig `envPrefix:"INPUT_DATA_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// LLMConnectorConfig configures the gateway to the inference service.
// ModelEndpoints maps a recognized model identifier to the request
// path on the inference host, e.g.
// LLM_MODEL_ENDPOINTS="qwen3-32b-awq:/v1/chat/completions,...".
type LLMConnectorConfig struct {
	HTTPClientConfig
	ModelEndpoints map[string]string    `env:"MODEL_ENDPOINTS,notEmpty" envKeyValSeparator:":" envSeparator:","`
	MaxTokens      int                  `env:"MAX_TOKENS" envDefault:"10000"`
	Temperature    float64              `env:"TEMPERATURE" envDefault:"0.7"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// ZephyrConnectorConfig configures the Zephyr Scale export target.
type ZephyrConnectorConfig struct {
	HTTPClientConfig
	ProjectKey string               `env:"PROJECT_KEY" envDefault:"TEST"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// InputDataConfig holds ingestion limits and the URL page cache TTL.
type InputDataConfig struct {
	MaxFileSize  int64         `env:"MAX_FILE_SIZE" envDefault:"10485760"` // 10 MiB
	URLCacheTTL  time.Duration `env:"URL_CACHE_TTL" envDefault:"10m"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
}

// HTTPClientConfig is shared by all outbound connectors. CertPath and
// KeyPath enable a mutual-TLS client certificate for endpoint groups
// that require it.
type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"300s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"30s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"300s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
	CertPath              string        `env:"CERT_PATH"`
	KeyPath               string        `env:"KEY_PATH"`
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

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	if len(cfg.LLMConnectorCfg.ModelEndpoints) == 0 {
		return fmt.Errorf("LLM_MODEL_ENDPOINTS must map at least one model to an endpoint")
	}

	if cfg.LLMConnectorCfg.MaxTokens < 1 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", cfg.LLMConnectorCfg.MaxTokens)
	}

	if cfg.LLMConnectorCfg.Temperature < 0 || cfg.LLMConnectorCfg.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %f", cfg.LLMConnectorCfg.Temperature)
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
