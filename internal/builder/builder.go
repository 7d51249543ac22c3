package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/api"
	datapoolapi "github.com/segaai/testcase-backend/internal/api/datapool"
	exportapi "github.com/segaai/testcase-backend/internal/api/export"
	historyapi "github.com/segaai/testcase-backend/internal/api/history"
	inputdataapi "github.com/segaai/testcase-backend/internal/api/inputdata"
	testcaseapi "github.com/segaai/testcase-backend/internal/api/testcase"
	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/integration/llm"
	"github.com/segaai/testcase-backend/internal/integration/web"
	"github.com/segaai/testcase-backend/internal/integration/zephyr"
	"github.com/segaai/testcase-backend/internal/pkg/validator"
	"github.com/segaai/testcase-backend/internal/repository"
	datapoolusecase "github.com/segaai/testcase-backend/internal/usecase/datapool"
	exportusecase "github.com/segaai/testcase-backend/internal/usecase/export"
	historyusecase "github.com/segaai/testcase-backend/internal/usecase/history"
	inputdatausecase "github.com/segaai/testcase-backend/internal/usecase/inputdata"
	testcaseusecase "github.com/segaai/testcase-backend/internal/usecase/testcase"
)

// Build assembles the application: config, logger, database, migrations,
// connectors, usecases and the HTTP server.
func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.Bool("mocks_enabled", cfg.EnableMocks),
	)

	db, err := setupDatabase(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations applied")

	uow := repository.NewPostgresUnitOfWork(db)

	var llmConnector testcaseusecase.LLMConnector
	var zephyrConnector exportusecase.ZephyrConnector
	if cfg.EnableMocks {
		logger.Warn("Mock connectors enabled, external services will not be called")
		llmConnector = llm.NewMockConnector(logger)
		zephyrConnector = zephyr.NewMockConnector(logger)
	} else {
		llmConnector, err = llm.NewConnector(cfg.LLMConnectorCfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create LLM connector: %w", err)
		}
		zephyrConnector, err = zephyr.NewConnector(cfg.ZephyrConnectorCfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create Zephyr connector: %w", err)
		}
	}

	fetcher := web.NewFetcher(cfg.InputDataCfg.FetchTimeout)
	requestValidator := validator.NewValidator(cfg.InputDataCfg)

	testCaseUsecase := testcaseusecase.NewUsecase(uow, llmConnector, logger)
	inputDataUsecase := inputdatausecase.NewUsecase(uow, fetcher, cfg.InputDataCfg, logger)
	dataPoolUsecase := datapoolusecase.NewUsecase(uow, llmConnector, logger)
	historyUsecase := historyusecase.NewUsecase(uow, logger)
	exportUsecase := exportusecase.NewUsecase(uow, zephyrConnector, logger)

	handlers := &api.Handlers{
		TestCase:  testcaseapi.NewHandler(testCaseUsecase, requestValidator),
		InputData: inputdataapi.NewHandler(inputDataUsecase, cfg.InputDataCfg),
		DataPool:  datapoolapi.NewHandler(dataPoolUsecase, requestValidator),
		History:   historyapi.NewHandler(historyUsecase, requestValidator),
		Export:    exportapi.NewHandler(exportUsecase),
	}

	router := api.SetupRouter(handlers, logger)

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
		// Write timeout must cover the full generation loop, which can
		// take several LLM round trips.
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      6 * time.Minute,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}
