package inputdata

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/repository"
)

// PageFetcher downloads a web page and returns its visible text
type PageFetcher interface {
	FetchBody(ctx context.Context, url string) (string, error)
}

// InputDataUsecase stores source material for test case generation:
// uploaded files, raw text and parsed web pages. Page text is cached
// so repeated saves of the same URL skip the download.
type InputDataUsecase struct {
	uow       repository.UnitOfWork
	fetcher   PageFetcher
	pageCache *cache.Cache
	cfg       config.InputDataConfig
	logger    *zap.Logger
}

// NewUsecase creates a new input data use case
func NewUsecase(uow repository.UnitOfWork, fetcher PageFetcher, cfg config.InputDataConfig, logger *zap.Logger) *InputDataUsecase {
	return &InputDataUsecase{
		uow:       uow,
		fetcher:   fetcher,
		pageCache: cache.New(cfg.URLCacheTTL, 2*cfg.URLCacheTTL),
		cfg:       cfg,
		logger:    logger,
	}
}

// Save assembles content from the provided sources (file, text, URL —
// at least one required) and stores it. URL parse failures are
// recorded in the content instead of failing the request.
func (uc *InputDataUsecase) Save(ctx context.Context, file *multipart.FileHeader, textData, url, dataType string) (*entity.InputData, error) {
	if strings.TrimSpace(dataType) == "" {
		return nil, fmt.Errorf("%w: type", entity.ErrMissingField)
	}
	if file == nil && textData == "" && url == "" {
		return nil, entity.ErrNoDataSource
	}

	var content string

	if file != nil {
		if file.Size > uc.cfg.MaxFileSize {
			return nil, fmt.Errorf("%w: %d байт (максимум %d)", entity.ErrFileTooLarge, file.Size, uc.cfg.MaxFileSize)
		}

		fileContent, err := readFile(file)
		if err != nil {
			return nil, err
		}
		content = fileContent
	}

	if textData != "" {
		if content == "" {
			content = textData
		} else {
			content += "\n" + textData
		}
	}

	if url != "" {
		if content == "" {
			content = "URL: " + url
		} else {
			content += "\nURL: " + url
		}

		pageText, err := uc.fetchPage(ctx, url)
		switch {
		case err != nil:
			// The URL itself is still useful input, keep going.
			ctxzap.Warn(ctx, "failed to parse url", zap.String("url", url), zap.Error(err))
			content += fmt.Sprintf("\nFailed to parse URL: %v", err)
		case pageText != "":
			content += "\nPage Content:\n" + pageText
		}
	}

	if content == "" {
		return nil, entity.ErrEmptyContent
	}

	data := &entity.InputData{
		ID:        uuid.NewString(),
		Content:   content,
		Type:      dataType,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.uow.InputData().Create(ctx, data); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "input data saved",
		zap.String("input_data_id", data.ID),
		zap.String("type", dataType),
		zap.Int("content_size", len(content)),
	)

	return data, nil
}

// Get returns input data by ID
func (uc *InputDataUsecase) Get(ctx context.Context, id string) (*entity.InputData, error) {
	if strings.TrimSpace(id) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.InputData().GetByID(ctx, id)
}

// GetByTestCaseID returns the latest input data linked to a test case
func (uc *InputDataUsecase) GetByTestCaseID(ctx context.Context, testCaseID string) (*entity.InputData, error) {
	if strings.TrimSpace(testCaseID) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.InputData().GetByTestCaseID(ctx, testCaseID)
}

// AttachToTestCase links stored input data to a generated test case
func (uc *InputDataUsecase) AttachToTestCase(ctx context.Context, id, testCaseID string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(testCaseID) == "" {
		return entity.ErrEmptyID
	}

	return uc.uow.InputData().AttachToTestCase(ctx, id, testCaseID)
}

func (uc *InputDataUsecase) fetchPage(ctx context.Context, url string) (string, error) {
	if cached, ok := uc.pageCache.Get(url); ok {
		return cached.(string), nil
	}

	pageText, err := uc.fetcher.FetchBody(ctx, url)
	if err != nil {
		return "", err
	}

	uc.pageCache.Set(url, pageText, cache.DefaultExpiration)

	return pageText, nil
}

func readFile(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read uploaded file: %w", err)
	}

	return string(raw), nil
}
