package inputdata

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/repository"
)

type fakeInputDataRepo struct {
	byID map[string]*entity.InputData
}

func (r *fakeInputDataRepo) Create(_ context.Context, data *entity.InputData) error {
	clone := *data
	r.byID[data.ID] = &clone
	return nil
}

func (r *fakeInputDataRepo) GetByID(_ context.Context, id string) (*entity.InputData, error) {
	data, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrInputDataNotFound
	}
	clone := *data
	return &clone, nil
}

func (r *fakeInputDataRepo) GetByTestCaseID(_ context.Context, testCaseID string) (*entity.InputData, error) {
	for _, data := range r.byID {
		if data.TestCaseID != nil && *data.TestCaseID == testCaseID {
			clone := *data
			return &clone, nil
		}
	}
	return nil, entity.ErrInputDataNotFound
}

func (r *fakeInputDataRepo) List(_ context.Context) ([]entity.InputData, error) {
	out := make([]entity.InputData, 0, len(r.byID))
	for _, data := range r.byID {
		out = append(out, *data)
	}
	return out, nil
}

func (r *fakeInputDataRepo) AttachToTestCase(_ context.Context, id, testCaseID string) error {
	data, ok := r.byID[id]
	if !ok {
		return entity.ErrInputDataNotFound
	}
	data.TestCaseID = &testCaseID
	return nil
}

func (r *fakeInputDataRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return entity.ErrInputDataNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeUnitOfWork struct {
	inputData *fakeInputDataRepo
}

func (u *fakeUnitOfWork) TestCases() repository.TestCaseRepository          { return nil }
func (u *fakeUnitOfWork) HistoryEntries() repository.HistoryEntryRepository { return nil }
func (u *fakeUnitOfWork) InputData() repository.InputDataRepository         { return u.inputData }
func (u *fakeUnitOfWork) DataPools() repository.DataPoolRepository          { return nil }

func (u *fakeUnitOfWork) WithinTx(_ context.Context, fn func(repos repository.RepositorySet) error) error {
	return fn(u)
}

type fakeFetcher struct {
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchBody(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.body, f.err
}

func newTestUsecase(fetcher PageFetcher) (*InputDataUsecase, *fakeUnitOfWork) {
	uow := &fakeUnitOfWork{inputData: &fakeInputDataRepo{byID: make(map[string]*entity.InputData)}}
	cfg := config.InputDataConfig{
		MaxFileSize:  1024,
		URLCacheTTL:  time.Minute,
		FetchTimeout: time.Second,
	}
	return NewUsecase(uow, fetcher, cfg, zap.NewNop()), uow
}

func fileHeader(t *testing.T, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "requirements.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)

	return form.File["file"][0]
}

func TestSave_TextOnly(t *testing.T) {
	uc, uow := newTestUsecase(&fakeFetcher{})

	data, err := uc.Save(context.Background(), nil, "Требования к авторизации", "", "Requirements")
	require.NoError(t, err)

	assert.Equal(t, "Требования к авторизации", data.Content)
	assert.Equal(t, "Requirements", data.Type)
	assert.Nil(t, data.TestCaseID)
	assert.Len(t, uow.inputData.byID, 1)
}

func TestSave_FileAndTextConcatenated(t *testing.T) {
	uc, _ := newTestUsecase(&fakeFetcher{})

	fh := fileHeader(t, "содержимое файла")
	data, err := uc.Save(context.Background(), fh, "дополнительный текст", "", "Scenario")
	require.NoError(t, err)

	assert.Equal(t, "содержимое файла\nдополнительный текст", data.Content)
}

func TestSave_URLParsedAndCached(t *testing.T) {
	fetcher := &fakeFetcher{body: "Текст страницы"}
	uc, _ := newTestUsecase(fetcher)

	data, err := uc.Save(context.Background(), nil, "", "https://wiki.example.com/reqs", "URL")
	require.NoError(t, err)

	assert.Equal(t, "URL: https://wiki.example.com/reqs\nPage Content:\nТекст страницы", data.Content)

	// Second save of the same URL hits the cache, not the network.
	_, err = uc.Save(context.Background(), nil, "", "https://wiki.example.com/reqs", "URL")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestSave_URLParseFailureKeepsURL(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	uc, _ := newTestUsecase(fetcher)

	data, err := uc.Save(context.Background(), nil, "", "https://down.example.com", "URL")
	require.NoError(t, err)

	assert.Contains(t, data.Content, "URL: https://down.example.com")
	assert.Contains(t, data.Content, "Failed to parse URL: connection refused")
}

func TestSave_Validation(t *testing.T) {
	uc, _ := newTestUsecase(&fakeFetcher{})
	ctx := context.Background()

	_, err := uc.Save(ctx, nil, "текст", "", "")
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = uc.Save(ctx, nil, "", "", "Requirements")
	assert.ErrorIs(t, err, entity.ErrNoDataSource)

	big := fileHeader(t, string(bytes.Repeat([]byte("a"), 2048)))
	_, err = uc.Save(ctx, big, "", "", "Requirements")
	assert.ErrorIs(t, err, entity.ErrFileTooLarge)
}

func TestAttachAndGetByTestCase(t *testing.T) {
	uc, _ := newTestUsecase(&fakeFetcher{})
	ctx := context.Background()

	data, err := uc.Save(ctx, nil, "требования", "", "Requirements")
	require.NoError(t, err)

	require.NoError(t, uc.AttachToTestCase(ctx, data.ID, "tc-1"))

	linked, err := uc.GetByTestCaseID(ctx, "tc-1")
	require.NoError(t, err)
	assert.Equal(t, data.ID, linked.ID)

	_, err = uc.GetByTestCaseID(ctx, "tc-missing")
	assert.ErrorIs(t, err, entity.ErrInputDataNotFound)
}
