package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/segaai/testcase-backend/internal/entity"
)

// InputDataRepository defines the interface for stored source material
type InputDataRepository interface {
	Create(ctx context.Context, data *entity.InputData) error
	GetByID(ctx context.Context, id string) (*entity.InputData, error)
	GetByTestCaseID(ctx context.Context, testCaseID string) (*entity.InputData, error)
	List(ctx context.Context) ([]entity.InputData, error)
	AttachToTestCase(ctx context.Context, id, testCaseID string) error
	Delete(ctx context.Context, id string) error
}

var _ InputDataRepository = &InputDataPostgres{}

// InputDataPostgres implements InputDataRepository using PostgreSQL
type InputDataPostgres struct {
	db DBTX
}

func NewInputDataPostgres(db DBTX) *InputDataPostgres {
	return &InputDataPostgres{db: db}
}

func (r *InputDataPostgres) Create(ctx context.Context, data *entity.InputData) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO input_data (id, content, source_type, test_case_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		data.ID, data.Content, data.Type, data.TestCaseID, data.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create input data: %w", err)
	}

	return nil
}

func (r *InputDataPostgres) GetByID(ctx context.Context, id string) (*entity.InputData, error) {
	if id == "" {
		return nil, entity.ErrEmptyID
	}

	var data entity.InputData
	err := r.db.QueryRow(ctx, `
		SELECT id, content, source_type, test_case_id, created_at
		FROM input_data
		WHERE id = $1`, id,
	).Scan(&data.ID, &data.Content, &data.Type, &data.TestCaseID, &data.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrInputDataNotFound
		}
		return nil, fmt.Errorf("get input data: %w", err)
	}

	return &data, nil
}

func (r *InputDataPostgres) GetByTestCaseID(ctx context.Context, testCaseID string) (*entity.InputData, error) {
	if testCaseID == "" {
		return nil, entity.ErrEmptyID
	}

	var data entity.InputData
	err := r.db.QueryRow(ctx, `
		SELECT id, content, source_type, test_case_id, created_at
		FROM input_data
		WHERE test_case_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, testCaseID,
	).Scan(&data.ID, &data.Content, &data.Type, &data.TestCaseID, &data.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrInputDataNotFound
		}
		return nil, fmt.Errorf("get input data by test case: %w", err)
	}

	return &data, nil
}

func (r *InputDataPostgres) List(ctx context.Context) ([]entity.InputData, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, content, source_type, test_case_id, created_at
		FROM input_data
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list input data: %w", err)
	}
	defer rows.Close()

	items := make([]entity.InputData, 0)
	for rows.Next() {
		var data entity.InputData
		if err := rows.Scan(&data.ID, &data.Content, &data.Type, &data.TestCaseID, &data.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan input data: %w", err)
		}
		items = append(items, data)
	}

	return items, rows.Err()
}

func (r *InputDataPostgres) AttachToTestCase(ctx context.Context, id, testCaseID string) error {
	if id == "" {
		return entity.ErrEmptyID
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE input_data SET test_case_id = $2 WHERE id = $1`, id, testCaseID)
	if err != nil {
		return fmt.Errorf("attach input data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrInputDataNotFound
	}

	return nil
}

func (r *InputDataPostgres) Delete(ctx context.Context, id string) error {
	if id == "" {
		return entity.ErrEmptyID
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM input_data WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete input data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrInputDataNotFound
	}

	return nil
}
