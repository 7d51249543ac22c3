package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/segaai/testcase-backend/internal/entity"
)

// TestCaseRepository defines the interface for test case persistence
type TestCaseRepository interface {
	Create(ctx context.Context, testCase *entity.TestCase) error
	GetByID(ctx context.Context, id string) (*entity.TestCase, error)
	GetByNumber(ctx context.Context, number string) (*entity.TestCase, error)
	List(ctx context.Context, status *entity.TestCaseStatus) ([]*entity.TestCase, error)
	Update(ctx context.Context, testCase *entity.TestCase) error
	Delete(ctx context.Context, id string) error
}

var _ TestCaseRepository = &TestCasePostgres{}

// TestCasePostgres implements TestCaseRepository using PostgreSQL
type TestCasePostgres struct {
	db DBTX
}

func NewTestCasePostgres(db DBTX) *TestCasePostgres {
	return &TestCasePostgres{db: db}
}

func (r *TestCasePostgres) Create(ctx context.Context, testCase *entity.TestCase) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO test_cases (id, number, creation_date, name, author, precondition, postcondition, status, test_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		testCase.ID,
		testCase.Number,
		testCase.CreationDate.Time,
		testCase.Name,
		testCase.Author,
		testCase.Precondition,
		testCase.Postcondition,
		string(testCase.Status),
		testCase.TestCode,
	)
	if err != nil {
		return fmt.Errorf("create test case: %w", err)
	}

	return r.insertSteps(ctx, testCase.ID, testCase.Steps)
}

func (r *TestCasePostgres) GetByID(ctx context.Context, id string) (*entity.TestCase, error) {
	if id == "" {
		return nil, entity.ErrEmptyID
	}

	row := r.db.QueryRow(ctx, `
		SELECT id, number, creation_date, name, author, precondition, postcondition, status, test_code
		FROM test_cases
		WHERE id = $1`, id)

	return r.scanWithChildren(ctx, row)
}

func (r *TestCasePostgres) GetByNumber(ctx context.Context, number string) (*entity.TestCase, error) {
	if number == "" {
		return nil, entity.ErrEmptyID
	}

	row := r.db.QueryRow(ctx, `
		SELECT id, number, creation_date, name, author, precondition, postcondition, status, test_code
		FROM test_cases
		WHERE number = $1`, number)

	return r.scanWithChildren(ctx, row)
}

func (r *TestCasePostgres) List(ctx context.Context, status *entity.TestCaseStatus) ([]*entity.TestCase, error) {
	query := `
		SELECT id, number, creation_date, name, author, precondition, postcondition, status, test_code
		FROM test_cases
		ORDER BY creation_date, number`
	args := []any{}

	if status != nil {
		query = `
			SELECT id, number, creation_date, name, author, precondition, postcondition, status, test_code
			FROM test_cases
			WHERE status = $1
			ORDER BY creation_date, number`
		args = append(args, string(*status))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list test cases: %w", err)
	}
	defer rows.Close()

	testCases := make([]*entity.TestCase, 0)
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		testCases = append(testCases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list test cases: %w", err)
	}

	for _, tc := range testCases {
		if err := r.loadChildren(ctx, tc); err != nil {
			return nil, err
		}
	}

	return testCases, nil
}

// Update is a full replace: base fields are overwritten and the step
// collection is cleared and repopulated with fresh identifiers and
// foreign keys. History rows are append-only and are not touched here.
func (r *TestCasePostgres) Update(ctx context.Context, testCase *entity.TestCase) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE test_cases
		SET number = $2, creation_date = $3, name = $4, author = $5,
		    precondition = $6, postcondition = $7, status = $8, test_code = $9
		WHERE id = $1`,
		testCase.ID,
		testCase.Number,
		testCase.CreationDate.Time,
		testCase.Name,
		testCase.Author,
		testCase.Precondition,
		testCase.Postcondition,
		string(testCase.Status),
		testCase.TestCode,
	)
	if err != nil {
		return fmt.Errorf("update test case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTestCaseNotFound
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM test_steps WHERE test_case_id = $1`, testCase.ID); err != nil {
		return fmt.Errorf("clear test steps: %w", err)
	}

	return r.insertSteps(ctx, testCase.ID, testCase.Steps)
}

func (r *TestCasePostgres) Delete(ctx context.Context, id string) error {
	if id == "" {
		return entity.ErrEmptyID
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM test_cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete test case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTestCaseNotFound
	}

	return nil
}

func (r *TestCasePostgres) insertSteps(ctx context.Context, testCaseID string, steps []entity.TestStep) error {
	for i := range steps {
		step := &steps[i]
		if step.ID == "" {
			step.ID = uuid.New().String()
		}
		step.TestCaseID = testCaseID

		_, err := r.db.Exec(ctx, `
			INSERT INTO test_steps (id, test_case_id, step_number, action, expected_result)
			VALUES ($1, $2, $3, $4, $5)`,
			step.ID, step.TestCaseID, step.StepNumber, step.Action, step.ExpectedResult,
		)
		if err != nil {
			return fmt.Errorf("insert test step %d: %w", step.StepNumber, err)
		}
	}

	return nil
}

func (r *TestCasePostgres) scanWithChildren(ctx context.Context, row pgx.Row) (*entity.TestCase, error) {
	tc, err := scanTestCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrTestCaseNotFound
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, tc); err != nil {
		return nil, err
	}

	return tc, nil
}

func (r *TestCasePostgres) loadChildren(ctx context.Context, tc *entity.TestCase) error {
	steps, err := r.loadSteps(ctx, tc.ID)
	if err != nil {
		return err
	}
	tc.Steps = steps

	history, err := loadHistory(ctx, r.db, tc.ID)
	if err != nil {
		return err
	}
	tc.History = history

	return nil
}

func (r *TestCasePostgres) loadSteps(ctx context.Context, testCaseID string) ([]entity.TestStep, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, test_case_id, step_number, action, expected_result
		FROM test_steps
		WHERE test_case_id = $1
		ORDER BY step_number`, testCaseID)
	if err != nil {
		return nil, fmt.Errorf("load test steps: %w", err)
	}
	defer rows.Close()

	steps := make([]entity.TestStep, 0)
	for rows.Next() {
		var step entity.TestStep
		if err := rows.Scan(&step.ID, &step.TestCaseID, &step.StepNumber, &step.Action, &step.ExpectedResult); err != nil {
			return nil, fmt.Errorf("scan test step: %w", err)
		}
		steps = append(steps, step)
	}

	return steps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTestCase(row rowScanner) (*entity.TestCase, error) {
	var (
		tc           entity.TestCase
		creationDate time.Time
		status       string
	)

	err := row.Scan(
		&tc.ID, &tc.Number, &creationDate, &tc.Name, &tc.Author,
		&tc.Precondition, &tc.Postcondition, &status, &tc.TestCode,
	)
	if err != nil {
		return nil, err
	}

	tc.CreationDate = entity.Date{Time: creationDate}
	tc.Status = entity.TestCaseStatus(status)

	return &tc, nil
}
