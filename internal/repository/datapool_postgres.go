package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/segaai/testcase-backend/internal/entity"
)

// DataPoolRepository defines the interface for data pool persistence
type DataPoolRepository interface {
	Create(ctx context.Context, pool *entity.DataPool) error
	GetByID(ctx context.Context, id string) (*entity.DataPool, error)
	ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.DataPool, error)
	Delete(ctx context.Context, id string) error
}

var _ DataPoolRepository = &DataPoolPostgres{}

// DataPoolPostgres implements DataPoolRepository using PostgreSQL
type DataPoolPostgres struct {
	db DBTX
}

func NewDataPoolPostgres(db DBTX) *DataPoolPostgres {
	return &DataPoolPostgres{db: db}
}

func (r *DataPoolPostgres) Create(ctx context.Context, pool *entity.DataPool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO data_pools (id, test_case_id, created_at)
		VALUES ($1, $2, $3)`,
		pool.ID, pool.TestCaseID, pool.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create data pool: %w", err)
	}

	for i := range pool.Items {
		item := &pool.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.DataPoolID = pool.ID
		_, err := r.db.Exec(ctx, `
			INSERT INTO data_pool_items (id, data_pool_id, item_data)
			VALUES ($1, $2, $3)`,
			item.ID, item.DataPoolID, item.Data,
		)
		if err != nil {
			return fmt.Errorf("create data pool item: %w", err)
		}
	}

	return nil
}

func (r *DataPoolPostgres) GetByID(ctx context.Context, id string) (*entity.DataPool, error) {
	if id == "" {
		return nil, entity.ErrEmptyID
	}

	var pool entity.DataPool
	err := r.db.QueryRow(ctx, `
		SELECT id, test_case_id, created_at
		FROM data_pools
		WHERE id = $1`, id,
	).Scan(&pool.ID, &pool.TestCaseID, &pool.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataPoolNotFound
		}
		return nil, fmt.Errorf("get data pool: %w", err)
	}

	pool.Items, err = r.loadItems(ctx, pool.ID)
	if err != nil {
		return nil, err
	}

	return &pool, nil
}

func (r *DataPoolPostgres) ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.DataPool, error) {
	if testCaseID == "" {
		return nil, entity.ErrEmptyID
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, test_case_id, created_at
		FROM data_pools
		WHERE test_case_id = $1
		ORDER BY created_at DESC`, testCaseID)
	if err != nil {
		return nil, fmt.Errorf("list data pools: %w", err)
	}
	defer rows.Close()

	pools := make([]entity.DataPool, 0)
	for rows.Next() {
		var pool entity.DataPool
		if err := rows.Scan(&pool.ID, &pool.TestCaseID, &pool.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan data pool: %w", err)
		}
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range pools {
		pools[i].Items, err = r.loadItems(ctx, pools[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return pools, nil
}

func (r *DataPoolPostgres) Delete(ctx context.Context, id string) error {
	if id == "" {
		return entity.ErrEmptyID
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM data_pools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete data pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrDataPoolNotFound
	}

	return nil
}

func (r *DataPoolPostgres) loadItems(ctx context.Context, poolID string) ([]entity.DataPoolItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, data_pool_id, item_data
		FROM data_pool_items
		WHERE data_pool_id = $1`, poolID)
	if err != nil {
		return nil, fmt.Errorf("load data pool items: %w", err)
	}
	defer rows.Close()

	items := make([]entity.DataPoolItem, 0)
	for rows.Next() {
		var item entity.DataPoolItem
		if err := rows.Scan(&item.ID, &item.DataPoolID, &item.Data); err != nil {
			return nil, fmt.Errorf("scan data pool item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
