package repository

import (
	"context"
	"fmt"

	"github.com/segaai/testcase-backend/internal/entity"
)

// HistoryEntryRepository defines the interface for audit record persistence.
// Entries are append-only: there is no update or single-row delete.
type HistoryEntryRepository interface {
	Add(ctx context.Context, entry *entity.HistoryEntry) error
	ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.HistoryEntry, error)
}

var _ HistoryEntryRepository = &HistoryEntryPostgres{}

// HistoryEntryPostgres implements HistoryEntryRepository using PostgreSQL
type HistoryEntryPostgres struct {
	db DBTX
}

func NewHistoryEntryPostgres(db DBTX) *HistoryEntryPostgres {
	return &HistoryEntryPostgres{db: db}
}

func (r *HistoryEntryPostgres) Add(ctx context.Context, entry *entity.HistoryEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO history_entries (id, test_case_id, entry_timestamp, action, actor, details)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.TestCaseID, entry.Timestamp, entry.Action, entry.User, entry.Details,
	)
	if err != nil {
		return fmt.Errorf("add history entry: %w", err)
	}

	return nil
}

func (r *HistoryEntryPostgres) ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.HistoryEntry, error) {
	if testCaseID == "" {
		return nil, entity.ErrEmptyID
	}

	return loadHistory(ctx, r.db, testCaseID)
}

func loadHistory(ctx context.Context, db DBTX, testCaseID string) ([]entity.HistoryEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT id, test_case_id, entry_timestamp, action, actor, details
		FROM history_entries
		WHERE test_case_id = $1
		ORDER BY entry_timestamp`, testCaseID)
	if err != nil {
		return nil, fmt.Errorf("load history entries: %w", err)
	}
	defer rows.Close()

	entries := make([]entity.HistoryEntry, 0)
	for rows.Next() {
		var entry entity.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.TestCaseID, &entry.Timestamp, &entry.Action, &entry.User, &entry.Details); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
