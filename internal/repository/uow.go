package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositorySet exposes every repository over one shared connection
// source, either the pool or a single transaction.
type RepositorySet interface {
	TestCases() TestCaseRepository
	HistoryEntries() HistoryEntryRepository
	InputData() InputDataRepository
	DataPools() DataPoolRepository
}

// UnitOfWork is a RepositorySet that can also run a function with all
// repositories bound to one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	RepositorySet
	WithinTx(ctx context.Context, fn func(repos RepositorySet) error) error
}

var _ UnitOfWork = &PostgresUnitOfWork{}

type repositorySet struct {
	testCases TestCaseRepository
	history   HistoryEntryRepository
	inputData InputDataRepository
	dataPools DataPoolRepository
}

func newRepositorySet(db DBTX) *repositorySet {
	return &repositorySet{
		testCases: NewTestCasePostgres(db),
		history:   NewHistoryEntryPostgres(db),
		inputData: NewInputDataPostgres(db),
		dataPools: NewDataPoolPostgres(db),
	}
}

func (s *repositorySet) TestCases() TestCaseRepository          { return s.testCases }
func (s *repositorySet) HistoryEntries() HistoryEntryRepository { return s.history }
func (s *repositorySet) InputData() InputDataRepository         { return s.inputData }
func (s *repositorySet) DataPools() DataPoolRepository          { return s.dataPools }

// PostgresUnitOfWork implements UnitOfWork over a pgx connection pool
type PostgresUnitOfWork struct {
	pool *pgxpool.Pool
	*repositorySet
}

func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{
		pool:          pool,
		repositorySet: newRepositorySet(pool),
	}
}

func (u *PostgresUnitOfWork) WithinTx(ctx context.Context, fn func(repos RepositorySet) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newRepositorySet(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
