package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier is the part of pgx shared by the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var (
	_ querier              = (*pgxpool.Pool)(nil)
	_ querier              = (pgx.Tx)(nil)
	_ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db querier
}

// notFound turns pgx.ErrNoRows into ErrNotFound for the named resource.
func notFound(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(resource)
	}
	return fmt.Errorf("failed to query %s: %w", resource, err)
}

// pgError returns the SQLSTATE and constraint name of a postgres error.
func pgError(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// PgxUnitOfWork runs functions inside one database transaction.
type PgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a unit of work over the pool.
func NewUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{pool: pool}
}

// Begin starts a new database transaction
func (u *PgxUnitOfWork) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (u *PgxUnitOfWork) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (u *PgxUnitOfWork) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// RunInTx runs fn with repositories bound to a fresh transaction and commits
// only if fn succeeds.
func (u *PgxUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, store portsrepo.LedgerTxStore) error) error {
	tx, err := u.Begin(ctx)
	if err != nil {
		return err
	}
	// Ignored once the transaction is committed
	defer func() { _ = u.Rollback(ctx, tx) }()

	if err := fn(ctx, newTxStore(tx)); err != nil {
		return err
	}
	return u.Commit(ctx, tx)
}
