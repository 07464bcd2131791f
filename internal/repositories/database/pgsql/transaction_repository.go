package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	"github.com/SscSPs/budget_sync_app/internal/models"
	"github.com/SscSPs/budget_sync_app/internal/utils/mapping"
	"github.com/SscSPs/budget_sync_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 20

// transactionSelect reads transactions as t with their category names.
const transactionSelect = `
	SELECT t.transaction_id, t.external_id, t.user_id, t.bank_account_id, t.category_id, c.name AS category_name,
	       t.amount, t.txn_date, t.name, t.removed_at, t.created_at, t.last_updated_at
	FROM transactions t
	LEFT JOIN categories c ON c.category_id = t.category_id`

// uniqueExternalIDConstraint backs the no-double-ingestion guarantee.
const uniqueExternalIDConstraint = "transactions_external_id_key"

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(db querier) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func (r *PgxTransactionRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return mapping.ToDomainTransactionSlice(ms), nil
}

// FindTransactionByID retrieves a transaction, tombstoned or not.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txns, err := r.query(ctx, transactionSelect+` WHERE t.transaction_id = $1;`, transactionID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return &txns[0], nil
}

// FindTransactionsByIDs retrieves the listed transactions that exist.
func (r *PgxTransactionRepository) FindTransactionsByIDs(ctx context.Context, transactionIDs []string) ([]domain.Transaction, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, transactionSelect+` WHERE t.transaction_id = ANY($1) ORDER BY t.transaction_id;`, transactionIDs)
}

// FindTransactionsByExternalIDs maps provider ids to stored records. The rows
// are locked so a concurrent page for the same ids waits for this one.
func (r *PgxTransactionRepository) FindTransactionsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.Transaction, error) {
	out := make(map[string]domain.Transaction)
	if len(externalIDs) == 0 {
		return out, nil
	}
	txns, err := r.query(ctx, transactionSelect+` WHERE t.external_id = ANY($1) FOR UPDATE OF t;`, externalIDs)
	if err != nil {
		return nil, err
	}
	for _, txn := range txns {
		out[*txn.ExternalID] = txn
	}
	return out, nil
}

// ListTransactions returns one keyset page, newest first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var args queryArgs
	query := transactionSelect + "\n\t" + buildTransactionWhere(filter, &args)

	if nextToken != nil && *nextToken != "" {
		k, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += fmt.Sprintf(" AND (t.txn_date, t.created_at, t.transaction_id) < (%s, %s, %s)",
			args.add(k.Date), args.add(k.CreatedAt), args.add(k.ID))
	}
	// One extra row tells whether another page exists
	query += " ORDER BY t.txn_date DESC, t.created_at DESC, t.transaction_id DESC LIMIT " + args.add(limit+1) + ";"

	txns, err := r.query(ctx, query, args.values...)
	if err != nil {
		return nil, nil, err
	}
	if len(txns) <= limit {
		return txns, nil, nil
	}
	page := txns[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.Keyset{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.TransactionID})
	return page, &token, nil
}

// FindAllTransactions returns every transaction matching the filter, by id.
func (r *PgxTransactionRepository) FindAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var args queryArgs
	query := transactionSelect + "\n\t" + buildTransactionWhere(filter, &args) + " ORDER BY t.transaction_id;"
	return r.query(ctx, query, args.values...)
}

// SumTransactions returns the signed sum of the amounts matching the filter.
func (r *PgxTransactionRepository) SumTransactions(ctx context.Context, filter domain.TransactionFilter) (decimal.Decimal, error) {
	var args queryArgs
	query := `SELECT COALESCE(SUM(t.amount), 0) FROM transactions t ` + buildTransactionWhere(filter, &args) + ";"
	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, args.values...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return sum, nil
}

// SaveTransaction inserts a new transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (transaction_id, external_id, user_id, bank_account_id, category_id,
		                          amount, txn_date, name, removed_at, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		m.TransactionID, m.ExternalID, m.UserID, m.BankAccountID, m.CategoryID,
		m.Amount, m.Date, m.Name, m.RemovedAt, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		code, constraint := pgError(err)
		switch {
		case code == pgUniqueViolation && constraint == uniqueExternalIDConstraint:
			return fmt.Errorf("external transaction %s already stored: %w", *m.ExternalID, apperrors.ErrStorageConflict)
		case code == pgUniqueViolation:
			return fmt.Errorf("transaction %s: %w", m.TransactionID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// UpdateTransaction overwrites a stored transaction, tombstone included.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET bank_account_id = $2, category_id = $3, amount = $4, txn_date = $5, name = $6,
		    removed_at = $7, last_updated_at = $8
		WHERE transaction_id = $1;`,
		m.TransactionID, m.BankAccountID, m.CategoryID, m.Amount, m.Date, m.Name, m.RemovedAt, m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + m.TransactionID)
	}
	return nil
}

// DeleteTransactions hard-deletes the listed transactions of a user.
func (r *PgxTransactionRepository) DeleteTransactions(ctx context.Context, userID string, transactionIDs []string) (int, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND transaction_id = ANY($2);`, userID, transactionIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
