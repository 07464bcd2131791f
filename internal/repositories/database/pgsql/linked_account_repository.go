package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	"github.com/SscSPs/budget_sync_app/internal/models"
	"github.com/SscSPs/budget_sync_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const linkedAccountColumns = `linked_account_id, external_item_id, user_id, access_token, sync_cursor,
	institution_id, bank_name, logo, url, is_active, created_at, last_updated_at`

const bankAccountColumns = `bank_account_id, linked_account_id, external_id, name, account_type, mask`

type PgxLinkedAccountRepository struct {
	BaseRepository
}

func newPgxLinkedAccountRepository(db querier) *PgxLinkedAccountRepository {
	return &PgxLinkedAccountRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure PgxLinkedAccountRepository implements portsrepo.LinkedAccountRepositoryFacade
var _ portsrepo.LinkedAccountRepositoryFacade = (*PgxLinkedAccountRepository)(nil)

func (r *PgxLinkedAccountRepository) findOne(ctx context.Context, where string, arg any, resource string) (*domain.LinkedAccount, error) {
	rows, err := r.db.Query(ctx, `SELECT `+linkedAccountColumns+` FROM linked_accounts WHERE `+where+`;`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", resource, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.LinkedAccount])
	if err != nil {
		return nil, notFound(err, resource)
	}
	acc := mapping.ToDomainLinkedAccount(m)
	return &acc, nil
}

// FindLinkedAccountByID retrieves a linked account by its ID.
func (r *PgxLinkedAccountRepository) FindLinkedAccountByID(ctx context.Context, linkedAccountID string) (*domain.LinkedAccount, error) {
	return r.findOne(ctx, "linked_account_id = $1", linkedAccountID, "linked account "+linkedAccountID)
}

// FindLinkedAccountByExternalItemID retrieves a linked account by provider item id.
func (r *PgxLinkedAccountRepository) FindLinkedAccountByExternalItemID(ctx context.Context, externalItemID string) (*domain.LinkedAccount, error) {
	return r.findOne(ctx, "external_item_id = $1", externalItemID, "linked account for item "+externalItemID)
}

// ListLinkedAccounts lists summaries with their bank account counts, oldest first.
func (r *PgxLinkedAccountRepository) ListLinkedAccounts(ctx context.Context, filter domain.LinkedAccountFilter) ([]domain.LinkedAccountSummary, error) {
	var args queryArgs
	query := `
		SELECT la.linked_account_id, la.external_item_id, la.bank_name, la.logo, la.url, la.is_active, la.sync_cursor,
		       COUNT(ba.bank_account_id) AS accounts_count
		FROM linked_accounts la
		LEFT JOIN bank_accounts ba ON ba.linked_account_id = la.linked_account_id
		WHERE TRUE`
	if filter.UserID != "" {
		query += " AND la.user_id = " + args.add(filter.UserID)
	}
	if filter.Name != "" {
		query += " AND la.bank_name ILIKE '%' || " + args.add(likeEscaper.Replace(filter.Name)) + " || '%'"
	}
	switch filter.Status {
	case domain.StatusActive:
		query += " AND la.is_active"
	case domain.StatusInactive:
		query += " AND NOT la.is_active"
	}
	query += `
		GROUP BY la.linked_account_id
		ORDER BY la.created_at ASC, la.linked_account_id ASC;`

	rows, err := r.db.Query(ctx, query, args.values...)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked accounts: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.LinkedAccountSummary, 0)
	for rows.Next() {
		var s domain.LinkedAccountSummary
		if err := rows.Scan(&s.LinkedAccountID, &s.ExternalItemID, &s.BankName, &s.Logo, &s.URL, &s.IsActive, &s.Cursor, &s.AccountsCount); err != nil {
			return nil, fmt.Errorf("failed to scan linked account row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating linked account rows: %w", err)
	}
	return summaries, nil
}

// ListActiveLinkedAccountIDs returns the ids of every active linked account.
func (r *PgxLinkedAccountRepository) ListActiveLinkedAccountIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT linked_account_id FROM linked_accounts WHERE is_active ORDER BY linked_account_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active linked accounts: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan active linked accounts: %w", err)
	}
	return ids, nil
}

// FindBankAccountByID retrieves a bank account by its ID.
func (r *PgxLinkedAccountRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	resource := "bank account " + bankAccountID
	rows, err := r.db.Query(ctx, `SELECT `+bankAccountColumns+` FROM bank_accounts WHERE bank_account_id = $1;`, bankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", resource, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.BankAccount])
	if err != nil {
		return nil, notFound(err, resource)
	}
	ba := mapping.ToDomainBankAccount(m)
	return &ba, nil
}

// ListBankAccounts returns the bank accounts of a linked account by name.
func (r *PgxLinkedAccountRepository) ListBankAccounts(ctx context.Context, linkedAccountID string) ([]domain.BankAccount, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bankAccountColumns+` FROM bank_accounts WHERE linked_account_id = $1 ORDER BY name;`, linkedAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts of %s: %w", linkedAccountID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankAccount])
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank accounts of %s: %w", linkedAccountID, err)
	}
	return mapping.ToDomainBankAccountSlice(ms), nil
}

// FindBankAccountsByExternalIDs maps provider account ids to stored bank accounts.
func (r *PgxLinkedAccountRepository) FindBankAccountsByExternalIDs(ctx context.Context, externalIDs []string) (map[string]domain.BankAccount, error) {
	out := make(map[string]domain.BankAccount)
	if len(externalIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+bankAccountColumns+` FROM bank_accounts WHERE external_id = ANY($1);`, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts by external id: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankAccount])
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank accounts: %w", err)
	}
	for _, m := range ms {
		out[m.ExternalID] = mapping.ToDomainBankAccount(m)
	}
	return out, nil
}

// SaveLinkedAccount inserts a new linked account.
func (r *PgxLinkedAccountRepository) SaveLinkedAccount(ctx context.Context, account domain.LinkedAccount) error {
	m := mapping.ToModelLinkedAccount(account)
	_, err := r.db.Exec(ctx, `
		INSERT INTO linked_accounts (`+linkedAccountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		m.LinkedAccountID, m.ExternalItemID, m.UserID, m.AccessToken, m.Cursor,
		m.InstitutionID, m.BankName, m.Logo, m.URL, m.IsActive, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		if code, _ := pgError(err); code == pgUniqueViolation {
			return fmt.Errorf("linked account for item %s: %w", m.ExternalItemID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save linked account %s: %w", m.LinkedAccountID, err)
	}
	return nil
}

// SaveBankAccounts inserts bank accounts, skipping provider ids already stored.
func (r *PgxLinkedAccountRepository) SaveBankAccounts(ctx context.Context, accounts []domain.BankAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range accounts {
		m := mapping.ToModelBankAccount(a)
		batch.Queue(`
			INSERT INTO bank_accounts (`+bankAccountColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (external_id) DO NOTHING;`,
			m.BankAccountID, m.LinkedAccountID, m.ExternalID, m.Name, m.Type, m.Mask)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		if code, _ := pgError(err); code == pgForeignKeyViolation {
			return apperrors.NewNotFoundError("linked account " + accounts[0].LinkedAccountID)
		}
		return fmt.Errorf("failed to save bank accounts: %w", err)
	}
	return nil
}

// SetLinkedAccountActive toggles the active flag.
func (r *PgxLinkedAccountRepository) SetLinkedAccountActive(ctx context.Context, linkedAccountID string, active bool, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE linked_accounts SET is_active = $2, last_updated_at = $3 WHERE linked_account_id = $1;`,
		linkedAccountID, active, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update linked account %s: %w", linkedAccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("linked account " + linkedAccountID)
	}
	return nil
}

// AdvanceCursor moves the cursor only while it still holds expected. The
// row lock taken by the update serializes concurrent advances. A cursor that
// already holds next means this advance committed before, and is accepted
// without writing.
func (r *PgxLinkedAccountRepository) AdvanceCursor(ctx context.Context, linkedAccountID string, expected *string, next string, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE linked_accounts SET sync_cursor = $3, last_updated_at = $4
		WHERE linked_account_id = $1 AND sync_cursor IS NOT DISTINCT FROM $2;`,
		linkedAccountID, expected, next, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to advance cursor of %s: %w", linkedAccountID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current *string
	err = r.db.QueryRow(ctx, `SELECT sync_cursor FROM linked_accounts WHERE linked_account_id = $1;`, linkedAccountID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("linked account " + linkedAccountID)
		}
		return fmt.Errorf("failed to check linked account %s: %w", linkedAccountID, err)
	}
	if current != nil && *current == next {
		return nil
	}
	return fmt.Errorf("cursor of linked account %s moved: %w", linkedAccountID, apperrors.ErrStorageConflict)
}
