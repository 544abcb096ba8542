package pgsql

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, parent_account_id, code, name_primary, name_secondary, account_type, category,
	level, full_path, is_active, opening_balance, current_balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.ParentAccountID,
		&m.Code,
		&m.NamePrimary,
		&m.NameSecondary,
		&m.AccountType,
		&m.Category,
		&m.Level,
		&m.FullPath,
		&m.IsActive,
		&m.OpeningBalance,
		&m.CurrentBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to query accounts")
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan account row")
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating account rows")
	}
	return accounts, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapError(err, "account %s", accountID)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	accounts, err := r.queryAccounts(ctx, query, accountIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		out[acc.AccountID] = acc
	}
	return out, nil
}

// ListAccounts retrieves the accounts matching the filter ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var w whereBuilder
	if !filter.IncludeInactive {
		w.where("is_active = TRUE")
	}
	if filter.Category != "" {
		w.where("category = " + w.arg(string(filter.Category)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := w.arg(likePattern(search))
		w.where(fmt.Sprintf("(code ILIKE %[1]s OR name_primary ILIKE %[1]s OR name_secondary ILIKE %[1]s)", p))
	}
	query := `SELECT ` + accountColumns + ` FROM accounts` + w.String() + ` ORDER BY code, account_id;`
	return r.queryAccounts(ctx, query, w.args...)
}

// ListChildAccounts retrieves the direct children of parentID; "" lists the roots.
func (r *PgxAccountRepository) ListChildAccounts(ctx context.Context, parentID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE parent_account_id IS NOT DISTINCT FROM $1 AND (is_active OR $2)
		ORDER BY code, account_id;`
	return r.queryAccounts(ctx, query, mapping.NullString(parentID), includeInactive)
}

// CountLinesForAccounts returns how many journal lines reference any of the accounts.
func (r *PgxAccountRepository) CountLinesForAccounts(ctx context.Context, accountIDs []string) (int, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_lines WHERE account_id = ANY($1);`, accountIDs).Scan(&count)
	if err != nil {
		return 0, mapError(err, "failed to count journal lines")
	}
	return count, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.ParentAccountID,
		m.Code,
		m.NamePrimary,
		m.NameSecondary,
		m.AccountType,
		m.Category,
		m.Level,
		m.FullPath,
		m.IsActive,
		m.OpeningBalance,
		m.CurrentBalance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to save account %s (code %s)", m.AccountID, m.Code)
	}
	return nil
}

// UpdateAccount overwrites every mutable column of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET parent_account_id = $2, code = $3, name_primary = $4, name_secondary = $5, account_type = $6,
		    category = $7, level = $8, full_path = $9, is_active = $10, opening_balance = $11,
		    current_balance = $12, last_updated_at = $13, last_updated_by = $14
		WHERE account_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.ParentAccountID,
		m.Code,
		m.NamePrimary,
		m.NameSecondary,
		m.AccountType,
		m.Category,
		m.Level,
		m.FullPath,
		m.IsActive,
		m.OpeningBalance,
		m.CurrentBalance,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to update account %s", m.AccountID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

// DeleteAccount removes an account. Referenced accounts are refused by foreign keys.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return mapError(err, "failed to delete account %s", accountID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// ApplyBalanceDeltas adds each delta to the current balance in one batch.
// Accounts are updated in id order so concurrent postings lock rows consistently.
func (r *PgxAccountRepository) ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	accountIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	query := `
		UPDATE accounts
		SET current_balance = current_balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for _, id := range accountIDs {
		batch.Queue(query, id, deltas[id], now, userID)
	}

	br := r.db.SendBatch(ctx, batch)
	var batchErr error
	for _, id := range accountIDs {
		ct, err := br.Exec()
		if batchErr != nil {
			continue
		}
		if err != nil {
			batchErr = mapError(err, "failed to update balance for account %s", id)
		} else if ct.RowsAffected() == 0 {
			batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, id)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = mapError(err, "failed to close balance update batch")
	}
	return batchErr
}
