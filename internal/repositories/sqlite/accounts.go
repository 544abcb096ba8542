package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, parent_account_id, code, name_primary, name_secondary, account_type, category,
	level, full_path, is_active, opening_balance, current_balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row scanner) (domain.Account, error) {
	var (
		acc    domain.Account
		parent sql.NullString
		audit  auditColumns
	)
	dest := []any{
		&acc.AccountID,
		&parent,
		&acc.Code,
		&acc.NamePrimary,
		&acc.NameSecondary,
		&acc.AccountType,
		&acc.Category,
		&acc.Level,
		&acc.FullPath,
		&acc.IsActive,
		&acc.OpeningBalance,
		&acc.CurrentBalance,
	}
	if err := row.Scan(append(dest, audit.dest()...)...); err != nil {
		return domain.Account{}, err
	}
	fields, err := audit.toDomain()
	if err != nil {
		return domain.Account{}, err
	}
	acc.ParentAccountID = parent.String
	acc.AuditFields = fields
	return acc, nil
}

func (s *Store) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
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

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ?;`
	acc, err := scanAccount(s.q.QueryRowContext(ctx, query, accountID))
	if err != nil {
		return nil, mapError(err, "account %s", accountID)
	}
	return &acc, nil
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	in, args := inList(accountIDs)
	accounts, err := s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id IN `+in+`;`, args...)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		out[acc.AccountID] = acc
	}
	return out, nil
}

func (s *Store) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var w whereBuilder
	if !filter.IncludeInactive {
		w.where("is_active = 1")
	}
	if filter.Category != "" {
		w.where("category = ?", string(filter.Category))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := likePattern(search)
		w.where(`(code LIKE ? ESCAPE '\' OR name_primary LIKE ? ESCAPE '\' OR name_secondary LIKE ? ESCAPE '\')`, p, p, p)
	}
	return s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts`+w.String()+` ORDER BY code, account_id;`, w.args...)
}

func (s *Store) ListChildAccounts(ctx context.Context, parentID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE parent_account_id IS ? AND (is_active = 1 OR ?)
		ORDER BY code, account_id;`
	return s.queryAccounts(ctx, query, nullString(parentID), includeInactive)
}

func (s *Store) CountLinesForAccounts(ctx context.Context, accountIDs []string) (int, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}
	in, args := inList(accountIDs)
	var count int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_lines WHERE account_id IN `+in+`;`, args...).Scan(&count); err != nil {
		return 0, mapError(err, "failed to count journal lines")
	}
	return count, nil
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := s.q.ExecContext(ctx, query,
		account.AccountID,
		nullString(account.ParentAccountID),
		account.Code,
		account.NamePrimary,
		account.NameSecondary,
		string(account.AccountType),
		string(account.Category),
		account.Level,
		account.FullPath,
		account.IsActive,
		account.OpeningBalance,
		account.CurrentBalance,
		formatTime(account.CreatedAt),
		account.CreatedBy,
		formatTime(account.LastUpdatedAt),
		account.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to save account %s (code %s)", account.AccountID, account.Code)
	}
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET parent_account_id = ?, code = ?, name_primary = ?, name_secondary = ?, account_type = ?,
		    category = ?, level = ?, full_path = ?, is_active = ?, opening_balance = ?,
		    current_balance = ?, last_updated_at = ?, last_updated_by = ?
		WHERE account_id = ?;
	`
	res, err := s.q.ExecContext(ctx, query,
		nullString(account.ParentAccountID),
		account.Code,
		account.NamePrimary,
		account.NameSecondary,
		string(account.AccountType),
		string(account.Category),
		account.Level,
		account.FullPath,
		account.IsActive,
		account.OpeningBalance,
		account.CurrentBalance,
		formatTime(account.LastUpdatedAt),
		account.LastUpdatedBy,
		account.AccountID,
	)
	if err != nil {
		return mapError(err, "failed to update account %s", account.AccountID)
	}
	return expectOne(res, "account "+account.AccountID)
}

func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE account_id = ?;`, accountID)
	if err != nil {
		return mapError(err, "failed to delete account %s", accountID)
	}
	return expectOne(res, "account "+accountID)
}

// ApplyBalanceDeltas reads and rewrites each balance inside the caller's transaction.
func (s *Store) ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	accountIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	for _, id := range accountIDs {
		var current decimal.Decimal
		err := s.q.QueryRowContext(ctx, `SELECT current_balance FROM accounts WHERE account_id = ?;`, id).Scan(&current)
		if err != nil {
			return mapError(err, "account %s not found during balance update", id)
		}
		_, err = s.q.ExecContext(ctx,
			`UPDATE accounts SET current_balance = ?, last_updated_at = ?, last_updated_by = ? WHERE account_id = ?;`,
			current.Add(deltas[id]), formatTime(now), userID, id)
		if err != nil {
			return mapError(err, "failed to update balance for account %s", id)
		}
	}
	return nil
}
