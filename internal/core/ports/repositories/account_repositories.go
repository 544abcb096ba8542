package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts matching the filter ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// ListChildAccounts retrieves the direct children of parentID ("" lists roots) ordered by code.
	ListChildAccounts(ctx context.Context, parentID string, includeInactive bool) ([]domain.Account, error)

	// CountLinesForAccounts returns how many journal lines reference any of the accounts.
	CountLinesForAccounts(ctx context.Context, accountIDs []string) (int, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A duplicate active code yields apperrors.ErrConflict.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount overwrites the stored account with the given value.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account.
	DeleteAccount(ctx context.Context, accountID string) error

	// ApplyBalanceDeltas adds each delta to the account's current balance.
	ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
