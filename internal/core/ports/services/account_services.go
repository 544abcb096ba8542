package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts searches the chart of accounts.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// GetAccountsTree assembles the forest below parentID ("" for the whole chart).
	GetAccountsTree(ctx context.Context, parentID string, includeInactive bool) ([]*domain.AccountNode, error)

	// ValidateAccountHierarchy reports whether a child of childType may be added under parentID.
	ValidateAccountHierarchy(ctx context.Context, parentID string, childType domain.AccountType) (bool, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// AddAccount creates an account and generates its code, level and full path.
	AddAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount applies a typed patch to an account.
	UpdateAccount(ctx context.Context, accountID string, patch domain.AccountPatch, userID string) (*domain.Account, error)

	// DeleteAccount removes an account, and its subtree when force is set.
	DeleteAccount(ctx context.Context, accountID string, force bool, userID string) error
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// GetAccountBalance sums posted activity, optionally up to asOf, into a balance view.
	GetAccountBalance(ctx context.Context, accountID string, asOf *time.Time) (*domain.AccountBalance, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
