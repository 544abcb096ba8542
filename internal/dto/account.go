package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	ParentAccountID string                 `json:"parentAccountID"` // Optional, empty for a root account
	NamePrimary     string                 `json:"namePrimary" binding:"required"`
	NameSecondary   string                 `json:"nameSecondary" binding:"required"`
	AccountType     domain.AccountType     `json:"accountType" binding:"required,oneof=general assistant analytic"`
	Category        domain.AccountCategory `json:"category" binding:"required,oneof=asset liability expense revenue equity"`
	OpeningBalance  decimal.Decimal        `json:"openingBalance"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	NamePrimary     *string                 `json:"namePrimary"`
	NameSecondary   *string                 `json:"nameSecondary"`
	Category        *domain.AccountCategory `json:"category" binding:"omitempty,oneof=asset liability expense revenue equity"`
	OpeningBalance  *decimal.Decimal        `json:"openingBalance"`
	IsActive        *bool                   `json:"isActive"`
	ParentAccountID *string                 `json:"parentAccountID"`
}

// ToPatch converts the request into the typed account patch.
func (r UpdateAccountRequest) ToPatch() domain.AccountPatch {
	return domain.AccountPatch{
		NamePrimary:     r.NamePrimary,
		NameSecondary:   r.NameSecondary,
		Category:        r.Category,
		OpeningBalance:  r.OpeningBalance,
		IsActive:        r.IsActive,
		ParentAccountID: r.ParentAccountID,
	}
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string                 `json:"accountID"`
	ParentAccountID string                 `json:"parentAccountID"` // Note: Empty string for root accounts
	Code            string                 `json:"code"`
	NamePrimary     string                 `json:"namePrimary"`
	NameSecondary   string                 `json:"nameSecondary"`
	AccountType     domain.AccountType     `json:"accountType"`
	Category        domain.AccountCategory `json:"category"`
	Level           int                    `json:"level"`
	FullPath        string                 `json:"fullPath"`
	IsActive        bool                   `json:"isActive"`
	OpeningBalance  decimal.Decimal        `json:"openingBalance"`
	CurrentBalance  decimal.Decimal        `json:"currentBalance"`
	CreatedAt       time.Time              `json:"createdAt"`
	CreatedBy       string                 `json:"createdBy"`
	LastUpdatedAt   time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy   string                 `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		ParentAccountID: acc.ParentAccountID,
		Code:            acc.Code,
		NamePrimary:     acc.NamePrimary,
		NameSecondary:   acc.NameSecondary,
		AccountType:     acc.AccountType,
		Category:        acc.Category,
		Level:           acc.Level,
		FullPath:        acc.FullPath,
		IsActive:        acc.IsActive,
		OpeningBalance:  acc.OpeningBalance,
		CurrentBalance:  acc.CurrentBalance,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Query           string `form:"q"`
	Category        string `form:"category" binding:"omitempty,oneof=asset liability expense revenue equity"`
	IncludeInactive bool   `form:"includeInactive"`
}

// ToFilter converts the query parameters into an account filter.
func (p ListAccountsParams) ToFilter() domain.AccountFilter {
	return domain.AccountFilter{
		Search:          p.Query,
		Category:        domain.AccountCategory(p.Category),
		IncludeInactive: p.IncludeInactive,
	}
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountTreeNode is one node of the account tree response.
type AccountTreeNode struct {
	AccountResponse
	Children []AccountTreeNode `json:"children"`
}

// ToAccountTree converts assembled domain nodes into the response tree.
func ToAccountTree(nodes []*domain.AccountNode) []AccountTreeNode {
	out := make([]AccountTreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, AccountTreeNode{
			AccountResponse: ToAccountResponse(&n.Account),
			Children:        ToAccountTree(n.Children),
		})
	}
	return out
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID      string          `json:"accountID"`
	AsOf           *Date           `json:"asOf,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	PeriodDebit    decimal.Decimal `json:"periodDebit"`
	PeriodCredit   decimal.Decimal `json:"periodCredit"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

// ToAccountBalanceResponse converts a domain balance view.
func ToAccountBalanceResponse(b *domain.AccountBalance, asOf *time.Time) AccountBalanceResponse {
	res := AccountBalanceResponse{
		AccountID:      b.AccountID,
		OpeningBalance: b.OpeningBalance,
		PeriodDebit:    b.PeriodDebit,
		PeriodCredit:   b.PeriodCredit,
		CurrentBalance: b.CurrentBalance,
	}
	if asOf != nil {
		d := NewDate(*asOf)
		res.AsOf = &d
	}
	return res
}
