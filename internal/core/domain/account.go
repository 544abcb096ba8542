package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the structural role of an account in the chart of accounts.
type AccountType string

const (
	General   AccountType = "general"
	Assistant AccountType = "assistant"
	Analytic  AccountType = "analytic"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case General, Assistant, Analytic:
		return true
	}
	return false
}

// AccountCategory defines the fundamental accounting category of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "asset"
	Liability AccountCategory = "liability"
	Expense   AccountCategory = "expense"
	Revenue   AccountCategory = "revenue"
	Equity    AccountCategory = "equity"
)

// Valid reports whether c is one of the known categories.
func (c AccountCategory) Valid() bool {
	switch c {
	case Asset, Liability, Expense, Revenue, Equity:
		return true
	}
	return false
}

// DebitNature reports whether the category increases on the debit side.
func (c AccountCategory) DebitNature() bool {
	return c == Asset || c == Expense
}

// MaxAccountLevel is the deepest level an account may sit at.
const MaxAccountLevel = 9

// Account represents a node of the chart of accounts.
type Account struct {
	AccountID       string          `json:"accountID"`
	ParentAccountID string          `json:"parentAccountID"` // empty for root accounts
	Code            string          `json:"code"`
	NamePrimary     string          `json:"namePrimary"`
	NameSecondary   string          `json:"nameSecondary"`
	AccountType     AccountType     `json:"accountType"`
	Category        AccountCategory `json:"category"`
	Level           int             `json:"level"`
	FullPath        string          `json:"fullPath"`
	IsActive        bool            `json:"isActive"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"` // cached, changed by posting only
	AuditFields
}

// IsRoot reports whether the account has no parent.
func (a Account) IsRoot() bool {
	return a.ParentAccountID == ""
}

// AccountPatch enumerates the mutable fields of an account. Nil fields are left untouched.
type AccountPatch struct {
	NamePrimary     *string
	NameSecondary   *string
	Category        *AccountCategory
	OpeningBalance  *decimal.Decimal
	IsActive        *bool
	ParentAccountID *string // "" moves the account to the root; refused when it has children
}

// Empty reports whether the patch changes nothing.
func (p AccountPatch) Empty() bool {
	return p.NamePrimary == nil && p.NameSecondary == nil && p.Category == nil &&
		p.OpeningBalance == nil && p.IsActive == nil && p.ParentAccountID == nil
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	Search          string // substring of code, primary or secondary name
	Category        AccountCategory
	IncludeInactive bool
}

// AccountNode is one node of the assembled account tree.
type AccountNode struct {
	Account
	Children []*AccountNode `json:"children"`
}

// AccountBalance is the balance view of one account.
type AccountBalance struct {
	AccountID      string          `json:"accountID"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	PeriodDebit    decimal.Decimal `json:"periodDebit"`
	PeriodCredit   decimal.Decimal `json:"periodCredit"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

// AccountActivity is the aggregated posted debit/credit of one account.
type AccountActivity struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}
