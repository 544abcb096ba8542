package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	ParentAccountID sql.NullString  `db:"parent_account_id"` // NULL for roots
	Code            string          `db:"code"`
	NamePrimary     string          `db:"name_primary"`
	NameSecondary   string          `db:"name_secondary"`
	AccountType     string          `db:"account_type"`
	Category        string          `db:"category"`
	Level           int             `db:"level"`
	FullPath        string          `db:"full_path"`
	IsActive        bool            `db:"is_active"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	CurrentBalance  decimal.Decimal `db:"current_balance"`
	AuditFields
}
