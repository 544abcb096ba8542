package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID           string          `db:"entry_id"`
	EntryNumber       string          `db:"entry_number"`
	EntryDate         time.Time       `db:"entry_date"`
	Description       string          `db:"description"`
	FiscalYearID      string          `db:"fiscal_year_id"`
	TotalDebit        decimal.Decimal `db:"total_debit"`
	TotalCredit       decimal.Decimal `db:"total_credit"`
	Status            string          `db:"status"`
	PostedAt          sql.NullTime    `db:"posted_at"`
	PostedBy          sql.NullString  `db:"posted_by"`
	ApprovedAt        sql.NullTime    `db:"approved_at"`
	ApprovedBy        sql.NullString  `db:"approved_by"`
	ReversalOfEntryID sql.NullString  `db:"reversal_of_entry_id"`
	ReversedByEntryID sql.NullString  `db:"reversed_by_entry_id"`
	AuditFields
}

// JournalLine is a row of the journal_lines table.
type JournalLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	AccountID   string          `db:"account_id"`
	LineNumber  int             `db:"line_number"`
	Description string          `db:"description"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	AuditFields
}

// PostedLine is a journal line joined with its entry header.
type PostedLine struct {
	LineID           string          `db:"line_id"`
	EntryID          string          `db:"entry_id"`
	EntryNumber      string          `db:"entry_number"`
	EntryDate        time.Time       `db:"entry_date"`
	EntryCreatedAt   time.Time       `db:"entry_created_at"`
	EntryDescription string          `db:"entry_description"`
	AccountID        string          `db:"account_id"`
	LineNumber       int             `db:"line_number"`
	Description      string          `db:"description"`
	Debit            decimal.Decimal `db:"debit"`
	Credit           decimal.Decimal `db:"credit"`
}
