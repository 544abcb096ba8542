package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "draft"
	Posted   EntryStatus = "posted"
	Approved EntryStatus = "approved"
)

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	return s == Draft || s == Posted || s == Approved
}

// HasBalanceEffect reports whether entries in this status count toward balances and reports.
func (s EntryStatus) HasBalanceEffect() bool {
	return s == Posted || s == Approved
}

// JournalEntry is a balanced financial event made of two or more lines.
type JournalEntry struct {
	EntryID           string          `json:"entryID"`
	EntryNumber       string          `json:"entryNumber"`
	EntryDate         time.Time       `json:"entryDate"`
	Description       string          `json:"description"`
	FiscalYearID      string          `json:"fiscalYearID"`
	TotalDebit        decimal.Decimal `json:"totalDebit"`
	TotalCredit       decimal.Decimal `json:"totalCredit"`
	Status            EntryStatus     `json:"status"`
	PostedAt          *time.Time      `json:"postedAt,omitempty"`
	PostedBy          string          `json:"postedBy,omitempty"`
	ApprovedAt        *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy        string          `json:"approvedBy,omitempty"`
	ReversalOfEntryID string          `json:"reversalOfEntryID,omitempty"`
	ReversedByEntryID string          `json:"reversedByEntryID,omitempty"`
	Lines             []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single debit or credit against one account.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	LineNumber  int             `json:"lineNumber"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	AuditFields
}

// LineInput is a caller supplied line before it becomes a JournalLine.
type LineInput struct {
	AccountID   string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// EntryPatch enumerates the mutable header fields of a draft entry.
type EntryPatch struct {
	EntryDate    *time.Time
	Description  *string
	FiscalYearID *string
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.EntryDate == nil && p.Description == nil && p.FiscalYearID == nil
}

// EntryFilter narrows entry listings. Zero values do not filter.
type EntryFilter struct {
	Status       EntryStatus
	FiscalYearID string
	DateFrom     *time.Time
	DateTo       *time.Time
	EntryNumber  string // substring match
	CreatedBy    string
}

// PostedLineFilter selects lines of entries with a balance effect.
// From and To are inclusive, Before is exclusive.
type PostedLineFilter struct {
	AccountID    string
	FiscalYearID string
	From         *time.Time
	To           *time.Time
	Before       *time.Time
}

// PostedLine is a journal line joined with its entry header, as read by reports.
type PostedLine struct {
	LineID           string
	EntryID          string
	EntryNumber      string
	EntryDate        time.Time
	EntryCreatedAt   time.Time
	EntryDescription string
	AccountID        string
	LineNumber       int
	Description      string
	Debit            decimal.Decimal
	Credit           decimal.Decimal
}
