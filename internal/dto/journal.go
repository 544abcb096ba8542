package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one debit or credit line of a new entry.
type CreateLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit" binding:"decimal_gte0"`
	Credit      decimal.Decimal `json:"credit" binding:"decimal_gte0"`
}

// CreateEntryRequest defines the data needed to create a draft journal entry.
// When FiscalYearID is empty the fiscal year containing Date is used.
type CreateEntryRequest struct {
	Date         Date                `json:"date"`
	Description  string              `json:"description"`
	FiscalYearID string              `json:"fiscalYearID"`
	Lines        []CreateLineRequest `json:"lines" binding:"dive"`
}

// ValidateEntryRequest carries lines to check without persisting them.
type ValidateEntryRequest struct {
	Lines []CreateLineRequest `json:"lines" binding:"dive"`
}

// ValidateEntryResponse reports the outcome of a dry-run validation.
type ValidateEntryResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ToLineInputs converts request lines into domain line inputs.
func ToLineInputs(lines []CreateLineRequest) []domain.LineInput {
	out := make([]domain.LineInput, len(lines))
	for i, l := range lines {
		out[i] = domain.LineInput{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	return out
}

// UpdateEntryRequest defines the header fields that may change on a draft entry.
type UpdateEntryRequest struct {
	Date         *Date   `json:"date"`
	Description  *string `json:"description"`
	FiscalYearID *string `json:"fiscalYearID"`
}

// ToPatch converts the request into the typed entry patch.
func (r UpdateEntryRequest) ToPatch() domain.EntryPatch {
	patch := domain.EntryPatch{Description: r.Description, FiscalYearID: r.FiscalYearID}
	if r.Date != nil {
		t := r.Date.Time
		patch.EntryDate = &t
	}
	return patch
}

// ReverseEntryRequest defines optional overrides for a reversing entry.
type ReverseEntryRequest struct {
	Date        *Date  `json:"date"`
	Description string `json:"description"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	LineNumber  int             `json:"lineNumber"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID           string             `json:"entryID"`
	EntryNumber       string             `json:"entryNumber"`
	Date              Date               `json:"date"`
	Description       string             `json:"description"`
	FiscalYearID      string             `json:"fiscalYearID"`
	TotalDebit        decimal.Decimal    `json:"totalDebit"`
	TotalCredit       decimal.Decimal    `json:"totalCredit"`
	Status            domain.EntryStatus `json:"status"`
	PostedAt          *time.Time         `json:"postedAt,omitempty"`
	PostedBy          string             `json:"postedBy,omitempty"`
	ApprovedAt        *time.Time         `json:"approvedAt,omitempty"`
	ApprovedBy        string             `json:"approvedBy,omitempty"`
	ReversalOfEntryID string             `json:"reversalOfEntryID,omitempty"`
	ReversedByEntryID string             `json:"reversedByEntryID,omitempty"`
	Lines             []LineResponse     `json:"lines,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	CreatedBy         string             `json:"createdBy"`
	LastUpdatedAt     time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy     string             `json:"lastUpdatedBy"`
}

// ToEntryResponse converts a domain.JournalEntry to its DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	res := EntryResponse{
		EntryID:           e.EntryID,
		EntryNumber:       e.EntryNumber,
		Date:              NewDate(e.EntryDate),
		Description:       e.Description,
		FiscalYearID:      e.FiscalYearID,
		TotalDebit:        e.TotalDebit,
		TotalCredit:       e.TotalCredit,
		Status:            e.Status,
		PostedAt:          e.PostedAt,
		PostedBy:          e.PostedBy,
		ApprovedAt:        e.ApprovedAt,
		ApprovedBy:        e.ApprovedBy,
		ReversalOfEntryID: e.ReversalOfEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
		LastUpdatedAt:     e.LastUpdatedAt,
		LastUpdatedBy:     e.LastUpdatedBy,
	}
	for _, l := range e.Lines {
		res.Lines = append(res.Lines, LineResponse{
			LineID:      l.LineID,
			AccountID:   l.AccountID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		})
	}
	return res
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Status       string     `form:"status" binding:"omitempty,oneof=draft posted approved"`
	FiscalYearID string     `form:"fiscalYearId"`
	DateFrom     *time.Time `form:"dateFrom" time_format:"2006-01-02" time_utc:"1"`
	DateTo       *time.Time `form:"dateTo" time_format:"2006-01-02" time_utc:"1"`
	EntryNumber  string     `form:"entryNumber"`
	CreatedBy    string     `form:"createdBy"`
	Limit        int        `form:"limit,default=50" binding:"min=0,max=500"`
	NextToken    *string    `form:"nextToken"`
}

// ToFilter converts the query parameters into an entry filter.
func (p ListEntriesParams) ToFilter() domain.EntryFilter {
	return domain.EntryFilter{
		Status:       domain.EntryStatus(p.Status),
		FiscalYearID: p.FiscalYearID,
		DateFrom:     p.DateFrom,
		DateTo:       p.DateTo,
		EntryNumber:  p.EntryNumber,
		CreatedBy:    p.CreatedBy,
	}
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
