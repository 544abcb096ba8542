package repositories

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// JournalReader defines read operations for journal entries and lines
type JournalReader interface {
	// FindEntryByID retrieves the entry header without lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryByIDForUpdate retrieves the entry header and locks it for the rest of the transaction
	// where the store supports row locks.
	FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves the lines of an entry ordered by line number.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves entry headers ordered by (entry date DESC, created at DESC, id DESC).
	// It returns the page and the token of the next page, nil when there is none.
	ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// LastEntryNumber returns the highest entry number of a fiscal year, "" when it has none.
	LastEntryNumber(ctx context.Context, fiscalYearID string) (string, error)

	// CountEntries counts entries of a fiscal year in the given status.
	CountEntries(ctx context.Context, fiscalYearID string, status domain.EntryStatus) (int, error)
}

// PostedLineReader exposes read queries over lines of posted or approved entries.
type PostedLineReader interface {
	// ListPostedLines returns the matching lines ordered by
	// (entry date, entry created at, entry number, line number).
	ListPostedLines(ctx context.Context, filter domain.PostedLineFilter) ([]domain.PostedLine, error)

	// SumPostedActivity aggregates debit and credit per account of the matching lines.
	SumPostedActivity(ctx context.Context, filter domain.PostedLineFilter) (map[string]domain.AccountActivity, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveEntry persists a new entry and all of its lines.
	// A duplicate entry number within the fiscal year yields apperrors.ErrConflict.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateEntry overwrites the header fields of an entry. Lines are left untouched.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) error

	// DeleteEntry removes the lines then the entry.
	DeleteEntry(ctx context.Context, entryID string) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	PostedLineReader
	JournalWriter
}
