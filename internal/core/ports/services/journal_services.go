package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry together with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entry headers.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// JournalValidatorSvc checks a set of lines against the double-entry rules.
type JournalValidatorSvc interface {
	ValidateEntry(ctx context.Context, lines []domain.LineInput) error
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateEntry persists a new draft entry with its lines.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error)

	// UpdateEntry applies a typed patch to a draft entry header.
	UpdateEntry(ctx context.Context, entryID string, patch domain.EntryPatch, userID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a draft entry and its lines.
	DeleteEntry(ctx context.Context, entryID string, userID string) error
}

// JournalWorkflowSvc moves entries through draft -> posted -> approved.
type JournalWorkflowSvc interface {
	// PostEntry applies a draft entry to account balances.
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ApproveEntry marks a posted entry approved.
	ApproveEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts the mirror image of a posted entry.
	ReverseEntry(ctx context.Context, entryID string, req dto.ReverseEntryRequest, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalValidatorSvc
	JournalWriterSvc
	JournalWorkflowSvc
}
