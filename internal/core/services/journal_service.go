package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/accounting"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// journalService implements the journal engine: entry validation, creation and the
// draft -> posted -> approved workflow.
type journalService struct {
	BaseService
	store portsrepo.Store
	cache *BalanceCache
}

// NewJournalService creates a new journal service. cache is purged after every posting.
func NewJournalService(store portsrepo.Store, cache *BalanceCache, options ...ServiceOption) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: newBaseService(options),
		store:       store,
		cache:       cache,
	}
}

// Ensure journalService implements the JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func (s *journalService) ValidateEntry(ctx context.Context, lines []domain.LineInput) error {
	if err := validateLines(ctx, s.store, lines); err != nil {
		return s.fail(ctx, "validate_entry", err)
	}
	return nil
}

// validateLines checks lines against the double-entry rules, stopping at the first failure.
func validateLines(ctx context.Context, reader portsrepo.AccountReader, lines []domain.LineInput) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: journal entry must have at least 2 lines", apperrors.ErrValidation)
	}

	debit, credit := accounting.SumLines(lines)
	if !accounting.Balanced(debit, credit) {
		return fmt.Errorf("%w: entry is not balanced: debit %s != credit %s",
			apperrors.ErrValidation, debit.StringFixed(2), credit.StringFixed(2))
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.AccountID)
	}
	accounts, err := reader.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return fmt.Errorf("%w: line %d: account %s not found", apperrors.ErrValidation, i+1, l.AccountID)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: line %d: account %s is inactive", apperrors.ErrValidation, i+1, acc.Code)
		}
		if err := accounting.ValidateLineAmounts(l.Debit, l.Credit); err != nil {
			return fmt.Errorf("%w: line %d: %v", apperrors.ErrValidation, i+1, err)
		}
	}
	return nil
}

// openFiscalYear loads a fiscal year that still accepts journal activity.
func openFiscalYear(ctx context.Context, reader portsrepo.FiscalYearReader, fiscalYearID string) (*domain.FiscalYear, error) {
	fy, err := reader.FindFiscalYearByID(ctx, fiscalYearID)
	if err != nil {
		return nil, err
	}
	if fy.IsClosed {
		return nil, fmt.Errorf("%w: fiscal year '%s' is closed", apperrors.ErrState, fy.Name)
	}
	return fy, nil
}

func checkDateInYear(fy *domain.FiscalYear, date time.Time) error {
	if !fy.Contains(date) {
		return fmt.Errorf("%w: entry date %s is outside fiscal year '%s' (%s to %s)", apperrors.ErrValidation,
			date.Format(domain.DateLayout), fy.Name, fy.StartDate.Format(domain.DateLayout), fy.EndDate.Format(domain.DateLayout))
	}
	return nil
}

func nextEntryNumber(ctx context.Context, reader portsrepo.JournalReader, fiscalYearID string) (string, error) {
	last, err := reader.LastEntryNumber(ctx, fiscalYearID)
	if err != nil {
		return "", err
	}
	number, err := accounting.NextEntryNumber(last)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return number, nil
}

// newDraft builds a draft entry and its numbered lines.
func newDraft(number string, date time.Time, description, fiscalYearID string, inputs []domain.LineInput, userID string, now time.Time) domain.JournalEntry {
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	debit, credit := accounting.SumLines(inputs)
	entry := domain.JournalEntry{
		EntryID:      uuid.NewString(),
		EntryNumber:  number,
		EntryDate:    date,
		Description:  description,
		FiscalYearID: fiscalYearID,
		TotalDebit:   debit,
		TotalCredit:  credit,
		Status:       domain.Draft,
		Lines:        make([]domain.JournalLine, len(inputs)),
		AuditFields:  audit,
	}
	for i, in := range inputs {
		entry.Lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entry.EntryID,
			AccountID:   in.AccountID,
			LineNumber:  i + 1,
			Description: in.Description,
			Debit:       in.Debit,
			Credit:      in.Credit,
			AuditFields: audit,
		}
	}
	return entry
}

func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error) {
	if req.Date.IsZero() {
		return nil, s.fail(ctx, "create_entry", fmt.Errorf("%w: entry date is required", apperrors.ErrValidation))
	}
	date := domain.DateOnly(req.Date.Time)
	inputs := dto.ToLineInputs(req.Lines)

	var created domain.JournalEntry
	trail := &auditTrail{}
	err := s.withConflictRetry(ctx, "create_entry", func() error {
		trail = &auditTrail{}
		return s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
			if err := validateLines(ctx, tx, inputs); err != nil {
				return err
			}

			fiscalYearID := req.FiscalYearID
			if fiscalYearID == "" {
				fy, err := tx.FindFiscalYearByDate(ctx, date)
				if err != nil {
					if errors.Is(err, apperrors.ErrNotFound) {
						return fmt.Errorf("%w: no fiscal year contains %s", apperrors.ErrValidation, date.Format(domain.DateLayout))
					}
					return err
				}
				fiscalYearID = fy.FiscalYearID
			}
			fy, err := openFiscalYear(ctx, tx, fiscalYearID)
			if err != nil {
				return err
			}
			if err := checkDateInYear(fy, date); err != nil {
				return err
			}

			number, err := nextEntryNumber(ctx, tx, fy.FiscalYearID)
			if err != nil {
				return err
			}

			now := s.Now()
			entry := newDraft(number, date, strings.TrimSpace(req.Description), fy.FiscalYearID, inputs, userID, now)
			if err := tx.SaveEntry(ctx, entry); err != nil {
				return err
			}
			if err := trail.record(ctx, tx, userID, domain.ActionJournalCreate, domain.TableJournalEntries, entry.EntryID, nil, entry, now); err != nil {
				return err
			}
			created = entry
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "create_entry", err)
	}

	s.publish(ctx, trail)
	if s.Metrics != nil {
		s.Metrics.EntriesCreated.Inc()
	}
	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", created.EntryID),
		slog.String("entry_number", created.EntryNumber),
		slog.String("fiscal_year_id", created.FiscalYearID))
	return &created, nil
}

// postInTx applies the balance effect of a draft entry and moves it to posted.
func (s *journalService) postInTx(ctx context.Context, tx portsrepo.Store, entry *domain.JournalEntry, lines []domain.JournalLine, userID string, now time.Time, trail *auditTrail) error {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.AccountID)
	}
	accounts, err := tx.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	deltas := make(map[string]decimal.Decimal, len(accounts))
	for _, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return fmt.Errorf("%w: line %d references missing account %s", apperrors.ErrNotFound, l.LineNumber, l.AccountID)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: line %d: account %s is inactive", apperrors.ErrValidation, l.LineNumber, acc.Code)
		}
		delta, err := accounting.SignedAmount(acc.Category, l.Debit, l.Credit)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		deltas[l.AccountID] = deltas[l.AccountID].Add(delta)
	}
	if err := tx.ApplyBalanceDeltas(ctx, deltas, userID, now); err != nil {
		return err
	}

	before := *entry
	entry.Status = domain.Posted
	entry.PostedAt = &now
	entry.PostedBy = userID
	entry.Touch(userID, now)
	if err := tx.UpdateEntry(ctx, *entry); err != nil {
		return err
	}
	return trail.record(ctx, tx, userID, domain.ActionJournalPost, domain.TableJournalEntries, entry.EntryID, before, *entry, now)
}

func (s *journalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	var posted domain.JournalEntry
	trail := &auditTrail{}
	err := s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
		entry, err := tx.FindEntryByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s; only draft entries can be posted", apperrors.ErrState, entry.EntryNumber, entry.Status)
		}
		if _, err := openFiscalYear(ctx, tx, entry.FiscalYearID); err != nil {
			return err
		}
		lines, err := tx.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			return err
		}
		if err := s.postInTx(ctx, tx, entry, lines, userID, s.Now(), trail); err != nil {
			return err
		}
		entry.Lines = lines
		posted = *entry
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "post_entry", err, slog.String("entry_id", entryID))
	}

	s.cache.Purge()
	s.publish(ctx, trail)
	if s.Metrics != nil {
		s.Metrics.EntriesPosted.Inc()
	}
	s.LogInfo(ctx, "Journal entry posted", slog.String("entry_id", entryID), slog.String("entry_number", posted.EntryNumber))
	return &posted, nil
}

func (s *journalService) ApproveEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	var approved domain.JournalEntry
	trail := &auditTrail{}
	err := s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
		now := s.Now()
		entry, err := tx.FindEntryByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.Posted {
			return fmt.Errorf("%w: entry %s is %s; only posted entries can be approved", apperrors.ErrState, entry.EntryNumber, entry.Status)
		}
		before := *entry
		entry.Status = domain.Approved
		entry.ApprovedAt = &now
		entry.ApprovedBy = userID
		entry.Touch(userID, now)
		if err := tx.UpdateEntry(ctx, *entry); err != nil {
			return err
		}
		if err := trail.record(ctx, tx, userID, domain.ActionJournalApprove, domain.TableJournalEntries, entryID, before, *entry, now); err != nil {
			return err
		}
		if entry.Lines, err = tx.FindLinesByEntryID(ctx, entryID); err != nil {
			return err
		}
		approved = *entry
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "approve_entry", err, slog.String("entry_id", entryID))
	}

	s.publish(ctx, trail)
	if s.Metrics != nil {
		s.Metrics.EntriesApproved.Inc()
	}
	s.LogInfo(ctx, "Journal entry approved", slog.String("entry_id", entryID))
	return &approved, nil
}

// loadDraft fetches an entry for modification, requiring draft status and an open fiscal year.
func loadDraft(ctx context.Context, tx portsrepo.Store, entryID, verb string) (*domain.JournalEntry, *domain.FiscalYear, error) {
	entry, err := tx.FindEntryByIDForUpdate(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry.Status != domain.Draft {
		return nil, nil, fmt.Errorf("%w: entry %s is %s; only draft entries can be %s", apperrors.ErrState, entry.EntryNumber, entry.Status, verb)
	}
	fy, err := openFiscalYear(ctx, tx, entry.FiscalYearID)
	if err != nil {
		return nil, nil, err
	}
	return entry, fy, nil
}

func (s *journalService) UpdateEntry(ctx context.Context, entryID string, patch domain.EntryPatch, userID string) (*domain.JournalEntry, error) {
	if patch.Empty() {
		return nil, s.fail(ctx, "update_entry", fmt.Errorf("%w: no fields to update", apperrors.ErrValidation))
	}

	var updated domain.JournalEntry
	trail := &auditTrail{}
	err := s.withConflictRetry(ctx, "update_entry", func() error {
		trail = &auditTrail{}
		return s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
			now := s.Now()
			entry, fy, err := loadDraft(ctx, tx, entryID, "updated")
			if err != nil {
				return err
			}
			before := *entry
			lines, err := tx.FindLinesByEntryID(ctx, entryID)
			if err != nil {
				return err
			}

			if patch.FiscalYearID != nil && *patch.FiscalYearID != entry.FiscalYearID {
				if len(lines) > 0 {
					return fmt.Errorf("%w: cannot change the fiscal year of an entry that has lines", apperrors.ErrValidation)
				}
				if fy, err = openFiscalYear(ctx, tx, *patch.FiscalYearID); err != nil {
					return err
				}
				entry.FiscalYearID = fy.FiscalYearID
				if entry.EntryNumber, err = nextEntryNumber(ctx, tx, fy.FiscalYearID); err != nil {
					return err
				}
			}
			if patch.EntryDate != nil {
				entry.EntryDate = domain.DateOnly(*patch.EntryDate)
			}
			if err := checkDateInYear(fy, entry.EntryDate); err != nil {
				return err
			}
			if patch.Description != nil {
				entry.Description = strings.TrimSpace(*patch.Description)
			}

			entry.Touch(userID, now)
			if err := tx.UpdateEntry(ctx, *entry); err != nil {
				return err
			}
			if err := trail.record(ctx, tx, userID, domain.ActionJournalUpdate, domain.TableJournalEntries, entryID, before, *entry, now); err != nil {
				return err
			}
			entry.Lines = lines
			updated = *entry
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "update_entry", err, slog.String("entry_id", entryID))
	}

	s.publish(ctx, trail)
	s.LogInfo(ctx, "Journal entry updated", slog.String("entry_id", entryID))
	return &updated, nil
}

func (s *journalService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	trail := &auditTrail{}
	err := s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
		entry, _, err := loadDraft(ctx, tx, entryID, "deleted")
		if err != nil {
			return err
		}
		if entry.Lines, err = tx.FindLinesByEntryID(ctx, entryID); err != nil {
			return err
		}
		if err := tx.DeleteEntry(ctx, entryID); err != nil {
			return err
		}
		return trail.record(ctx, tx, userID, domain.ActionJournalDelete, domain.TableJournalEntries, entryID, *entry, nil, s.Now())
	})
	if err != nil {
		return s.fail(ctx, "delete_entry", err, slog.String("entry_id", entryID))
	}

	s.publish(ctx, trail)
	s.LogInfo(ctx, "Journal entry deleted", slog.String("entry_id", entryID))
	return nil
}

func (s *journalService) ReverseEntry(ctx context.Context, entryID string, req dto.ReverseEntryRequest, userID string) (*domain.JournalEntry, error) {
	var reversal domain.JournalEntry
	trail := &auditTrail{}
	err := s.withConflictRetry(ctx, "reverse_entry", func() error {
		trail = &auditTrail{}
		return s.store.RunInTx(ctx, func(tx portsrepo.Store) error {
			now := s.Now()
			original, err := tx.FindEntryByIDForUpdate(ctx, entryID)
			if err != nil {
				return err
			}
			switch {
			case !original.Status.HasBalanceEffect():
				return fmt.Errorf("%w: entry %s is %s; only posted or approved entries can be reversed", apperrors.ErrState, original.EntryNumber, original.Status)
			case original.ReversalOfEntryID != "":
				return fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrState, original.EntryNumber)
			case original.ReversedByEntryID != "":
				return fmt.Errorf("%w: entry %s has already been reversed", apperrors.ErrState, original.EntryNumber)
			}

			fy, err := openFiscalYear(ctx, tx, original.FiscalYearID)
			if err != nil {
				return err
			}
			date := original.EntryDate
			if req.Date != nil && !req.Date.IsZero() {
				date = domain.DateOnly(req.Date.Time)
			}
			if err := checkDateInYear(fy, date); err != nil {
				return err
			}

			lines, err := tx.FindLinesByEntryID(ctx, entryID)
			if err != nil {
				return err
			}
			mirrored := make([]domain.LineInput, len(lines))
			for i, l := range lines {
				mirrored[i] = domain.LineInput{
					AccountID:   l.AccountID,
					Description: l.Description,
					Debit:       l.Credit,
					Credit:      l.Debit,
				}
			}

			number, err := nextEntryNumber(ctx, tx, fy.FiscalYearID)
			if err != nil {
				return err
			}
			description := strings.TrimSpace(req.Description)
			if description == "" {
				description = "Reversal of " + original.EntryNumber
			}
			entry := newDraft(number, date, description, fy.FiscalYearID, mirrored, userID, now)
			entry.ReversalOfEntryID = original.EntryID
			if err := tx.SaveEntry(ctx, entry); err != nil {
				return err
			}
			if err := trail.record(ctx, tx, userID, domain.ActionJournalCreate, domain.TableJournalEntries, entry.EntryID, nil, entry, now); err != nil {
				return err
			}
			newLines := entry.Lines
			if err := s.postInTx(ctx, tx, &entry, newLines, userID, now, trail); err != nil {
				return err
			}

			before := *original
			original.ReversedByEntryID = entry.EntryID
			original.Touch(userID, now)
			if err := tx.UpdateEntry(ctx, *original); err != nil {
				return err
			}
			if err := trail.record(ctx, tx, userID, domain.ActionJournalReverse, domain.TableJournalEntries, original.EntryID, before, *original, now); err != nil {
				return err
			}
			entry.Lines = newLines
			reversal = entry
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "reverse_entry", err, slog.String("entry_id", entryID))
	}

	s.cache.Purge()
	s.publish(ctx, trail)
	if s.Metrics != nil {
		s.Metrics.EntriesReversed.Inc()
	}
	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversal.EntryID),
		slog.String("reversal_entry_number", reversal.EntryNumber))
	return &reversal, nil
}

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.store.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, s.fail(ctx, "get_entry", err, slog.String("entry_id", entryID))
	}
	if entry.Lines, err = s.store.FindLinesByEntryID(ctx, entryID); err != nil {
		return nil, s.fail(ctx, "get_entry", err, slog.String("entry_id", entryID))
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	filter := params.ToFilter()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, s.fail(ctx, "list_entries", fmt.Errorf("%w: invalid status '%s'", apperrors.ErrValidation, filter.Status))
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, s.fail(ctx, "list_entries", fmt.Errorf("%w: dateFrom must not be after dateTo", apperrors.ErrValidation))
	}

	entries, nextToken, err := s.store.ListEntries(ctx, filter, pagination.NormalizeLimit(params.Limit), params.NextToken)
	if err != nil {
		return nil, s.fail(ctx, "list_entries", err)
	}

	resp := &dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, 0, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, dto.ToEntryResponse(&entries[i]))
	}
	return resp, nil
}
