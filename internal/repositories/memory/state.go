package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// state holds the records. Its methods assume the caller holds the Store lock.
type state struct {
	accounts    map[string]domain.Account
	fiscalYears map[string]domain.FiscalYear
	entries     map[string]domain.JournalEntry
	lines       map[string][]domain.JournalLine
	audit       []domain.AuditRecord
}

func newState() *state {
	return &state{
		accounts:    make(map[string]domain.Account),
		fiscalYears: make(map[string]domain.FiscalYear),
		entries:     make(map[string]domain.JournalEntry),
		lines:       make(map[string][]domain.JournalLine),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.fiscalYears {
		c.fiscalYears[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]domain.JournalLine(nil), v...)
	}
	c.audit = append([]domain.AuditRecord(nil), s.audit...)
	return c
}

// --- accounts ---

func (s *state) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

func (s *state) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (s *state) ListAccounts(_ context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []domain.Account
	for _, acc := range s.accounts {
		if !filter.IncludeInactive && !acc.IsActive {
			continue
		}
		if filter.Category != "" && acc.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(acc.Code), search) &&
			!strings.Contains(strings.ToLower(acc.NamePrimary), search) &&
			!strings.Contains(strings.ToLower(acc.NameSecondary), search) {
			continue
		}
		out = append(out, acc)
	}
	sortByCode(out)
	return out, nil
}

func (s *state) ListChildAccounts(_ context.Context, parentID string, includeInactive bool) ([]domain.Account, error) {
	var out []domain.Account
	for _, acc := range s.accounts {
		if acc.ParentAccountID != parentID {
			continue
		}
		if !includeInactive && !acc.IsActive {
			continue
		}
		out = append(out, acc)
	}
	sortByCode(out)
	return out, nil
}

func (s *state) CountLinesForAccounts(_ context.Context, accountIDs []string) (int, error) {
	wanted := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = struct{}{}
	}
	count := 0
	for _, lines := range s.lines {
		for _, l := range lines {
			if _, ok := wanted[l.AccountID]; ok {
				count++
			}
		}
	}
	return count, nil
}

func (s *state) SaveAccount(_ context.Context, account domain.Account) error {
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrConflict, account.AccountID)
	}
	if err := s.checkActiveCode(account); err != nil {
		return err
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *state) UpdateAccount(_ context.Context, account domain.Account) error {
	if _, ok := s.accounts[account.AccountID]; !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	if err := s.checkActiveCode(account); err != nil {
		return err
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *state) checkActiveCode(account domain.Account) error {
	if !account.IsActive {
		return nil
	}
	for id, other := range s.accounts {
		if id != account.AccountID && other.IsActive && other.Code == account.Code {
			return fmt.Errorf("%w: account code %s already in use", apperrors.ErrConflict, account.Code)
		}
	}
	return nil
}

func (s *state) DeleteAccount(ctx context.Context, accountID string) error {
	if _, ok := s.accounts[accountID]; !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if n, _ := s.CountLinesForAccounts(ctx, []string{accountID}); n > 0 {
		return fmt.Errorf("%w: account %s is referenced by journal lines", apperrors.ErrConflict, accountID)
	}
	for _, acc := range s.accounts {
		if acc.ParentAccountID == accountID {
			return fmt.Errorf("%w: account %s still has children", apperrors.ErrConflict, accountID)
		}
	}
	delete(s.accounts, accountID)
	return nil
}

func (s *state) ApplyBalanceDeltas(_ context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	for id := range deltas {
		if _, ok := s.accounts[id]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	for id, delta := range deltas {
		acc := s.accounts[id]
		acc.CurrentBalance = acc.CurrentBalance.Add(delta)
		acc.Touch(userID, now)
		s.accounts[id] = acc
	}
	return nil
}

func sortByCode(accs []domain.Account) {
	sort.Slice(accs, func(i, j int) bool {
		if accs[i].Code != accs[j].Code {
			return accs[i].Code < accs[j].Code
		}
		return accs[i].AccountID < accs[j].AccountID
	})
}

// --- fiscal years ---

func (s *state) FindFiscalYearByID(_ context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	fy, ok := s.fiscalYears[fiscalYearID]
	if !ok {
		return nil, fmt.Errorf("%w: fiscal year %s", apperrors.ErrNotFound, fiscalYearID)
	}
	return &fy, nil
}

func (s *state) FindFiscalYearByDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error) {
	years, _ := s.ListFiscalYears(ctx)
	for _, fy := range years {
		if fy.Contains(date) {
			return &fy, nil
		}
	}
	return nil, fmt.Errorf("%w: no fiscal year contains %s", apperrors.ErrNotFound, date.Format(domain.DateLayout))
}

func (s *state) ListFiscalYears(_ context.Context) ([]domain.FiscalYear, error) {
	out := make([]domain.FiscalYear, 0, len(s.fiscalYears))
	for _, fy := range s.fiscalYears {
		out = append(out, fy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *state) SaveFiscalYear(_ context.Context, fy domain.FiscalYear) error {
	if _, exists := s.fiscalYears[fy.FiscalYearID]; exists {
		return fmt.Errorf("%w: fiscal year %s already exists", apperrors.ErrConflict, fy.FiscalYearID)
	}
	s.fiscalYears[fy.FiscalYearID] = fy
	return nil
}

func (s *state) UpdateFiscalYear(_ context.Context, fy domain.FiscalYear) error {
	if _, ok := s.fiscalYears[fy.FiscalYearID]; !ok {
		return fmt.Errorf("%w: fiscal year %s", apperrors.ErrNotFound, fy.FiscalYearID)
	}
	s.fiscalYears[fy.FiscalYearID] = fy
	return nil
}

// --- journal entries ---

func (s *state) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	e, ok := s.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	return &e, nil
}

func (s *state) FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.FindEntryByID(ctx, entryID)
}

func (s *state) FindLinesByEntryID(_ context.Context, entryID string) ([]domain.JournalLine, error) {
	return append([]domain.JournalLine(nil), s.lines[entryID]...), nil
}

func (s *state) ListEntries(_ context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	var cursor *pagination.EntryCursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	var matched []domain.JournalEntry
	for _, e := range s.entries {
		if !matchesEntryFilter(e, filter) {
			continue
		}
		if cursor != nil && !cursor.After(e.EntryDate, e.CreatedAt, e.EntryID) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.EntryID > b.EntryID
	})

	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
	return page, &token, nil
}

func matchesEntryFilter(e domain.JournalEntry, f domain.EntryFilter) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.FiscalYearID != "" && e.FiscalYearID != f.FiscalYearID {
		return false
	}
	if f.DateFrom != nil && e.EntryDate.Before(domain.DateOnly(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && e.EntryDate.After(domain.DateOnly(*f.DateTo)) {
		return false
	}
	if f.EntryNumber != "" && !strings.Contains(e.EntryNumber, f.EntryNumber) {
		return false
	}
	if f.CreatedBy != "" && e.CreatedBy != f.CreatedBy {
		return false
	}
	return true
}

func (s *state) LastEntryNumber(_ context.Context, fiscalYearID string) (string, error) {
	last := ""
	for _, e := range s.entries {
		if e.FiscalYearID == fiscalYearID && e.EntryNumber > last {
			last = e.EntryNumber
		}
	}
	return last, nil
}

func (s *state) CountEntries(_ context.Context, fiscalYearID string, status domain.EntryStatus) (int, error) {
	n := 0
	for _, e := range s.entries {
		if e.FiscalYearID == fiscalYearID && e.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *state) SaveEntry(_ context.Context, entry domain.JournalEntry) error {
	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: journal entry %s already exists", apperrors.ErrConflict, entry.EntryID)
	}
	for _, e := range s.entries {
		if e.FiscalYearID == entry.FiscalYearID && e.EntryNumber == entry.EntryNumber {
			return fmt.Errorf("%w: entry number %s already in use", apperrors.ErrConflict, entry.EntryNumber)
		}
	}
	seen := make(map[int]struct{}, len(entry.Lines))
	for _, l := range entry.Lines {
		if _, ok := s.accounts[l.AccountID]; !ok {
			return fmt.Errorf("%w: line references unknown account %s", apperrors.ErrConflict, l.AccountID)
		}
		if _, dup := seen[l.LineNumber]; dup {
			return fmt.Errorf("%w: duplicate line number %d", apperrors.ErrConflict, l.LineNumber)
		}
		seen[l.LineNumber] = struct{}{}
	}
	lines := append([]domain.JournalLine(nil), entry.Lines...)
	entry.Lines = nil
	s.entries[entry.EntryID] = entry
	s.lines[entry.EntryID] = lines
	return nil
}

func (s *state) UpdateEntry(_ context.Context, entry domain.JournalEntry) error {
	if _, ok := s.entries[entry.EntryID]; !ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entry.EntryID)
	}
	entry.Lines = nil
	s.entries[entry.EntryID] = entry
	return nil
}

func (s *state) DeleteEntry(_ context.Context, entryID string) error {
	if _, ok := s.entries[entryID]; !ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	delete(s.lines, entryID)
	delete(s.entries, entryID)
	return nil
}

// --- posted lines ---

func (s *state) ListPostedLines(_ context.Context, filter domain.PostedLineFilter) ([]domain.PostedLine, error) {
	var out []domain.PostedLine
	for entryID, lines := range s.lines {
		e := s.entries[entryID]
		if !e.Status.HasBalanceEffect() || !matchesPostedFilter(e, filter) {
			continue
		}
		for _, l := range lines {
			if filter.AccountID != "" && l.AccountID != filter.AccountID {
				continue
			}
			out = append(out, domain.PostedLine{
				LineID:           l.LineID,
				EntryID:          e.EntryID,
				EntryNumber:      e.EntryNumber,
				EntryDate:        e.EntryDate,
				EntryCreatedAt:   e.CreatedAt,
				EntryDescription: e.Description,
				AccountID:        l.AccountID,
				LineNumber:       l.LineNumber,
				Description:      l.Description,
				Debit:            l.Debit,
				Credit:           l.Credit,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if !a.EntryCreatedAt.Equal(b.EntryCreatedAt) {
			return a.EntryCreatedAt.Before(b.EntryCreatedAt)
		}
		if a.EntryNumber != b.EntryNumber {
			return a.EntryNumber < b.EntryNumber
		}
		return a.LineNumber < b.LineNumber
	})
	return out, nil
}

func (s *state) SumPostedActivity(ctx context.Context, filter domain.PostedLineFilter) (map[string]domain.AccountActivity, error) {
	lines, err := s.ListPostedLines(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.AccountActivity)
	for _, l := range lines {
		act := out[l.AccountID]
		act.Debit = act.Debit.Add(l.Debit)
		act.Credit = act.Credit.Add(l.Credit)
		out[l.AccountID] = act
	}
	return out, nil
}

func matchesPostedFilter(e domain.JournalEntry, f domain.PostedLineFilter) bool {
	if f.FiscalYearID != "" && e.FiscalYearID != f.FiscalYearID {
		return false
	}
	if f.From != nil && e.EntryDate.Before(domain.DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && e.EntryDate.After(domain.DateOnly(*f.To)) {
		return false
	}
	if f.Before != nil && !e.EntryDate.Before(domain.DateOnly(*f.Before)) {
		return false
	}
	return true
}

// --- audit ---

func (s *state) AppendAudit(_ context.Context, record domain.AuditRecord) error {
	s.audit = append(s.audit, record)
	return nil
}

func (s *state) ListAuditRecords(_ context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	var out []domain.AuditRecord
	for i := len(s.audit) - 1; i >= 0; i-- {
		r := s.audit[i]
		if filter.TableName != "" && r.TableName != filter.TableName {
			continue
		}
		if filter.RecordID != "" && r.RecordID != filter.RecordID {
			continue
		}
		if filter.Action != "" && r.Action != filter.Action {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}
