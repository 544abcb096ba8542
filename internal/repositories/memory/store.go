// Package memory provides an in-memory Store used by tests, the CLI and the "memory" driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// Store is a mutex guarded in-memory implementation of portsrepo.Store.
// RunInTx holds the write lock for the whole unit of work and restores a snapshot when it fails.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ portsrepo.Store = (*Store)(nil)

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// RunInTx executes fn within a transaction simulated by snapshot and restore.
func (m *Store) RunInTx(ctx context.Context, fn func(tx portsrepo.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	view := &txView{state: m.st}
	if err := fn(view); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

// txView is the transaction-bound Store handed to RunInTx callbacks. The caller already holds the lock.
type txView struct {
	*state
}

func (v *txView) RunInTx(ctx context.Context, fn func(tx portsrepo.Store) error) error {
	return fn(v)
}

func (m *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.FindAccountByID(ctx, accountID)
}

func (m *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.FindAccountsByIDs(ctx, accountIDs)
}

func (m *Store) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListAccounts(ctx, filter)
}

func (m *Store) ListChildAccounts(ctx context.Context, parentID string, includeInactive bool) ([]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListChildAccounts(ctx, parentID, includeInactive)
}

func (m *Store) CountLinesForAccounts(ctx context.Context, accountIDs []string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.CountLinesForAccounts(ctx, accountIDs)
}

func (m *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SaveAccount(ctx, account)
}

func (m *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UpdateAccount(ctx, account)
}

func (m *Store) DeleteAccount(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.DeleteAccount(ctx, accountID)
}

func (m *Store) ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.ApplyBalanceDeltas(ctx, deltas, userID, now)
}

func (m *Store) FindFiscalYearByID(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.FindFiscalYearByID(ctx, fiscalYearID)
}

func (m *Store) FindFiscalYearByDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.FindFiscalYearByDate(ctx, date)
}

func (m *Store) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListFiscalYears(ctx)
}

func (m *Store) SaveFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SaveFiscalYear(ctx, fy)
}

func (m *Store) UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UpdateFiscalYear(ctx, fy)
}

func (m *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.FindEntryByID(ctx, entryID)
}

func (m *Store) FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.FindEntryByIDForUpdate(ctx, entryID)
}

func (m *Store) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.FindLinesByEntryID(ctx, entryID)
}

func (m *Store) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListEntries(ctx, filter, limit, nextToken)
}

func (m *Store) LastEntryNumber(ctx context.Context, fiscalYearID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.LastEntryNumber(ctx, fiscalYearID)
}

func (m *Store) CountEntries(ctx context.Context, fiscalYearID string, status domain.EntryStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.CountEntries(ctx, fiscalYearID, status)
}

func (m *Store) ListPostedLines(ctx context.Context, filter domain.PostedLineFilter) ([]domain.PostedLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListPostedLines(ctx, filter)
}

func (m *Store) SumPostedActivity(ctx context.Context, filter domain.PostedLineFilter) (map[string]domain.AccountActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.SumPostedActivity(ctx, filter)
}

func (m *Store) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.SaveEntry(ctx, entry)
}

func (m *Store) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.UpdateEntry(ctx, entry)
}

func (m *Store) DeleteEntry(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.DeleteEntry(ctx, entryID)
}

func (m *Store) AppendAudit(ctx context.Context, record domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.AppendAudit(ctx, record)
}

func (m *Store) ListAuditRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.ListAuditRecords(ctx, filter)
}
