package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/core/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testActor = "tester"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// recordingPublisher keeps every audit record it is handed.
type recordingPublisher struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func (p *recordingPublisher) PublishAudit(_ context.Context, records []domain.AuditRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, records...)
}

func (p *recordingPublisher) actions() []domain.AuditAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.AuditAction, len(p.records))
	for i, r := range p.records {
		out[i] = r.Action
	}
	return out
}

// faultyStore wraps a memory store and injects failures into transactions.
type faultyStore struct {
	*memory.Store
	mu                 sync.Mutex
	saveEntryConflicts int
	failPostUpdate     bool
}

func (f *faultyStore) RunInTx(ctx context.Context, fn func(tx portsrepo.Store) error) error {
	return f.Store.RunInTx(ctx, func(tx portsrepo.Store) error {
		return fn(&faultyTx{Store: tx, parent: f})
	})
}

type faultyTx struct {
	portsrepo.Store
	parent *faultyStore
}

func (t *faultyTx) RunInTx(_ context.Context, fn func(tx portsrepo.Store) error) error {
	return fn(t)
}

func (t *faultyTx) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	t.parent.mu.Lock()
	if t.parent.saveEntryConflicts > 0 {
		t.parent.saveEntryConflicts--
		t.parent.mu.Unlock()
		return fmt.Errorf("%w: entry number %s already in use", apperrors.ErrConflict, entry.EntryNumber)
	}
	t.parent.mu.Unlock()
	return t.Store.SaveEntry(ctx, entry)
}

func (t *faultyTx) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	if t.parent.failPostUpdate && entry.Status == domain.Posted {
		return apperrors.NewStorageError("failed to update journal entry", fmt.Errorf("disk full"))
	}
	return t.Store.UpdateEntry(ctx, entry)
}

// interleavingStore runs afterSum once, right after a SumPostedActivity read
// made outside a transaction has returned.
type interleavingStore struct {
	*memory.Store
	mu       sync.Mutex
	afterSum func()
}

func (s *interleavingStore) SumPostedActivity(ctx context.Context, filter domain.PostedLineFilter) (map[string]domain.AccountActivity, error) {
	out, err := s.Store.SumPostedActivity(ctx, filter)
	s.mu.Lock()
	hook := s.afterSum
	s.afterSum = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, err
}

// engineSuite wires every engine over a fresh memory store with a stepping clock.
type engineSuite struct {
	suite.Suite
	ctx       context.Context
	store     portsrepo.Store
	cache     *services.BalanceCache
	svc       *portssvc.ServiceContainer
	publisher *recordingPublisher
	now       time.Time
	fy        *domain.FiscalYear

	// newStore overrides the memory store used by SetupTest.
	newStore func(t *testing.T) portsrepo.Store
}

func (s *engineSuite) SetupTest() {
	if s.newStore != nil {
		s.setup(s.newStore(s.T()))
		return
	}
	s.setup(memory.NewStore())
}

func (s *engineSuite) setup(store portsrepo.Store) {
	s.wire(store)
	s.fy = s.createFiscalYear("FY 2024", "2024-01-01", "2024-12-31")
}

// wire builds the engines over store without creating any data.
func (s *engineSuite) wire(store portsrepo.Store) {
	s.ctx = context.Background()
	s.store = store
	s.now = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	s.publisher = &recordingPublisher{}

	cache, err := services.NewBalanceCache(64, nil)
	s.Require().NoError(err)
	s.cache = cache
	s.svc = services.NewServiceContainer(store, cache,
		services.WithClock(s.clock),
		services.WithAuditPublisher(s.publisher),
	)
	s.fy = nil
}

// clock advances one second per call so creation order is observable.
func (s *engineSuite) clock() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *engineSuite) createFiscalYear(name, start, end string) *domain.FiscalYear {
	fy, err := s.svc.FiscalYear.CreateFiscalYear(s.ctx, dto.CreateFiscalYearRequest{
		Name:      name,
		StartDate: dto.NewDate(day(start)),
		EndDate:   dto.NewDate(day(end)),
	}, testActor)
	s.Require().NoError(err)
	return fy
}

func (s *engineSuite) addAccount(parentID, name string, accountType domain.AccountType, category domain.AccountCategory, opening string) *domain.Account {
	acc, err := s.tryAddAccount(parentID, name, accountType, category, opening)
	s.Require().NoError(err)
	return acc
}

func (s *engineSuite) tryAddAccount(parentID, name string, accountType domain.AccountType, category domain.AccountCategory, opening string) (*domain.Account, error) {
	return s.svc.Account.AddAccount(s.ctx, dto.CreateAccountRequest{
		ParentAccountID: parentID,
		NamePrimary:     name,
		NameSecondary:   name + " (2)",
		AccountType:     accountType,
		Category:        category,
		OpeningBalance:  dec(opening),
	}, testActor)
}

func debit(accountID, amount string) dto.CreateLineRequest {
	return dto.CreateLineRequest{AccountID: accountID, Debit: dec(amount), Credit: decimal.Zero}
}

func credit(accountID, amount string) dto.CreateLineRequest {
	return dto.CreateLineRequest{AccountID: accountID, Debit: decimal.Zero, Credit: dec(amount)}
}

func (s *engineSuite) tryCreateEntry(date string, lines ...dto.CreateLineRequest) (*domain.JournalEntry, error) {
	return s.svc.Journal.CreateEntry(s.ctx, dto.CreateEntryRequest{
		Date:        dto.NewDate(day(date)),
		Description: "entry on " + date,
		Lines:       lines,
	}, testActor)
}

func (s *engineSuite) createEntry(date string, lines ...dto.CreateLineRequest) *domain.JournalEntry {
	entry, err := s.tryCreateEntry(date, lines...)
	s.Require().NoError(err)
	return entry
}

func (s *engineSuite) createPosted(date string, lines ...dto.CreateLineRequest) *domain.JournalEntry {
	entry := s.createEntry(date, lines...)
	posted, err := s.svc.Journal.PostEntry(s.ctx, entry.EntryID, testActor)
	s.Require().NoError(err)
	return posted
}

func (s *engineSuite) createPostedWith(date, description string, lines ...dto.CreateLineRequest) *domain.JournalEntry {
	entry, err := s.svc.Journal.CreateEntry(s.ctx, dto.CreateEntryRequest{
		Date:        dto.NewDate(day(date)),
		Description: description,
		Lines:       lines,
	}, testActor)
	s.Require().NoError(err)
	posted, err := s.svc.Journal.PostEntry(s.ctx, entry.EntryID, testActor)
	s.Require().NoError(err)
	return posted
}

func (s *engineSuite) balanceOf(accountID string) decimal.Decimal {
	acc, err := s.store.FindAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return acc.CurrentBalance
}

func (s *engineSuite) assertDecimal(expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	s.Truef(dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}
