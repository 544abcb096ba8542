package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) AddAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountsTree(ctx context.Context, parentID string, includeInactive bool) ([]*domain.AccountNode, error) {
	args := m.Called(ctx, parentID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountNode), args.Error(1)
}
func (m *MockAccountService) ValidateAccountHierarchy(ctx context.Context, parentID string, childType domain.AccountType) (bool, error) {
	args := m.Called(ctx, parentID, childType)
	return args.Bool(0), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, patch domain.AccountPatch, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, patch, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, force bool, userID string) error {
	args := m.Called(ctx, accountID, force, userID)
	return args.Error(0)
}
func (m *MockAccountService) GetAccountBalance(ctx context.Context, accountID string, asOf *time.Time) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) entry(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID))
}
func (m *MockJournalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}
func (m *MockJournalService) ValidateEntry(ctx context.Context, lines []domain.LineInput) error {
	return m.Called(ctx, lines).Error(0)
}
func (m *MockJournalService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, req, userID))
}
func (m *MockJournalService) UpdateEntry(ctx context.Context, entryID string, patch domain.EntryPatch, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, patch, userID))
}
func (m *MockJournalService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	return m.Called(ctx, entryID, userID).Error(0)
}
func (m *MockJournalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, userID))
}
func (m *MockJournalService) ApproveEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, userID))
}
func (m *MockJournalService) ReverseEntry(ctx context.Context, entryID string, req dto.ReverseEntryRequest, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, req, userID))
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock FiscalYearService ---
type MockFiscalYearService struct {
	mock.Mock
}

func (m *MockFiscalYearService) year(args mock.Arguments) (*domain.FiscalYear, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearService) CreateFiscalYear(ctx context.Context, req dto.CreateFiscalYearRequest, userID string) (*domain.FiscalYear, error) {
	return m.year(m.Called(ctx, req, userID))
}
func (m *MockFiscalYearService) GetFiscalYear(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	return m.year(m.Called(ctx, fiscalYearID))
}
func (m *MockFiscalYearService) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalYear), args.Error(1)
}
func (m *MockFiscalYearService) FindFiscalYearForDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error) {
	return m.year(m.Called(ctx, date))
}
func (m *MockFiscalYearService) ActivateFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error) {
	return m.year(m.Called(ctx, fiscalYearID, userID))
}
func (m *MockFiscalYearService) CloseFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error) {
	return m.year(m.Called(ctx, fiscalYearID, userID))
}

var _ portssvc.FiscalYearSvcFacade = (*MockFiscalYearService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GetLedger(ctx context.Context, accountID string, startDate, endDate *time.Time) (*domain.Ledger, error) {
	args := m.Called(ctx, accountID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}
func (m *MockReportingService) GetTrialBalance(ctx context.Context, fiscalYearID *string) (*domain.TrialBalance, error) {
	args := m.Called(ctx, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockReportingService) GetBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheet), args.Error(1)
}
func (m *MockReportingService) GetIncomeStatement(ctx context.Context, startDate, endDate time.Time) (*domain.IncomeStatement, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatement), args.Error(1)
}
func (m *MockReportingService) GetCashFlow(ctx context.Context, startDate, endDate time.Time) (*domain.CashFlowStatement, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashFlowStatement), args.Error(1)
}
func (m *MockReportingService) GetCostAccounts(ctx context.Context, startDate, endDate *time.Time) (*domain.CostAccountsReport, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostAccountsReport), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Mock AuditService ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) ListAuditRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

var _ portssvc.AuditReaderSvc = (*MockAuditService)(nil)
