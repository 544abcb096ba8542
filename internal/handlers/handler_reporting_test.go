package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReportingHandlerTestSuite struct {
	apiSuite
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (suite *ReportingHandlerTestSuite) TestTrialBalance_ScopedToFiscalYear() {
	suite.reporting.On("GetTrialBalance", mock.Anything,
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == "fy-2024" }),
	).Return(&domain.TrialBalance{
		FiscalYearID: "fy-2024",
		Rows: []domain.TrialBalanceRow{
			{AccountID: "cash", Code: "1", NamePrimary: "Cash", Category: domain.Asset, ClosingBalance: decimal.NewFromInt(80), TrialDebit: decimal.NewFromInt(80)},
			{AccountID: "capital", Code: "3", NamePrimary: "Capital", Category: domain.Equity, ClosingBalance: decimal.NewFromInt(80), TrialCredit: decimal.NewFromInt(80)},
		},
		TotalDebit:  decimal.NewFromInt(80),
		TotalCredit: decimal.NewFromInt(80),
		IsBalanced:  true,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance?fiscalYearId=fy-2024", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.TrialBalanceResponse
	suite.decode(w, &res)
	suite.True(res.IsBalanced)
	suite.Require().Len(res.Rows, 3)
	suite.True(res.Rows[2].IsTotal)
	suite.True(res.Rows[2].TrialDebit.Equal(decimal.NewFromInt(80)))
}

func (suite *ReportingHandlerTestSuite) TestTrialBalance_AllTime() {
	suite.reporting.On("GetTrialBalance", mock.Anything, (*string)(nil)).
		Return(&domain.TrialBalance{IsBalanced: true}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ReportingHandlerTestSuite) TestTrialBalance_UnknownFiscalYear() {
	suite.reporting.On("GetTrialBalance", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: fiscal year nope", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance?fiscalYearId=nope", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ReportingHandlerTestSuite) TestBalanceSheet_AsOf() {
	asOf := utcDay(2024, time.June, 30)
	suite.reporting.On("GetBalanceSheet", mock.Anything, asOf).Return(&domain.BalanceSheet{
		AsOf:        asOf,
		Assets:      []domain.AccountAmount{{AccountID: "cash", Code: "1", NamePrimary: "Cash", Category: domain.Asset, Amount: decimal.NewFromInt(500)}},
		Equity:      []domain.AccountAmount{{AccountID: "capital", Code: "3", NamePrimary: "Capital", Category: domain.Equity, Amount: decimal.NewFromInt(500)}},
		TotalAssets: decimal.NewFromInt(500),
		TotalEquity: decimal.NewFromInt(500),
		IsBalanced:  true,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/balance-sheet?asOf=2024-06-30", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.BalanceSheetResponse
	suite.decode(w, &res)
	suite.True(res.Summary.IsBalanced)
	suite.Len(res.Assets, 1)
}

func (suite *ReportingHandlerTestSuite) TestBalanceSheet_DefaultsToToday() {
	suite.reporting.On("GetBalanceSheet", mock.Anything, mock.MatchedBy(func(t time.Time) bool {
		return t.Equal(domain.DateOnly(time.Now())) || t.Equal(domain.DateOnly(time.Now().Add(-time.Minute)))
	})).Return(&domain.BalanceSheet{IsBalanced: true}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/balance-sheet", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ReportingHandlerTestSuite) TestIncomeStatement_RequiresRange() {
	w := suite.do(http.MethodGet, "/api/v1/reports/income-statement?startDate=2024-01-01", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorOf(w), "startDate and endDate are required")
}

func (suite *ReportingHandlerTestSuite) TestIncomeStatement() {
	start, end := utcDay(2024, time.January, 1), utcDay(2024, time.March, 31)
	suite.reporting.On("GetIncomeStatement", mock.Anything, start, end).Return(&domain.IncomeStatement{
		StartDate:     start,
		EndDate:       end,
		Revenues:      []domain.AccountAmount{{AccountID: "sales", Code: "4", NamePrimary: "Sales", Category: domain.Revenue, Amount: decimal.NewFromInt(300)}},
		TotalRevenue:  decimal.NewFromInt(300),
		TotalExpenses: decimal.Zero,
		NetIncome:     decimal.NewFromInt(300),
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/income-statement?startDate=2024-01-01&endDate=2024-03-31", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.IncomeStatementResponse
	suite.decode(w, &res)
	suite.True(res.Summary.NetIncome.Equal(decimal.NewFromInt(300)))
}

func (suite *ReportingHandlerTestSuite) TestIncomeStatement_InvertedRange() {
	start, end := utcDay(2024, time.April, 1), utcDay(2024, time.March, 1)
	suite.reporting.On("GetIncomeStatement", mock.Anything, start, end).
		Return(nil, fmt.Errorf("%w: start date after end date", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/income-statement?startDate=2024-04-01&endDate=2024-03-01", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ReportingHandlerTestSuite) TestCashFlow() {
	start, end := utcDay(2024, time.February, 1), utcDay(2024, time.February, 29)
	suite.reporting.On("GetCashFlow", mock.Anything, start, end).Return(&domain.CashFlowStatement{
		StartDate:    start,
		EndDate:      end,
		CashAccounts: []domain.AccountAmount{{AccountID: "cash", Code: "1", NamePrimary: "Cash", Category: domain.Asset, Amount: decimal.NewFromInt(150)}},
		Financing: []domain.CashFlowItem{{
			EntryID: "e1", EntryNumber: "JE-000001", Date: start, AccountID: "cash",
			Description: "Owner capital", Activity: domain.FinancingActivity,
			Inflow: decimal.NewFromInt(50), Outflow: decimal.Zero,
		}},
		TotalInflow:      decimal.NewFromInt(50),
		TotalOutflow:     decimal.Zero,
		NetChange:        decimal.NewFromInt(50),
		BeginningBalance: decimal.NewFromInt(100),
		EndingBalance:    decimal.NewFromInt(150),
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/cash-flow?startDate=2024-02-01&endDate=2024-02-29", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.CashFlowResponse
	suite.decode(w, &res)
	suite.Require().Len(res.Financing, 1)
	suite.Empty(res.Operating)
	suite.True(res.Financing[0].Date.Equal(start))
	suite.True(res.Summary.EndingBalance.Equal(decimal.NewFromInt(150)))
}

func (suite *ReportingHandlerTestSuite) TestCashFlow_RequiresRange() {
	w := suite.do(http.MethodGet, "/api/v1/reports/cash-flow?endDate=2024-02-29", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorOf(w), "startDate and endDate are required")
}

func (suite *ReportingHandlerTestSuite) TestCostAccounts_AppendsNetProfitRow() {
	suite.reporting.On("GetCostAccounts", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(&domain.CostAccountsReport{
		Rows: []domain.CostAccountRow{
			{AccountID: "sales", Code: "4", NamePrimary: "Sales", Category: domain.Revenue, PeriodCredit: decimal.NewFromInt(900), NetAmount: decimal.NewFromInt(900)},
			{AccountID: "rent", Code: "5", NamePrimary: "Rent", Category: domain.Expense, PeriodDebit: decimal.NewFromInt(300), NetAmount: decimal.NewFromInt(300)},
		},
		TotalRevenue:  decimal.NewFromInt(900),
		TotalExpenses: decimal.NewFromInt(300),
		NetProfit:     decimal.NewFromInt(600),
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/cost-accounts", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.CostAccountsResponse
	suite.decode(w, &res)
	suite.Require().Len(res.Rows, 3)
	last := res.Rows[2]
	suite.True(last.IsTotal)
	suite.True(last.NetAmount.Equal(decimal.NewFromInt(600)))
}

func (suite *ReportingHandlerTestSuite) TestCostAccounts_DateRange() {
	start := utcDay(2024, time.March, 1)
	suite.reporting.On("GetCostAccounts", mock.Anything,
		mock.MatchedBy(func(t *time.Time) bool { return t != nil && t.Equal(start) }),
		(*time.Time)(nil),
	).Return(&domain.CostAccountsReport{StartDate: &start, Rows: []domain.CostAccountRow{}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/cost-accounts?startDate=2024-03-01", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *ReportingHandlerTestSuite) TestLedger_DateRange() {
	start, end := utcDay(2024, time.February, 1), utcDay(2024, time.February, 29)
	suite.reporting.On("GetLedger", mock.Anything, "cash",
		mock.MatchedBy(func(t *time.Time) bool { return t != nil && t.Equal(start) }),
		mock.MatchedBy(func(t *time.Time) bool { return t != nil && t.Equal(end) }),
	).Return(&domain.Ledger{
		Account:        *testAccount("cash", "1"),
		StartDate:      &start,
		EndDate:        &end,
		OpeningBalance: decimal.NewFromInt(100),
		ClosingBalance: decimal.NewFromInt(20),
		Rows: []domain.LedgerRow{
			{Description: "Opening balance", Debit: decimal.NewFromInt(100), RunningBalance: decimal.NewFromInt(100), IsOpening: true},
			{EntryID: "e1", EntryNumber: "JE-000001", Date: utcDay(2024, time.February, 1), Credit: decimal.NewFromInt(80), RunningBalance: decimal.NewFromInt(20)},
		},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/cash/ledger?startDate=2024-02-01&endDate=2024-02-29", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.LedgerResponse
	suite.decode(w, &res)
	suite.Require().Len(res.Rows, 2)
	suite.True(res.Rows[0].IsOpening)
	suite.Nil(res.Rows[0].Date)
	suite.True(res.ClosingBalance.Equal(decimal.NewFromInt(20)))
}

func (suite *ReportingHandlerTestSuite) TestLedger_WholeHistory() {
	suite.reporting.On("GetLedger", mock.Anything, "cash", (*time.Time)(nil), (*time.Time)(nil)).
		Return(&domain.Ledger{Account: *testAccount("cash", "1")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/cash/ledger", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *ReportingHandlerTestSuite) TestFiscalYearLifecycle() {
	fy := &domain.FiscalYear{
		FiscalYearID: "fy-2024",
		Name:         "FY 2024",
		StartDate:    utcDay(2024, time.January, 1),
		EndDate:      utcDay(2024, time.December, 31),
	}
	suite.fiscalYears.On("CreateFiscalYear", mock.Anything,
		mock.MatchedBy(func(r dto.CreateFiscalYearRequest) bool {
			return r.Name == "FY 2024" && r.EndDate.Equal(fy.EndDate)
		}),
		testUserID,
	).Return(fy, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/fiscal-years", dto.CreateFiscalYearRequest{
		Name:      "FY 2024",
		StartDate: dto.NewDate(fy.StartDate),
		EndDate:   dto.NewDate(fy.EndDate),
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	closed := *fy
	closed.IsClosed = true
	closed.ClosedBy = testUserID
	suite.fiscalYears.On("CloseFiscalYear", mock.Anything, "fy-2024", testUserID).Return(&closed, nil).Once()

	w = suite.do(http.MethodPost, "/api/v1/fiscal-years/fy-2024/close", nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.FiscalYearResponse
	suite.decode(w, &res)
	suite.True(res.IsClosed)
	suite.Equal("2024-12-31", res.EndDate.Format(domain.DateLayout))

	suite.fiscalYears.On("ActivateFiscalYear", mock.Anything, "fy-2024", testUserID).
		Return(nil, fmt.Errorf("%w: fiscal year is closed", apperrors.ErrState)).Once()

	w = suite.do(http.MethodPost, "/api/v1/fiscal-years/fy-2024/activate", nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReportingHandlerTestSuite) TestListFiscalYears() {
	suite.fiscalYears.On("ListFiscalYears", mock.Anything).Return([]domain.FiscalYear{
		{FiscalYearID: "a", Name: "FY 2023"}, {FiscalYearID: "b", Name: "FY 2024"},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/fiscal-years", nil)

	suite.Equal(http.StatusOK, w.Code)
	var res []dto.FiscalYearResponse
	suite.decode(w, &res)
	suite.Len(res, 2)
}

func (suite *ReportingHandlerTestSuite) TestAuditLog_Filter() {
	suite.audit.On("ListAuditRecords", mock.Anything, domain.AuditFilter{
		TableName: domain.TableJournalEntries,
		RecordID:  "e1",
		Action:    domain.ActionJournalPost,
		Limit:     100,
	}).Return([]domain.AuditRecord{{AuditID: "a1", Actor: testUserID, Action: domain.ActionJournalPost, TableName: domain.TableJournalEntries, RecordID: "e1"}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/audit?table=journal_entries&recordId=e1&action=JOURNAL_POST", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ListAuditResponse
	suite.decode(w, &res)
	suite.Require().Len(res.Records, 1)
	suite.Equal(testUserID, res.Records[0].Actor)
}

func TestReportingHandler(t *testing.T) {
	suite.Run(t, new(ReportingHandlerTestSuite))
}
