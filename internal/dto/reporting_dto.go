package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerRowResponse is one ledger line with its running balance.
type LedgerRowResponse struct {
	EntryID        string          `json:"entryID,omitempty"`
	EntryNumber    string          `json:"entryNumber,omitempty"`
	Date           *Date           `json:"date,omitempty"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	IsOpening      bool            `json:"isOpening,omitempty"`
}

// LedgerResponse represents the ledger of one account.
type LedgerResponse struct {
	Account        AccountResponse     `json:"account"`
	StartDate      *Date               `json:"startDate,omitempty"`
	EndDate        *Date               `json:"endDate,omitempty"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	ClosingBalance decimal.Decimal     `json:"closingBalance"`
	Rows           []LedgerRowResponse `json:"rows"`
}

// ToLedgerResponse converts a domain ledger.
func ToLedgerResponse(l *domain.Ledger) LedgerResponse {
	res := LedgerResponse{
		Account:        ToAccountResponse(&l.Account),
		StartDate:      optionalDate(l.StartDate),
		EndDate:        optionalDate(l.EndDate),
		OpeningBalance: l.OpeningBalance,
		ClosingBalance: l.ClosingBalance,
		Rows:           make([]LedgerRowResponse, len(l.Rows)),
	}
	for i, r := range l.Rows {
		var date *Date
		if !r.Date.IsZero() {
			d := NewDate(r.Date)
			date = &d
		}
		res.Rows[i] = LedgerRowResponse{
			EntryID:        r.EntryID,
			EntryNumber:    r.EntryNumber,
			Date:           date,
			Description:    r.Description,
			Debit:          r.Debit,
			Credit:         r.Credit,
			RunningBalance: r.RunningBalance,
			IsOpening:      r.IsOpening,
		}
	}
	return res
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID      string          `json:"accountID,omitempty"`
	Code           string          `json:"code,omitempty"`
	NamePrimary    string          `json:"namePrimary"`
	NameSecondary  string          `json:"nameSecondary,omitempty"`
	Category       string          `json:"category,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	PeriodDebit    decimal.Decimal `json:"periodDebit"`
	PeriodCredit   decimal.Decimal `json:"periodCredit"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	TrialDebit     decimal.Decimal `json:"trialDebit"`
	TrialCredit    decimal.Decimal `json:"trialCredit"`
	IsTotal        bool            `json:"isTotal,omitempty"`
}

// TrialBalanceResponse represents the trial balance report response.
// The last row holds the totals.
type TrialBalanceResponse struct {
	FiscalYearID string                    `json:"fiscalYearID,omitempty"`
	Rows         []TrialBalanceRowResponse `json:"rows"`
	IsBalanced   bool                      `json:"isBalanced"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response and appends the totals row.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	response := TrialBalanceResponse{
		FiscalYearID: tb.FiscalYearID,
		Rows:         make([]TrialBalanceRowResponse, 0, len(tb.Rows)+1),
		IsBalanced:   tb.IsBalanced,
	}

	totals := TrialBalanceRowResponse{NamePrimary: "Total", IsTotal: true}
	for _, row := range tb.Rows {
		response.Rows = append(response.Rows, TrialBalanceRowResponse{
			AccountID:      row.AccountID,
			Code:           row.Code,
			NamePrimary:    row.NamePrimary,
			NameSecondary:  row.NameSecondary,
			Category:       string(row.Category),
			OpeningBalance: row.OpeningBalance,
			PeriodDebit:    row.PeriodDebit,
			PeriodCredit:   row.PeriodCredit,
			ClosingBalance: row.ClosingBalance,
			TrialDebit:     row.TrialDebit,
			TrialCredit:    row.TrialCredit,
		})
		totals.PeriodDebit = totals.PeriodDebit.Add(row.PeriodDebit)
		totals.PeriodCredit = totals.PeriodCredit.Add(row.PeriodCredit)
	}
	totals.TrialDebit = tb.TotalDebit
	totals.TrialCredit = tb.TotalCredit
	response.Rows = append(response.Rows, totals)
	return response
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	NamePrimary string          `json:"namePrimary"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

func toAccountAmounts(items []domain.AccountAmount) []AccountAmountResponse {
	out := make([]AccountAmountResponse, len(items))
	for i, a := range items {
		out[i] = AccountAmountResponse{
			AccountID:   a.AccountID,
			Code:        a.Code,
			NamePrimary: a.NamePrimary,
			Category:    string(a.Category),
			Amount:      a.Amount,
		}
	}
	return out
}

// IncomeStatementResponse represents the income statement report response
type IncomeStatementResponse struct {
	StartDate Date                    `json:"startDate"`
	EndDate   Date                    `json:"endDate"`
	Revenues  []AccountAmountResponse `json:"revenues"`
	Expenses  []AccountAmountResponse `json:"expenses"`
	Summary   struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetIncome     decimal.Decimal `json:"netIncome"`
	} `json:"summary"`
}

// ToIncomeStatementResponse converts a domain income statement.
func ToIncomeStatementResponse(is *domain.IncomeStatement) IncomeStatementResponse {
	res := IncomeStatementResponse{
		StartDate: NewDate(is.StartDate),
		EndDate:   NewDate(is.EndDate),
		Revenues:  toAccountAmounts(is.Revenues),
		Expenses:  toAccountAmounts(is.Expenses),
	}
	res.Summary.TotalRevenue = is.TotalRevenue
	res.Summary.TotalExpenses = is.TotalExpenses
	res.Summary.NetIncome = is.NetIncome
	return res
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        Date                    `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
		IsBalanced       bool            `json:"isBalanced"`
	} `json:"summary"`
}

// ToBalanceSheetResponse converts a domain balance sheet.
func ToBalanceSheetResponse(bs *domain.BalanceSheet) BalanceSheetResponse {
	res := BalanceSheetResponse{
		AsOf:        NewDate(bs.AsOf),
		Assets:      toAccountAmounts(bs.Assets),
		Liabilities: toAccountAmounts(bs.Liabilities),
		Equity:      toAccountAmounts(bs.Equity),
	}
	res.Summary.TotalAssets = bs.TotalAssets
	res.Summary.TotalLiabilities = bs.TotalLiabilities
	res.Summary.TotalEquity = bs.TotalEquity
	res.Summary.IsBalanced = bs.IsBalanced
	return res
}

// CashFlowItemResponse is one movement on a cash account.
type CashFlowItemResponse struct {
	EntryID     string          `json:"entryID"`
	EntryNumber string          `json:"entryNumber"`
	Date        Date            `json:"date"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Inflow      decimal.Decimal `json:"inflow"`
	Outflow     decimal.Decimal `json:"outflow"`
}

// CashFlowResponse represents the cash flow statement response.
// CashAccounts carries the ending balance of every cash account.
type CashFlowResponse struct {
	StartDate    Date                    `json:"startDate"`
	EndDate      Date                    `json:"endDate"`
	CashAccounts []AccountAmountResponse `json:"cashAccounts"`
	Operating    []CashFlowItemResponse  `json:"operating"`
	Investing    []CashFlowItemResponse  `json:"investing"`
	Financing    []CashFlowItemResponse  `json:"financing"`
	Summary      struct {
		TotalInflow      decimal.Decimal `json:"totalInflow"`
		TotalOutflow     decimal.Decimal `json:"totalOutflow"`
		NetChange        decimal.Decimal `json:"netChange"`
		BeginningBalance decimal.Decimal `json:"beginningBalance"`
		EndingBalance    decimal.Decimal `json:"endingBalance"`
	} `json:"summary"`
}

func toCashFlowItems(items []domain.CashFlowItem) []CashFlowItemResponse {
	out := make([]CashFlowItemResponse, len(items))
	for i, it := range items {
		out[i] = CashFlowItemResponse{
			EntryID:     it.EntryID,
			EntryNumber: it.EntryNumber,
			Date:        NewDate(it.Date),
			AccountID:   it.AccountID,
			Description: it.Description,
			Inflow:      it.Inflow,
			Outflow:     it.Outflow,
		}
	}
	return out
}

// ToCashFlowResponse converts a domain cash flow statement.
func ToCashFlowResponse(cf *domain.CashFlowStatement) CashFlowResponse {
	res := CashFlowResponse{
		StartDate:    NewDate(cf.StartDate),
		EndDate:      NewDate(cf.EndDate),
		CashAccounts: toAccountAmounts(cf.CashAccounts),
		Operating:    toCashFlowItems(cf.Operating),
		Investing:    toCashFlowItems(cf.Investing),
		Financing:    toCashFlowItems(cf.Financing),
	}
	res.Summary.TotalInflow = cf.TotalInflow
	res.Summary.TotalOutflow = cf.TotalOutflow
	res.Summary.NetChange = cf.NetChange
	res.Summary.BeginningBalance = cf.BeginningBalance
	res.Summary.EndingBalance = cf.EndingBalance
	return res
}

// CostAccountRowResponse represents a row of the cost accounts report.
type CostAccountRowResponse struct {
	AccountID      string          `json:"accountID,omitempty"`
	Code           string          `json:"code,omitempty"`
	NamePrimary    string          `json:"namePrimary"`
	NameSecondary  string          `json:"nameSecondary,omitempty"`
	Category       string          `json:"category,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	PeriodDebit    decimal.Decimal `json:"periodDebit"`
	PeriodCredit   decimal.Decimal `json:"periodCredit"`
	NetAmount      decimal.Decimal `json:"netAmount"`
	IsTotal        bool            `json:"isTotal,omitempty"`
}

// CostAccountsResponse represents the cost accounts report response.
// The last row holds the net profit.
type CostAccountsResponse struct {
	StartDate     *Date                    `json:"startDate,omitempty"`
	EndDate       *Date                    `json:"endDate,omitempty"`
	Rows          []CostAccountRowResponse `json:"rows"`
	TotalExpenses decimal.Decimal          `json:"totalExpenses"`
	TotalRevenue  decimal.Decimal          `json:"totalRevenue"`
}

// ToCostAccountsResponse converts a domain cost accounts report and appends the net profit row.
func ToCostAccountsResponse(r *domain.CostAccountsReport) CostAccountsResponse {
	res := CostAccountsResponse{
		StartDate:     optionalDate(r.StartDate),
		EndDate:       optionalDate(r.EndDate),
		Rows:          make([]CostAccountRowResponse, 0, len(r.Rows)+1),
		TotalExpenses: r.TotalExpenses,
		TotalRevenue:  r.TotalRevenue,
	}
	for _, row := range r.Rows {
		res.Rows = append(res.Rows, CostAccountRowResponse{
			AccountID:      row.AccountID,
			Code:           row.Code,
			NamePrimary:    row.NamePrimary,
			NameSecondary:  row.NameSecondary,
			Category:       string(row.Category),
			OpeningBalance: row.OpeningBalance,
			PeriodDebit:    row.PeriodDebit,
			PeriodCredit:   row.PeriodCredit,
			NetAmount:      row.NetAmount,
		})
	}
	res.Rows = append(res.Rows, CostAccountRowResponse{NamePrimary: "Net Profit", NetAmount: r.NetProfit, IsTotal: true})
	return res
}

// ReportDateParams carries optional report date bounds from the query string.
type ReportDateParams struct {
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02" time_utc:"1"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02" time_utc:"1"`
	AsOf      *time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1"`
}

func optionalDate(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}
