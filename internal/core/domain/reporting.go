package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is one line of an account ledger with the balance after it.
type LedgerRow struct {
	EntryID        string          `json:"entryID,omitempty"`
	EntryNumber    string          `json:"entryNumber,omitempty"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	IsOpening      bool            `json:"isOpening,omitempty"`
}

// Ledger is the re-derived history of one account.
type Ledger struct {
	Account        Account         `json:"account"`
	StartDate      *time.Time      `json:"startDate,omitempty"`
	EndDate        *time.Time      `json:"endDate,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Rows           []LedgerRow     `json:"rows"`
}

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	NamePrimary    string          `json:"namePrimary"`
	NameSecondary  string          `json:"nameSecondary"`
	Category       AccountCategory `json:"category"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	PeriodDebit    decimal.Decimal `json:"periodDebit"`
	PeriodCredit   decimal.Decimal `json:"periodCredit"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	TrialDebit     decimal.Decimal `json:"trialDebit"`
	TrialCredit    decimal.Decimal `json:"trialCredit"`
}

// TrialBalance is the per account closing position with its totals.
type TrialBalance struct {
	FiscalYearID string            `json:"fiscalYearID,omitempty"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebit   decimal.Decimal   `json:"totalDebit"`
	TotalCredit  decimal.Decimal   `json:"totalCredit"`
	IsBalanced   bool              `json:"isBalanced"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	NamePrimary string          `json:"namePrimary"`
	Category    AccountCategory `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// IncomeStatement represents revenues and expenses over a date range.
type IncomeStatement struct {
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Revenues      []AccountAmount `json:"revenues"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheet represents the financial position as of a date.
// Revenue and expense accounts are listed under Equity.
type BalanceSheet struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	IsBalanced       bool            `json:"isBalanced"`
}

// CashFlowActivity is the statement section a cash movement belongs to.
type CashFlowActivity string

const (
	OperatingActivity CashFlowActivity = "operating"
	InvestingActivity CashFlowActivity = "investing"
	FinancingActivity CashFlowActivity = "financing"
)

// CashFlowItem is one posted line on a cash account.
type CashFlowItem struct {
	EntryID     string           `json:"entryID"`
	EntryNumber string           `json:"entryNumber"`
	Date        time.Time        `json:"date"`
	AccountID   string           `json:"accountID"`
	Description string           `json:"description"`
	Activity    CashFlowActivity `json:"activity"`
	Inflow      decimal.Decimal  `json:"inflow"`
	Outflow     decimal.Decimal  `json:"outflow"`
}

// CashFlowStatement tracks the movement of cash and bank accounts over a period.
// EndingBalance equals BeginningBalance plus NetChange.
type CashFlowStatement struct {
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	CashAccounts     []AccountAmount `json:"cashAccounts"`
	Operating        []CashFlowItem  `json:"operating"`
	Investing        []CashFlowItem  `json:"investing"`
	Financing        []CashFlowItem  `json:"financing"`
	TotalInflow      decimal.Decimal `json:"totalInflow"`
	TotalOutflow     decimal.Decimal `json:"totalOutflow"`
	NetChange        decimal.Decimal `json:"netChange"`
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
}

// CostAccountRow is one expense or revenue account of the cost accounts report.
type CostAccountRow struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	NamePrimary    string          `json:"namePrimary"`
	NameSecondary  string          `json:"nameSecondary"`
	Category       AccountCategory `json:"category"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	PeriodDebit    decimal.Decimal `json:"periodDebit"`
	PeriodCredit   decimal.Decimal `json:"periodCredit"`
	NetAmount      decimal.Decimal `json:"netAmount"`
}

// CostAccountsReport lists active expense and revenue accounts with their net amounts.
type CostAccountsReport struct {
	StartDate     *time.Time       `json:"startDate,omitempty"`
	EndDate       *time.Time       `json:"endDate,omitempty"`
	Rows          []CostAccountRow `json:"rows"`
	TotalExpenses decimal.Decimal  `json:"totalExpenses"`
	TotalRevenue  decimal.Decimal  `json:"totalRevenue"`
	NetProfit     decimal.Decimal  `json:"netProfit"`
}
