package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService derives ledgers and statements from posted lines.
// It never reads Account.CurrentBalance; every figure is recomputed from raw lines.
type reportingService struct {
	BaseService
	store portsrepo.Store
}

// NewReportingService creates a new reporting service
func NewReportingService(store portsrepo.Store, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService: newBaseService(options),
		store:       store,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func dateRange(start, end *time.Time) (*time.Time, *time.Time, error) {
	if start != nil {
		d := domain.DateOnly(*start)
		start = &d
	}
	if end != nil {
		d := domain.DateOnly(*end)
		end = &d
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("%w: start date must not be after end date", apperrors.ErrValidation)
	}
	return start, end, nil
}

func (s *reportingService) GetLedger(ctx context.Context, accountID string, startDate, endDate *time.Time) (*domain.Ledger, error) {
	defer s.Metrics.ObserveReport("ledger", time.Now())

	start, end, err := dateRange(startDate, endDate)
	if err != nil {
		return nil, s.fail(ctx, "get_ledger", err)
	}
	acc, err := s.store.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, s.fail(ctx, "get_ledger", err, slog.String("account_id", accountID))
	}

	opening := acc.OpeningBalance
	if start != nil {
		prior, err := s.store.SumPostedActivity(ctx, domain.PostedLineFilter{AccountID: accountID, Before: start})
		if err != nil {
			return nil, s.fail(ctx, "get_ledger", err, slog.String("account_id", accountID))
		}
		act := prior[accountID]
		if opening, err = accounting.ApplyActivity(acc.Category, opening, act.Debit, act.Credit); err != nil {
			return nil, s.fail(ctx, "get_ledger", err, slog.String("account_id", accountID))
		}
	}

	lines, err := s.store.ListPostedLines(ctx, domain.PostedLineFilter{AccountID: accountID, From: start, To: end})
	if err != nil {
		return nil, s.fail(ctx, "get_ledger", err, slog.String("account_id", accountID))
	}

	ledger := &domain.Ledger{
		Account:        *acc,
		StartDate:      start,
		EndDate:        end,
		OpeningBalance: opening,
		Rows:           make([]domain.LedgerRow, 0, len(lines)+1),
	}
	if !opening.IsZero() {
		row := domain.LedgerRow{
			Description:    "Opening balance",
			Debit:          decimal.Zero,
			Credit:         decimal.Zero,
			RunningBalance: opening,
			IsOpening:      true,
			Date:           domain.DateOnly(acc.CreatedAt),
		}
		if start != nil {
			row.Date = *start
		}
		if opening.IsPositive() {
			row.Debit = opening
		} else {
			row.Credit = opening.Abs()
		}
		ledger.Rows = append(ledger.Rows, row)
	}

	running := opening
	for _, l := range lines {
		if running, err = accounting.ApplyActivity(acc.Category, running, l.Debit, l.Credit); err != nil {
			return nil, s.fail(ctx, "get_ledger", err, slog.String("account_id", accountID))
		}
		description := l.Description
		if description == "" {
			description = l.EntryDescription
		}
		ledger.Rows = append(ledger.Rows, domain.LedgerRow{
			EntryID:        l.EntryID,
			EntryNumber:    l.EntryNumber,
			Date:           l.EntryDate,
			Description:    description,
			Debit:          l.Debit,
			Credit:         l.Credit,
			RunningBalance: running,
		})
	}
	ledger.ClosingBalance = running
	return ledger, nil
}

func (s *reportingService) GetTrialBalance(ctx context.Context, fiscalYearID *string) (*domain.TrialBalance, error) {
	defer s.Metrics.ObserveReport("trial_balance", time.Now())

	accounts, err := s.store.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, s.fail(ctx, "get_trial_balance", err)
	}

	tb := &domain.TrialBalance{
		Rows:        []domain.TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	var prior map[string]domain.AccountActivity
	periodFilter := domain.PostedLineFilter{}
	if fiscalYearID != nil && *fiscalYearID != "" {
		fy, err := s.store.FindFiscalYearByID(ctx, *fiscalYearID)
		if err != nil {
			return nil, s.fail(ctx, "get_trial_balance", err, slog.String("fiscal_year_id", *fiscalYearID))
		}
		tb.FiscalYearID = fy.FiscalYearID
		if prior, err = s.store.SumPostedActivity(ctx, domain.PostedLineFilter{Before: &fy.StartDate}); err != nil {
			return nil, s.fail(ctx, "get_trial_balance", err)
		}
		periodFilter.FiscalYearID = fy.FiscalYearID
	}
	period, err := s.store.SumPostedActivity(ctx, periodFilter)
	if err != nil {
		return nil, s.fail(ctx, "get_trial_balance", err)
	}

	for _, acc := range accounts {
		opening := acc.OpeningBalance
		if act, ok := prior[acc.AccountID]; ok {
			if opening, err = accounting.ApplyActivity(acc.Category, opening, act.Debit, act.Credit); err != nil {
				return nil, s.fail(ctx, "get_trial_balance", err)
			}
		}
		act, ok := period[acc.AccountID]
		if !ok {
			act = domain.AccountActivity{Debit: decimal.Zero, Credit: decimal.Zero}
		}
		closing, err := accounting.ApplyActivity(acc.Category, opening, act.Debit, act.Credit)
		if err != nil {
			return nil, s.fail(ctx, "get_trial_balance", err)
		}
		if !acc.IsActive && opening.IsZero() && act.Debit.IsZero() && act.Credit.IsZero() && closing.IsZero() {
			continue
		}

		trialDebit, trialCredit := accounting.SplitTrialBalance(acc.Category, closing)
		tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
			AccountID:      acc.AccountID,
			Code:           acc.Code,
			NamePrimary:    acc.NamePrimary,
			NameSecondary:  acc.NameSecondary,
			Category:       acc.Category,
			OpeningBalance: opening,
			PeriodDebit:    act.Debit,
			PeriodCredit:   act.Credit,
			ClosingBalance: closing,
			TrialDebit:     trialDebit,
			TrialCredit:    trialCredit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(trialDebit)
		tb.TotalCredit = tb.TotalCredit.Add(trialCredit)
	}
	tb.IsBalanced = accounting.Balanced(tb.TotalDebit, tb.TotalCredit)
	if !tb.IsBalanced {
		s.GetLogger(ctx).Warn("Trial balance does not balance",
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()))
	}
	return tb, nil
}

func (s *reportingService) GetBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error) {
	defer s.Metrics.ObserveReport("balance_sheet", time.Now())

	asOf = domain.DateOnly(asOf)
	accounts, err := s.store.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, s.fail(ctx, "get_balance_sheet", err)
	}
	activity, err := s.store.SumPostedActivity(ctx, domain.PostedLineFilter{To: &asOf})
	if err != nil {
		return nil, s.fail(ctx, "get_balance_sheet", err)
	}

	bs := &domain.BalanceSheet{
		AsOf:             asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, acc := range accounts {
		act := activity[acc.AccountID]
		closing, err := accounting.ApplyActivity(acc.Category, acc.OpeningBalance, act.Debit, act.Credit)
		if err != nil {
			return nil, s.fail(ctx, "get_balance_sheet", err)
		}
		if closing.IsZero() {
			continue
		}
		item := domain.AccountAmount{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			NamePrimary: acc.NamePrimary,
			Category:    acc.Category,
			Amount:      closing,
		}
		switch acc.Category {
		case domain.Asset:
			bs.Assets = append(bs.Assets, item)
			bs.TotalAssets = bs.TotalAssets.Add(closing)
		case domain.Liability:
			bs.Liabilities = append(bs.Liabilities, item)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(closing)
		case domain.Equity, domain.Revenue:
			bs.Equity = append(bs.Equity, item)
			bs.TotalEquity = bs.TotalEquity.Add(closing)
		case domain.Expense:
			item.Amount = closing.Neg()
			bs.Equity = append(bs.Equity, item)
			bs.TotalEquity = bs.TotalEquity.Sub(closing)
		}
	}
	bs.IsBalanced = accounting.Balanced(bs.TotalAssets, bs.TotalLiabilities.Add(bs.TotalEquity))
	return bs, nil
}

func (s *reportingService) GetIncomeStatement(ctx context.Context, startDate, endDate time.Time) (*domain.IncomeStatement, error) {
	defer s.Metrics.ObserveReport("income_statement", time.Now())

	start, end, err := dateRange(&startDate, &endDate)
	if err != nil {
		return nil, s.fail(ctx, "get_income_statement", err)
	}
	accounts, err := s.store.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, s.fail(ctx, "get_income_statement", err)
	}
	activity, err := s.store.SumPostedActivity(ctx, domain.PostedLineFilter{From: start, To: end})
	if err != nil {
		return nil, s.fail(ctx, "get_income_statement", err)
	}

	is := &domain.IncomeStatement{
		StartDate:     *start,
		EndDate:       *end,
		Revenues:      []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, acc := range accounts {
		if acc.Category != domain.Revenue && acc.Category != domain.Expense {
			continue
		}
		act, ok := activity[acc.AccountID]
		if !ok {
			continue
		}
		item := domain.AccountAmount{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			NamePrimary: acc.NamePrimary,
			Category:    acc.Category,
		}
		if acc.Category == domain.Revenue {
			item.Amount = act.Credit.Sub(act.Debit)
			is.Revenues = append(is.Revenues, item)
			is.TotalRevenue = is.TotalRevenue.Add(item.Amount)
		} else {
			item.Amount = act.Debit.Sub(act.Credit)
			is.Expenses = append(is.Expenses, item)
			is.TotalExpenses = is.TotalExpenses.Add(item.Amount)
		}
	}
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpenses)
	return is, nil
}

func (s *reportingService) GetCashFlow(ctx context.Context, startDate, endDate time.Time) (*domain.CashFlowStatement, error) {
	defer s.Metrics.ObserveReport("cash_flow", time.Now())

	start, end, err := dateRange(&startDate, &endDate)
	if err != nil {
		return nil, s.fail(ctx, "get_cash_flow", err)
	}
	accounts, err := s.store.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, s.fail(ctx, "get_cash_flow", err)
	}
	prior, err := s.store.SumPostedActivity(ctx, domain.PostedLineFilter{Before: start})
	if err != nil {
		return nil, s.fail(ctx, "get_cash_flow", err)
	}
	lines, err := s.store.ListPostedLines(ctx, domain.PostedLineFilter{From: start, To: end})
	if err != nil {
		return nil, s.fail(ctx, "get_cash_flow", err)
	}

	cf := &domain.CashFlowStatement{
		StartDate:        *start,
		EndDate:          *end,
		CashAccounts:     []domain.AccountAmount{},
		Operating:        []domain.CashFlowItem{},
		Investing:        []domain.CashFlowItem{},
		Financing:        []domain.CashFlowItem{},
		TotalInflow:      decimal.Zero,
		TotalOutflow:     decimal.Zero,
		BeginningBalance: decimal.Zero,
	}
	cash := make(map[string]int)
	for _, acc := range accounts {
		if !accounting.IsCashAccount(acc) {
			continue
		}
		act := prior[acc.AccountID]
		beginning, err := accounting.ApplyActivity(acc.Category, acc.OpeningBalance, act.Debit, act.Credit)
		if err != nil {
			return nil, s.fail(ctx, "get_cash_flow", err)
		}
		cash[acc.AccountID] = len(cf.CashAccounts)
		cf.CashAccounts = append(cf.CashAccounts, domain.AccountAmount{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			NamePrimary: acc.NamePrimary,
			Category:    acc.Category,
			Amount:      beginning,
		})
		cf.BeginningBalance = cf.BeginningBalance.Add(beginning)
	}

	for _, l := range lines {
		idx, ok := cash[l.AccountID]
		if !ok {
			continue
		}
		description := l.Description
		if description == "" {
			description = l.EntryDescription
		}
		item := domain.CashFlowItem{
			EntryID:     l.EntryID,
			EntryNumber: l.EntryNumber,
			Date:        l.EntryDate,
			AccountID:   l.AccountID,
			Description: description,
			Activity:    accounting.ClassifyCashFlow(l.EntryDescription, l.Description),
			Inflow:      l.Debit,
			Outflow:     l.Credit,
		}
		switch item.Activity {
		case domain.InvestingActivity:
			cf.Investing = append(cf.Investing, item)
		case domain.FinancingActivity:
			cf.Financing = append(cf.Financing, item)
		default:
			cf.Operating = append(cf.Operating, item)
		}
		cf.TotalInflow = cf.TotalInflow.Add(l.Debit)
		cf.TotalOutflow = cf.TotalOutflow.Add(l.Credit)
		cf.CashAccounts[idx].Amount = cf.CashAccounts[idx].Amount.Add(l.Debit).Sub(l.Credit)
	}
	cf.NetChange = cf.TotalInflow.Sub(cf.TotalOutflow)
	cf.EndingBalance = cf.BeginningBalance.Add(cf.NetChange)
	return cf, nil
}

func (s *reportingService) GetCostAccounts(ctx context.Context, startDate, endDate *time.Time) (*domain.CostAccountsReport, error) {
	defer s.Metrics.ObserveReport("cost_accounts", time.Now())

	start, end, err := dateRange(startDate, endDate)
	if err != nil {
		return nil, s.fail(ctx, "get_cost_accounts", err)
	}
	accounts, err := s.store.ListAccounts(ctx, domain.AccountFilter{})
	if err != nil {
		return nil, s.fail(ctx, "get_cost_accounts", err)
	}
	var prior map[string]domain.AccountActivity
	if start != nil {
		if prior, err = s.store.SumPostedActivity(ctx, domain.PostedLineFilter{Before: start}); err != nil {
			return nil, s.fail(ctx, "get_cost_accounts", err)
		}
	}
	period, err := s.store.SumPostedActivity(ctx, domain.PostedLineFilter{From: start, To: end})
	if err != nil {
		return nil, s.fail(ctx, "get_cost_accounts", err)
	}

	report := &domain.CostAccountsReport{
		StartDate:     start,
		EndDate:       end,
		Rows:          []domain.CostAccountRow{},
		TotalExpenses: decimal.Zero,
		TotalRevenue:  decimal.Zero,
	}
	for _, acc := range accounts {
		if !acc.IsActive || (acc.Category != domain.Expense && acc.Category != domain.Revenue) {
			continue
		}
		opening := acc.OpeningBalance
		if act, ok := prior[acc.AccountID]; ok {
			if opening, err = accounting.ApplyActivity(acc.Category, opening, act.Debit, act.Credit); err != nil {
				return nil, s.fail(ctx, "get_cost_accounts", err)
			}
		}
		act, ok := period[acc.AccountID]
		if !ok {
			act = domain.AccountActivity{Debit: decimal.Zero, Credit: decimal.Zero}
		}
		net, err := accounting.ApplyActivity(acc.Category, opening, act.Debit, act.Credit)
		if err != nil {
			return nil, s.fail(ctx, "get_cost_accounts", err)
		}
		report.Rows = append(report.Rows, domain.CostAccountRow{
			AccountID:      acc.AccountID,
			Code:           acc.Code,
			NamePrimary:    acc.NamePrimary,
			NameSecondary:  acc.NameSecondary,
			Category:       acc.Category,
			OpeningBalance: opening,
			PeriodDebit:    act.Debit,
			PeriodCredit:   act.Credit,
			NetAmount:      net,
		})
		if acc.Category == domain.Expense {
			report.TotalExpenses = report.TotalExpenses.Add(net)
		} else {
			report.TotalRevenue = report.TotalRevenue.Add(net)
		}
	}
	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}
