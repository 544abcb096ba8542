package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// ReportingService derives read-only views from posted lines.
type ReportingService interface {
	GetLedger(ctx context.Context, accountID string, startDate, endDate *time.Time) (*domain.Ledger, error)
	GetTrialBalance(ctx context.Context, fiscalYearID *string) (*domain.TrialBalance, error)
	GetBalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error)
	GetIncomeStatement(ctx context.Context, startDate, endDate time.Time) (*domain.IncomeStatement, error)
	GetCashFlow(ctx context.Context, startDate, endDate time.Time) (*domain.CashFlowStatement, error)
	GetCostAccounts(ctx context.Context, startDate, endDate *time.Time) (*domain.CostAccountsReport, error)
}
