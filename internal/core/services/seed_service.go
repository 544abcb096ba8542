package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
)

// SeedAccount describes one node of the default chart of accounts.
type SeedAccount struct {
	NamePrimary   string
	NameSecondary string
	Type          domain.AccountType
	Category      domain.AccountCategory
	Children      []SeedAccount
}

func general(primary, secondary string, category domain.AccountCategory, children ...SeedAccount) SeedAccount {
	return SeedAccount{NamePrimary: primary, NameSecondary: secondary, Type: domain.General, Category: category, Children: children}
}

func assistant(primary, secondary string, category domain.AccountCategory, children ...SeedAccount) SeedAccount {
	return SeedAccount{NamePrimary: primary, NameSecondary: secondary, Type: domain.Assistant, Category: category, Children: children}
}

func analytic(primary, secondary string, category domain.AccountCategory) SeedAccount {
	return SeedAccount{NamePrimary: primary, NameSecondary: secondary, Type: domain.Analytic, Category: category}
}

// DefaultChart is the chart of accounts installed by the seed command.
var DefaultChart = []SeedAccount{
	general("Assets", "الأصول", domain.Asset,
		general("Current Assets", "الأصول المتداولة", domain.Asset,
			general("Cash and Banks", "النقدية والبنوك", domain.Asset,
				assistant("Cash on Hand", "النقدية بالصندوق", domain.Asset),
				assistant("Bank Accounts", "الحسابات البنكية", domain.Asset,
					analytic("Main Bank Account", "الحساب البنكي الرئيسي", domain.Asset),
				),
			),
			assistant("Accounts Receivable", "الذمم المدينة", domain.Asset),
			assistant("Inventory", "المخزون", domain.Asset),
		),
		general("Non-Current Assets", "الأصول غير المتداولة", domain.Asset,
			assistant("Property and Equipment", "الممتلكات والمعدات", domain.Asset),
		),
	),
	general("Liabilities", "الخصوم", domain.Liability,
		general("Current Liabilities", "الخصوم المتداولة", domain.Liability,
			assistant("Accounts Payable", "الذمم الدائنة", domain.Liability),
			assistant("Accrued Expenses", "المصروفات المستحقة", domain.Liability),
		),
	),
	general("Expenses", "المصروفات", domain.Expense,
		general("Operating Expenses", "المصروفات التشغيلية", domain.Expense,
			assistant("Salaries", "الرواتب", domain.Expense),
			assistant("Rent", "الإيجار", domain.Expense),
			assistant("Utilities", "المرافق", domain.Expense),
		),
	),
	general("Revenues", "الإيرادات", domain.Revenue,
		assistant("Sales Revenue", "إيرادات المبيعات", domain.Revenue),
		assistant("Service Revenue", "إيرادات الخدمات", domain.Revenue),
	),
	general("Equity", "حقوق الملكية", domain.Equity,
		assistant("Capital", "رأس المال", domain.Equity),
		assistant("Retained Earnings", "الأرباح المحتجزة", domain.Equity),
	),
}

// SeedResult reports what Seeder.Seed created.
type SeedResult struct {
	FiscalYear      *domain.FiscalYear
	AccountsCreated int
}

// Seeder installs a default fiscal year and chart of accounts into an empty store.
type Seeder struct {
	services *portssvc.ServiceContainer
	chart    []SeedAccount
}

// NewSeeder creates a seeder using the default chart.
func NewSeeder(services *portssvc.ServiceContainer) *Seeder {
	return &Seeder{services: services, chart: DefaultChart}
}

// Seed creates the calendar fiscal year containing today when no fiscal year exists and the
// default chart when no account exists. Running it again is a no-op.
func (s *Seeder) Seed(ctx context.Context, today time.Time, actor string) (*SeedResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	result := &SeedResult{}

	years, err := s.services.FiscalYear.ListFiscalYears(ctx)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		year := today.Year()
		fy, err := s.services.FiscalYear.CreateFiscalYear(ctx, dto.CreateFiscalYearRequest{
			Name:        fmt.Sprintf("FY %d", year),
			Description: fmt.Sprintf("Fiscal Year %d", year),
			StartDate:   dto.NewDate(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),
			EndDate:     dto.NewDate(time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)),
			IsActive:    true,
		}, actor)
		if err != nil {
			return nil, fmt.Errorf("failed to seed fiscal year: %w", err)
		}
		result.FiscalYear = fy
	} else {
		logger.Info("Fiscal years already present, skipping", slog.Int("count", len(years)))
	}

	accounts, err := s.services.Account.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	if len(accounts) > 0 {
		logger.Info("Chart of accounts already present, skipping", slog.Int("count", len(accounts)))
		return result, nil
	}
	for _, node := range s.chart {
		n, err := s.addTree(ctx, "", node, actor)
		result.AccountsCreated += n
		if err != nil {
			return result, err
		}
	}
	logger.Info("Default chart of accounts seeded", slog.Int("accounts", result.AccountsCreated))
	return result, nil
}

func (s *Seeder) addTree(ctx context.Context, parentID string, node SeedAccount, actor string) (int, error) {
	acc, err := s.services.Account.AddAccount(ctx, dto.CreateAccountRequest{
		ParentAccountID: parentID,
		NamePrimary:     node.NamePrimary,
		NameSecondary:   node.NameSecondary,
		AccountType:     node.Type,
		Category:        node.Category,
	}, actor)
	if err != nil {
		return 0, fmt.Errorf("failed to seed account '%s': %w", node.NamePrimary, err)
	}
	created := 1
	for _, child := range node.Children {
		n, err := s.addTree(ctx, acc.AccountID, child, actor)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
