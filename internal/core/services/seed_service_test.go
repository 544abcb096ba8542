package services_test

import (
	"testing"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/core/services"
	"github.com/SscSPs/bookkeeping_engine/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

type SeederTestSuite struct {
	engineSuite
}

func TestSeederTestSuite(t *testing.T) {
	suite.Run(t, new(SeederTestSuite))
}

func countSeed(nodes []services.SeedAccount) int {
	n := 0
	for _, node := range nodes {
		n += 1 + countSeed(node.Children)
	}
	return n
}

func (s *SeederTestSuite) TestSeedEmptyStore() {
	s.wire(memory.NewStore())
	seeder := services.NewSeeder(s.svc)

	result, err := seeder.Seed(s.ctx, day("2025-05-20"), testActor)
	s.Require().NoError(err)
	s.Require().NotNil(result.FiscalYear)
	s.Equal("FY 2025", result.FiscalYear.Name)
	s.True(result.FiscalYear.IsActive)
	s.Equal(day("2025-01-01"), result.FiscalYear.StartDate)
	s.Equal(day("2025-12-31"), result.FiscalYear.EndDate)
	s.Equal(countSeed(services.DefaultChart), result.AccountsCreated)

	accounts, err := s.svc.Account.ListAccounts(s.ctx, domain.AccountFilter{})
	s.Require().NoError(err)
	codes := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		codes[acc.NamePrimary] = acc.Code
	}
	s.Equal("1", codes["Assets"])
	s.Equal("101", codes["Current Assets"])
	s.Equal("10101", codes["Cash and Banks"])
	s.Equal("2", codes["Liabilities"])
	s.Equal("5", codes["Equity"])

	again, err := seeder.Seed(s.ctx, day("2025-05-20"), testActor)
	s.Require().NoError(err)
	s.Nil(again.FiscalYear)
	s.Zero(again.AccountsCreated)
}

func (s *SeederTestSuite) TestSeedKeepsExistingFiscalYear() {
	result, err := services.NewSeeder(s.svc).Seed(s.ctx, day("2024-02-01"), testActor)
	s.Require().NoError(err)
	s.Nil(result.FiscalYear)
	s.Positive(result.AccountsCreated)

	years, err := s.svc.FiscalYear.ListFiscalYears(s.ctx)
	s.Require().NoError(err)
	s.Len(years, 1)
}
