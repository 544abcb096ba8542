package services_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/repositories/memory"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	engineSuite
	cash    *domain.Account
	bank    *domain.Account
	revenue *domain.Account
	expense *domain.Account
	loan    *domain.Account
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (s *JournalServiceTestSuite) SetupTest() {
	s.engineSuite.SetupTest()
	s.seedAccounts()
}

func (s *JournalServiceTestSuite) seedAccounts() {
	s.cash = s.addAccount("", "Cash", domain.General, domain.Asset, "5000")
	s.bank = s.addAccount("", "Bank", domain.General, domain.Asset, "0")
	s.revenue = s.addAccount("", "Revenue", domain.General, domain.Revenue, "0")
	s.expense = s.addAccount("", "Expense", domain.General, domain.Expense, "0")
	s.loan = s.addAccount("", "Loan", domain.General, domain.Liability, "0")
}

func lineInput(accountID, debitAmount, creditAmount string) domain.LineInput {
	return domain.LineInput{AccountID: accountID, Debit: dec(debitAmount), Credit: dec(creditAmount)}
}

func (s *JournalServiceTestSuite) TestValidateEntry() {
	inactive := s.addAccount("", "Old", domain.General, domain.Asset, "0")
	_, err := s.svc.Account.UpdateAccount(s.ctx, inactive.AccountID, domain.AccountPatch{IsActive: boolPtr(false)}, testActor)
	s.Require().NoError(err)

	tests := []struct {
		name    string
		lines   []domain.LineInput
		wantMsg string
	}{
		{"single line", []domain.LineInput{lineInput(s.cash.AccountID, "10", "0")}, "at least 2 lines"},
		{"unbalanced", []domain.LineInput{lineInput(s.cash.AccountID, "10", "0"), lineInput(s.revenue.AccountID, "0", "9")}, "not balanced"},
		{"unknown account", []domain.LineInput{lineInput("nope", "10", "0"), lineInput(s.revenue.AccountID, "0", "10")}, "line 1: account nope not found"},
		{"inactive account", []domain.LineInput{lineInput(s.cash.AccountID, "10", "0"), lineInput(inactive.AccountID, "0", "10")}, "line 2: account " + inactive.Code + " is inactive"},
		{"negative amount", []domain.LineInput{lineInput(s.cash.AccountID, "-10", "0"), lineInput(s.revenue.AccountID, "0", "-10")}, "line 1: amounts cannot be negative"},
		{"both sides", []domain.LineInput{lineInput(s.cash.AccountID, "10", "10"), lineInput(s.revenue.AccountID, "0", "0")}, "line 1: cannot have both debit and credit"},
		{"neither side", []domain.LineInput{lineInput(s.cash.AccountID, "10", "0"), lineInput(s.revenue.AccountID, "0", "10"), lineInput(s.bank.AccountID, "0", "0")}, "line 3: must have either debit or credit"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.svc.Journal.ValidateEntry(s.ctx, tt.lines)
			s.ErrorIs(err, apperrors.ErrValidation)
			s.ErrorContains(err, tt.wantMsg)
		})
	}

	s.NoError(s.svc.Journal.ValidateEntry(s.ctx, []domain.LineInput{
		lineInput(s.cash.AccountID, "10.005", "0"),
		lineInput(s.revenue.AccountID, "0", "10"),
	}), "differences within tolerance are balanced")
}

func (s *JournalServiceTestSuite) TestCreateEntry() {
	entry := s.createEntry("2024-03-15", debit(s.cash.AccountID, "100"), credit(s.revenue.AccountID, "100"))

	s.Equal("JE-000001", entry.EntryNumber)
	s.Equal(domain.Draft, entry.Status)
	s.Equal(s.fy.FiscalYearID, entry.FiscalYearID)
	s.Equal(day("2024-03-15"), entry.EntryDate)
	s.assertDecimal("100", entry.TotalDebit)
	s.assertDecimal("100", entry.TotalCredit)
	s.Require().Len(entry.Lines, 2)
	s.Equal(1, entry.Lines[0].LineNumber)
	s.Equal(2, entry.Lines[1].LineNumber)

	// drafts have no balance effect
	s.assertDecimal("5000", s.balanceOf(s.cash.AccountID))

	second := s.createEntry("2024-03-16", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	s.Equal("JE-000002", second.EntryNumber)
}

func (s *JournalServiceTestSuite) TestCreateEntry_NumberingPerFiscalYear() {
	s.createEntry("2024-03-15", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	s.createEntry("2024-03-16", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	next := s.createFiscalYear("FY 2025", "2025-01-01", "2025-12-31")

	entry := s.createEntry("2025-01-10", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	s.Equal(next.FiscalYearID, entry.FiscalYearID)
	s.Equal("JE-000001", entry.EntryNumber)
}

func (s *JournalServiceTestSuite) TestCreateEntry_FiscalYearRules() {
	_, err := s.tryCreateEntry("2023-12-31", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Journal.CreateEntry(s.ctx, dto.CreateEntryRequest{
		Date:         dto.NewDate(day("2025-02-01")),
		FiscalYearID: s.fy.FiscalYearID,
		Lines:        []dto.CreateLineRequest{debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1")},
	}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorContains(err, "outside fiscal year")

	_, err = s.svc.Journal.CreateEntry(s.ctx, dto.CreateEntryRequest{
		Lines: []dto.CreateLineRequest{debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1")},
	}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.FiscalYear.CloseFiscalYear(s.ctx, s.fy.FiscalYearID, testActor)
	s.Require().NoError(err)
	_, err = s.tryCreateEntry("2024-05-01", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	s.ErrorIs(err, apperrors.ErrState)
}

func (s *JournalServiceTestSuite) TestCreateEntry_FailureLeavesNothing() {
	before, err := s.svc.Audit.ListAuditRecords(s.ctx, domain.AuditFilter{})
	s.Require().NoError(err)

	_, err = s.tryCreateEntry("2024-03-15", debit(s.cash.AccountID, "100"), credit(s.revenue.AccountID, "90"))
	s.ErrorIs(err, apperrors.ErrValidation)

	page, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{})
	s.Require().NoError(err)
	s.Empty(page.Entries)
	after, err := s.svc.Audit.ListAuditRecords(s.ctx, domain.AuditFilter{})
	s.Require().NoError(err)
	s.Len(after, len(before))
}

func (s *JournalServiceTestSuite) TestCreateEntry_RetriesOnConflict() {
	faulty := &faultyStore{Store: memory.NewStore(), saveEntryConflicts: 2}
	s.setup(faulty)
	s.seedAccounts()

	entry, err := s.tryCreateEntry("2024-03-15", debit(s.cash.AccountID, "5"), credit(s.revenue.AccountID, "5"))
	s.Require().NoError(err)
	s.Equal("JE-000001", entry.EntryNumber)

	faulty.saveEntryConflicts = 5
	_, err = s.tryCreateEntry("2024-03-15", debit(s.cash.AccountID, "5"), credit(s.revenue.AccountID, "5"))
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *JournalServiceTestSuite) TestPostEntry_AppliesSignRule() {
	s.createPosted("2024-03-15",
		debit(s.expense.AccountID, "200"),
		debit(s.cash.AccountID, "800"),
		credit(s.loan.AccountID, "1000"),
	)
	s.createPosted("2024-03-16", debit(s.bank.AccountID, "300"), credit(s.revenue.AccountID, "300"))

	s.assertDecimal("5800", s.balanceOf(s.cash.AccountID))
	s.assertDecimal("200", s.balanceOf(s.expense.AccountID))
	s.assertDecimal("1000", s.balanceOf(s.loan.AccountID))
	s.assertDecimal("300", s.balanceOf(s.bank.AccountID))
	s.assertDecimal("300", s.balanceOf(s.revenue.AccountID))
}

func (s *JournalServiceTestSuite) TestPostEntry_SameAccountOnSeveralLines() {
	s.createPosted("2024-03-15",
		debit(s.cash.AccountID, "100"),
		debit(s.cash.AccountID, "50"),
		credit(s.revenue.AccountID, "150"),
	)
	s.assertDecimal("5150", s.balanceOf(s.cash.AccountID))
}

func (s *JournalServiceTestSuite) TestPostEntry_Twice() {
	entry := s.createEntry("2024-03-15", debit(s.cash.AccountID, "1000"), credit(s.revenue.AccountID, "1000"))

	posted, err := s.svc.Journal.PostEntry(s.ctx, entry.EntryID, "poster")
	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Status)
	s.Require().NotNil(posted.PostedAt)
	s.Equal("poster", posted.PostedBy)

	_, err = s.svc.Journal.PostEntry(s.ctx, entry.EntryID, "poster")
	s.ErrorIs(err, apperrors.ErrState)
	s.assertDecimal("6000", s.balanceOf(s.cash.AccountID))
	s.assertDecimal("1000", s.balanceOf(s.revenue.AccountID))
}

func (s *JournalServiceTestSuite) TestPostEntry_RollsBackOnStorageFailure() {
	faulty := &faultyStore{Store: memory.NewStore()}
	s.setup(faulty)
	s.seedAccounts()
	entry := s.createEntry("2024-03-15", debit(s.cash.AccountID, "1000"), credit(s.revenue.AccountID, "1000"))

	faulty.failPostUpdate = true
	_, err := s.svc.Journal.PostEntry(s.ctx, entry.EntryID, testActor)
	s.ErrorIs(err, apperrors.ErrStorage)

	s.assertDecimal("5000", s.balanceOf(s.cash.AccountID))
	s.assertDecimal("0", s.balanceOf(s.revenue.AccountID))
	got, err := s.svc.Journal.GetEntryByID(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	s.Equal(domain.Draft, got.Status)

	faulty.failPostUpdate = false
	_, err = s.svc.Journal.PostEntry(s.ctx, entry.EntryID, testActor)
	s.Require().NoError(err)
	s.assertDecimal("6000", s.balanceOf(s.cash.AccountID))
}

func (s *JournalServiceTestSuite) TestPostEntry_NotFound() {
	_, err := s.svc.Journal.PostEntry(s.ctx, "missing", testActor)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestApproveEntry() {
	entry := s.createEntry("2024-03-15", debit(s.cash.AccountID, "10"), credit(s.revenue.AccountID, "10"))

	_, err := s.svc.Journal.ApproveEntry(s.ctx, entry.EntryID, "manager")
	s.ErrorIs(err, apperrors.ErrState)

	_, err = s.svc.Journal.PostEntry(s.ctx, entry.EntryID, testActor)
	s.Require().NoError(err)
	approved, err := s.svc.Journal.ApproveEntry(s.ctx, entry.EntryID, "manager")
	s.Require().NoError(err)
	s.Equal(domain.Approved, approved.Status)
	s.Equal("manager", approved.ApprovedBy)
	s.Len(approved.Lines, 2)

	// approval has no balance effect
	s.assertDecimal("5010", s.balanceOf(s.cash.AccountID))

	_, err = s.svc.Journal.ApproveEntry(s.ctx, entry.EntryID, "manager")
	s.ErrorIs(err, apperrors.ErrState)
}

func (s *JournalServiceTestSuite) TestPostedEntriesAreImmutable() {
	entry := s.createPosted("2024-03-15", debit(s.cash.AccountID, "10"), credit(s.revenue.AccountID, "10"))

	_, err := s.svc.Journal.UpdateEntry(s.ctx, entry.EntryID, domain.EntryPatch{Description: strPtr("x")}, testActor)
	s.ErrorIs(err, apperrors.ErrState)
	err = s.svc.Journal.DeleteEntry(s.ctx, entry.EntryID, testActor)
	s.ErrorIs(err, apperrors.ErrState)

	got, err := s.svc.Journal.GetEntryByID(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	s.Equal(entry.Description, got.Description)
	s.Equal(domain.Posted, got.Status)
	s.Len(got.Lines, 2)
}

func (s *JournalServiceTestSuite) TestUpdateEntry() {
	entry := s.createEntry("2024-03-15", debit(s.cash.AccountID, "10"), credit(s.revenue.AccountID, "10"))

	newDate := day("2024-04-01")
	updated, err := s.svc.Journal.UpdateEntry(s.ctx, entry.EntryID, domain.EntryPatch{
		EntryDate:   &newDate,
		Description: strPtr("corrected"),
	}, testActor)
	s.Require().NoError(err)
	s.Equal(newDate, updated.EntryDate)
	s.Equal("corrected", updated.Description)
	s.Len(updated.Lines, 2)

	outside := day("2025-01-01")
	_, err = s.svc.Journal.UpdateEntry(s.ctx, entry.EntryID, domain.EntryPatch{EntryDate: &outside}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)

	other := s.createFiscalYear("FY 2025", "2025-01-01", "2025-12-31")
	_, err = s.svc.Journal.UpdateEntry(s.ctx, entry.EntryID, domain.EntryPatch{FiscalYearID: &other.FiscalYearID}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorContains(err, "has lines")

	_, err = s.svc.Journal.UpdateEntry(s.ctx, entry.EntryID, domain.EntryPatch{}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestDeleteEntry() {
	entry := s.createEntry("2024-03-15", debit(s.cash.AccountID, "10"), credit(s.revenue.AccountID, "10"))
	s.Require().NoError(s.svc.Journal.DeleteEntry(s.ctx, entry.EntryID, testActor))

	_, err := s.svc.Journal.GetEntryByID(s.ctx, entry.EntryID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	lines, err := s.store.FindLinesByEntryID(s.ctx, entry.EntryID)
	s.NoError(err)
	s.Empty(lines)

	// the account is free again once its only lines are gone
	s.NoError(s.svc.Account.DeleteAccount(s.ctx, s.cash.AccountID, false, testActor))
}

func (s *JournalServiceTestSuite) TestReverseEntry() {
	original := s.createPosted("2024-03-15", debit(s.cash.AccountID, "400"), credit(s.revenue.AccountID, "400"))
	s.assertDecimal("5400", s.balanceOf(s.cash.AccountID))

	reversal, err := s.svc.Journal.ReverseEntry(s.ctx, original.EntryID, dto.ReverseEntryRequest{}, testActor)
	s.Require().NoError(err)
	s.Equal(domain.Posted, reversal.Status)
	s.Equal("JE-000002", reversal.EntryNumber)
	s.Equal("Reversal of JE-000001", reversal.Description)
	s.Equal(original.EntryDate, reversal.EntryDate)
	s.Equal(original.EntryID, reversal.ReversalOfEntryID)
	s.Require().Len(reversal.Lines, 2)
	s.assertDecimal("400", reversal.Lines[0].Credit)
	s.assertDecimal("400", reversal.Lines[1].Debit)

	s.assertDecimal("5000", s.balanceOf(s.cash.AccountID))
	s.assertDecimal("0", s.balanceOf(s.revenue.AccountID))

	got, err := s.svc.Journal.GetEntryByID(s.ctx, original.EntryID)
	s.Require().NoError(err)
	s.Equal(reversal.EntryID, got.ReversedByEntryID)
	s.Equal(domain.Posted, got.Status)

	_, err = s.svc.Journal.ReverseEntry(s.ctx, original.EntryID, dto.ReverseEntryRequest{}, testActor)
	s.ErrorIs(err, apperrors.ErrState)
	_, err = s.svc.Journal.ReverseEntry(s.ctx, reversal.EntryID, dto.ReverseEntryRequest{}, testActor)
	s.ErrorIs(err, apperrors.ErrState)

	s.Contains(s.publisher.actions(), domain.ActionJournalReverse)
}

func (s *JournalServiceTestSuite) TestReverseEntry_Overrides() {
	original := s.createPosted("2024-03-15", debit(s.cash.AccountID, "400"), credit(s.revenue.AccountID, "400"))
	date := dto.NewDate(day("2024-04-30"))

	reversal, err := s.svc.Journal.ReverseEntry(s.ctx, original.EntryID, dto.ReverseEntryRequest{Date: &date, Description: "month end"}, testActor)
	s.Require().NoError(err)
	s.Equal(day("2024-04-30"), reversal.EntryDate)
	s.Equal("month end", reversal.Description)

	draft := s.createEntry("2024-03-15", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	_, err = s.svc.Journal.ReverseEntry(s.ctx, draft.EntryID, dto.ReverseEntryRequest{}, testActor)
	s.ErrorIs(err, apperrors.ErrState)
}

func (s *JournalServiceTestSuite) TestListEntries_Pagination() {
	for i := 1; i <= 5; i++ {
		s.createEntry(fmt.Sprintf("2024-03-%02d", i), debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	}

	var numbers []string
	params := dto.ListEntriesParams{Limit: 2}
	for pages := 0; ; pages++ {
		s.Require().Less(pages, 5, "pagination did not terminate")
		page, err := s.svc.Journal.ListEntries(s.ctx, params)
		s.Require().NoError(err)
		for _, e := range page.Entries {
			numbers = append(numbers, e.EntryNumber)
		}
		if page.NextToken == nil {
			break
		}
		params.NextToken = page.NextToken
	}
	s.Equal([]string{"JE-000005", "JE-000004", "JE-000003", "JE-000002", "JE-000001"}, numbers)

	bad := "!!!"
	_, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestListEntries_Filters() {
	first := s.createPosted("2024-03-01", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))
	s.createEntry("2024-03-02", debit(s.cash.AccountID, "1"), credit(s.revenue.AccountID, "1"))

	page, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{Status: string(domain.Posted)})
	s.Require().NoError(err)
	s.Require().Len(page.Entries, 1)
	s.Equal(first.EntryID, page.Entries[0].EntryID)

	to := day("2024-03-01")
	page, err = s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{DateTo: &to})
	s.Require().NoError(err)
	s.Len(page.Entries, 1)

	page, err = s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{EntryNumber: "000002"})
	s.Require().NoError(err)
	s.Len(page.Entries, 1)

	from := day("2024-04-01")
	_, err = s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{DateFrom: &from, DateTo: &to})
	s.ErrorIs(err, apperrors.ErrValidation)
}

// TestRandomizedPostings checks the double-entry, trial balance and balance sheet
// identities after a random sequence of balanced postings.
func (s *JournalServiceTestSuite) TestRandomizedPostings() {
	equity := s.addAccount("", "Capital", domain.General, domain.Equity, "5000")
	accounts := []*domain.Account{s.cash, s.bank, s.revenue, s.expense, s.loan, equity}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 40; i++ {
		n := 2 + rng.Intn(4)
		lines := make([]dto.CreateLineRequest, 0, n)
		total := decimal.Zero
		for j := 0; j < n-1; j++ {
			amount := decimal.New(int64(1+rng.Intn(100000)), -2)
			total = total.Add(amount)
			acc := accounts[rng.Intn(len(accounts))]
			lines = append(lines, dto.CreateLineRequest{AccountID: acc.AccountID, Debit: amount, Credit: decimal.Zero})
		}
		acc := accounts[rng.Intn(len(accounts))]
		lines = append(lines, dto.CreateLineRequest{AccountID: acc.AccountID, Debit: decimal.Zero, Credit: total})
		rng.Shuffle(len(lines), func(a, b int) { lines[a], lines[b] = lines[b], lines[a] })

		date := fmt.Sprintf("2024-%02d-%02d", 1+rng.Intn(12), 1+rng.Intn(28))
		entry := s.createEntry(date, lines...)
		s.True(accounting.Balanced(entry.TotalDebit, entry.TotalCredit))
		if rng.Intn(4) > 0 {
			_, err := s.svc.Journal.PostEntry(s.ctx, entry.EntryID, testActor)
			s.Require().NoError(err)
		}

		tb, err := s.svc.Reporting.GetTrialBalance(s.ctx, nil)
		s.Require().NoError(err)
		s.True(tb.IsBalanced, "trial balance off after entry %d: %s vs %s", i, tb.TotalDebit, tb.TotalCredit)
	}

	bs, err := s.svc.Reporting.GetBalanceSheet(s.ctx, day("2024-12-31"))
	s.Require().NoError(err)
	s.True(bs.IsBalanced, "assets %s != liabilities %s + equity %s", bs.TotalAssets, bs.TotalLiabilities, bs.TotalEquity)

	// cached balances agree with the ledger re-derivation
	for _, acc := range accounts {
		ledger, err := s.svc.Reporting.GetLedger(s.ctx, acc.AccountID, nil, nil)
		s.Require().NoError(err)
		s.assertDecimal(s.balanceOf(acc.AccountID).String(), ledger.ClosingBalance, acc.NamePrimary)
	}
}
