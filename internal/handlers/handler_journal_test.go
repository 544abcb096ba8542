package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JournalHandlerTestSuite struct {
	apiSuite
}

func testEntry(id string, status domain.EntryStatus) *domain.JournalEntry {
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	return &domain.JournalEntry{
		EntryID:      id,
		EntryNumber:  "JE-000001",
		EntryDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Description:  "Office supplies",
		FiscalYearID: "fy-2024",
		TotalDebit:   decimal.NewFromInt(80),
		TotalCredit:  decimal.NewFromInt(80),
		Status:       status,
		Lines: []domain.JournalLine{
			{LineID: "l1", EntryID: id, AccountID: "expense", LineNumber: 1, Debit: decimal.NewFromInt(80), Credit: decimal.Zero},
			{LineID: "l2", EntryID: id, AccountID: "cash", LineNumber: 2, Debit: decimal.Zero, Credit: decimal.NewFromInt(80)},
		},
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: testUserID, LastUpdatedAt: now, LastUpdatedBy: testUserID},
	}
}

func balancedLines() []dto.CreateLineRequest {
	return []dto.CreateLineRequest{
		{AccountID: "expense", Debit: decimal.NewFromInt(80), Credit: decimal.Zero},
		{AccountID: "cash", Debit: decimal.Zero, Credit: decimal.NewFromInt(80)},
	}
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_Success() {
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	suite.journals.On("CreateEntry", mock.Anything,
		mock.MatchedBy(func(r dto.CreateEntryRequest) bool {
			return r.Date.Equal(date) && len(r.Lines) == 2 && r.Lines[0].Debit.Equal(decimal.NewFromInt(80))
		}),
		testUserID,
	).Return(testEntry("e1", domain.Draft), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/journals", dto.CreateEntryRequest{
		Date:        dto.NewDate(date),
		Description: "Office supplies",
		Lines:       balancedLines(),
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.EntryResponse
	suite.decode(w, &res)
	suite.Equal("JE-000001", res.EntryNumber)
	suite.Equal(domain.Draft, res.Status)
	suite.Len(res.Lines, 2)
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_NegativeAmountRejectedAtBinding() {
	w := suite.do(http.MethodPost, "/api/v1/journals", gin.H{
		"date": "2024-02-01",
		"lines": []gin.H{
			{"accountID": "expense", "debit": "-80", "credit": "0"},
			{"accountID": "cash", "debit": "0", "credit": "-80"},
		},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.journals.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_ClosedFiscalYear() {
	suite.journals.On("CreateEntry", mock.Anything, mock.Anything, testUserID).
		Return(nil, fmt.Errorf("%w: fiscal year FY 2023 is closed", apperrors.ErrState)).Once()

	w := suite.do(http.MethodPost, "/api/v1/journals", dto.CreateEntryRequest{
		Date:  dto.NewDate(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)),
		Lines: balancedLines(),
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(suite.errorOf(w), "closed")
}

func (suite *JournalHandlerTestSuite) TestValidateEntry_ReportsViolation() {
	suite.journals.On("ValidateEntry", mock.Anything, mock.MatchedBy(func(lines []domain.LineInput) bool {
		return len(lines) == 2 && lines[1].AccountID == "cash"
	})).Return(fmt.Errorf("%w: entry is unbalanced: debit 80 credit 70", apperrors.ErrValidation)).Once()

	lines := balancedLines()
	lines[1].Credit = decimal.NewFromInt(70)
	w := suite.do(http.MethodPost, "/api/v1/journals/validate", dto.ValidateEntryRequest{Lines: lines})

	suite.Equal(http.StatusOK, w.Code)
	var res dto.ValidateEntryResponse
	suite.decode(w, &res)
	suite.False(res.Valid)
	suite.Contains(res.Error, "unbalanced")
}

func (suite *JournalHandlerTestSuite) TestValidateEntry_Valid() {
	suite.journals.On("ValidateEntry", mock.Anything, mock.Anything).Return(nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/journals/validate", dto.ValidateEntryRequest{Lines: balancedLines()})

	suite.Equal(http.StatusOK, w.Code)
	var res dto.ValidateEntryResponse
	suite.decode(w, &res)
	suite.True(res.Valid)
	suite.Empty(res.Error)
}

func (suite *JournalHandlerTestSuite) TestListEntries_BindsQuery() {
	next := "token-2"
	suite.journals.On("ListEntries", mock.Anything, mock.MatchedBy(func(p dto.ListEntriesParams) bool {
		return p.Status == "posted" && p.Limit == 50 && p.DateFrom != nil &&
			p.DateFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) && p.NextToken == nil
	})).Return(&dto.ListEntriesResponse{
		Entries:   []dto.EntryResponse{dto.ToEntryResponse(testEntry("e1", domain.Posted))},
		NextToken: &next,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/journals?status=posted&dateFrom=2024-01-01", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ListEntriesResponse
	suite.decode(w, &res)
	suite.Len(res.Entries, 1)
	suite.Require().NotNil(res.NextToken)
	suite.Equal(next, *res.NextToken)
}

func (suite *JournalHandlerTestSuite) TestListEntries_UnknownStatus() {
	w := suite.do(http.MethodGet, "/api/v1/journals?status=void", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *JournalHandlerTestSuite) TestUpdateEntry_NotDraft() {
	desc := "typo fixed"
	suite.journals.On("UpdateEntry", mock.Anything, "e1",
		mock.MatchedBy(func(p domain.EntryPatch) bool { return p.Description != nil && *p.Description == desc }),
		testUserID,
	).Return(nil, fmt.Errorf("%w: only draft entries can be edited", apperrors.ErrState)).Once()

	w := suite.do(http.MethodPatch, "/api/v1/journals/e1", dto.UpdateEntryRequest{Description: &desc})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *JournalHandlerTestSuite) TestDeleteEntry() {
	suite.journals.On("DeleteEntry", mock.Anything, "e1", testUserID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/journals/e1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *JournalHandlerTestSuite) TestPostEntry() {
	posted := testEntry("e1", domain.Posted)
	postedAt := time.Date(2024, 2, 1, 11, 0, 0, 0, time.UTC)
	posted.PostedAt, posted.PostedBy = &postedAt, testUserID
	suite.journals.On("PostEntry", mock.Anything, "e1", testUserID).Return(posted, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/journals/e1/post", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.EntryResponse
	suite.decode(w, &res)
	suite.Equal(domain.Posted, res.Status)
	suite.Equal(testUserID, res.PostedBy)
}

func (suite *JournalHandlerTestSuite) TestPostEntry_InactiveAccount() {
	suite.journals.On("PostEntry", mock.Anything, "e1", testUserID).
		Return(nil, fmt.Errorf("%w: account cash is inactive", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/journals/e1/post", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *JournalHandlerTestSuite) TestApproveEntry_NotPosted() {
	suite.journals.On("ApproveEntry", mock.Anything, "e1", testUserID).
		Return(nil, fmt.Errorf("%w: only posted entries can be approved", apperrors.ErrState)).Once()

	w := suite.do(http.MethodPost, "/api/v1/journals/e1/approve", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *JournalHandlerTestSuite) TestReverseEntry_WithoutBody() {
	reversal := testEntry("e2", domain.Posted)
	reversal.ReversalOfEntryID = "e1"
	suite.journals.On("ReverseEntry", mock.Anything, "e1", dto.ReverseEntryRequest{}, testUserID).Return(reversal, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/journals/e1/reverse", nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.EntryResponse
	suite.decode(w, &res)
	suite.Equal("e1", res.ReversalOfEntryID)
}

func (suite *JournalHandlerTestSuite) TestReverseEntry_WithDate() {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	suite.journals.On("ReverseEntry", mock.Anything, "e1",
		mock.MatchedBy(func(r dto.ReverseEntryRequest) bool {
			return r.Date != nil && r.Date.Equal(date) && r.Description == "Correction"
		}),
		testUserID,
	).Return(testEntry("e2", domain.Posted), nil).Once()

	d := dto.NewDate(date)
	w := suite.do(http.MethodPost, "/api/v1/journals/e1/reverse", dto.ReverseEntryRequest{Date: &d, Description: "Correction"})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func TestJournalHandler(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}
