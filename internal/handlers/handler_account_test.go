package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/handlers"
	"github.com/SscSPs/bookkeeping_engine/internal/platform/config"
	"github.com/SscSPs/bookkeeping_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "bookkeeping-test"
	testUserID = "user-1"
)

// apiSuite wires the full router over mocked services.
type apiSuite struct {
	suite.Suite
	router        *gin.Engine
	accounts      *MockAccountService
	journals      *MockJournalService
	fiscalYears   *MockFiscalYearService
	reporting     *MockReportingService
	audit         *MockAuditService
	token         string
}

func (s *apiSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.accounts = new(MockAccountService)
	s.journals = new(MockJournalService)
	s.fiscalYears = new(MockFiscalYearService)
	s.reporting = new(MockReportingService)
	s.audit = new(MockAuditService)

	cfg := &config.Config{
		IsProduction:       true,
		JWTSecret:          testSecret,
		JWTIssuer:          testIssuer,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	handlers.RegisterRoutes(s.router, cfg, &portssvc.ServiceContainer{
		Account:    s.accounts,
		FiscalYear: s.fiscalYears,
		Journal:    s.journals,
		Reporting:  s.reporting,
		Audit:      s.audit,
	}, handlers.RouteDeps{})

	token, err := utils.GenerateJWT(testUserID, testSecret, testIssuer, time.Hour, time.Now())
	s.Require().NoError(err)
	s.token = token
}

func (s *apiSuite) TearDownTest() {
	s.accounts.AssertExpectations(s.T())
	s.journals.AssertExpectations(s.T())
	s.fiscalYears.AssertExpectations(s.T())
	s.reporting.AssertExpectations(s.T())
	s.audit.AssertExpectations(s.T())
}

// do sends an authenticated request. body is JSON-encoded unless nil.
func (s *apiSuite) do(method, url string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), "Failed to unmarshal response body: %s", w.Body.String())
}

func (s *apiSuite) errorOf(w *httptest.ResponseRecorder) string {
	var res handlers.ErrorResponse
	s.decode(w, &res)
	return res.Error
}

func testAccount(id, code string) *domain.Account {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Account{
		AccountID:      id,
		Code:           code,
		NamePrimary:    "Cash",
		NameSecondary:  "Caisse",
		AccountType:    domain.Analytic,
		Category:       domain.Asset,
		Level:          len(code),
		FullPath:       "Assets / Cash",
		IsActive:       true,
		OpeningBalance: decimal.NewFromInt(100),
		CurrentBalance: decimal.NewFromInt(250),
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: testUserID, LastUpdatedAt: now, LastUpdatedBy: testUserID,
		},
	}
}

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	apiSuite
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	parentID := uuid.NewString()
	req := dto.CreateAccountRequest{
		ParentAccountID: parentID,
		NamePrimary:     "Cash",
		NameSecondary:   "Caisse",
		AccountType:     domain.Analytic,
		Category:        domain.Asset,
		OpeningBalance:  decimal.NewFromInt(100),
	}
	created := testAccount(uuid.NewString(), "11")

	suite.accounts.On("AddAccount", mock.Anything,
		mock.MatchedBy(func(r dto.CreateAccountRequest) bool {
			return r.ParentAccountID == parentID && r.OpeningBalance.Equal(decimal.NewFromInt(100))
		}),
		testUserID,
	).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", req)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.AccountResponse
	suite.decode(w, &res)
	suite.Equal(created.AccountID, res.AccountID)
	suite.Equal("11", res.Code)
	suite.True(res.CurrentBalance.Equal(decimal.NewFromInt(250)))
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_BindingFailure() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", gin.H{
		"namePrimary": "Cash",
		"accountType": "ledger",
		"category":    "asset",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorOf(w), "Invalid request format")
	suite.accounts.AssertNotCalled(suite.T(), "AddAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_HierarchyViolation() {
	suite.accounts.On("AddAccount", mock.Anything, mock.Anything, testUserID).
		Return(nil, fmt.Errorf("%w: analytic accounts cannot have children", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		ParentAccountID: "leaf",
		NamePrimary:     "Sub",
		NameSecondary:   "Sub",
		AccountType:     domain.Analytic,
		Category:        domain.Asset,
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorOf(w), "analytic accounts cannot have children")
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.accounts.On("GetAccountByID", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: account missing", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_StorageErrorHidesDetail() {
	suite.accounts.On("GetAccountByID", mock.Anything, "acc").
		Return(nil, apperrors.NewStorageError("failed to query account", errors.New("connection refused"))).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Failed to retrieve account", suite.errorOf(w))
}

func (suite *AccountHandlerTestSuite) TestListAccounts_PassesFilter() {
	accounts := []domain.Account{*testAccount("a1", "1"), *testAccount("a2", "11")}
	suite.accounts.On("ListAccounts", mock.Anything, mock.MatchedBy(func(f domain.AccountFilter) bool {
		return f.Search == "cash" && f.Category == domain.Asset && f.IncludeInactive
	})).Return(accounts, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?q=cash&category=asset&includeInactive=true", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ListAccountsResponse
	suite.decode(w, &res)
	suite.Len(res.Accounts, 2)
}

func (suite *AccountHandlerTestSuite) TestGetAccountsTree() {
	root := &domain.AccountNode{Account: *testAccount("r", "1")}
	root.Children = []*domain.AccountNode{{Account: *testAccount("c", "11")}}
	suite.accounts.On("GetAccountsTree", mock.Anything, "", false).Return([]*domain.AccountNode{root}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/tree", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res []dto.AccountTreeNode
	suite.decode(w, &res)
	suite.Require().Len(res, 1)
	suite.Len(res[0].Children, 1)
}

func (suite *AccountHandlerTestSuite) TestUpdateAccount_Conflict() {
	name := "Petty cash"
	suite.accounts.On("UpdateAccount", mock.Anything, "acc",
		mock.MatchedBy(func(p domain.AccountPatch) bool {
			return p.NamePrimary != nil && *p.NamePrimary == name && p.Category == nil
		}),
		testUserID,
	).Return(nil, fmt.Errorf("%w: code 11 already in use", apperrors.ErrConflict)).Once()

	w := suite.do(http.MethodPatch, "/api/v1/accounts/acc", dto.UpdateAccountRequest{NamePrimary: &name})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_Force() {
	suite.accounts.On("DeleteAccount", mock.Anything, "acc", true, testUserID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/accounts/acc?force=true", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_AsOf() {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	suite.accounts.On("GetAccountBalance", mock.Anything, "acc",
		mock.MatchedBy(func(t *time.Time) bool { return t != nil && t.Equal(asOf) }),
	).Return(&domain.AccountBalance{
		AccountID:      "acc",
		OpeningBalance: decimal.NewFromInt(100),
		PeriodDebit:    decimal.NewFromInt(50),
		PeriodCredit:   decimal.Zero,
		CurrentBalance: decimal.NewFromInt(150),
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc/balance?asOf=2024-03-31", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.AccountBalanceResponse
	suite.decode(w, &res)
	suite.True(res.CurrentBalance.Equal(decimal.NewFromInt(150)))
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_InvalidDate() {
	w := suite.do(http.MethodGet, "/api/v1/accounts/acc/balance?asOf=31-03-2024", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AccountHandlerTestSuite) TestForeignIssuerRejected() {
	token, err := utils.GenerateJWT(testUserID, testSecret, "someone-else", time.Hour, time.Now())
	suite.Require().NoError(err)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AccountHandlerTestSuite) TestHealthIsPublic() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
