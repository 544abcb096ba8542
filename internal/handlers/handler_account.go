package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
// The ledger of an account is registered separately by registerLedgerRoutes.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/tree", h.getAccountsTree)
		accounts.GET("/:id", h.getAccount)
		accounts.PATCH("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deleteAccount)
		accounts.GET("/:id/balance", h.getAccountBalance)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the chart. Code, level and full path are generated from the parent.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input or hierarchy violation"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Parent account not found"
// @Failure 409 {object} ErrorResponse "Code conflict"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actor(c)
	if !ok {
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to create account",
		slog.String("name", req.NamePrimary), slog.String("parent_account_id", req.ParentAccountID))

	account, err := h.accountService.AddAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary Search the chart of accounts
// @Description Lists accounts ordered by code, optionally filtered by a substring of code or names and by category.
// @Tags accounts
// @Produce  json
// @Param   q query string false "Substring of code, primary or secondary name"
// @Param   category query string false "Account category" Enums(asset, liability, expense, revenue, equity)
// @Param   includeInactive query bool false "Include inactive accounts"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// getAccountsTree godoc
// @Summary Get the account hierarchy
// @Tags accounts
// @Produce  json
// @Param   parentId query string false "Return only the subtree below this account"
// @Param   includeInactive query bool false "Include inactive accounts"
// @Success 200 {array} dto.AccountTreeNode
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Parent account not found"
// @Security BearerAuth
// @Router /accounts/tree [get]
func (h *accountHandler) getAccountsTree(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	nodes, err := h.accountService.GetAccountsTree(c.Request.Context(), c.Query("parentId"), includeInactive)
	if err != nil {
		respondError(c, err, "Failed to build account tree")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountTree(nodes))
}

// updateAccount godoc
// @Summary Update an account
// @Description Applies a partial update. Changing the category or opening balance re-derives the current balance.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 409 {object} ErrorResponse "Code conflict"
// @Security BearerAuth
// @Router /accounts/{id} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actor(c)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), req.ToPatch(), userID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account updated successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Removes an account that no journal line references. force also removes its whole subtree.
// @Tags accounts
// @Param   id path string true "Account ID"
// @Param   force query bool false "Delete child accounts too"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Account has children or is referenced"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.Query("force"))

	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("id"), force, userID); err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}
	c.Status(http.StatusNoContent)
}

// getAccountBalance godoc
// @Summary Get the balance of an account
// @Description Re-derives the balance from posted lines, optionally as of a date.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   asOf query string false "Inclusive date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} ErrorResponse "Invalid date"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	var params dto.ReportDateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	balance, err := h.accountService.GetAccountBalance(c.Request.Context(), c.Param("id"), params.AsOf)
	if err != nil {
		respondError(c, err, "Failed to calculate account balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(balance, params.AsOf))
}
