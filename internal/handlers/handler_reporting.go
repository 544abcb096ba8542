package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	now              func() time.Time
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		now:              time.Now,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/cash-flow", h.getCashFlow)
		reportingGroup.GET("/cost-accounts", h.getCostAccounts)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every account with opening, period and closing figures. The last row holds the totals.
// @Tags reports
// @Produce json
// @Param fiscalYearId query string false "Restrict period movements to this fiscal year"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Fiscal year not found"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	var fiscalYearID *string
	if id := c.Query("fiscalYearId"); id != "" {
		fiscalYearID = &id
	}

	report, err := h.reportingService.GetTrialBalance(c.Request.Context(), fiscalYearID)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance report")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Trial balance report generated successfully",
		slog.Int("row_count", len(report.Rows)), slog.Bool("balanced", report.IsBalanced))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Groups asset, liability and equity balances as of a date.
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	var params dto.ReportDateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	asOf := domain.DateOnly(h.now())
	if params.AsOf != nil {
		asOf = *params.AsOf
	}

	report, err := h.reportingService.GetBalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate balance sheet report")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Balance sheet report generated successfully",
		slog.Int("asset_accounts", len(report.Assets)),
		slog.Int("liability_accounts", len(report.Liabilities)),
		slog.Int("equity_accounts", len(report.Equity)))
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}

// getIncomeStatement godoc
// @Summary Generate income statement report
// @Description Sums revenue and expense activity posted within a period.
// @Tags reports
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.IncomeStatementResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	var params dto.ReportDateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	if params.StartDate == nil || params.EndDate == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "startDate and endDate are required"})
		return
	}

	report, err := h.reportingService.GetIncomeStatement(c.Request.Context(), *params.StartDate, *params.EndDate)
	if err != nil {
		respondError(c, err, "Failed to generate income statement report")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Income statement report generated successfully",
		slog.Int("revenue_accounts", len(report.Revenues)),
		slog.Int("expense_accounts", len(report.Expenses)))
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(report))
}

// getCashFlow godoc
// @Summary Generate cash flow statement
// @Description Lists movements on cash and bank accounts within a period, grouped into operating, investing and financing.
// @Tags reports
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.CashFlowResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/cash-flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	var params dto.ReportDateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	if params.StartDate == nil || params.EndDate == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "startDate and endDate are required"})
		return
	}

	report, err := h.reportingService.GetCashFlow(c.Request.Context(), *params.StartDate, *params.EndDate)
	if err != nil {
		respondError(c, err, "Failed to generate cash flow statement")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Cash flow statement generated successfully",
		slog.Int("cash_accounts", len(report.CashAccounts)),
		slog.String("net_change", report.NetChange.String()))
	c.JSON(http.StatusOK, dto.ToCashFlowResponse(report))
}

// getCostAccounts godoc
// @Summary Generate cost accounts report
// @Description Lists active expense and revenue accounts with opening, period and net amounts. The last row holds the net profit.
// @Tags reports
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.CostAccountsResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/cost-accounts [get]
func (h *reportingHandler) getCostAccounts(c *gin.Context) {
	var params dto.ReportDateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	report, err := h.reportingService.GetCostAccounts(c.Request.Context(), params.StartDate, params.EndDate)
	if err != nil {
		respondError(c, err, "Failed to generate cost accounts report")
		return
	}
	c.JSON(http.StatusOK, dto.ToCostAccountsResponse(report))
}
