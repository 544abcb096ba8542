package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	reportingService portssvc.ReportingService
}

func newLedgerHandler(rs portssvc.ReportingService) *ledgerHandler {
	return &ledgerHandler{reportingService: rs}
}

// registerLedgerRoutes mounts the ledger under the accounts group.
func registerLedgerRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newLedgerHandler(reportingService)
	rg.GET("/accounts/:id/ledger", h.getLedger)
}

// getLedger godoc
// @Summary Get the ledger of an account
// @Description Lists posted lines of the account in date order with a running balance.
// @Description With a startDate the first row carries the balance brought forward.
// @Tags ledger
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} dto.LedgerResponse
// @Failure 400 {object} ErrorResponse "Invalid date range"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/ledger [get]
func (h *ledgerHandler) getLedger(c *gin.Context) {
	var params dto.ReportDateParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	ledger, err := h.reportingService.GetLedger(c.Request.Context(), c.Param("id"), params.StartDate, params.EndDate)
	if err != nil {
		respondError(c, err, "Failed to build ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerResponse(ledger))
}
