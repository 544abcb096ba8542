package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditReaderSvc
}

func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditReaderSvc) {
	h := &auditHandler{auditService: auditService}
	rg.GET("/audit", h.listAuditRecords)
}

// listAuditRecords godoc
// @Summary Read the audit log
// @Description Returns audit records newest first.
// @Tags audit
// @Produce  json
// @Param   table query string false "Table name" Enums(accounts, fiscal_years, journal_entries)
// @Param   recordId query string false "Record ID"
// @Param   action query string false "Action, for example JOURNAL_POST"
// @Param   limit query int false "Maximum records" default(100)
// @Success 200 {object} dto.ListAuditResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /audit [get]
func (h *auditHandler) listAuditRecords(c *gin.Context) {
	var params dto.ListAuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	records, err := h.auditService.ListAuditRecords(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondError(c, err, "Failed to read audit log")
		return
	}
	c.JSON(http.StatusOK, dto.ListAuditResponse{Records: records})
}
