package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type fiscalYearHandler struct {
	fiscalYearService portssvc.FiscalYearSvcFacade
}

func newFiscalYearHandler(fs portssvc.FiscalYearSvcFacade) *fiscalYearHandler {
	return &fiscalYearHandler{fiscalYearService: fs}
}

func registerFiscalYearRoutes(rg *gin.RouterGroup, fiscalYearService portssvc.FiscalYearSvcFacade) {
	h := newFiscalYearHandler(fiscalYearService)

	years := rg.Group("/fiscal-years")
	{
		years.POST("", h.createFiscalYear)
		years.GET("", h.listFiscalYears)
		years.GET("/:id", h.getFiscalYear)
		years.POST("/:id/activate", h.activateFiscalYear)
		years.POST("/:id/close", h.closeFiscalYear)
	}
}

// createFiscalYear godoc
// @Summary Open a fiscal year
// @Description The date range must not overlap an existing fiscal year.
// @Tags fiscal-years
// @Accept  json
// @Produce  json
// @Param   fiscalYear body dto.CreateFiscalYearRequest true "Fiscal year"
// @Success 201 {object} dto.FiscalYearResponse
// @Failure 400 {object} ErrorResponse "Invalid range"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Overlapping fiscal year"
// @Security BearerAuth
// @Router /fiscal-years [post]
func (h *fiscalYearHandler) createFiscalYear(c *gin.Context) {
	var req dto.CreateFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actor(c)
	if !ok {
		return
	}

	fy, err := h.fiscalYearService.CreateFiscalYear(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create fiscal year")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Fiscal year created", slog.String("fiscal_year_id", fy.FiscalYearID))
	c.JSON(http.StatusCreated, dto.ToFiscalYearResponse(fy))
}

// listFiscalYears godoc
// @Summary List fiscal years
// @Tags fiscal-years
// @Produce  json
// @Success 200 {array} dto.FiscalYearResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /fiscal-years [get]
func (h *fiscalYearHandler) listFiscalYears(c *gin.Context) {
	years, err := h.fiscalYearService.ListFiscalYears(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list fiscal years")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalYearResponses(years))
}

// getFiscalYear godoc
// @Summary Get a fiscal year
// @Tags fiscal-years
// @Produce  json
// @Param   id path string true "Fiscal year ID"
// @Success 200 {object} dto.FiscalYearResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Fiscal year not found"
// @Security BearerAuth
// @Router /fiscal-years/{id} [get]
func (h *fiscalYearHandler) getFiscalYear(c *gin.Context) {
	fy, err := h.fiscalYearService.GetFiscalYear(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve fiscal year")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

// activateFiscalYear godoc
// @Summary Make a fiscal year the active one
// @Tags fiscal-years
// @Produce  json
// @Param   id path string true "Fiscal year ID"
// @Success 200 {object} dto.FiscalYearResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Fiscal year not found"
// @Failure 409 {object} ErrorResponse "Fiscal year is closed"
// @Security BearerAuth
// @Router /fiscal-years/{id}/activate [post]
func (h *fiscalYearHandler) activateFiscalYear(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	fy, err := h.fiscalYearService.ActivateFiscalYear(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to activate fiscal year")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

// closeFiscalYear godoc
// @Summary Close a fiscal year
// @Description Entries dated inside a closed year can no longer be created, posted or reversed.
// @Tags fiscal-years
// @Produce  json
// @Param   id path string true "Fiscal year ID"
// @Success 200 {object} dto.FiscalYearResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Fiscal year not found"
// @Failure 409 {object} ErrorResponse "Fiscal year already closed"
// @Security BearerAuth
// @Router /fiscal-years/{id}/close [post]
func (h *fiscalYearHandler) closeFiscalYear(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	fy, err := h.fiscalYearService.CloseFiscalYear(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to close fiscal year")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Fiscal year closed", slog.String("fiscal_year_id", fy.FiscalYearID))
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}
