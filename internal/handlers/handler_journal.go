package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: journalService}
}

func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createEntry)
		journals.POST("/validate", h.validateEntry)
		journals.GET("", h.listEntries)
		journals.GET("/:id", h.getEntry)
		journals.PATCH("/:id", h.updateEntry)
		journals.DELETE("/:id", h.deleteEntry)
		journals.POST("/:id/post", h.postEntry)
		journals.POST("/:id/approve", h.approveEntry)
		journals.POST("/:id/reverse", h.reverseEntry)
	}
}

// createEntry godoc
// @Summary Create a draft journal entry
// @Description Validates the lines and stores a draft with the next entry number of its fiscal year.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateEntryRequest true "Entry header and lines"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse "Unbalanced or invalid lines"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "No fiscal year contains the date"
// @Failure 409 {object} ErrorResponse "Fiscal year closed or entry number conflict"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actor(c)
	if !ok {
		return
	}

	entry, err := h.journalService.CreateEntry(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create journal entry")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal entry created",
		slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// validateEntry godoc
// @Summary Check lines without saving them
// @Description Runs the double-entry checks on the lines and reports the first violation.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   lines body dto.ValidateEntryRequest true "Lines to check"
// @Success 200 {object} dto.ValidateEntryResponse
// @Failure 400 {object} ErrorResponse "Malformed request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /journals/validate [post]
func (h *journalHandler) validateEntry(c *gin.Context) {
	var req dto.ValidateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	err := h.journalService.ValidateEntry(c.Request.Context(), dto.ToLineInputs(req.Lines))
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			respondError(c, err, "Failed to validate journal entry")
			return
		}
		c.JSON(http.StatusOK, dto.ValidateEntryResponse{Valid: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ValidateEntryResponse{Valid: true})
}

// listEntries godoc
// @Summary List journal entries
// @Description Returns entry headers newest first, paged with an opaque token.
// @Tags journals
// @Produce  json
// @Param   status query string false "Entry status" Enums(draft, posted, approved)
// @Param   fiscalYearId query string false "Fiscal year ID"
// @Param   dateFrom query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   dateTo query string false "Inclusive end date (YYYY-MM-DD)"
// @Param   entryNumber query string false "Substring of the entry number"
// @Param   createdBy query string false "Creator user ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	page, err := h.journalService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getEntry godoc
// @Summary Get a journal entry with its lines
// @Tags journals
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Security BearerAuth
// @Router /journals/{id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.journalService.GetEntryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// updateEntry godoc
// @Summary Update a draft entry header
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   id path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Header fields to change"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not a draft"
// @Security BearerAuth
// @Router /journals/{id} [patch]
func (h *journalHandler) updateEntry(c *gin.Context) {
	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actor(c)
	if !ok {
		return
	}

	entry, err := h.journalService.UpdateEntry(c.Request.Context(), c.Param("id"), req.ToPatch(), userID)
	if err != nil {
		respondError(c, err, "Failed to update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a draft entry
// @Tags journals
// @Param   id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not a draft"
// @Security BearerAuth
// @Router /journals/{id} [delete]
func (h *journalHandler) deleteEntry(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	if err := h.journalService.DeleteEntry(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err, "Failed to delete journal entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft entry
// @Description Applies every line to its account balance atomically.
// @Tags journals
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse "Entry references an inactive or missing account"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not a draft"
// @Security BearerAuth
// @Router /journals/{id}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	h.transition(c, "post", h.journalService.PostEntry)
}

// approveEntry godoc
// @Summary Approve a posted entry
// @Tags journals
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not posted"
// @Security BearerAuth
// @Router /journals/{id}/approve [post]
func (h *journalHandler) approveEntry(c *gin.Context) {
	h.transition(c, "approve", h.journalService.ApproveEntry)
}

func (h *journalHandler) transition(c *gin.Context, action string,
	fn func(ctx context.Context, entryID, userID string) (*domain.JournalEntry, error)) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	entry, err := fn(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to "+action+" journal entry")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal entry "+action+" done",
		slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Creates and posts the mirror entry, linking both entries to each other.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   id path string true "Entry ID"
// @Param   reversal body dto.ReverseEntryRequest false "Optional date and description of the reversal"
// @Success 201 {object} dto.EntryResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Entry is not posted or already reversed"
// @Security BearerAuth
// @Router /journals/{id}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	var req dto.ReverseEntryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err, "request format")
			return
		}
	}
	userID, ok := actor(c)
	if !ok {
		return
	}

	reversal, err := h.journalService.ReverseEntry(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to reverse journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}
