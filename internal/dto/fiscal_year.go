package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// CreateFiscalYearRequest defines the data needed to open a fiscal year.
type CreateFiscalYearRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	StartDate   Date   `json:"startDate"`
	EndDate     Date   `json:"endDate"`
	IsActive    bool   `json:"isActive"`
}

// FiscalYearResponse defines the data returned for a fiscal year.
type FiscalYearResponse struct {
	FiscalYearID string     `json:"fiscalYearID"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	StartDate    Date       `json:"startDate"`
	EndDate      Date       `json:"endDate"`
	IsActive     bool       `json:"isActive"`
	IsClosed     bool       `json:"isClosed"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	ClosedBy     string     `json:"closedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CreatedBy    string     `json:"createdBy"`
}

// ToFiscalYearResponse converts a domain.FiscalYear to its DTO.
func ToFiscalYearResponse(fy *domain.FiscalYear) FiscalYearResponse {
	return FiscalYearResponse{
		FiscalYearID: fy.FiscalYearID,
		Name:         fy.Name,
		Description:  fy.Description,
		StartDate:    NewDate(fy.StartDate),
		EndDate:      NewDate(fy.EndDate),
		IsActive:     fy.IsActive,
		IsClosed:     fy.IsClosed,
		ClosedAt:     fy.ClosedAt,
		ClosedBy:     fy.ClosedBy,
		CreatedAt:    fy.CreatedAt,
		CreatedBy:    fy.CreatedBy,
	}
}

// ToFiscalYearResponses converts a slice of fiscal years.
func ToFiscalYearResponses(years []domain.FiscalYear) []FiscalYearResponse {
	out := make([]FiscalYearResponse, len(years))
	for i := range years {
		out[i] = ToFiscalYearResponse(&years[i])
	}
	return out
}
