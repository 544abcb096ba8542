package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/dto"
)

// FiscalYearSvcFacade manages accounting periods.
type FiscalYearSvcFacade interface {
	CreateFiscalYear(ctx context.Context, req dto.CreateFiscalYearRequest, userID string) (*domain.FiscalYear, error)
	GetFiscalYear(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error)
	ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error)
	FindFiscalYearForDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error)
	// ActivateFiscalYear marks the year active and every other year inactive.
	ActivateFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error)
	// CloseFiscalYear closes the year for further journal activity.
	CloseFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error)
}
