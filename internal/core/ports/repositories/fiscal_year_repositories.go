package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// FiscalYearReader defines read operations for fiscal years
type FiscalYearReader interface {
	FindFiscalYearByID(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error)
	// FindFiscalYearByDate returns the fiscal year containing date.
	FindFiscalYearByDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error)
	// ListFiscalYears returns all fiscal years ordered by start date.
	ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error)
}

// FiscalYearWriter defines write operations for fiscal years
type FiscalYearWriter interface {
	SaveFiscalYear(ctx context.Context, fy domain.FiscalYear) error
	UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error
}

// FiscalYearRepositoryFacade combines fiscal year reads and writes
type FiscalYearRepositoryFacade interface {
	FiscalYearReader
	FiscalYearWriter
}
