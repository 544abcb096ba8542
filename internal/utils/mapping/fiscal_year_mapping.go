package mapping

import (
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
)

// ToModelFiscalYear converts a domain FiscalYear to a model FiscalYear
func ToModelFiscalYear(d domain.FiscalYear) models.FiscalYear {
	return models.FiscalYear{
		FiscalYearID: d.FiscalYearID,
		Name:         d.Name,
		Description:  d.Description,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		IsActive:     d.IsActive,
		IsClosed:     d.IsClosed,
		ClosedAt:     NullTime(d.ClosedAt),
		ClosedBy:     NullString(d.ClosedBy),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalYear converts a model FiscalYear to a domain FiscalYear
func ToDomainFiscalYear(m models.FiscalYear) domain.FiscalYear {
	return domain.FiscalYear{
		FiscalYearID: m.FiscalYearID,
		Name:         m.Name,
		Description:  m.Description,
		StartDate:    domain.DateOnly(m.StartDate),
		EndDate:      domain.DateOnly(m.EndDate),
		IsActive:     m.IsActive,
		IsClosed:     m.IsClosed,
		ClosedAt:     TimePtr(m.ClosedAt),
		ClosedBy:     m.ClosedBy.String,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
