package services

import (
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The account and journal engines share the balance cache so postings invalidate it.
func NewServiceContainer(store portsrepo.Store, cache *BalanceCache, options ...ServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:    NewAccountService(store, cache, options...),
		FiscalYear: NewFiscalYearService(store, options...),
		Journal:    NewJournalService(store, cache, options...),
		Reporting:  NewReportingService(store, options...),
		Audit:      NewAuditService(store, options...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade    = (*accountService)(nil)
	_ portssvc.FiscalYearSvcFacade = (*fiscalYearService)(nil)
	_ portssvc.JournalSvcFacade    = (*journalService)(nil)
	_ portssvc.ReportingService    = (*reportingService)(nil)
	_ portssvc.AuditReaderSvc      = (*auditService)(nil)
)
