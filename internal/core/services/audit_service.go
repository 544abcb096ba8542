package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_engine/internal/core/ports/services"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type auditService struct {
	BaseService
	store portsrepo.AuditRepository
}

// NewAuditService exposes the audit log for inspection.
func NewAuditService(store portsrepo.AuditRepository, options ...ServiceOption) portssvc.AuditReaderSvc {
	return &auditService{
		BaseService: newBaseService(options),
		store:       store,
	}
}

func (s *auditService) ListAuditRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	records, err := s.store.ListAuditRecords(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, "list_audit_records", err)
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}
	return records, nil
}
