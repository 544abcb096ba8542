package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// AuditReaderSvc exposes the audit log to external inspection.
type AuditReaderSvc interface {
	ListAuditRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error)
}
