package repositories

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// AuditRepository is the append-only audit sink.
type AuditRepository interface {
	AppendAudit(ctx context.Context, record domain.AuditRecord) error
	// ListAuditRecords returns matching records newest first. Used by external inspection only.
	ListAuditRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error)
}

// AuditPublisher fans committed audit records out to external consumers.
// Publishing is best effort; the audit log in the store remains the record of truth.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, records []domain.AuditRecord)
}
