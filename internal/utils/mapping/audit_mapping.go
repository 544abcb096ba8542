package mapping

import (
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
)

// ToModelAuditRecord converts a domain AuditRecord to a model AuditRecord
func ToModelAuditRecord(d domain.AuditRecord) models.AuditRecord {
	m := models.AuditRecord{
		AuditID:   d.AuditID,
		Actor:     d.Actor,
		Action:    string(d.Action),
		TableName: d.TableName,
		RecordID:  d.RecordID,
		Timestamp: d.Timestamp,
	}
	if len(d.OldValues) > 0 {
		m.OldValues = []byte(d.OldValues)
	}
	if len(d.NewValues) > 0 {
		m.NewValues = []byte(d.NewValues)
	}
	return m
}

// ToDomainAuditRecord converts a model AuditRecord to a domain AuditRecord
func ToDomainAuditRecord(m models.AuditRecord) domain.AuditRecord {
	return domain.AuditRecord{
		AuditID:   m.AuditID,
		Actor:     m.Actor,
		Action:    domain.AuditAction(m.Action),
		TableName: m.TableName,
		RecordID:  m.RecordID,
		OldValues: m.OldValues,
		NewValues: m.NewValues,
		Timestamp: m.Timestamp.UTC(),
	}
}
