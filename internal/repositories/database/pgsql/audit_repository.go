package pgsql

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/mapping"
)

type PgxAuditRepository struct {
	BaseRepository
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// AppendAudit inserts one audit log row.
func (r *PgxAuditRepository) AppendAudit(ctx context.Context, record domain.AuditRecord) error {
	m := mapping.ToModelAuditRecord(record)
	query := `
		INSERT INTO audit_log (audit_id, actor, action, table_name, record_id, old_values, new_values, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query, m.AuditID, m.Actor, m.Action, m.TableName, m.RecordID, m.OldValues, m.NewValues, m.Timestamp)
	if err != nil {
		return mapError(err, "failed to append audit record %s", m.AuditID)
	}
	return nil
}

// ListAuditRecords returns matching records newest first.
func (r *PgxAuditRepository) ListAuditRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	var w whereBuilder
	if filter.TableName != "" {
		w.where("table_name = " + w.arg(filter.TableName))
	}
	if filter.RecordID != "" {
		w.where("record_id = " + w.arg(filter.RecordID))
	}
	if filter.Action != "" {
		w.where("action = " + w.arg(string(filter.Action)))
	}
	query := `SELECT audit_id, actor, action, table_name, record_id, old_values, new_values, "timestamp"
		FROM audit_log` + w.String() + ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + w.arg(filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "failed to query audit log")
	}
	defer rows.Close()

	records := []domain.AuditRecord{}
	for rows.Next() {
		var m models.AuditRecord
		if err := rows.Scan(&m.AuditID, &m.Actor, &m.Action, &m.TableName, &m.RecordID, &m.OldValues, &m.NewValues, &m.Timestamp); err != nil {
			return nil, mapError(err, "failed to scan audit row")
		}
		records = append(records, mapping.ToDomainAuditRecord(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating audit rows")
	}
	return records, nil
}
