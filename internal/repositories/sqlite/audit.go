package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

func nullJSON(raw json.RawMessage) sql.NullString {
	return sql.NullString{String: string(raw), Valid: len(raw) > 0}
}

func (s *Store) AppendAudit(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_log (audit_id, actor, action, table_name, record_id, old_values, new_values, "timestamp")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := s.q.ExecContext(ctx, query,
		record.AuditID,
		record.Actor,
		string(record.Action),
		record.TableName,
		record.RecordID,
		nullJSON(record.OldValues),
		nullJSON(record.NewValues),
		formatTime(record.Timestamp),
	)
	if err != nil {
		return mapError(err, "failed to append audit record %s", record.AuditID)
	}
	return nil
}

func (s *Store) ListAuditRecords(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	var w whereBuilder
	if filter.TableName != "" {
		w.where("table_name = ?", filter.TableName)
	}
	if filter.RecordID != "" {
		w.where("record_id = ?", filter.RecordID)
	}
	if filter.Action != "" {
		w.where("action = ?", string(filter.Action))
	}
	query := `SELECT audit_id, actor, action, table_name, record_id, old_values, new_values, "timestamp"
		FROM audit_log` + w.String() + ` ORDER BY seq DESC`
	args := w.args
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to query audit log")
	}
	defer rows.Close()

	records := []domain.AuditRecord{}
	for rows.Next() {
		var (
			r          domain.AuditRecord
			oldV, newV sql.NullString
			ts         string
		)
		if err := rows.Scan(&r.AuditID, &r.Actor, &r.Action, &r.TableName, &r.RecordID, &oldV, &newV, &ts); err != nil {
			return nil, mapError(err, "failed to scan audit row")
		}
		if r.Timestamp, err = parseTime(ts); err != nil {
			return nil, mapError(err, "failed to decode audit row")
		}
		if oldV.Valid {
			r.OldValues = json.RawMessage(oldV.String)
		}
		if newV.Valid {
			r.NewValues = json.RawMessage(newV.String)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating audit rows")
	}
	return records, nil
}
