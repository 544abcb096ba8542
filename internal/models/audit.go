package models

import "time"

// AuditRecord is a row of the audit_log table. Old and new values are raw JSON, nil for NULL.
type AuditRecord struct {
	AuditID   string    `db:"audit_id"`
	Actor     string    `db:"actor"`
	Action    string    `db:"action"`
	TableName string    `db:"table_name"`
	RecordID  string    `db:"record_id"`
	OldValues []byte    `db:"old_values"`
	NewValues []byte    `db:"new_values"`
	Timestamp time.Time `db:"timestamp"`
}
