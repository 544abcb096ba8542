package domain

import (
	"encoding/json"
	"time"
)

// AuditAction names a mutating operation recorded in the audit log.
type AuditAction string

const (
	ActionAccountCreate    AuditAction = "ACCOUNT_CREATE"
	ActionAccountUpdate    AuditAction = "ACCOUNT_UPDATE"
	ActionAccountDelete    AuditAction = "ACCOUNT_DELETE"
	ActionFiscalYearCreate AuditAction = "FISCAL_YEAR_CREATE"
	ActionFiscalYearUpdate AuditAction = "FISCAL_YEAR_UPDATE"
	ActionFiscalYearClose  AuditAction = "FISCAL_YEAR_CLOSE"
	ActionJournalCreate    AuditAction = "JOURNAL_CREATE"
	ActionJournalUpdate    AuditAction = "JOURNAL_UPDATE"
	ActionJournalDelete    AuditAction = "JOURNAL_DELETE"
	ActionJournalPost      AuditAction = "JOURNAL_POST"
	ActionJournalApprove   AuditAction = "JOURNAL_APPROVE"
	ActionJournalReverse   AuditAction = "JOURNAL_REVERSE"
)

// Audited table names.
const (
	TableAccounts       = "accounts"
	TableFiscalYears    = "fiscal_years"
	TableJournalEntries = "journal_entries"
)

// AuditRecord is one append-only audit log entry.
type AuditRecord struct {
	AuditID   string          `json:"auditID"`
	Actor     string          `json:"actor"`
	Action    AuditAction     `json:"action"`
	TableName string          `json:"tableName"`
	RecordID  string          `json:"recordID"`
	OldValues json.RawMessage `json:"oldValues,omitempty"`
	NewValues json.RawMessage `json:"newValues,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// AuditFilter narrows audit listings. Zero values do not filter.
type AuditFilter struct {
	TableName string
	RecordID  string
	Action    AuditAction
	Limit     int
}
