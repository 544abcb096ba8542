package models

import (
	"database/sql"
	"time"
)

// FiscalYear is a row of the fiscal_years table.
type FiscalYear struct {
	FiscalYearID string         `db:"fiscal_year_id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	StartDate    time.Time      `db:"start_date"`
	EndDate      time.Time      `db:"end_date"`
	IsActive     bool           `db:"is_active"`
	IsClosed     bool           `db:"is_closed"`
	ClosedAt     sql.NullTime   `db:"closed_at"`
	ClosedBy     sql.NullString `db:"closed_by"`
	AuditFields
}
