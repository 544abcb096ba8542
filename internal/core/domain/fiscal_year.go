package domain

import "time"

// FiscalYear is a bounded accounting period in which entries are dated and numbered.
type FiscalYear struct {
	FiscalYearID string     `json:"fiscalYearID"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	IsActive     bool       `json:"isActive"`
	IsClosed     bool       `json:"isClosed"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	ClosedBy     string     `json:"closedBy,omitempty"`
	AuditFields
}

// Contains reports whether the date falls inside [StartDate, EndDate].
func (fy FiscalYear) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(fy.StartDate)) && !d.After(DateOnly(fy.EndDate))
}

// Overlaps reports whether two fiscal years share at least one day.
func (fy FiscalYear) Overlaps(other FiscalYear) bool {
	return !DateOnly(fy.EndDate).Before(DateOnly(other.StartDate)) &&
		!DateOnly(other.EndDate).Before(DateOnly(fy.StartDate))
}
