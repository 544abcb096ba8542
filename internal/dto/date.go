package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

// Date is a calendar day carried on the wire as "2006-01-02".
// RFC3339 timestamps are accepted on input and truncated to their day.
type Date struct {
	time.Time
}

// NewDate wraps t as a Date.
func NewDate(t time.Time) Date {
	return Date{Time: domain.DateOnly(t)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(domain.DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate accepts "2006-01-02" or RFC3339 and returns midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return domain.DateOnly(t), nil
}
