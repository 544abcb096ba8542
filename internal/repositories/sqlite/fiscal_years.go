package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

const fiscalYearColumns = `fiscal_year_id, name, description, start_date, end_date, is_active, is_closed,
	closed_at, closed_by, created_at, created_by, last_updated_at, last_updated_by`

func scanFiscalYear(row scanner) (domain.FiscalYear, error) {
	var (
		fy                 domain.FiscalYear
		start, end         string
		closedAt, closedBy sql.NullString
		audit              auditColumns
	)
	dest := []any{&fy.FiscalYearID, &fy.Name, &fy.Description, &start, &end, &fy.IsActive, &fy.IsClosed, &closedAt, &closedBy}
	if err := row.Scan(append(dest, audit.dest()...)...); err != nil {
		return domain.FiscalYear{}, err
	}
	var err error
	if fy.StartDate, err = parseDate(start); err != nil {
		return domain.FiscalYear{}, err
	}
	if fy.EndDate, err = parseDate(end); err != nil {
		return domain.FiscalYear{}, err
	}
	if fy.ClosedAt, err = parseNullTime(closedAt); err != nil {
		return domain.FiscalYear{}, err
	}
	if fy.AuditFields, err = audit.toDomain(); err != nil {
		return domain.FiscalYear{}, err
	}
	fy.ClosedBy = closedBy.String
	return fy, nil
}

func (s *Store) FindFiscalYearByID(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	fy, err := scanFiscalYear(s.q.QueryRowContext(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE fiscal_year_id = ?;`, fiscalYearID))
	if err != nil {
		return nil, mapError(err, "fiscal year %s", fiscalYearID)
	}
	return &fy, nil
}

func (s *Store) FindFiscalYearByDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years
		WHERE ? BETWEEN start_date AND end_date
		ORDER BY start_date LIMIT 1;`
	fy, err := scanFiscalYear(s.q.QueryRowContext(ctx, query, formatDate(date)))
	if err != nil {
		return nil, mapError(err, "no fiscal year contains %s", formatDate(date))
	}
	return &fy, nil
}

func (s *Store) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years ORDER BY start_date;`)
	if err != nil {
		return nil, mapError(err, "failed to query fiscal years")
	}
	defer rows.Close()

	years := []domain.FiscalYear{}
	for rows.Next() {
		fy, err := scanFiscalYear(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan fiscal year row")
		}
		years = append(years, fy)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating fiscal year rows")
	}
	return years, nil
}

func (s *Store) SaveFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	query := `INSERT INTO fiscal_years (` + fiscalYearColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := s.q.ExecContext(ctx, query,
		fy.FiscalYearID,
		fy.Name,
		fy.Description,
		formatDate(fy.StartDate),
		formatDate(fy.EndDate),
		fy.IsActive,
		fy.IsClosed,
		nullTime(fy.ClosedAt),
		nullString(fy.ClosedBy),
		formatTime(fy.CreatedAt),
		fy.CreatedBy,
		formatTime(fy.LastUpdatedAt),
		fy.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to save fiscal year %s", fy.FiscalYearID)
	}
	return nil
}

func (s *Store) UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	query := `
		UPDATE fiscal_years
		SET name = ?, description = ?, start_date = ?, end_date = ?, is_active = ?, is_closed = ?,
		    closed_at = ?, closed_by = ?, last_updated_at = ?, last_updated_by = ?
		WHERE fiscal_year_id = ?;
	`
	res, err := s.q.ExecContext(ctx, query,
		fy.Name,
		fy.Description,
		formatDate(fy.StartDate),
		formatDate(fy.EndDate),
		fy.IsActive,
		fy.IsClosed,
		nullTime(fy.ClosedAt),
		nullString(fy.ClosedBy),
		formatTime(fy.LastUpdatedAt),
		fy.LastUpdatedBy,
		fy.FiscalYearID,
	)
	if err != nil {
		return mapError(err, "failed to update fiscal year %s", fy.FiscalYearID)
	}
	return expectOne(res, "fiscal year "+fy.FiscalYearID)
}
