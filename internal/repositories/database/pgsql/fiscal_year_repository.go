package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxFiscalYearRepository struct {
	BaseRepository
}

var _ portsrepo.FiscalYearRepositoryFacade = (*PgxFiscalYearRepository)(nil)

const fiscalYearColumns = `fiscal_year_id, name, description, start_date, end_date, is_active, is_closed,
	closed_at, closed_by, created_at, created_by, last_updated_at, last_updated_by`

func scanFiscalYear(row pgx.Row) (domain.FiscalYear, error) {
	var m models.FiscalYear
	err := row.Scan(
		&m.FiscalYearID,
		&m.Name,
		&m.Description,
		&m.StartDate,
		&m.EndDate,
		&m.IsActive,
		&m.IsClosed,
		&m.ClosedAt,
		&m.ClosedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.FiscalYear{}, err
	}
	return mapping.ToDomainFiscalYear(m), nil
}

func (r *PgxFiscalYearRepository) FindFiscalYearByID(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE fiscal_year_id = $1;`
	fy, err := scanFiscalYear(r.db.QueryRow(ctx, query, fiscalYearID))
	if err != nil {
		return nil, mapError(err, "fiscal year %s", fiscalYearID)
	}
	return &fy, nil
}

func (r *PgxFiscalYearRepository) FindFiscalYearByDate(ctx context.Context, date time.Time) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years
		WHERE $1 BETWEEN start_date AND end_date
		ORDER BY start_date LIMIT 1;`
	fy, err := scanFiscalYear(r.db.QueryRow(ctx, query, domain.DateOnly(date)))
	if err != nil {
		return nil, mapError(err, "no fiscal year contains %s", date.Format(domain.DateLayout))
	}
	return &fy, nil
}

func (r *PgxFiscalYearRepository) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years ORDER BY start_date;`)
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

func (r *PgxFiscalYearRepository) SaveFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	m := mapping.ToModelFiscalYear(fy)
	query := `
		INSERT INTO fiscal_years (` + fiscalYearColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db.Exec(ctx, query,
		m.FiscalYearID,
		m.Name,
		m.Description,
		m.StartDate,
		m.EndDate,
		m.IsActive,
		m.IsClosed,
		m.ClosedAt,
		m.ClosedBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to save fiscal year %s", m.FiscalYearID)
	}
	return nil
}

func (r *PgxFiscalYearRepository) UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	m := mapping.ToModelFiscalYear(fy)
	query := `
		UPDATE fiscal_years
		SET name = $2, description = $3, start_date = $4, end_date = $5, is_active = $6, is_closed = $7,
		    closed_at = $8, closed_by = $9, last_updated_at = $10, last_updated_by = $11
		WHERE fiscal_year_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		m.FiscalYearID,
		m.Name,
		m.Description,
		m.StartDate,
		m.EndDate,
		m.IsActive,
		m.IsClosed,
		m.ClosedAt,
		m.ClosedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to update fiscal year %s", m.FiscalYearID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fiscal year %s", apperrors.ErrNotFound, m.FiscalYearID)
	}
	return nil
}
