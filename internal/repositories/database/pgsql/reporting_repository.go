package pgsql

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

// PgxReportingRepository reads lines of entries with a balance effect.
type PgxReportingRepository struct {
	BaseRepository
}

var _ portsrepo.PostedLineReader = (*PgxReportingRepository)(nil)

func postedLineWhere(filter domain.PostedLineFilter) *whereBuilder {
	w := &whereBuilder{}
	w.where("e.status IN (" + w.arg(string(domain.Posted)) + ", " + w.arg(string(domain.Approved)) + ")")
	if filter.AccountID != "" {
		w.where("l.account_id = " + w.arg(filter.AccountID))
	}
	if filter.FiscalYearID != "" {
		w.where("e.fiscal_year_id = " + w.arg(filter.FiscalYearID))
	}
	if filter.From != nil {
		w.where("e.entry_date >= " + w.arg(domain.DateOnly(*filter.From)))
	}
	if filter.To != nil {
		w.where("e.entry_date <= " + w.arg(domain.DateOnly(*filter.To)))
	}
	if filter.Before != nil {
		w.where("e.entry_date < " + w.arg(domain.DateOnly(*filter.Before)))
	}
	return w
}

// ListPostedLines returns matching lines in ledger order.
func (r *PgxReportingRepository) ListPostedLines(ctx context.Context, filter domain.PostedLineFilter) ([]domain.PostedLine, error) {
	w := postedLineWhere(filter)
	query := `
		SELECT l.line_id, l.entry_id, e.entry_number, e.entry_date, e.created_at, e.description,
		       l.account_id, l.line_number, l.description, l.debit, l.credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id` + w.String() + `
		ORDER BY e.entry_date, e.created_at, e.entry_number, l.line_number;`

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "failed to query posted lines")
	}
	defer rows.Close()

	lines := []domain.PostedLine{}
	for rows.Next() {
		var m models.PostedLine
		if err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.EntryNumber,
			&m.EntryDate,
			&m.EntryCreatedAt,
			&m.EntryDescription,
			&m.AccountID,
			&m.LineNumber,
			&m.Description,
			&m.Debit,
			&m.Credit,
		); err != nil {
			return nil, mapError(err, "failed to scan posted line row")
		}
		lines = append(lines, mapping.ToDomainPostedLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating posted line rows")
	}
	return lines, nil
}

// SumPostedActivity aggregates debit and credit per account.
func (r *PgxReportingRepository) SumPostedActivity(ctx context.Context, filter domain.PostedLineFilter) (map[string]domain.AccountActivity, error) {
	w := postedLineWhere(filter)
	query := `
		SELECT l.account_id, SUM(l.debit), SUM(l.credit)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id` + w.String() + `
		GROUP BY l.account_id;`

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "failed to sum posted activity")
	}
	defer rows.Close()

	out := make(map[string]domain.AccountActivity)
	for rows.Next() {
		var accountID string
		var debit, credit decimal.Decimal
		if err := rows.Scan(&accountID, &debit, &credit); err != nil {
			return nil, mapError(err, "failed to scan activity row")
		}
		out[accountID] = domain.AccountActivity{Debit: debit, Credit: credit}
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating activity rows")
	}
	return out, nil
}
