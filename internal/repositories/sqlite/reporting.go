package sqlite

import (
	"context"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

func postedLineWhere(filter domain.PostedLineFilter) *whereBuilder {
	w := &whereBuilder{}
	w.where("e.status IN (?, ?)", string(domain.Posted), string(domain.Approved))
	if filter.AccountID != "" {
		w.where("l.account_id = ?", filter.AccountID)
	}
	if filter.FiscalYearID != "" {
		w.where("e.fiscal_year_id = ?", filter.FiscalYearID)
	}
	if filter.From != nil {
		w.where("e.entry_date >= ?", formatDate(*filter.From))
	}
	if filter.To != nil {
		w.where("e.entry_date <= ?", formatDate(*filter.To))
	}
	if filter.Before != nil {
		w.where("e.entry_date < ?", formatDate(*filter.Before))
	}
	return w
}

func (s *Store) ListPostedLines(ctx context.Context, filter domain.PostedLineFilter) ([]domain.PostedLine, error) {
	w := postedLineWhere(filter)
	query := `
		SELECT l.line_id, l.entry_id, e.entry_number, e.entry_date, e.created_at, e.description,
		       l.account_id, l.line_number, l.description, l.debit, l.credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id` + w.String() + `
		ORDER BY e.entry_date, e.created_at, e.entry_number, l.line_number;`

	rows, err := s.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "failed to query posted lines")
	}
	defer rows.Close()

	lines := []domain.PostedLine{}
	for rows.Next() {
		var (
			pl                   domain.PostedLine
			entryDate, createdAt string
		)
		if err := rows.Scan(
			&pl.LineID,
			&pl.EntryID,
			&pl.EntryNumber,
			&entryDate,
			&createdAt,
			&pl.EntryDescription,
			&pl.AccountID,
			&pl.LineNumber,
			&pl.Description,
			&pl.Debit,
			&pl.Credit,
		); err != nil {
			return nil, mapError(err, "failed to scan posted line row")
		}
		if pl.EntryDate, err = parseDate(entryDate); err != nil {
			return nil, mapError(err, "failed to decode posted line row")
		}
		if pl.EntryCreatedAt, err = parseTime(createdAt); err != nil {
			return nil, mapError(err, "failed to decode posted line row")
		}
		lines = append(lines, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating posted line rows")
	}
	return lines, nil
}

// SumPostedActivity adds the amounts in Go; SQLite's SUM over decimal text would go through REAL.
func (s *Store) SumPostedActivity(ctx context.Context, filter domain.PostedLineFilter) (map[string]domain.AccountActivity, error) {
	lines, err := s.ListPostedLines(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.AccountActivity)
	for _, l := range lines {
		a := out[l.AccountID]
		a.Debit = a.Debit.Add(l.Debit)
		a.Credit = a.Credit.Add(l.Credit)
		out[l.AccountID] = a
	}
	return out, nil
}
