package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/pagination"
)

const entryColumns = `entry_id, entry_number, entry_date, description, fiscal_year_id, total_debit, total_credit,
	status, posted_at, posted_by, approved_at, approved_by, reversal_of_entry_id, reversed_by_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, line_number, description, debit, credit,
	created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row scanner) (domain.JournalEntry, error) {
	var (
		e                      domain.JournalEntry
		entryDate              string
		postedAt, postedBy     sql.NullString
		approvedAt, approvedBy sql.NullString
		reversalOf, reversedBy sql.NullString
		audit                  auditColumns
	)
	dest := []any{
		&e.EntryID,
		&e.EntryNumber,
		&entryDate,
		&e.Description,
		&e.FiscalYearID,
		&e.TotalDebit,
		&e.TotalCredit,
		&e.Status,
		&postedAt,
		&postedBy,
		&approvedAt,
		&approvedBy,
		&reversalOf,
		&reversedBy,
	}
	if err := row.Scan(append(dest, audit.dest()...)...); err != nil {
		return domain.JournalEntry{}, err
	}
	var err error
	if e.EntryDate, err = parseDate(entryDate); err != nil {
		return domain.JournalEntry{}, err
	}
	if e.PostedAt, err = parseNullTime(postedAt); err != nil {
		return domain.JournalEntry{}, err
	}
	if e.ApprovedAt, err = parseNullTime(approvedAt); err != nil {
		return domain.JournalEntry{}, err
	}
	if e.AuditFields, err = audit.toDomain(); err != nil {
		return domain.JournalEntry{}, err
	}
	e.PostedBy = postedBy.String
	e.ApprovedBy = approvedBy.String
	e.ReversalOfEntryID = reversalOf.String
	e.ReversedByEntryID = reversedBy.String
	return e, nil
}

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := scanEntry(s.q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = ?;`, entryID))
	if err != nil {
		return nil, mapError(err, "journal entry %s", entryID)
	}
	return &entry, nil
}

// FindEntryByIDForUpdate is FindEntryByID: transactions begin IMMEDIATE and already hold the write lock.
func (s *Store) FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.FindEntryByID(ctx, entryID)
}

func (s *Store) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = ? ORDER BY line_number;`, entryID)
	if err != nil {
		return nil, mapError(err, "failed to query lines of journal entry %s", entryID)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var (
			l     domain.JournalLine
			audit auditColumns
		)
		dest := []any{&l.LineID, &l.EntryID, &l.AccountID, &l.LineNumber, &l.Description, &l.Debit, &l.Credit}
		if err := rows.Scan(append(dest, audit.dest()...)...); err != nil {
			return nil, mapError(err, "failed to scan journal line row")
		}
		if l.AuditFields, err = audit.toDomain(); err != nil {
			return nil, mapError(err, "failed to decode journal line row")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating journal line rows")
	}
	return lines, nil
}

func (s *Store) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	var w whereBuilder
	if filter.Status != "" {
		w.where("status = ?", string(filter.Status))
	}
	if filter.FiscalYearID != "" {
		w.where("fiscal_year_id = ?", filter.FiscalYearID)
	}
	if filter.DateFrom != nil {
		w.where("entry_date >= ?", formatDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		w.where("entry_date <= ?", formatDate(*filter.DateTo))
	}
	if filter.EntryNumber != "" {
		w.where(`entry_number LIKE ? ESCAPE '\'`, likePattern(filter.EntryNumber))
	}
	if filter.CreatedBy != "" {
		w.where("created_by = ?", filter.CreatedBy)
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		w.where("(entry_date, created_at, entry_id) < (?, ?, ?)",
			formatDate(cursor.EntryDate), formatTime(cursor.CreatedAt), cursor.EntryID)
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries` + w.String() +
		` ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT ?;`
	rows, err := s.q.QueryContext(ctx, query, append(w.args, limit+1)...)
	if err != nil {
		return nil, nil, mapError(err, "failed to query journal entries")
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, mapError(err, "failed to scan journal entry row")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapError(err, "error iterating journal entry rows")
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	page := entries[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
	return page, &token, nil
}

func (s *Store) LastEntryNumber(ctx context.Context, fiscalYearID string) (string, error) {
	var last string
	err := s.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(entry_number), '') FROM journal_entries WHERE fiscal_year_id = ?;`, fiscalYearID).Scan(&last)
	if err != nil {
		return "", mapError(err, "failed to read last entry number")
	}
	return last, nil
}

func (s *Store) CountEntries(ctx context.Context, fiscalYearID string, status domain.EntryStatus) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries WHERE fiscal_year_id = ? AND status = ?;`, fiscalYearID, string(status)).Scan(&count)
	if err != nil {
		return 0, mapError(err, "failed to count journal entries")
	}
	return count, nil
}

// SaveEntry inserts the header and its lines. Outside RunInTx it opens its own transaction.
func (s *Store) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	if !s.inTx {
		return s.RunInTx(ctx, func(tx portsrepo.Store) error { return tx.SaveEntry(ctx, entry) })
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO journal_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		entry.EntryID,
		entry.EntryNumber,
		formatDate(entry.EntryDate),
		entry.Description,
		entry.FiscalYearID,
		entry.TotalDebit,
		entry.TotalCredit,
		string(entry.Status),
		nullTime(entry.PostedAt),
		nullString(entry.PostedBy),
		nullTime(entry.ApprovedAt),
		nullString(entry.ApprovedBy),
		nullString(entry.ReversalOfEntryID),
		nullString(entry.ReversedByEntryID),
		formatTime(entry.CreatedAt),
		entry.CreatedBy,
		formatTime(entry.LastUpdatedAt),
		entry.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to save journal entry %s (%s)", entry.EntryID, entry.EntryNumber)
	}
	for _, l := range entry.Lines {
		_, err := s.q.ExecContext(ctx,
			`INSERT INTO journal_lines (`+lineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			l.LineID,
			l.EntryID,
			l.AccountID,
			l.LineNumber,
			l.Description,
			l.Debit,
			l.Credit,
			formatTime(l.CreatedAt),
			l.CreatedBy,
			formatTime(l.LastUpdatedAt),
			l.LastUpdatedBy,
		)
		if err != nil {
			return mapError(err, "failed to save line %d of journal entry %s", l.LineNumber, entry.EntryID)
		}
	}
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	query := `
		UPDATE journal_entries
		SET entry_number = ?, entry_date = ?, description = ?, fiscal_year_id = ?, total_debit = ?,
		    total_credit = ?, status = ?, posted_at = ?, posted_by = ?, approved_at = ?,
		    approved_by = ?, reversal_of_entry_id = ?, reversed_by_entry_id = ?,
		    last_updated_at = ?, last_updated_by = ?
		WHERE entry_id = ?;
	`
	res, err := s.q.ExecContext(ctx, query,
		entry.EntryNumber,
		formatDate(entry.EntryDate),
		entry.Description,
		entry.FiscalYearID,
		entry.TotalDebit,
		entry.TotalCredit,
		string(entry.Status),
		nullTime(entry.PostedAt),
		nullString(entry.PostedBy),
		nullTime(entry.ApprovedAt),
		nullString(entry.ApprovedBy),
		nullString(entry.ReversalOfEntryID),
		nullString(entry.ReversedByEntryID),
		formatTime(entry.LastUpdatedAt),
		entry.LastUpdatedBy,
		entry.EntryID,
	)
	if err != nil {
		return mapError(err, "failed to update journal entry %s", entry.EntryID)
	}
	return expectOne(res, "journal entry "+entry.EntryID)
}

// DeleteEntry removes an entry; its lines go with it through ON DELETE CASCADE.
func (s *Store) DeleteEntry(ctx context.Context, entryID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM journal_entries WHERE entry_id = ?;`, entryID)
	if err != nil {
		return mapError(err, "failed to delete journal entry %s", entryID)
	}
	return expectOne(res, "journal entry "+entryID)
}
