package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/mapping"
	"github.com/SscSPs/bookkeeping_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxJournalRepository struct {
	BaseRepository
}

const entryColumns = `entry_id, entry_number, entry_date, description, fiscal_year_id, total_debit, total_credit,
	status, posted_at, posted_by, approved_at, approved_by, reversal_of_entry_id, reversed_by_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, line_number, description, debit, credit,
	created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Description,
		&m.FiscalYearID,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Status,
		&m.PostedAt,
		&m.PostedBy,
		&m.ApprovedAt,
		&m.ApprovedBy,
		&m.ReversalOfEntryID,
		&m.ReversedByEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return mapping.ToDomainJournalEntry(m), nil
}

// FindEntryByID retrieves a journal entry header by its ID.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.db.QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, mapError(err, "journal entry %s", entryID)
	}
	return &entry, nil
}

// FindEntryByIDForUpdate retrieves the entry header and locks its row until the transaction ends.
func (r *PgxJournalRepository) FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	entry, err := scanEntry(r.db.QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, mapError(err, "journal entry %s", entryID)
	}
	return &entry, nil
}

// FindLinesByEntryID retrieves the lines of an entry ordered by line number.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY line_number;`
	rows, err := r.db.Query(ctx, query, entryID)
	if err != nil {
		return nil, mapError(err, "failed to query lines of journal entry %s", entryID)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountID,
			&m.LineNumber,
			&m.Description,
			&m.Debit,
			&m.Credit,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, mapError(err, "failed to scan journal line row")
		}
		lines = append(lines, mapping.ToDomainJournalLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating journal line rows")
	}
	return lines, nil
}

// ListEntries retrieves one keyset page of entry headers.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	var w whereBuilder
	if filter.Status != "" {
		w.where("status = " + w.arg(string(filter.Status)))
	}
	if filter.FiscalYearID != "" {
		w.where("fiscal_year_id = " + w.arg(filter.FiscalYearID))
	}
	if filter.DateFrom != nil {
		w.where("entry_date >= " + w.arg(domain.DateOnly(*filter.DateFrom)))
	}
	if filter.DateTo != nil {
		w.where("entry_date <= " + w.arg(domain.DateOnly(*filter.DateTo)))
	}
	if filter.EntryNumber != "" {
		w.where("entry_number LIKE " + w.arg(likePattern(filter.EntryNumber)))
	}
	if filter.CreatedBy != "" {
		w.where("created_by = " + w.arg(filter.CreatedBy))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		w.where(fmt.Sprintf("(entry_date, created_at, entry_id) < (%s, %s, %s)",
			w.arg(domain.DateOnly(cursor.EntryDate)), w.arg(cursor.CreatedAt), w.arg(cursor.EntryID)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries` + w.String() +
		` ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT ` + w.arg(limit+1) + `;`
	rows, err := r.db.Query(ctx, query, w.args...)
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

// LastEntryNumber returns the highest entry number of a fiscal year.
func (r *PgxJournalRepository) LastEntryNumber(ctx context.Context, fiscalYearID string) (string, error) {
	var last string
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(entry_number), '') FROM journal_entries WHERE fiscal_year_id = $1;`, fiscalYearID).Scan(&last)
	if err != nil {
		return "", mapError(err, "failed to read last entry number")
	}
	return last, nil
}

// CountEntries counts the entries of a fiscal year in a status.
func (r *PgxJournalRepository) CountEntries(ctx context.Context, fiscalYearID string, status domain.EntryStatus) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE fiscal_year_id = $1 AND status = $2;`, fiscalYearID, string(status)).Scan(&count)
	if err != nil {
		return 0, mapError(err, "failed to count journal entries")
	}
	return count, nil
}

// SaveEntry inserts the header and every line in one batch, which the server runs atomically.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`,
		m.EntryID,
		m.EntryNumber,
		m.EntryDate,
		m.Description,
		m.FiscalYearID,
		m.TotalDebit,
		m.TotalCredit,
		m.Status,
		m.PostedAt,
		m.PostedBy,
		m.ApprovedAt,
		m.ApprovedBy,
		m.ReversalOfEntryID,
		m.ReversedByEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	lineQuery := `INSERT INTO journal_lines (` + lineColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	for _, line := range entry.Lines {
		l := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			l.LineID,
			l.EntryID,
			l.AccountID,
			l.LineNumber,
			l.Description,
			l.Debit,
			l.Credit,
			l.CreatedAt,
			l.CreatedBy,
			l.LastUpdatedAt,
			l.LastUpdatedBy,
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "failed to save journal entry %s (%s)", m.EntryID, m.EntryNumber)
	}
	return nil
}

// UpdateEntry overwrites the header columns of an entry.
func (r *PgxJournalRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		UPDATE journal_entries
		SET entry_number = $2, entry_date = $3, description = $4, fiscal_year_id = $5, total_debit = $6,
		    total_credit = $7, status = $8, posted_at = $9, posted_by = $10, approved_at = $11,
		    approved_by = $12, reversal_of_entry_id = $13, reversed_by_entry_id = $14,
		    last_updated_at = $15, last_updated_by = $16
		WHERE entry_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		m.EntryID,
		m.EntryNumber,
		m.EntryDate,
		m.Description,
		m.FiscalYearID,
		m.TotalDebit,
		m.TotalCredit,
		m.Status,
		m.PostedAt,
		m.PostedBy,
		m.ApprovedAt,
		m.ApprovedBy,
		m.ReversalOfEntryID,
		m.ReversedByEntryID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to update journal entry %s", m.EntryID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, m.EntryID)
	}
	return nil
}

// DeleteEntry removes an entry; its lines go with it through ON DELETE CASCADE.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, entryID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return mapError(err, "failed to delete journal entry %s", entryID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}
