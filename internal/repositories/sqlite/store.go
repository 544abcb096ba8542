// Package sqlite implements the engine Store on a single SQLite database file.
//
// Dates are stored as 'YYYY-MM-DD' text and timestamps as fixed width UTC text so that
// lexical ordering matches chronological ordering. Amounts are stored as decimal strings
// and summed in Go to avoid floating point arithmetic inside SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/mattn/go-sqlite3"
)

const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Store implements portsrepo.Store over database/sql.
type Store struct {
	db   *sql.DB
	q    execer
	inTx bool
}

var _ portsrepo.Store = (*Store)(nil)

// NewStore creates a Store over an open database whose schema is already migrated.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// RunInTx executes fn in a database transaction. A Store already bound to a
// transaction runs fn in that same transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(tx portsrepo.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "failed to begin transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			middleware.GetLoggerFromCtx(ctx).Warn("Rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(&Store{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(err, "failed to commit transaction")
	}
	return nil
}

// mapError translates driver errors into the engine's error kinds.
func mapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, msg)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrConflict, msg, sqliteErr.Error())
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, msg, sqliteErr.Error())
		}
		if sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %s: database is busy", apperrors.ErrConflict, msg)
		}
	}
	if apperrors.Kind(err) != nil {
		return err
	}
	return apperrors.NewStorageError(msg, err)
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, "failed to read affected rows")
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return nil
}

// whereBuilder accumulates AND-ed conditions with positional placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) where(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// inList returns "(?, ?, ...)" and the values as arguments.
func inList(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ") + ")", args
}

// likePattern escapes s for a substring LIKE ... ESCAPE '\' match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// auditColumns holds the scanned text form of domain.AuditFields.
type auditColumns struct {
	createdAt, createdBy, updatedAt, updatedBy string
}

func (a *auditColumns) dest() []any {
	return []any{&a.createdAt, &a.createdBy, &a.updatedAt, &a.updatedBy}
}

func (a auditColumns) toDomain() (domain.AuditFields, error) {
	created, err := parseTime(a.createdAt)
	if err != nil {
		return domain.AuditFields{}, err
	}
	updated, err := parseTime(a.updatedAt)
	if err != nil {
		return domain.AuditFields{}, err
	}
	return domain.AuditFields{CreatedAt: created, CreatedBy: a.createdBy, LastUpdatedAt: updated, LastUpdatedBy: a.updatedBy}, nil
}
