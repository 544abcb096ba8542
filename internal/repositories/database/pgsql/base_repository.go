// Package pgsql implements the engine Store on PostgreSQL through pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db querier
}

// Store groups the repositories over one pool or one transaction.
type Store struct {
	pool *pgxpool.Pool
	inTx bool
	*PgxAccountRepository
	*PgxFiscalYearRepository
	*PgxJournalRepository
	*PgxReportingRepository
	*PgxAuditRepository
}

var _ portsrepo.Store = (*Store)(nil)

// NewStore creates a Store over the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return newStore(pool, pool, false)
}

func newStore(pool *pgxpool.Pool, db querier, inTx bool) *Store {
	base := BaseRepository{db: db}
	return &Store{
		pool:                    pool,
		inTx:                    inTx,
		PgxAccountRepository:    &PgxAccountRepository{BaseRepository: base},
		PgxFiscalYearRepository: &PgxFiscalYearRepository{BaseRepository: base},
		PgxJournalRepository:    &PgxJournalRepository{BaseRepository: base},
		PgxReportingRepository:  &PgxReportingRepository{BaseRepository: base},
		PgxAuditRepository:      &PgxAuditRepository{BaseRepository: base},
	}
}

// RunInTx executes fn in a database transaction. A Store already bound to a
// transaction runs fn in that same transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(tx portsrepo.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			middleware.GetLoggerFromCtx(ctx).Warn("Rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(newStore(s.pool, tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
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
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, msg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503": // unique_violation, foreign_key_violation
			return fmt.Errorf("%w: %s (%s)", apperrors.ErrConflict, msg, pgErr.ConstraintName)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s: %s", apperrors.ErrConflict, msg, pgErr.Message)
		case "23514": // check_violation
			return fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, msg, pgErr.ConstraintName)
		}
	}
	if apperrors.Kind(err) != nil {
		return err
	}
	return apperrors.NewStorageError(msg, err)
}

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

// arg registers a parameter and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) where(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// likePattern escapes s for a substring ILIKE match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
