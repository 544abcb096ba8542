package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/apperrors"
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/SscSPs/bookkeeping_engine/internal/platform/metrics"
	"github.com/google/uuid"
)

// maxConflictRetries bounds how often a unit of work is retried after a uniqueness conflict
// on a generated account code or entry number.
const maxConflictRetries = 3

// BaseService provides common functionality for all services
type BaseService struct {
	Metrics        *metrics.Metrics
	AuditPublisher portsrepo.AuditPublisher
	Clock          func() time.Time
}

// ServiceOption is a functional option shared by every service constructor
type ServiceOption func(*BaseService)

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *BaseService) {
		s.Metrics = m
	}
}

// WithAuditPublisher fans committed audit records out to p.
func WithAuditPublisher(p portsrepo.AuditPublisher) ServiceOption {
	return func(s *BaseService) {
		s.AuditPublisher = p
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func newBaseService(options []ServiceOption) BaseService {
	base := BaseService{Clock: time.Now}
	for _, option := range options {
		option(&base)
	}
	return base
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// fail logs err at a level matching its kind, counts it and returns it unchanged.
// Caller mistakes (validation, state, not found) are logged at warn, everything else at error.
func (s *BaseService) fail(ctx context.Context, operation string, err error, keyvals ...any) error {
	kind := apperrors.Kind(err)
	kindName := "unknown"
	if kind != nil {
		kindName = kind.Error()
	}
	s.Metrics.CountError(operation, kindName)

	switch kind {
	case apperrors.ErrValidation, apperrors.ErrState, apperrors.ErrNotFound:
		args := append([]any{slog.String("operation", operation), slog.String("error", err.Error())}, keyvals...)
		s.GetLogger(ctx).Warn("Operation rejected", args...)
	default:
		s.LogError(ctx, err, "Operation failed", append([]any{slog.String("operation", operation)}, keyvals...)...)
	}
	return err
}

// withConflictRetry runs fn again when it fails with apperrors.ErrConflict.
func (s *BaseService) withConflictRetry(ctx context.Context, operation string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		s.LogDebug(ctx, "Retrying after uniqueness conflict", slog.String("operation", operation), slog.Int("attempt", attempt))
	}
	return err
}

// auditTrail collects the audit records written during one unit of work so they can be
// published after the transaction commits.
type auditTrail struct {
	records []domain.AuditRecord
}

// record appends an audit record to the sink and remembers it.
func (t *auditTrail) record(ctx context.Context, sink portsrepo.AuditRepository, actor string, action domain.AuditAction, table, recordID string, before, after any, now time.Time) error {
	rec := domain.AuditRecord{
		AuditID:   uuid.NewString(),
		Actor:     actor,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		Timestamp: now,
	}
	var err error
	if rec.OldValues, err = snapshot(before); err != nil {
		return err
	}
	if rec.NewValues, err = snapshot(after); err != nil {
		return err
	}
	if err := sink.AppendAudit(ctx, rec); err != nil {
		return err
	}
	t.records = append(t.records, rec)
	return nil
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit snapshot: %w", err)
	}
	return b, nil
}

// publish hands the committed records to the audit publisher, if any.
func (s *BaseService) publish(ctx context.Context, trail *auditTrail) {
	if s.AuditPublisher == nil || trail == nil || len(trail.records) == 0 {
		return
	}
	s.AuditPublisher.PublishAudit(ctx, trail.records)
}
