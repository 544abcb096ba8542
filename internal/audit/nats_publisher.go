// Package audit fans committed audit records out to NATS JetStream.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding audit events.
	StreamName = "BOOKKEEPING_AUDIT"
	// SubjectPrefix prefixes every audit subject: bookkeeping.audit.{table}.{action}
	SubjectPrefix = "bookkeeping.audit"
)

// streamPublisher is the part of jetstream.JetStream the publisher needs.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSPublisher publishes audit records after their transaction committed.
type NATSPublisher struct {
	js      streamPublisher
	timeout time.Duration
}

var _ portsrepo.AuditPublisher = (*NATSPublisher)(nil)

// NewNATSPublisher wraps a JetStream handle.
func NewNATSPublisher(js streamPublisher) *NATSPublisher {
	return &NATSPublisher{js: js, timeout: 5 * time.Second}
}

// Subject returns the subject a record is published on.
func Subject(record domain.AuditRecord) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, record.TableName, strings.ToLower(string(record.Action)))
}

// PublishAudit sends each record. Failures are logged and never reach the caller;
// the audit log in the store stays the record of truth.
func (p *NATSPublisher) PublishAudit(ctx context.Context, records []domain.AuditRecord) {
	logger := middleware.GetLoggerFromCtx(ctx)
	for _, record := range records {
		if err := p.publish(ctx, record); err != nil {
			logger.Warn("Audit publish failed",
				slog.String("audit_id", record.AuditID),
				slog.String("action", string(record.Action)),
				slog.String("error", err.Error()))
		}
	}
}

func (p *NATSPublisher) publish(ctx context.Context, record domain.AuditRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	_, err = p.js.Publish(ctx, Subject(record), data, jetstream.WithMsgID(record.AuditID))
	return err
}

// EnsureStream creates or updates the audit stream.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    30 * 24 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create audit stream: %w", err)
	}
	return nil
}

// Connect dials url, ensures the audit stream and returns a publisher with its close func.
func Connect(ctx context.Context, url string) (*NATSPublisher, func(), error) {
	nc, err := nats.Connect(url, nats.Name("bookkeeping-engine"))
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream init: %w", err)
	}
	if err := EnsureStream(ctx, js); err != nil {
		nc.Close()
		return nil, nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Audit stream ready", slog.String("stream", StreamName))
	return NewNATSPublisher(js), func() { _ = nc.Drain() }, nil
}
