// Package audit records security and business events into one or more append-only sinks.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/shopfloor/internal/model"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// Sink stores audit events. repository.AuditRepository satisfies it.
type Sink interface {
	Append(ctx context.Context, ev model.AuditEvent) error
}

// Recorder stamps events and hands them to a sink. Sink failures are logged and
// never returned, so an audit outage cannot fail a login or a movement.
type Recorder struct {
	sink Sink
	log  *zap.Logger
	now  func() time.Time
}

// NewRecorder builds a Recorder. A nil sink discards events; a nil logger is a no-op logger.
func NewRecorder(sink Sink, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{sink: sink, log: log, now: time.Now}
}

// Record appends one event.
func (r *Recorder) Record(ctx context.Context, username string, kind model.AuditKind, success bool, detail string) {
	if r == nil || r.sink == nil {
		return
	}
	id, err := uuid.NewV7()
	if err != nil {
		r.log.Warn("audit id", zap.Error(err))
	}
	ev := model.AuditEvent{
		ID:        id,
		Username:  username,
		Kind:      kind,
		Success:   success,
		Detail:    detail,
		CreatedAt: r.now().UTC(),
	}
	if err := r.sink.Append(ctx, ev); err != nil {
		r.log.Warn("audit append failed",
			zap.String("kind", string(kind)),
			zap.String("username", username),
			zap.Bool("success", success),
			zap.String("detail", detail),
			zap.Error(err),
		)
	}
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

// Append writes ev to all sinks, continuing past failures.
func (m Multi) Append(ctx context.Context, ev model.AuditEvent) error {
	var all []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, ev); err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}
