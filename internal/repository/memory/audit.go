package memory

import (
	"context"
	"sync"

	"github.com/and161185/shopfloor/internal/model"
)

// Audit is an append-only in-memory AuditRepository.
type Audit struct {
	mu     sync.RWMutex
	events []model.AuditEvent
}

// NewAudit returns an empty audit log.
func NewAudit() *Audit { return &Audit{} }

// Append stores ev.
func (a *Audit) Append(_ context.Context, ev model.AuditEvent) error {
	a.mu.Lock()
	a.events = append(a.events, ev)
	a.mu.Unlock()
	return nil
}

// ListByUsername returns matching events newest first; empty username matches all.
func (a *Audit) ListByUsername(_ context.Context, username string, limit int) ([]model.AuditEvent, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var out []model.AuditEvent
	for i := len(a.events) - 1; i >= 0 && len(out) < limit; i-- {
		if username == "" || a.events[i].Username == username {
			out = append(out, a.events[i])
		}
	}
	return out, nil
}

// Events returns a copy of everything appended, oldest first.
func (a *Audit) Events() []model.AuditEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.AuditEvent(nil), a.events...)
}
