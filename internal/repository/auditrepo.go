package repository

import (
	"context"

	"github.com/and161185/shopfloor/internal/model"
)

// AuditRepository persists audit events in an append-only log.
type AuditRepository interface {
	// Append stores one event.
	Append(ctx context.Context, ev model.AuditEvent) error
	// ListByUsername returns a user's events, newest first. Empty username lists everything.
	ListByUsername(ctx context.Context, username string, limit int) ([]model.AuditEvent, error)
}
