package postgres

import (
	"context"

	"github.com/and161185/shopfloor/internal/model"
)

// AuditRepo implements AuditRepository using PostgreSQL.
type AuditRepo struct{ db *DB }

// NewAuditRepo constructs an audit repository.
func NewAuditRepo(db *DB) *AuditRepo { return &AuditRepo{db: db} }

// Append inserts one audit event.
func (r *AuditRepo) Append(ctx context.Context, ev model.AuditEvent) error {
	const q = `
INSERT INTO audit_events (id, username, kind, success, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, ev.ID, ev.Username, string(ev.Kind), ev.Success, ev.Detail, ev.CreatedAt)
	return err
}

// ListByUsername returns events newest first; an empty username matches all.
func (r *AuditRepo) ListByUsername(ctx context.Context, username string, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, username, kind, success, detail, created_at
FROM audit_events
WHERE ($1::text = '' OR username = $1)
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditEvent
	for rows.Next() {
		var (
			ev   model.AuditEvent
			kind string
		)
		if err = rows.Scan(&ev.ID, &ev.Username, &kind, &ev.Success, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Kind = model.AuditKind(kind)
		out = append(out, ev)
	}
	return out, rows.Err()
}
