// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/shopfloor/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to accounts and their lockout state.
type UserRepository interface {
	// Create inserts a new account. Returns errs.ErrAlreadyExists on duplicate username.
	Create(ctx context.Context, a *model.Account) error
	// GetByUsername loads an account by exact username. Returns errs.ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	// RecordFailure increments the failed-attempt counter in one atomic step and sets
	// the lock to lockUntil when the new count reaches maxAttempts and no lock is set.
	// It returns the stored counter and lock after the update.
	RecordFailure(ctx context.Context, id uuid.UUID, maxAttempts int, lockUntil time.Time) (int, *time.Time, error)
	// RecordSuccess zeroes the counter and stamps the login at `at`, unless a lock
	// still active at `at` is present; then it changes nothing and returns false.
	RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// ClearExpiredLock resets the counter if the stored lock ended at or before now.
	// A lock set again by a concurrent attempt is left alone.
	ClearExpiredLock(ctx context.Context, id uuid.UUID, now time.Time) error
	// UpdatePassword replaces the stored hash and salt.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error
}
