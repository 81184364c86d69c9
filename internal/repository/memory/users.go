// Package memory provides mutex-guarded in-memory implementations of the repository interfaces.
// It backs the "memory" store kind and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Users is an in-memory UserRepository keyed by username.
type Users struct {
	mu     sync.RWMutex
	byName map[string]*model.Account
	now    func() time.Time
}

// NewUsers returns an empty user store.
func NewUsers() *Users {
	return &Users{byName: make(map[string]*model.Account), now: time.Now}
}

// Create stores a copy of a.
func (u *Users) Create(_ context.Context, a *model.Account) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byName[a.Username]; ok {
		return errs.ErrAlreadyExists
	}
	ts := u.now().UTC()
	a.CreatedAt, a.UpdatedAt = ts, ts
	cp := cloneAccount(a)
	u.byName[a.Username] = cp
	return nil
}

// GetByUsername returns a copy of the stored account.
func (u *Users) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	a, ok := u.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneAccount(a), nil
}

// RecordFailure bumps the counter under the store lock.
func (u *Users) RecordFailure(_ context.Context, id uuid.UUID, maxAttempts int, lockUntil time.Time) (int, *time.Time, error) {
	var (
		failed int
		until  *time.Time
	)
	err := u.update(id, func(a *model.Account) {
		a.FailedAttempts++
		if a.LockedUntil == nil && a.FailedAttempts >= maxAttempts {
			a.LockedUntil = cloneTime(&lockUntil)
		}
		failed, until = a.FailedAttempts, cloneTime(a.LockedUntil)
	})
	return failed, until, err
}

// RecordSuccess clears the counter and stamps the login unless a lock active at `at` is set.
func (u *Users) RecordSuccess(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	ok := false
	err := u.update(id, func(a *model.Account) {
		if a.LockedUntil != nil && at.Before(*a.LockedUntil) {
			return
		}
		a.FailedAttempts, a.LockedUntil = 0, nil
		a.LastLogin = &at
		ok = true
	})
	return ok, err
}

// ClearExpiredLock drops a lock that ended at or before now.
func (u *Users) ClearExpiredLock(_ context.Context, id uuid.UUID, now time.Time) error {
	return u.update(id, func(a *model.Account) {
		if a.LockedUntil != nil && !now.Before(*a.LockedUntil) {
			a.FailedAttempts, a.LockedUntil = 0, nil
		}
	})
}

// UpdatePassword replaces hash and salt.
func (u *Users) UpdatePassword(_ context.Context, id uuid.UUID, hash, salt []byte) error {
	return u.update(id, func(a *model.Account) {
		a.PwdHash = append([]byte(nil), hash...)
		a.PwdSalt = append([]byte(nil), salt...)
	})
}

func (u *Users) update(id uuid.UUID, fn func(a *model.Account)) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, a := range u.byName {
		if a.ID == id {
			fn(a)
			a.UpdatedAt = u.now().UTC()
			return nil
		}
	}
	return errs.ErrNotFound
}

func cloneAccount(a *model.Account) *model.Account {
	cp := *a
	cp.PwdHash = append([]byte(nil), a.PwdHash...)
	cp.PwdSalt = append([]byte(nil), a.PwdSalt...)
	cp.LockedUntil = cloneTime(a.LockedUntil)
	cp.LastLogin = cloneTime(a.LastLogin)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
