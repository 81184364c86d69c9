package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, pwd_hash, pwd_salt, role, full_name, email, phone, department,
active, employee_id, hire_date, failed_attempts, locked_until, last_login, created_at, updated_at`

// Create inserts a new account row.
func (r *UserRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO users (id, username, pwd_hash, pwd_salt, role, full_name, email, phone, department, active, employee_id, hire_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q,
		a.ID, a.Username, a.PwdHash, a.PwdSalt, string(a.Role), a.FullName, a.Email, a.Phone,
		a.Department, a.Active, a.EmployeeID, a.HireDate,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByUsername selects an account by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	var (
		a    model.Account
		role string
	)
	err := r.db.Pool.QueryRow(ctx, q, username).Scan(
		&a.ID, &a.Username, &a.PwdHash, &a.PwdSalt, &role, &a.FullName, &a.Email, &a.Phone,
		&a.Department, &a.Active, &a.EmployeeID, &a.HireDate, &a.FailedAttempts, &a.LockedUntil,
		&a.LastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	a.Role = model.Role(role)
	return &a, nil
}

// RecordFailure increments failed_attempts in a single UPDATE so concurrent failures all count.
// SET expressions see the pre-update row, hence failed_attempts + 1 in the CASE.
func (r *UserRepo) RecordFailure(ctx context.Context, id uuid.UUID, maxAttempts int, lockUntil time.Time) (int, *time.Time, error) {
	const q = `
UPDATE users SET
  failed_attempts = failed_attempts + 1,
  locked_until = CASE WHEN locked_until IS NULL AND failed_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
  updated_at = now()
WHERE id = $1
RETURNING failed_attempts, locked_until`
	var (
		failed int
		until  *time.Time
	)
	err := r.db.Pool.QueryRow(ctx, q, id, maxAttempts, lockUntil).Scan(&failed, &until)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, errs.ErrNotFound
	}
	return failed, until, err
}

// RecordSuccess resets the counter and stamps last_login unless an active lock is present.
func (r *UserRepo) RecordSuccess(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	const q = `
UPDATE users SET failed_attempts=0, locked_until=NULL, last_login=$2, updated_at=now()
WHERE id=$1 AND (locked_until IS NULL OR locked_until <= $2)`
	tag, err := r.db.Pool.Exec(ctx, q, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ClearExpiredLock resets the counter when the stored lock has ended.
func (r *UserRepo) ClearExpiredLock(ctx context.Context, id uuid.UUID, now time.Time) error {
	const q = `
UPDATE users SET failed_attempts=0, locked_until=NULL, updated_at=now()
WHERE id=$1 AND locked_until IS NOT NULL AND locked_until <= $2`
	_, err := r.db.Pool.Exec(ctx, q, id, now)
	return err
}

// UpdatePassword replaces the password hash and salt.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, pwd_salt=$3, updated_at=now() WHERE id=$1`
	return r.execOne(ctx, q, id, hash, salt)
}

func (r *UserRepo) execOne(ctx context.Context, q string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
