// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Account is a user record. The password is never stored in plaintext.
type Account struct {
	ID             uuid.UUID // PK
	Username       string    // unique, case-sensitive
	PwdHash        []byte    // Argon2id(password, PwdSalt)
	PwdSalt        []byte    // per-account salt
	Role           Role
	FullName       string
	Email          string
	Phone          string
	Department     string
	Active         bool
	EmployeeID     string
	HireDate       time.Time
	FailedAttempts int        // consecutive failures since the last success or unlock
	LockedUntil    *time.Time // nil when not locked
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Registration is a candidate account as entered by an administrator.
type Registration struct {
	Username   string
	Password   string
	Role       string
	FullName   string
	Email      string
	Phone      string
	Department string
	EmployeeID string     // generated when empty
	HireDate   *time.Time // today when nil
	Active     *bool      // true when nil
}

// AuditKind names an audit event.
type AuditKind string

// Audit event kinds.
const (
	AuditLoginSuccess    AuditKind = "LOGIN_SUCCESS"
	AuditLoginFailed     AuditKind = "LOGIN_FAILED"
	AuditLoginBlocked    AuditKind = "LOGIN_BLOCKED"
	AuditUserActivity    AuditKind = "USER_ACTIVITY"
	AuditRegisterSuccess AuditKind = "REGISTER_SUCCESS"
	AuditRegisterFailed  AuditKind = "REGISTER_FAILED"
	AuditPasswordChanged AuditKind = "PASSWORD_CHANGED"
	AuditStockMovement   AuditKind = "STOCK_MOVEMENT"
)

// AuditEvent is an append-only record of a security or business relevant action.
type AuditEvent struct {
	ID        uuid.UUID
	Username  string
	Kind      AuditKind
	Success   bool
	Detail    string
	CreatedAt time.Time
}
