// Package service contains the account guard and the stock ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/shopfloor/internal/audit"
	pkgcrypto "github.com/and161185/shopfloor/internal/crypto"
	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/lockout"
	"github.com/and161185/shopfloor/internal/metrics"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/and161185/shopfloor/internal/repository"
	"github.com/and161185/shopfloor/internal/token"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// AuthService defines authentication and account operations.
type AuthService interface {
	// Authenticate checks a username/password pair under the lockout policy.
	Authenticate(ctx context.Context, username, password string) (*model.Account, error)
	// Register validates and stores a new account.
	Register(ctx context.Context, reg model.Registration) (*model.Account, error)
	// ChangePassword re-authenticates with the old password and stores a fresh hash.
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	// Login authenticates and issues an access token.
	Login(ctx context.Context, username, password string) (model.Tokens, *model.Account, error)
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	tokens   *token.Issuer
	policy   lockout.Policy
	audit    *audit.Recorder
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
	// burn spends one password verification on a throwaway hash so rejected
	// attempts cost as much as a real check.
	burn func(password []byte)
}

// NewAuthService constructs AuthService with required dependencies.
// rec and log may be nil.
func NewAuthService(users repository.UserRepository, tokens *token.Issuer, policy lockout.Policy, rec *audit.Recorder, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{
		users:    users,
		tokens:   tokens,
		policy:   policy,
		audit:    rec,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
		burn:     pkgcrypto.BurnVerify,
	}
}

// Authenticate returns the account when the password matches and the account is neither locked nor inactive.
//
// Counter updates go through atomic store primitives, so parallel attempts on one
// account are all counted. Errors:
// ErrInvalidInput, ErrUnknownUser, ErrAccountLocked, ErrInvalidCredentials, ErrStore.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, username, password string) (*model.Account, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		s.audit.Record(ctx, username, model.AuditLoginFailed, false, "empty username or password")
		metrics.ObserveLogin(metrics.LoginInvalid)
		return nil, fmt.Errorf("%w: username and password are required", errs.ErrInvalidInput)
	}
	name := SanitizeUsername(username)
	if name == "" {
		s.audit.Record(ctx, username, model.AuditLoginFailed, false, "username has no valid characters")
		metrics.ObserveLogin(metrics.LoginInvalid)
		return nil, fmt.Errorf("%w: username has no valid characters", errs.ErrInvalidInput)
	}

	a, err := s.users.GetByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.burn([]byte(password))
			s.audit.Record(ctx, name, model.AuditLoginFailed, false, "username not found")
			metrics.ObserveLogin(metrics.LoginUnknown)
			return nil, errs.ErrUnknownUser
		}
		return nil, s.storeErr("get user", name, err)
	}

	now := s.now().UTC()
	state, _, until := s.policy.Evaluate(a.FailedAttempts, a.LockedUntil, now)
	if state == lockout.Locked {
		s.burn([]byte(password))
		return nil, s.blocked(ctx, name)
	}
	if a.LockedUntil != nil && until == nil {
		// lock window elapsed: start this attempt from a clean counter
		if err := s.users.ClearExpiredLock(ctx, a.ID, now); err != nil {
			return nil, s.storeErr("clear expired lock", name, err)
		}
	}

	if !a.Active {
		s.audit.Record(ctx, name, model.AuditLoginFailed, false, "account inactive")
		metrics.ObserveLogin(metrics.LoginFailed)
		return nil, errs.ErrInvalidCredentials
	}

	if !pkgcrypto.VerifyPassword([]byte(password), a.PwdSalt, a.PwdHash) {
		limit, lockUntil := s.policy.Limits(now)
		failed, until, err := s.users.RecordFailure(ctx, a.ID, limit, lockUntil)
		if err != nil {
			return nil, s.storeErr("record failure", name, err)
		}
		detail := fmt.Sprintf("wrong password (%d consecutive)", failed)
		if until != nil {
			detail = "wrong password; account locked"
			if failed == limit {
				metrics.ObserveLockout()
				s.log.Warn("account locked", zap.String("username", name), zap.Int("failed_attempts", failed))
			}
		}
		s.audit.Record(ctx, name, model.AuditLoginFailed, false, detail)
		metrics.ObserveLogin(metrics.LoginFailed)
		return nil, errs.ErrInvalidCredentials
	}

	ok, err := s.users.RecordSuccess(ctx, a.ID, now)
	if err != nil {
		return nil, s.storeErr("record success", name, err)
	}
	if !ok {
		// a concurrent failure locked the account after it was read
		return nil, s.blocked(ctx, name)
	}
	a.FailedAttempts, a.LockedUntil, a.LastLogin = 0, nil, &now

	s.audit.Record(ctx, name, model.AuditLoginSuccess, true, "")
	s.audit.Record(ctx, name, model.AuditUserActivity, true, "logged in as "+string(a.Role))
	metrics.ObserveLogin(metrics.LoginSuccess)
	return a, nil
}

// Register validates reg in a fixed order and persists a new account.
// Validation runs entirely before the store is touched.
func (s *AuthServiceImpl) Register(ctx context.Context, reg model.Registration) (*model.Account, error) {
	username := strings.TrimSpace(reg.Username)
	if err := validateRegistration(s.validate, reg); err != nil {
		s.audit.Record(ctx, username, model.AuditRegisterFailed, false, err.Error())
		return nil, err
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	hash, salt, err := pkgcrypto.NewHash(reg.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &model.Account{
		ID:         uid,
		Username:   username,
		PwdHash:    hash,
		PwdSalt:    salt,
		Role:       model.Role(strings.TrimSpace(reg.Role)),
		FullName:   strings.TrimSpace(reg.FullName),
		Email:      strings.TrimSpace(reg.Email),
		Phone:      strings.TrimSpace(reg.Phone),
		Department: strings.TrimSpace(reg.Department),
		Active:     true,
		EmployeeID: strings.TrimSpace(reg.EmployeeID),
		HireDate:   now.Truncate(24 * time.Hour),
	}
	if reg.Active != nil {
		a.Active = *reg.Active
	}
	if reg.HireDate != nil {
		a.HireDate = reg.HireDate.UTC()
	}
	if a.EmployeeID == "" {
		a.EmployeeID = newEmployeeID(uid)
	}

	if err := s.users.Create(ctx, a); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			s.audit.Record(ctx, username, model.AuditRegisterFailed, false, "username already exists")
			return nil, errs.ErrDuplicateUsername
		}
		s.audit.Record(ctx, username, model.AuditRegisterFailed, false, "store error")
		return nil, s.storeErr("create user", username, err)
	}

	s.audit.Record(ctx, username, model.AuditRegisterSuccess, true, "role "+string(a.Role))
	s.log.Info("account registered", zap.String("username", username), zap.String("role", string(a.Role)))
	return a, nil
}

// ChangePassword replaces the password after authenticating with the old one.
// Failed attempts here count toward lockout like any other login.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalidInput, MinPasswordLen)
	}
	a, err := s.Authenticate(ctx, username, oldPassword)
	if err != nil {
		return err
	}
	hash, salt, err := pkgcrypto.NewHash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, a.ID, hash, salt); err != nil {
		return s.storeErr("update password", a.Username, err)
	}
	s.audit.Record(ctx, a.Username, model.AuditPasswordChanged, true, "")
	return nil
}

// Login authenticates and issues an HS256 access token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Tokens, *model.Account, error) {
	a, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	if s.tokens == nil {
		return model.Tokens{}, nil, errors.New("token issuer not configured")
	}
	tok, err := s.tokens.Issue(a)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	return tok, a, nil
}

func (s *AuthServiceImpl) blocked(ctx context.Context, name string) error {
	s.audit.Record(ctx, name, model.AuditLoginBlocked, false, "account locked")
	metrics.ObserveLogin(metrics.LoginLocked)
	return errs.ErrAccountLocked
}

func (s *AuthServiceImpl) storeErr(op, username string, err error) error {
	s.log.Error("store", zap.String("op", op), zap.String("username", username), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", errs.ErrStore, op, err)
}

// newEmployeeID derives "EMP-" plus eight upper-case hex digits from id.
func newEmployeeID(id uuid.UUID) string {
	return "EMP-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
