// Package token issues and verifies HS256 access tokens carrying the caller's identity and role.
package token

import (
	"errors"
	"time"

	"github.com/and161185/shopfloor/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Verification errors.
var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired or not valid yet")
)

// Claims are the application claims embedded in an access token.
type Claims struct {
	Username string `json:"usr"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the verified identity behind a request.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     model.Role
}

// Issuer signs and verifies tokens with one symmetric key.
type Issuer struct {
	key    []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. ttl <= 0 falls back to 15 minutes.
func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Issuer{key: key, ttl: ttl, leeway: 30 * time.Second, now: time.Now}
}

// Issue creates a signed HS256 JWT for the account.
func (i *Issuer) Issue(a *model.Account) (model.Tokens, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Username: a.Username,
		Role:     string(a.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.key)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// Verify parses tok, checks signature and time claims, and returns the principal.
func (i *Issuer) Verify(tok string) (Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalid
	}

	v := jwt.NewValidator(jwt.WithLeeway(i.leeway), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err := v.Validate(&claims); err != nil {
		return Principal{}, ErrExpired
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalid
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return Principal{}, ErrInvalid
	}
	return Principal{UserID: id, Username: claims.Username, Role: role}, nil
}
