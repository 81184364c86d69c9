package grpcserver

import (
	"context"

	"github.com/and161185/shopfloor/internal/token"
)

type ctxKey string

const principalKey ctxKey = "sf.principal"

// WithPrincipal stores the authenticated caller in context.
func WithPrincipal(ctx context.Context, p token.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx fetches the caller from context.
func PrincipalFromCtx(ctx context.Context) (token.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return token.Principal{}, false
	}
	p, ok := v.(token.Principal)
	return p, ok
}
