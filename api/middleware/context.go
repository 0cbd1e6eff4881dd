package middleware

import (
	"context"

	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// PrincipalFromContext returns the authenticated caller, or false when the
// request never passed the Auth middleware.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	if ctx == nil {
		return auth.Principal{}, false
	}
	if p, ok := ctx.Value(ctxPrincipal).(auth.Principal); ok {
		return p, true
	}
	return auth.Principal{}, false
}

// WithPrincipal injects the caller identity into the context.
func WithPrincipal(ctx context.Context, principal auth.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, principal)
}
