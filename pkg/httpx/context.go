package httpx

import (
	"context"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject"
	CtxKeyScopes  ctxKey = "scopes"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, c.Scopes)
	return ctx
}

// SubjectFromContext returns the authenticated operator, if any.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(CtxKeySubject).(string)
	return s
}

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}
