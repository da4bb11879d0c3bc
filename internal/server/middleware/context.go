package middleware

import (
	"context"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/auth"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

type contextKey string

const (
	ContextKeyClaims contextKey = "claims"
	ContextKeyTenant contextKey = "tenant"
	ContextKeyActor  contextKey = "actor"
)

func ClaimsFromContext(ctx context.Context) (*auth.ClaimsContext, bool) {
	v, ok := ctx.Value(ContextKeyClaims).(*auth.ClaimsContext)
	return v, ok
}

func TenantFromContext(ctx context.Context) (*tenant.Tenant, bool) {
	v, ok := ctx.Value(ContextKeyTenant).(*tenant.Tenant)
	return v, ok
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	v, ok := ctx.Value(ContextKeyActor).(domain.Actor)
	return v, ok
}

// WithClaims, WithTenant and WithActor mirror what the middleware chain
// stores; tests use them to build request contexts directly.
func WithClaims(ctx context.Context, claims *auth.ClaimsContext) context.Context {
	return context.WithValue(ctx, ContextKeyClaims, claims)
}

func WithTenant(ctx context.Context, t *tenant.Tenant) context.Context {
	return context.WithValue(ctx, ContextKeyTenant, t)
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}
