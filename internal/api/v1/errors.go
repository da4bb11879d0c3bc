package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/server/middleware"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

// mapError translates a classified domain error into the matching huma
// status error. Unclassified errors (including backend/identity transport
// failures) surface as 500.
func mapError(err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return huma.Error400BadRequest(msg)
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized(msg)
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden(msg)
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(msg)
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(msg)
	case errors.Is(err, domain.ErrPreconditionFailed):
		return huma.NewError(http.StatusPreconditionFailed, msg)
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}

// requestState pulls the per-request bundle the middleware chain stored.
type requestState struct {
	Tenant *tenant.Tenant
	Actor  domain.Actor
}

func stateFromContext(ctx context.Context) (*requestState, error) {
	t, okTenant := middleware.TenantFromContext(ctx)
	actor, okActor := middleware.ActorFromContext(ctx)
	if !okTenant || !okActor {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	return &requestState{Tenant: t, Actor: actor}, nil
}
