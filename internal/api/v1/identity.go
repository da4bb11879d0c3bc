package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/server/middleware"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

type ListMyGroupsOutput struct {
	Body []identity.Group
}

type ValidateGroupInput struct {
	GroupID string `path:"groupID" doc:"Identity-provider group ID"`
}

// RegisterUserIdentityRoutes wires the end-user identity surface: the
// caller's own groups and group-membership validation.
func RegisterUserIdentityRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-my-groups",
		Method:      http.MethodGet,
		Path:        "/groups",
		Summary:     "List the caller's groups",
		Tags:        []string{"Identity"},
	}, func(ctx context.Context, _ *struct{}) (*ListMyGroupsOutput, error) {
		_, adapter, err := tenantAdapter(ctx)
		if err != nil {
			return nil, err
		}
		claims, ok := middleware.ClaimsFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		groups, err := adapter.GetMyUserGroups(ctx, claims.Subject)
		if err != nil {
			return nil, mapError(err)
		}
		return &ListMyGroupsOutput{Body: groups}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-group-membership",
		Method:      http.MethodGet,
		Path:        "/groups/{groupID}/validate",
		Summary:     "Check the caller belongs to a group",
		Tags:        []string{"Identity"},
	}, func(ctx context.Context, input *ValidateGroupInput) (*EmptyOutput, error) {
		_, adapter, err := tenantAdapter(ctx)
		if err != nil {
			return nil, err
		}
		claims, ok := middleware.ClaimsFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		if err := identity.ValidateUserGroup(ctx, adapter, input.GroupID, claims.Subject); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})
}

// tenantAdapter pulls the tenant from the context and requires a configured
// identity adapter. Tenants without one cannot serve the identity surface.
func tenantAdapter(ctx context.Context) (*tenant.Tenant, identity.Adapter, error) {
	t, ok := middleware.TenantFromContext(ctx)
	if !ok {
		return nil, nil, huma.Error401Unauthorized("authentication required")
	}
	adapter, ok := t.Identity()
	if !ok {
		return nil, nil, huma.Error404NotFound("tenant has no identity provider configured")
	}
	return t, adapter, nil
}
