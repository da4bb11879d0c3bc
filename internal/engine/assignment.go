package engine

import (
	"context"
	"fmt"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/auth"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
)

// Resolver translates raw assignment targets and token claims into the
// identifiers the workflow backend expects. The identity adapter is optional
// per tenant; every method branches on its presence instead of assuming one
// is configured.
type Resolver struct {
	adapter    identity.Adapter // nil when the tenant has no adapter configured
	hasAdapter bool
	claimKind  auth.UserIDClaimKind
}

// NewResolver builds a Resolver for one tenant. adapter may be nil.
func NewResolver(adapter identity.Adapter, claimKind auth.UserIDClaimKind) *Resolver {
	return &Resolver{
		adapter:    adapter,
		hasAdapter: adapter != nil,
		claimKind:  claimKind,
	}
}

// ResolveActorUserID returns the claim value named by the tenant's
// configured user-id-claim kind. Only the subject is trusted from the token;
// email and preferred-username are read from the identity provider's record
// for the subject, since tokens do not reliably carry them.
func (r *Resolver) ResolveActorUserID(ctx context.Context, claims *auth.ClaimsContext) (string, error) {
	if r.claimKind == auth.ClaimKindSubject {
		return claims.Subject, nil
	}

	if !r.hasAdapter {
		return "", fmt.Errorf("engine.Resolver.ResolveActorUserID: claim kind %q needs an identity adapter, none configured: %w",
			r.claimKind, domain.ErrInternal)
	}

	user, err := r.adapter.GetUserInfo(ctx, identity.UserLookup{ID: claims.Subject})
	if err != nil {
		return "", fmt.Errorf("engine.Resolver.ResolveActorUserID: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("engine.Resolver.ResolveActorUserID: subject %q not found in identity provider: %w",
			claims.Subject, domain.ErrInternal)
	}

	var value string
	switch r.claimKind {
	case auth.ClaimKindEmail:
		value = user.Email
	case auth.ClaimKindPreferredUsername:
		value = user.Username
	}
	if value == "" {
		return "", fmt.Errorf("engine.Resolver.ResolveActorUserID: subject %q has no %s: %w",
			claims.Subject, r.claimKind, domain.ErrInternal)
	}
	return value, nil
}

// ResolveActorGroups returns the names of the groups the actor belongs to.
// Without an adapter the actor simply has no groups.
func (r *Resolver) ResolveActorGroups(ctx context.Context, claims *auth.ClaimsContext) ([]string, error) {
	if !r.hasAdapter {
		return nil, nil
	}
	groups, err := r.adapter.GetMyUserGroups(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("engine.Resolver.ResolveActorGroups: %w", err)
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names, nil
}

// ResolveActor builds the full actor for the current request: the user id in
// the tenant's configured claim shape, the actor's group names, and the
// admin flag derived from the token's realm role.
func (r *Resolver) ResolveActor(ctx context.Context, claims *auth.ClaimsContext, adminRole string) (domain.Actor, error) {
	userID, err := r.ResolveActorUserID(ctx, claims)
	if err != nil {
		return domain.Actor{}, err
	}
	groups, err := r.ResolveActorGroups(ctx, claims)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{
		UserID:  userID,
		Groups:  groups,
		IsAdmin: claims.HasRole(adminRole),
	}, nil
}

// ResolveGroupTarget translates an identity-provider group id into the
// group's display name, because the workflow backend indexes group
// assignment by name. An identifier no group matches is propagated
// unchanged; the backend mutation then fails naturally.
func (r *Resolver) ResolveGroupTarget(ctx context.Context, rawGroup string) (string, error) {
	if rawGroup == "" || !r.hasAdapter {
		return rawGroup, nil
	}
	group, err := r.adapter.GetUserGroup(ctx, identity.GroupLookup{ID: rawGroup})
	if err != nil {
		return "", fmt.Errorf("engine.Resolver.ResolveGroupTarget: %w", err)
	}
	if group == nil {
		return rawGroup, nil
	}
	return group.Name, nil
}

// BuildAssignmentMutation assembles the backend mutation, setting only the
// fields present in the request. overrideClaim is used exclusively for
// admin-initiated assign/claim and bypasses the backend's already-claimed
// guard.
func (r *Resolver) BuildAssignmentMutation(req domain.AssignmentRequest, groupName string, overrideClaim bool) backend.AssignRequest {
	return backend.AssignRequest{
		UserID:        req.UserID,
		UserGroup:     groupName,
		OverrideClaim: overrideClaim,
	}
}
