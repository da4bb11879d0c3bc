// Package tenant maps tenant ids to their bound workflow-backend client and
// identity-provider binding. The registry is constructed once at process
// start and is read-only afterwards, so it is shared across concurrently
// handled requests without synchronization.
package tenant

import (
	"context"
	"fmt"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/auth"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend/rest"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/config"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/engine"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity/keycloak"
)

// Tenant is one tenant's bound collaborators.
type Tenant struct {
	ID        string
	Backend   backend.Client
	ClaimKind auth.UserIDClaimKind

	adapter identity.Adapter // nil when no adapter is configured
	manager identity.Manager // nil when no adapter is configured
}

// New assembles a Tenant from already-built collaborators. The registry uses
// it after constructing vendor clients; tests use it to inject fakes.
func New(id string, b backend.Client, adapter identity.Adapter, manager identity.Manager, claimKind auth.UserIDClaimKind) *Tenant {
	return &Tenant{
		ID:        id,
		Backend:   b,
		ClaimKind: claimKind,
		adapter:   adapter,
		manager:   manager,
	}
}

// Identity returns the tenant's identity adapter and whether one is
// configured. Call sites branch on presence; absence is a legal setup for
// tenants whose tokens carry the subject claim shape.
func (t *Tenant) Identity() (identity.Adapter, bool) {
	return t.adapter, t.adapter != nil
}

// IdentityManager returns the admin-scoped management surface, when bound.
func (t *Tenant) IdentityManager() (identity.Manager, bool) {
	return t.manager, t.manager != nil
}

// Resolver builds the assignment resolver for this tenant's claim mapping.
func (t *Tenant) Resolver() *engine.Resolver {
	return engine.NewResolver(t.adapter, t.ClaimKind)
}

// Registry is the read-only tenant id -> Tenant map.
type Registry struct {
	tenants map[string]*Tenant
}

// NewRegistry builds the registry from the tenants file, dialing nothing:
// backend and identity clients are lazy HTTP handles.
func NewRegistry(ctx context.Context, tf *config.TenantsFile) (*Registry, error) {
	tenants := make(map[string]*Tenant, len(tf.Tenants))
	for _, tc := range tf.Tenants {
		claimKind, err := auth.ParseClaimKind(tc.UserIDClaim)
		if err != nil {
			return nil, fmt.Errorf("tenant.NewRegistry: tenant %q: %w", tc.ID, err)
		}

		var (
			adapter identity.Adapter
			manager identity.Manager
		)
		if tc.Identity != nil {
			// Only the keycloak vendor is bound; config validation already
			// rejected anything else.
			kc := keycloak.NewClient(ctx, tc.Identity.URL, tc.Identity.Realm, tc.Identity.ClientID, tc.Identity.ClientSecret)
			a := keycloak.NewAdapter(kc)
			adapter = a
			manager = a
		} else if claimKind != auth.ClaimKindSubject {
			return nil, fmt.Errorf("tenant.NewRegistry: tenant %q: user_id_claim %q requires an identity adapter", tc.ID, claimKind)
		}

		b := rest.New(tc.Backend.URL, tc.ID, tc.Backend.Token, tc.Backend.Timeout)
		tenants[tc.ID] = New(tc.ID, b, adapter, manager, claimKind)
	}
	return &Registry{tenants: tenants}, nil
}

// Get resolves a tenant id.
func (r *Registry) Get(tenantID string) (*Tenant, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("tenant.Registry.Get: unknown tenant %q: %w", tenantID, domain.ErrNotFound)
	}
	return t, nil
}

// Authorize resolves the path tenant and rejects requests whose token
// tenant claim does not match it.
func (r *Registry) Authorize(claims *auth.ClaimsContext, tenantID string) (*Tenant, error) {
	t, err := r.Get(tenantID)
	if err != nil {
		return nil, err
	}
	if claims.TenantID != tenantID {
		return nil, fmt.Errorf("tenant.Registry.Authorize: token tenant %q does not match path tenant %q: %w",
			claims.TenantID, tenantID, domain.ErrUnauthorized)
	}
	return t, nil
}

// IDs lists the registered tenant ids. Used for startup logging.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.tenants))
	for id := range r.tenants {
		ids = append(ids, id)
	}
	return ids
}
