// Package identity defines the capability contract over an identity-provider
// vendor. One concrete binding is selected per tenant at configuration time;
// only one vendor is ever active for a tenant.
package identity

import (
	"context"
	"strings"
)

// User is a resolved identity-provider user.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// Group is a resolved identity-provider group.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserLookup selects a user by exactly one of id, email, or username.
// When a provider-side search returns several candidates, the first match
// wins.
type UserLookup struct {
	ID       string
	Email    string
	Username string
}

// GroupLookup selects a group by id, or by exact case-insensitive name match
// against provider-side search candidates.
type GroupLookup struct {
	ID   string
	Name string
}

// UserFilter narrows an admin user search. Zero value lists everyone.
type UserFilter struct {
	Search    string // provider free-text search (username, name, email)
	Email     string
	Username  string
	FirstName string
	LastName  string
	Max       int
	First     int
}

// Adapter is the read-side capability contract over an identity provider.
// Lookups that find nothing return nil with a nil error; errors are reserved
// for provider failures.
type Adapter interface {
	// GetUserInfo resolves a user by id, email, or username.
	GetUserInfo(ctx context.Context, lookup UserLookup) (*User, error)

	// GetUserGroup resolves a group by id or by name.
	GetUserGroup(ctx context.Context, lookup GroupLookup) (*Group, error)

	// GetMyUserGroups lists the groups the given user belongs to.
	GetMyUserGroups(ctx context.Context, userID string) ([]Group, error)

	// GetUserGroups lists every group in the tenant's identity realm.
	GetUserGroups(ctx context.Context) ([]Group, error)

	// IsGroupMember reports whether the user belongs to the group.
	IsGroupMember(ctx context.Context, userID, groupID string) (bool, error)

	// SearchUsers lists users matching the filter.
	SearchUsers(ctx context.Context, filter UserFilter) ([]User, error)

	// Vendor returns the identity-provider vendor identifier (e.g. "keycloak").
	Vendor() string
}

// NewUser carries the fields accepted when creating a provider user.
type NewUser struct {
	Username  string `json:"username" required:"false"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Enabled   bool   `json:"enabled" required:"false"`
}

// UserUpdate carries the mutable fields of a provider user. Nil members are
// left unchanged.
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// Manager is the separately-scoped management surface. It is invoked only
// after the authorization checks in this package and the engine have passed;
// it carries no authorization logic of its own.
type Manager interface {
	CreateUser(ctx context.Context, u NewUser) (*User, error)
	UpdateUser(ctx context.Context, userID string, u UserUpdate) error
	DeleteUser(ctx context.Context, userID string) error
	SetUserPassword(ctx context.Context, userID, password string, temporary bool) error

	CreateGroup(ctx context.Context, name string) (*Group, error)
	RenameGroup(ctx context.Context, groupID, name string) error
	DeleteGroup(ctx context.Context, groupID string) error

	AddGroupMember(ctx context.Context, groupID, userID string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
}

// FindGroupByName picks the group whose name equals name case-insensitively
// from search candidates. Helper shared by vendor bindings.
func FindGroupByName(candidates []Group, name string) *Group {
	name = strings.TrimSpace(name)
	for i := range candidates {
		if strings.EqualFold(candidates[i].Name, name) {
			return &candidates[i]
		}
	}
	return nil
}
