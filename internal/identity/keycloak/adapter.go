// Package keycloak binds the identity capability contract to Keycloak's
// admin REST API.
package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
)

// Adapter implements identity.Adapter and identity.Manager for Keycloak.
type Adapter struct {
	api API
}

// Compile-time interface checks.
var (
	_ identity.Adapter = (*Adapter)(nil)
	_ identity.Manager = (*Adapter)(nil)
)

// NewAdapter creates an Adapter over the given API client.
func NewAdapter(api API) *Adapter {
	return &Adapter{api: api}
}

func (a *Adapter) Vendor() string { return "keycloak" }

// GetUserInfo resolves a user by id, email, or username. A miss is nil, not
// an error; when a search matches several users the first wins.
func (a *Adapter) GetUserInfo(ctx context.Context, lookup identity.UserLookup) (*identity.User, error) {
	switch {
	case lookup.ID != "":
		rep, err := a.api.GetUser(ctx, lookup.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("keycloak.Adapter.GetUserInfo: %w", err)
		}
		return toUser(rep), nil

	case lookup.Email != "":
		return a.firstUser(ctx, url.Values{"email": {lookup.Email}, "exact": {"true"}})

	case lookup.Username != "":
		return a.firstUser(ctx, url.Values{"username": {lookup.Username}, "exact": {"true"}})

	default:
		return nil, fmt.Errorf("keycloak.Adapter.GetUserInfo: empty lookup: %w", domain.ErrBadRequest)
	}
}

func (a *Adapter) firstUser(ctx context.Context, query url.Values) (*identity.User, error) {
	users, err := a.api.FindUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("keycloak.Adapter.GetUserInfo: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return toUser(&users[0]), nil
}

// GetUserGroup resolves a group by id, or by exact case-insensitive name
// match over a provider-side name search. A miss is nil, not an error.
func (a *Adapter) GetUserGroup(ctx context.Context, lookup identity.GroupLookup) (*identity.Group, error) {
	if lookup.ID != "" {
		rep, err := a.api.GetGroup(ctx, lookup.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("keycloak.Adapter.GetUserGroup: %w", err)
		}
		return toGroup(rep), nil
	}

	if lookup.Name == "" {
		return nil, fmt.Errorf("keycloak.Adapter.GetUserGroup: empty lookup: %w", domain.ErrBadRequest)
	}

	reps, err := a.api.FindGroups(ctx, lookup.Name)
	if err != nil {
		return nil, fmt.Errorf("keycloak.Adapter.GetUserGroup: %w", err)
	}
	return identity.FindGroupByName(toGroups(reps), lookup.Name), nil
}

func (a *Adapter) GetMyUserGroups(ctx context.Context, userID string) ([]identity.Group, error) {
	reps, err := a.api.GetUserGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("keycloak.Adapter.GetMyUserGroups: %w", err)
	}
	return toGroups(reps), nil
}

func (a *Adapter) GetUserGroups(ctx context.Context) ([]identity.Group, error) {
	reps, err := a.api.FindGroups(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("keycloak.Adapter.GetUserGroups: %w", err)
	}
	return toGroups(reps), nil
}

func (a *Adapter) IsGroupMember(ctx context.Context, userID, groupID string) (bool, error) {
	reps, err := a.api.GetUserGroups(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("keycloak.Adapter.IsGroupMember: %w", err)
	}
	for _, g := range reps {
		if g.ID == groupID {
			return true, nil
		}
	}
	return false, nil
}

func (a *Adapter) SearchUsers(ctx context.Context, filter identity.UserFilter) ([]identity.User, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Email != "" {
		query.Set("email", filter.Email)
	}
	if filter.Username != "" {
		query.Set("username", filter.Username)
	}
	if filter.FirstName != "" {
		query.Set("firstName", filter.FirstName)
	}
	if filter.LastName != "" {
		query.Set("lastName", filter.LastName)
	}
	if filter.Max > 0 {
		query.Set("max", strconv.Itoa(filter.Max))
	}
	if filter.First > 0 {
		query.Set("first", strconv.Itoa(filter.First))
	}

	reps, err := a.api.FindUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("keycloak.Adapter.SearchUsers: %w", err)
	}
	users := make([]identity.User, 0, len(reps))
	for i := range reps {
		users = append(users, *toUser(&reps[i]))
	}
	return users, nil
}

func (a *Adapter) CreateUser(ctx context.Context, u identity.NewUser) (*identity.User, error) {
	enabled := u.Enabled
	id, err := a.api.CreateUser(ctx, UserRepresentation{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Enabled:   &enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("keycloak.Adapter.CreateUser: %w", err)
	}
	return &identity.User{
		ID:        id,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Enabled:   u.Enabled,
	}, nil
}

func (a *Adapter) UpdateUser(ctx context.Context, userID string, u identity.UserUpdate) error {
	rep := UserRepresentation{Enabled: u.Enabled}
	if u.Email != nil {
		rep.Email = *u.Email
	}
	if u.FirstName != nil {
		rep.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		rep.LastName = *u.LastName
	}
	if err := a.api.UpdateUser(ctx, userID, rep); err != nil {
		return fmt.Errorf("keycloak.Adapter.UpdateUser: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteUser(ctx context.Context, userID string) error {
	if err := a.api.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("keycloak.Adapter.DeleteUser: %w", err)
	}
	return nil
}

func (a *Adapter) SetUserPassword(ctx context.Context, userID, password string, temporary bool) error {
	err := a.api.ResetPassword(ctx, userID, CredentialsUpdate{
		Type:      "password",
		Value:     password,
		Temporary: temporary,
	})
	if err != nil {
		return fmt.Errorf("keycloak.Adapter.SetUserPassword: %w", err)
	}
	return nil
}

func (a *Adapter) CreateGroup(ctx context.Context, name string) (*identity.Group, error) {
	id, err := a.api.CreateGroup(ctx, GroupRepresentation{Name: name})
	if err != nil {
		return nil, fmt.Errorf("keycloak.Adapter.CreateGroup: %w", err)
	}
	return &identity.Group{ID: id, Name: name}, nil
}

func (a *Adapter) RenameGroup(ctx context.Context, groupID, name string) error {
	if err := a.api.UpdateGroup(ctx, groupID, GroupRepresentation{Name: name}); err != nil {
		return fmt.Errorf("keycloak.Adapter.RenameGroup: %w", err)
	}
	return nil
}

func (a *Adapter) DeleteGroup(ctx context.Context, groupID string) error {
	if err := a.api.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("keycloak.Adapter.DeleteGroup: %w", err)
	}
	return nil
}

func (a *Adapter) AddGroupMember(ctx context.Context, groupID, userID string) error {
	if err := a.api.AddUserToGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("keycloak.Adapter.AddGroupMember: %w", err)
	}
	return nil
}

func (a *Adapter) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	if err := a.api.RemoveUserFromGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("keycloak.Adapter.RemoveGroupMember: %w", err)
	}
	return nil
}

func toUser(rep *UserRepresentation) *identity.User {
	u := &identity.User{
		ID:        rep.ID,
		Username:  rep.Username,
		Email:     rep.Email,
		FirstName: rep.FirstName,
		LastName:  rep.LastName,
	}
	if rep.Enabled != nil {
		u.Enabled = *rep.Enabled
	}
	return u
}

func toGroup(rep *GroupRepresentation) *identity.Group {
	return &identity.Group{ID: rep.ID, Name: rep.Name}
}

func toGroups(reps []GroupRepresentation) []identity.Group {
	groups := make([]identity.Group, 0, len(reps))
	for i := range reps {
		groups = append(groups, *toGroup(&reps[i]))
	}
	return groups
}
