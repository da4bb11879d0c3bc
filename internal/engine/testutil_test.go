package engine_test

import (
	"context"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
)

// mockAdapter stubs the identity adapter contract; unset funcs panic so a
// test only exercises what it wired up.
type mockAdapter struct {
	getUserInfo     func(ctx context.Context, lookup identity.UserLookup) (*identity.User, error)
	getUserGroup    func(ctx context.Context, lookup identity.GroupLookup) (*identity.Group, error)
	getMyUserGroups func(ctx context.Context, userID string) ([]identity.Group, error)
	getUserGroups   func(ctx context.Context) ([]identity.Group, error)
	isGroupMember   func(ctx context.Context, userID, groupID string) (bool, error)
	searchUsers     func(ctx context.Context, filter identity.UserFilter) ([]identity.User, error)
}

var _ identity.Adapter = (*mockAdapter)(nil)

func (m *mockAdapter) GetUserInfo(ctx context.Context, lookup identity.UserLookup) (*identity.User, error) {
	return m.getUserInfo(ctx, lookup)
}

func (m *mockAdapter) GetUserGroup(ctx context.Context, lookup identity.GroupLookup) (*identity.Group, error) {
	return m.getUserGroup(ctx, lookup)
}

func (m *mockAdapter) GetMyUserGroups(ctx context.Context, userID string) ([]identity.Group, error) {
	return m.getMyUserGroups(ctx, userID)
}

func (m *mockAdapter) GetUserGroups(ctx context.Context) ([]identity.Group, error) {
	return m.getUserGroups(ctx)
}

func (m *mockAdapter) IsGroupMember(ctx context.Context, userID, groupID string) (bool, error) {
	return m.isGroupMember(ctx, userID, groupID)
}

func (m *mockAdapter) SearchUsers(ctx context.Context, filter identity.UserFilter) ([]identity.User, error) {
	return m.searchUsers(ctx, filter)
}

func (m *mockAdapter) Vendor() string { return "mock" }
