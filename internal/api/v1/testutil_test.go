package v1_test

import (
	"context"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/auth"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/server/middleware"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

// ---------------------------------------------------------------------------
// Context helpers: inject tenant/actor into context for the Ctx test calls
// ---------------------------------------------------------------------------

func requestCtx(t *tenant.Tenant, actor domain.Actor) context.Context {
	ctx := context.Background()
	ctx = middleware.WithTenant(ctx, t)
	ctx = middleware.WithActor(ctx, actor)
	return ctx
}

func memberActor(groups ...string) domain.Actor {
	return domain.Actor{UserID: "alice", Groups: groups}
}

func adminActor() domain.Actor {
	return domain.Actor{UserID: "root", IsAdmin: true}
}

func testTenant(b backend.Client) *tenant.Tenant {
	return tenant.New("default", b, nil, nil, auth.ClaimKindSubject)
}

func testTenantWithIdentity(b backend.Client, adapter identity.Adapter, manager identity.Manager) *tenant.Tenant {
	return tenant.New("default", b, adapter, manager, auth.ClaimKindSubject)
}

// ---------------------------------------------------------------------------
// Mock workflow backend
// ---------------------------------------------------------------------------

type mockBackend struct {
	getTaskRunFunc     func(ctx context.Context, id domain.TaskRunID) (*domain.TaskRun, error)
	searchTaskRunsFunc func(ctx context.Context, req backend.SearchRequest) (*backend.SearchResult, error)
	getTaskDefFunc     func(ctx context.Context, name string) (*domain.TaskDef, error)
	assignFunc         func(ctx context.Context, id domain.TaskRunID, req backend.AssignRequest) error
	cancelFunc         func(ctx context.Context, id domain.TaskRunID) error
	completeFunc       func(ctx context.Context, id domain.TaskRunID, req backend.CompleteRequest) error
	putCommentFunc     func(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error
	editCommentFunc    func(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error
	deleteCommentFunc  func(ctx context.Context, id domain.TaskRunID, commentID, userID string) error
}

var _ backend.Client = (*mockBackend)(nil)

func (m *mockBackend) GetTaskRun(ctx context.Context, id domain.TaskRunID) (*domain.TaskRun, error) {
	return m.getTaskRunFunc(ctx, id)
}

func (m *mockBackend) SearchTaskRuns(ctx context.Context, req backend.SearchRequest) (*backend.SearchResult, error) {
	return m.searchTaskRunsFunc(ctx, req)
}

func (m *mockBackend) GetTaskDef(ctx context.Context, name string) (*domain.TaskDef, error) {
	return m.getTaskDefFunc(ctx, name)
}

func (m *mockBackend) Assign(ctx context.Context, id domain.TaskRunID, req backend.AssignRequest) error {
	return m.assignFunc(ctx, id, req)
}

func (m *mockBackend) Cancel(ctx context.Context, id domain.TaskRunID) error {
	return m.cancelFunc(ctx, id)
}

func (m *mockBackend) Complete(ctx context.Context, id domain.TaskRunID, req backend.CompleteRequest) error {
	return m.completeFunc(ctx, id, req)
}

func (m *mockBackend) PutComment(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error {
	return m.putCommentFunc(ctx, id, commentID, userID, text)
}

func (m *mockBackend) EditComment(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error {
	return m.editCommentFunc(ctx, id, commentID, userID, text)
}

func (m *mockBackend) DeleteComment(ctx context.Context, id domain.TaskRunID, commentID, userID string) error {
	return m.deleteCommentFunc(ctx, id, commentID, userID)
}

// ---------------------------------------------------------------------------
// Mock identity adapter + manager
// ---------------------------------------------------------------------------

type mockAdapter struct {
	getUserInfoFunc     func(ctx context.Context, lookup identity.UserLookup) (*identity.User, error)
	getUserGroupFunc    func(ctx context.Context, lookup identity.GroupLookup) (*identity.Group, error)
	getMyUserGroupsFunc func(ctx context.Context, userID string) ([]identity.Group, error)
	getUserGroupsFunc   func(ctx context.Context) ([]identity.Group, error)
	isGroupMemberFunc   func(ctx context.Context, userID, groupID string) (bool, error)
	searchUsersFunc     func(ctx context.Context, filter identity.UserFilter) ([]identity.User, error)
}

var _ identity.Adapter = (*mockAdapter)(nil)

func (m *mockAdapter) GetUserInfo(ctx context.Context, lookup identity.UserLookup) (*identity.User, error) {
	return m.getUserInfoFunc(ctx, lookup)
}

func (m *mockAdapter) GetUserGroup(ctx context.Context, lookup identity.GroupLookup) (*identity.Group, error) {
	return m.getUserGroupFunc(ctx, lookup)
}

func (m *mockAdapter) GetMyUserGroups(ctx context.Context, userID string) ([]identity.Group, error) {
	return m.getMyUserGroupsFunc(ctx, userID)
}

func (m *mockAdapter) GetUserGroups(ctx context.Context) ([]identity.Group, error) {
	return m.getUserGroupsFunc(ctx)
}

func (m *mockAdapter) IsGroupMember(ctx context.Context, userID, groupID string) (bool, error) {
	return m.isGroupMemberFunc(ctx, userID, groupID)
}

func (m *mockAdapter) SearchUsers(ctx context.Context, filter identity.UserFilter) ([]identity.User, error) {
	return m.searchUsersFunc(ctx, filter)
}

func (m *mockAdapter) Vendor() string { return "mock" }

type mockManager struct {
	createUserFunc        func(ctx context.Context, u identity.NewUser) (*identity.User, error)
	updateUserFunc        func(ctx context.Context, userID string, u identity.UserUpdate) error
	deleteUserFunc        func(ctx context.Context, userID string) error
	setUserPasswordFunc   func(ctx context.Context, userID, password string, temporary bool) error
	createGroupFunc       func(ctx context.Context, name string) (*identity.Group, error)
	renameGroupFunc       func(ctx context.Context, groupID, name string) error
	deleteGroupFunc       func(ctx context.Context, groupID string) error
	addGroupMemberFunc    func(ctx context.Context, groupID, userID string) error
	removeGroupMemberFunc func(ctx context.Context, groupID, userID string) error
}

var _ identity.Manager = (*mockManager)(nil)

func (m *mockManager) CreateUser(ctx context.Context, u identity.NewUser) (*identity.User, error) {
	return m.createUserFunc(ctx, u)
}

func (m *mockManager) UpdateUser(ctx context.Context, userID string, u identity.UserUpdate) error {
	return m.updateUserFunc(ctx, userID, u)
}

func (m *mockManager) DeleteUser(ctx context.Context, userID string) error {
	return m.deleteUserFunc(ctx, userID)
}

func (m *mockManager) SetUserPassword(ctx context.Context, userID, password string, temporary bool) error {
	return m.setUserPasswordFunc(ctx, userID, password, temporary)
}

func (m *mockManager) CreateGroup(ctx context.Context, name string) (*identity.Group, error) {
	return m.createGroupFunc(ctx, name)
}

func (m *mockManager) RenameGroup(ctx context.Context, groupID, name string) error {
	return m.renameGroupFunc(ctx, groupID, name)
}

func (m *mockManager) DeleteGroup(ctx context.Context, groupID string) error {
	return m.deleteGroupFunc(ctx, groupID)
}

func (m *mockManager) AddGroupMember(ctx context.Context, groupID, userID string) error {
	return m.addGroupMemberFunc(ctx, groupID, userID)
}

func (m *mockManager) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	return m.removeGroupMemberFunc(ctx, groupID, userID)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func liveRun(status domain.TaskStatus, userID, group string) *domain.TaskRun {
	return &domain.TaskRun{
		ID:        domain.TaskRunID{WfRunID: "wf-1", TaskGUID: "guid-1"},
		TenantID:  "default",
		DefName:   "approve-expense",
		Status:    status,
		UserID:    userID,
		UserGroup: group,
	}
}
