package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/server/middleware"
)

type SearchUsersInput struct {
	Search    string `query:"search" doc:"Free-text search over username, name and email"`
	Email     string `query:"email" doc:"Filter by email"`
	Username  string `query:"username" doc:"Filter by username"`
	FirstName string `query:"first_name" doc:"Filter by first name"`
	LastName  string `query:"last_name" doc:"Filter by last name"`
	Max       int    `query:"max" minimum:"1" maximum:"500" doc:"Page size"`
	First     int    `query:"first" minimum:"0" doc:"Page offset"`
}

type SearchUsersOutput struct {
	Body []identity.User
}

type GetUserInput struct {
	UserID string `path:"userID" doc:"Identity-provider user ID"`
}

type GetUserOutput struct {
	Body *identity.User
}

type CreateUserInput struct {
	Body identity.NewUser
}

type CreateUserOutput struct {
	Body *identity.User
}

type UpdateUserInput struct {
	UserID string `path:"userID" doc:"Identity-provider user ID"`
	Body   identity.UserUpdate
}

type DeleteUserInput struct {
	UserID string `path:"userID" doc:"Identity-provider user ID"`
}

type SetPasswordInput struct {
	UserID string `path:"userID" doc:"Identity-provider user ID"`
	Body   struct {
		Password  string `json:"password" minLength:"8" doc:"New password"`
		Temporary bool   `json:"temporary,omitempty" doc:"Force a password change on next login"`
	}
}

type ListGroupsOutput struct {
	Body []identity.Group
}

type CreateGroupInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Group name"`
	}
}

type CreateGroupOutput struct {
	Body *identity.Group
}

type RenameGroupInput struct {
	GroupID string `path:"groupID" doc:"Identity-provider group ID"`
	Body    struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"New group name"`
	}
}

type DeleteGroupInput struct {
	GroupID string `path:"groupID" doc:"Identity-provider group ID"`
}

type GroupMemberInput struct {
	GroupID string `path:"groupID" doc:"Identity-provider group ID"`
	UserID  string `path:"userID" doc:"Identity-provider user ID"`
}

// RegisterAdminIdentityRoutes wires the admin-scoped user/group management
// surface. Authorization is the admin guard plus the per-operation checks
// here; the identity manager itself carries none.
func RegisterAdminIdentityRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "admin-search-users",
		Method:      http.MethodGet,
		Path:        "/admin/users",
		Summary:     "Search users in the tenant's identity realm",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *SearchUsersInput) (*SearchUsersOutput, error) {
		_, adapter, err := tenantAdapter(ctx)
		if err != nil {
			return nil, err
		}

		users, err := adapter.SearchUsers(ctx, identity.UserFilter{
			Search:    input.Search,
			Email:     input.Email,
			Username:  input.Username,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Max:       input.Max,
			First:     input.First,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return &SearchUsersOutput{Body: users}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-get-user",
		Method:      http.MethodGet,
		Path:        "/admin/users/{userID}",
		Summary:     "Get one user",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
		_, adapter, err := tenantAdapter(ctx)
		if err != nil {
			return nil, err
		}

		user, err := adapter.GetUserInfo(ctx, identity.UserLookup{ID: input.UserID})
		if err != nil {
			return nil, mapError(err)
		}
		if user == nil {
			return nil, huma.Error404NotFound("no such user")
		}
		return &GetUserOutput{Body: user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-create-user",
		Method:      http.MethodPost,
		Path:        "/admin/users",
		Summary:     "Create a user in the tenant's identity realm",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}
		if input.Body.Username == "" {
			return nil, huma.Error400BadRequest("username is required")
		}

		user, err := manager.CreateUser(ctx, input.Body)
		if err != nil {
			return nil, mapError(err)
		}
		return &CreateUserOutput{Body: user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-update-user",
		Method:      http.MethodPut,
		Path:        "/admin/users/{userID}",
		Summary:     "Update a user",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *UpdateUserInput) (*EmptyOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := manager.UpdateUser(ctx, input.UserID, input.Body); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-delete-user",
		Method:      http.MethodDelete,
		Path:        "/admin/users/{userID}",
		Summary:     "Delete a user",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *DeleteUserInput) (*EmptyOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := manager.DeleteUser(ctx, input.UserID); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-set-user-password",
		Method:      http.MethodPut,
		Path:        "/admin/users/{userID}/password",
		Summary:     "Set a user's password",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *SetPasswordInput) (*EmptyOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := manager.SetUserPassword(ctx, input.UserID, input.Body.Password, input.Body.Temporary); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-list-groups",
		Method:      http.MethodGet,
		Path:        "/admin/groups",
		Summary:     "List all groups in the tenant's identity realm",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, _ *struct{}) (*ListGroupsOutput, error) {
		_, adapter, err := tenantAdapter(ctx)
		if err != nil {
			return nil, err
		}

		groups, err := adapter.GetUserGroups(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return &ListGroupsOutput{Body: groups}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-create-group",
		Method:      http.MethodPost,
		Path:        "/admin/groups",
		Summary:     "Create a group",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *CreateGroupInput) (*CreateGroupOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		group, err := manager.CreateGroup(ctx, input.Body.Name)
		if err != nil {
			return nil, mapError(err)
		}
		return &CreateGroupOutput{Body: group}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-rename-group",
		Method:      http.MethodPut,
		Path:        "/admin/groups/{groupID}",
		Summary:     "Rename a group",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *RenameGroupInput) (*EmptyOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := manager.RenameGroup(ctx, input.GroupID, input.Body.Name); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-delete-group",
		Method:      http.MethodDelete,
		Path:        "/admin/groups/{groupID}",
		Summary:     "Delete a group",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *DeleteGroupInput) (*EmptyOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := manager.DeleteGroup(ctx, input.GroupID); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-add-group-member",
		Method:      http.MethodPut,
		Path:        "/admin/groups/{groupID}/members/{userID}",
		Summary:     "Add a user to a group",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *GroupMemberInput) (*EmptyOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := manager.AddGroupMember(ctx, input.GroupID, input.UserID); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-remove-group-member",
		Method:      http.MethodDelete,
		Path:        "/admin/groups/{groupID}/members/{userID}",
		Summary:     "Remove a user from a group",
		Tags:        []string{"Admin identity"},
	}, func(ctx context.Context, input *GroupMemberInput) (*EmptyOutput, error) {
		manager, err := tenantManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := manager.RemoveGroupMember(ctx, input.GroupID, input.UserID); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})
}

// tenantManager requires the tenant's identity management surface.
func tenantManager(ctx context.Context) (identity.Manager, error) {
	t, ok := middleware.TenantFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	manager, ok := t.IdentityManager()
	if !ok {
		return nil, huma.Error404NotFound("tenant has no identity provider configured")
	}
	return manager, nil
}
