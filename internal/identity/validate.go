package identity

import (
	"context"
	"fmt"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
)

// ValidateUserGroup fails with Forbidden unless the actor's own groups
// contain a group whose id equals groupID.
func ValidateUserGroup(ctx context.Context, adapter Adapter, groupID, actorUserID string) error {
	groups, err := adapter.GetMyUserGroups(ctx, actorUserID)
	if err != nil {
		return fmt.Errorf("identity.ValidateUserGroup: %w", err)
	}
	for _, g := range groups {
		if g.ID == groupID {
			return nil
		}
	}
	return fmt.Errorf("identity.ValidateUserGroup: user %q is not a member of group %q: %w",
		actorUserID, groupID, domain.ErrForbidden)
}

// ValidateAssignmentProperties is the admin-only pre-check run before an
// assignment. It verifies the request names at least one target, that a named
// user resolves, that a named group resolves, and that a user named together
// with a group is a member of it. Every failure is a BadRequest: the caller
// supplied identifiers the identity provider cannot honor.
func ValidateAssignmentProperties(ctx context.Context, adapter Adapter, req domain.AssignmentRequest) error {
	if req.Empty() {
		return fmt.Errorf("identity.ValidateAssignmentProperties: neither user nor group given: %w",
			domain.ErrBadRequest)
	}

	var user *User
	if req.UserID != "" {
		u, err := adapter.GetUserInfo(ctx, UserLookup{ID: req.UserID})
		if err != nil {
			return fmt.Errorf("identity.ValidateAssignmentProperties: %w", err)
		}
		if u == nil {
			return fmt.Errorf("identity.ValidateAssignmentProperties: user %q does not exist: %w",
				req.UserID, domain.ErrBadRequest)
		}
		user = u
	}

	if req.GroupID != "" {
		group, err := adapter.GetUserGroup(ctx, GroupLookup{ID: req.GroupID})
		if err != nil {
			return fmt.Errorf("identity.ValidateAssignmentProperties: %w", err)
		}
		if group == nil {
			return fmt.Errorf("identity.ValidateAssignmentProperties: group %q does not exist: %w",
				req.GroupID, domain.ErrBadRequest)
		}
		// With only a group given the check degrades to group existence.
		if user != nil {
			member, err := adapter.IsGroupMember(ctx, user.ID, group.ID)
			if err != nil {
				return fmt.Errorf("identity.ValidateAssignmentProperties: %w", err)
			}
			if !member {
				return fmt.Errorf("identity.ValidateAssignmentProperties: user %q is not a member of group %q: %w",
					req.UserID, req.GroupID, domain.ErrBadRequest)
			}
		}
	}

	return nil
}
