package domain

import "strings"

// Actor is the resolved identity behind the current request: the user id in
// the shape the tenant's user-id-claim mapping dictates, the names of the
// groups the actor belongs to, and whether a bridge-admin authority was
// present on the token.
type Actor struct {
	UserID  string
	Groups  []string
	IsAdmin bool
}

// InGroup reports whether the actor belongs to the named group. Matching is
// exact but case-insensitive, and surrounding whitespace on the candidate is
// ignored.
func (a Actor) InGroup(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, g := range a.Groups {
		if strings.EqualFold(strings.TrimSpace(g), name) {
			return true
		}
	}
	return false
}

// IsUser reports whether the actor is the given user, case-insensitively.
func (a Actor) IsUser(userID string) bool {
	return userID != "" && strings.EqualFold(a.UserID, userID)
}

// AssignmentRequest is a raw assignment target as received from a caller.
// Identifiers may be identity-provider-native; the resolver translates them
// into the shapes the workflow backend indexes by.
type AssignmentRequest struct {
	UserID  string `json:"user_id,omitempty"`
	GroupID string `json:"user_group,omitempty"`
}

// Empty reports whether the request names neither a user nor a group.
func (r AssignmentRequest) Empty() bool {
	return r.UserID == "" && r.GroupID == ""
}
