// Package engine holds the task access-control and assignment core: the
// rules deciding, for a given actor and a freshly fetched task-run, whether
// a read or state transition is permitted. The engine owns no state; every
// decision runs against a snapshot the caller just fetched.
package engine

import (
	"fmt"
	"strings"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
)

// CanView decides read visibility and fails closed. Admins see everything.
// A group-routed task is visible to the assigned user and to group members;
// a user-only task is visible to that user; an unassigned task is claimable
// pool data, visible to any authenticated actor.
func CanView(actor domain.Actor, run *domain.TaskRun) bool {
	if actor.IsAdmin {
		return true
	}
	if run.UserGroup != "" {
		return actor.IsUser(run.UserID) || actor.InGroup(run.UserGroup)
	}
	if run.UserID != "" {
		return actor.IsUser(run.UserID)
	}
	return true
}

// RequireView is CanView as a guard: nil for visible, Unauthorized otherwise.
func RequireView(actor domain.Actor, run *domain.TaskRun) error {
	if CanView(actor, run) {
		return nil
	}
	return fmt.Errorf("engine.RequireView: user %q may not view task %s/%s: %w",
		actor.UserID, run.ID.WfRunID, run.ID.TaskGUID, domain.ErrUnauthorized)
}

// IsClaimable decides whether the actor may claim the task-run. An admin
// claim covers any non-terminal task, overriding an existing assignment. A
// self-service claim requires the task to be exactly UNASSIGNED and routed
// to a group the actor belongs to; tasks without a group are never claimable
// through the non-admin path.
func IsClaimable(actor domain.Actor, run *domain.TaskRun) bool {
	if run.Status.IsTerminal() {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	if run.Status != domain.TaskStatusUnassigned {
		return false
	}
	return actor.InGroup(run.UserGroup)
}

// ValidateClaim is IsClaimable as a guard. A terminal task is Forbidden; a
// live task the actor cannot claim surfaces as Conflict, matching how the
// backend reports a claim that lost its race.
func ValidateClaim(actor domain.Actor, run *domain.TaskRun) error {
	if run.Status.IsTerminal() {
		return fmt.Errorf("engine.ValidateClaim: task %s/%s is %s: %w",
			run.ID.WfRunID, run.ID.TaskGUID, run.Status, domain.ErrForbidden)
	}
	if !IsClaimable(actor, run) {
		return fmt.Errorf("engine.ValidateClaim: task %s/%s is not claimable by %q: %w",
			run.ID.WfRunID, run.ID.TaskGUID, actor.UserID, domain.ErrConflict)
	}
	return nil
}

// ValidateCompletion guards a completion attempt: terminal tasks are
// Forbidden, and every required string field must be non-blank after
// trimming. All offending fields are named in a single BadRequest.
// Non-required and non-string fields are not checked here; the backend
// validates types on the mutation itself.
func ValidateCompletion(run *domain.TaskRun, def *domain.TaskDef, results map[string]domain.FieldValue) error {
	if run.Status.IsTerminal() {
		return fmt.Errorf("engine.ValidateCompletion: task %s/%s is %s: %w",
			run.ID.WfRunID, run.ID.TaskGUID, run.Status, domain.ErrForbidden)
	}

	var blank []string
	for _, field := range def.Fields {
		if !field.Required || field.Type != domain.FieldTypeString {
			continue
		}
		value, ok := results[field.Name]
		if !ok || strings.TrimSpace(value.Str) == "" {
			blank = append(blank, field.Name)
		}
	}
	if len(blank) > 0 {
		return fmt.Errorf("engine.ValidateCompletion: required fields missing or blank: %s: %w",
			strings.Join(blank, ", "), domain.ErrBadRequest)
	}
	return nil
}

// ValidateCancellation guards a cancel attempt: terminal tasks are
// Forbidden. The non-admin entry point additionally requires RequireView,
// composed by the caller.
func ValidateCancellation(run *domain.TaskRun) error {
	if run.Status.IsTerminal() {
		return fmt.Errorf("engine.ValidateCancellation: task %s/%s is %s: %w",
			run.ID.WfRunID, run.ID.TaskGUID, run.Status, domain.ErrForbidden)
	}
	return nil
}
