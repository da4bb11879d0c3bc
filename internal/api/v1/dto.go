package v1

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/auth"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

// TaskRunSummary is one row of a task listing.
type TaskRunSummary struct {
	WfRunID       string            `json:"wf_run_id"`
	TaskGUID      string            `json:"user_task_guid"`
	DefName       string            `json:"user_task_def_name"`
	Status        domain.TaskStatus `json:"status"`
	UserID        string            `json:"user_id,omitempty"`
	UserGroup     string            `json:"user_group,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	ScheduledTime time.Time         `json:"scheduled_time"`
}

// TaskRunDetail is the full view of one task-run: the summary, the task-def
// field schema for rendering the completion form, the folded comment view,
// and best-effort identity enrichment of the assignee.
type TaskRunDetail struct {
	TaskRunSummary
	Fields       []domain.TaskDefField `json:"fields,omitempty"`
	Comments     []domain.Comment      `json:"comments,omitempty"`
	AssignedUser *identity.User        `json:"assigned_user,omitempty"`
}

// TaskRunList is a listing page plus the backend's opaque bookmark,
// base64-encoded for the wire and round-tripped by clients unmodified.
type TaskRunList struct {
	Runs     []TaskRunSummary `json:"runs"`
	Bookmark string           `json:"bookmark,omitempty"`
}

func toSummary(run *domain.TaskRun) TaskRunSummary {
	return TaskRunSummary{
		WfRunID:       run.ID.WfRunID,
		TaskGUID:      run.ID.TaskGUID,
		DefName:       run.DefName,
		Status:        run.Status,
		UserID:        run.UserID,
		UserGroup:     run.UserGroup,
		Notes:         run.Notes,
		ScheduledTime: run.ScheduledTime,
	}
}

func toSummaries(runs []domain.TaskRun) []TaskRunSummary {
	out := make([]TaskRunSummary, 0, len(runs))
	for i := range runs {
		out = append(out, toSummary(&runs[i]))
	}
	return out
}

// enrichAssignee resolves the assigned user id through the identity adapter.
// Enrichment is best-effort: a provider failure degrades to the raw id.
func enrichAssignee(ctx context.Context, t *tenant.Tenant, run *domain.TaskRun) *identity.User {
	adapter, ok := t.Identity()
	if !ok || run.UserID == "" {
		return nil
	}

	lookup := identity.UserLookup{}
	switch t.ClaimKind {
	case auth.ClaimKindEmail:
		lookup.Email = run.UserID
	case auth.ClaimKindPreferredUsername:
		lookup.Username = run.UserID
	default:
		lookup.ID = run.UserID
	}

	user, err := adapter.GetUserInfo(ctx, lookup)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.ID).Str("user_id", run.UserID).
			Msg("assignment enrichment failed")
		return nil
	}
	return user
}

// decodeBookmark parses the base64 bookmark query parameter.
func decodeBookmark(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	bm, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, huma.Error400BadRequest("malformed bookmark")
	}
	return bm, nil
}

func encodeBookmark(bm []byte) string {
	if len(bm) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(bm)
}
