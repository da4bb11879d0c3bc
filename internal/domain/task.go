package domain

import "time"

type TaskStatus string

const (
	TaskStatusUnassigned TaskStatus = "UNASSIGNED"
	TaskStatusAssigned   TaskStatus = "ASSIGNED"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further mutation.
// DONE and CANCELLED task-runs may only be read.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusCancelled
}

// TaskRunID identifies one task-run inside the workflow backend. A workflow
// run may contain several user tasks, so both parts are needed.
type TaskRunID struct {
	WfRunID  string `json:"wf_run_id"`
	TaskGUID string `json:"user_task_guid"`
}

// TaskRun is a snapshot of one human task tracked by the workflow backend.
// The backend owns the data; the bridge re-fetches a fresh snapshot for
// every decision and never caches or persists one.
type TaskRun struct {
	ID            TaskRunID
	TenantID      string
	DefName       string
	Status        TaskStatus
	UserID        string // empty when not assigned to a user
	UserGroup     string // empty when not routed to a group
	Notes         string
	ScheduledTime time.Time
	Events        []AuditEvent // ordered, append-only, backend-owned
}

// Assigned reports whether the task-run currently has a user or group set.
func (t *TaskRun) Assigned() bool {
	return t.UserID != "" || t.UserGroup != ""
}
