// Package backend defines the typed contract over the remote workflow
// backend that owns task-runs and their audit history. The bridge issues one
// fresh read before every decision and at most one mutation per request; the
// backend arbitrates races through its own precondition checks.
package backend

import (
	"context"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
)

// SearchRequest narrows a task-run listing. Bookmark is an opaque cursor
// issued by the backend and round-tripped by callers unmodified.
type SearchRequest struct {
	Status    domain.TaskStatus
	DefName   string
	UserID    string
	UserGroup string
	Earliest  string // RFC 3339, inclusive
	Latest    string // RFC 3339, inclusive
	Limit     int
	Bookmark  []byte
}

// SearchResult is one page of task-runs. A nil Bookmark means the listing is
// exhausted.
type SearchResult struct {
	Runs     []domain.TaskRun
	Bookmark []byte
}

// AssignRequest mutates a task-run's assignment. Only non-empty fields are
// applied. OverrideClaim bypasses the backend's already-claimed guard and is
// set exclusively on admin-initiated assign/claim.
type AssignRequest struct {
	UserID        string
	UserGroup     string
	OverrideClaim bool
}

// CompleteRequest finishes a task-run with the submitted field values,
// recording the completing user.
type CompleteRequest struct {
	UserID  string
	Results map[string]domain.FieldValue
}

// Client is the workflow-backend capability contract. One Client is bound
// per tenant at process start; implementations must be safe for concurrent
// use. Every error is classified into a domain sentinel: a claim that lost
// its race surfaces as domain.ErrConflict, other backend precondition
// rejections as domain.ErrPreconditionFailed.
type Client interface {
	GetTaskRun(ctx context.Context, id domain.TaskRunID) (*domain.TaskRun, error)
	SearchTaskRuns(ctx context.Context, req SearchRequest) (*SearchResult, error)
	GetTaskDef(ctx context.Context, name string) (*domain.TaskDef, error)

	Assign(ctx context.Context, id domain.TaskRunID, req AssignRequest) error
	Cancel(ctx context.Context, id domain.TaskRunID) error
	Complete(ctx context.Context, id domain.TaskRunID, req CompleteRequest) error

	// Comment mutations append to the task-run's audit log. commentID is the
	// logical comment id shared by the whole add/edit/delete lifecycle.
	PutComment(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error
	EditComment(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error
	DeleteComment(ctx context.Context, id domain.TaskRunID, commentID, userID string) error
}
