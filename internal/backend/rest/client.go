// Package rest binds the workflow-backend contract to its HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
)

// Client implements backend.Client over the workflow backend's HTTP API.
// One Client serves one tenant's backend connection; fetched task-runs are
// stamped with that tenant id.
type Client struct {
	baseURL  string
	tenantID string
	token    string // optional static bearer token for the backend connection
	http     *http.Client
}

// Compile-time interface check.
var _ backend.Client = (*Client)(nil)

// New creates a Client for one tenant's backend connection. token may be
// empty when the connection is unauthenticated (e.g. in-cluster).
func New(baseURL, tenantID, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tenantID: tenantID,
		token:    token,
		http:     &http.Client{Timeout: timeout},
	}
}

// Wire representations. The backend speaks a flat JSON dialect; timestamps
// are RFC 3339 and pagination bookmarks base64 byte blobs.

type taskRunDTO struct {
	WfRunID       string          `json:"wf_run_id"`
	TaskGUID      string          `json:"user_task_guid"`
	DefName       string          `json:"user_task_def_name"`
	Status        string          `json:"status"`
	UserID        string          `json:"user_id,omitempty"`
	UserGroup     string          `json:"user_group,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	Events        []auditEventDTO `json:"events,omitempty"`
}

type auditEventDTO struct {
	Type      string    `json:"type"`
	Time      time.Time `json:"time"`
	UserID    string    `json:"user_id,omitempty"`
	CommentID string    `json:"comment_id,omitempty"`
	Comment   string    `json:"comment,omitempty"`
}

type searchRequestDTO struct {
	Status    string `json:"status,omitempty"`
	DefName   string `json:"user_task_def_name,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	UserGroup string `json:"user_group,omitempty"`
	Earliest  string `json:"earliest_start,omitempty"`
	Latest    string `json:"latest_start,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Bookmark  string `json:"bookmark,omitempty"`
}

type searchResultDTO struct {
	Results  []taskRunDTO `json:"results"`
	Bookmark string       `json:"bookmark,omitempty"`
}

type assignRequestDTO struct {
	UserID        string `json:"user_id,omitempty"`
	UserGroup     string `json:"user_group,omitempty"`
	OverrideClaim bool   `json:"override_claim"`
}

type completeRequestDTO struct {
	UserID  string                       `json:"user_id"`
	Results map[string]domain.FieldValue `json:"results"`
}

type commentRequestDTO struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
	Comment   string `json:"comment,omitempty"`
}

func (c *Client) GetTaskRun(ctx context.Context, id domain.TaskRunID) (*domain.TaskRun, error) {
	var dto taskRunDTO
	err := c.do(ctx, http.MethodGet, c.taskURL(id), nil, &dto)
	if err != nil {
		return nil, fmt.Errorf("rest.Client.GetTaskRun: %w", err)
	}
	return c.fromTaskRunDTO(&dto), nil
}

func (c *Client) SearchTaskRuns(ctx context.Context, req backend.SearchRequest) (*backend.SearchResult, error) {
	body := searchRequestDTO{
		Status:    string(req.Status),
		DefName:   req.DefName,
		UserID:    req.UserID,
		UserGroup: req.UserGroup,
		Earliest:  req.Earliest,
		Latest:    req.Latest,
		Limit:     req.Limit,
		Bookmark:  base64.StdEncoding.EncodeToString(req.Bookmark),
	}
	if len(req.Bookmark) == 0 {
		body.Bookmark = ""
	}

	var dto searchResultDTO
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/tasks/search", body, &dto); err != nil {
		return nil, fmt.Errorf("rest.Client.SearchTaskRuns: %w", err)
	}

	result := &backend.SearchResult{Runs: make([]domain.TaskRun, 0, len(dto.Results))}
	for i := range dto.Results {
		result.Runs = append(result.Runs, *c.fromTaskRunDTO(&dto.Results[i]))
	}
	if dto.Bookmark != "" {
		bm, err := base64.StdEncoding.DecodeString(dto.Bookmark)
		if err != nil {
			return nil, fmt.Errorf("rest.Client.SearchTaskRuns: decode bookmark: %w: %w", domain.ErrInternal, err)
		}
		result.Bookmark = bm
	}
	return result, nil
}

func (c *Client) GetTaskDef(ctx context.Context, name string) (*domain.TaskDef, error) {
	var def domain.TaskDef
	u := c.baseURL + "/taskdefs/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodGet, u, nil, &def); err != nil {
		return nil, fmt.Errorf("rest.Client.GetTaskDef: %w", err)
	}
	return &def, nil
}

func (c *Client) Assign(ctx context.Context, id domain.TaskRunID, req backend.AssignRequest) error {
	body := assignRequestDTO{
		UserID:        req.UserID,
		UserGroup:     req.UserGroup,
		OverrideClaim: req.OverrideClaim,
	}
	if err := c.do(ctx, http.MethodPost, c.taskURL(id)+"/assign", body, nil); err != nil {
		return fmt.Errorf("rest.Client.Assign: %w", err)
	}
	return nil
}

func (c *Client) Cancel(ctx context.Context, id domain.TaskRunID) error {
	if err := c.do(ctx, http.MethodPost, c.taskURL(id)+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("rest.Client.Cancel: %w", err)
	}
	return nil
}

func (c *Client) Complete(ctx context.Context, id domain.TaskRunID, req backend.CompleteRequest) error {
	body := completeRequestDTO{UserID: req.UserID, Results: req.Results}
	if err := c.do(ctx, http.MethodPost, c.taskURL(id)+"/complete", body, nil); err != nil {
		return fmt.Errorf("rest.Client.Complete: %w", err)
	}
	return nil
}

func (c *Client) PutComment(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error {
	body := commentRequestDTO{CommentID: commentID, UserID: userID, Comment: text}
	if err := c.do(ctx, http.MethodPost, c.taskURL(id)+"/comments", body, nil); err != nil {
		return fmt.Errorf("rest.Client.PutComment: %w", err)
	}
	return nil
}

func (c *Client) EditComment(ctx context.Context, id domain.TaskRunID, commentID, userID, text string) error {
	body := commentRequestDTO{CommentID: commentID, UserID: userID, Comment: text}
	u := c.taskURL(id) + "/comments/" + url.PathEscape(commentID)
	if err := c.do(ctx, http.MethodPut, u, body, nil); err != nil {
		return fmt.Errorf("rest.Client.EditComment: %w", err)
	}
	return nil
}

func (c *Client) DeleteComment(ctx context.Context, id domain.TaskRunID, commentID, userID string) error {
	body := commentRequestDTO{CommentID: commentID, UserID: userID}
	u := c.taskURL(id) + "/comments/" + url.PathEscape(commentID)
	if err := c.do(ctx, http.MethodDelete, u, body, nil); err != nil {
		return fmt.Errorf("rest.Client.DeleteComment: %w", err)
	}
	return nil
}

func (c *Client) taskURL(id domain.TaskRunID) string {
	return c.baseURL + "/tasks/" + url.PathEscape(id.WfRunID) + "/" + url.PathEscape(id.TaskGUID)
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Context cancellation/deadline is its own failure class; surface it
		// unmasked so callers can tell it from a backend rejection.
		if ctx.Err() != nil {
			return fmt.Errorf("%s %s: %w", method, u, ctx.Err())
		}
		return fmt.Errorf("%s %s: %w: %w", method, u, domain.ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s: %w",
			method, u, resp.StatusCode, strings.TrimSpace(string(msg)), classifyStatus(resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w: %w", domain.ErrInternal, err)
		}
	}
	return nil
}

func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return domain.ErrBadRequest
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusPreconditionFailed:
		return domain.ErrPreconditionFailed
	default:
		return domain.ErrInternal
	}
}

func (c *Client) fromTaskRunDTO(dto *taskRunDTO) *domain.TaskRun {
	run := &domain.TaskRun{
		ID:            domain.TaskRunID{WfRunID: dto.WfRunID, TaskGUID: dto.TaskGUID},
		TenantID:      c.tenantID,
		DefName:       dto.DefName,
		Status:        domain.TaskStatus(dto.Status),
		UserID:        dto.UserID,
		UserGroup:     dto.UserGroup,
		Notes:         dto.Notes,
		ScheduledTime: dto.ScheduledTime,
	}
	for _, e := range dto.Events {
		run.Events = append(run.Events, domain.AuditEvent{
			Type:      domain.AuditEventType(e.Type),
			Time:      e.Time,
			UserID:    e.UserID,
			CommentID: e.CommentID,
			Comment:   e.Comment,
		})
	}
	return run
}
