package v1_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/api/v1"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
)

func TestListMyTasks(t *testing.T) {
	t.Parallel()

	t.Run("searches_by_actor_user_id", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			searchTaskRunsFunc: func(_ context.Context, req backend.SearchRequest) (*backend.SearchResult, error) {
				assert.Equal(t, "alice", req.UserID)
				assert.Equal(t, domain.TaskStatusAssigned, req.Status)
				return &backend.SearchResult{
					Runs:     []domain.TaskRun{*liveRun(domain.TaskStatusAssigned, "alice", "")},
					Bookmark: []byte("next"),
				}, nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.GetCtx(ctx, "/tasks?status=ASSIGNED")
		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.TaskRunList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Runs, 1)
		assert.Equal(t, "wf-1", body.Runs[0].WfRunID)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("next")), body.Bookmark)
	})

	t.Run("malformed_bookmark_is_400", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(&mockBackend{}), memberActor())
		resp := api.GetCtx(ctx, "/tasks?bookmark=%21%21not-base64%21%21")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("missing_auth_context_is_401", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterUserTaskRoutes(api)

		resp := api.Get("/tasks")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestListClaimableTasks(t *testing.T) {
	t.Parallel()

	t.Run("one_search_per_group", func(t *testing.T) {
		t.Parallel()

		var searchedGroups []string
		_, api := humatest.New(t)
		be := &mockBackend{
			searchTaskRunsFunc: func(_ context.Context, req backend.SearchRequest) (*backend.SearchResult, error) {
				assert.Equal(t, domain.TaskStatusUnassigned, req.Status)
				searchedGroups = append(searchedGroups, req.UserGroup)
				return &backend.SearchResult{
					Runs: []domain.TaskRun{*liveRun(domain.TaskStatusUnassigned, "", req.UserGroup)},
				}, nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops", "eng"))
		resp := api.GetCtx(ctx, "/tasks/claimable")
		require.Equal(t, http.StatusOK, resp.Code)

		assert.Equal(t, []string{"ops", "eng"}, searchedGroups)

		var body v1.TaskRunList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Runs, 2)
	})

	t.Run("foreign_group_filter_is_403", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(&mockBackend{}), memberActor("ops"))
		resp := api.GetCtx(ctx, "/tasks/claimable?user_group=finance")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("single_group_honors_bookmark", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			searchTaskRunsFunc: func(_ context.Context, req backend.SearchRequest) (*backend.SearchResult, error) {
				assert.Equal(t, []byte("page1"), req.Bookmark)
				return &backend.SearchResult{Bookmark: []byte("page2")}, nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops"))
		resp := api.GetCtx(ctx, "/tasks/claimable?user_group=ops&bookmark="+base64.StdEncoding.EncodeToString([]byte("page1")))
		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.TaskRunList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("page2")), body.Bookmark)
	})

	t.Run("groupless_actor_gets_empty_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(&mockBackend{}), memberActor())
		resp := api.GetCtx(ctx, "/tasks/claimable")
		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.TaskRunList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Empty(t, body.Runs)
	})
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	t.Run("visible_task_returns_detail", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		run := liveRun(domain.TaskStatusAssigned, "alice", "ops")
		run.Events = []domain.AuditEvent{
			{Type: domain.AuditEventCommentAdded, UserID: "alice", CommentID: "c1", Comment: "hi"},
		}
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, id domain.TaskRunID) (*domain.TaskRun, error) {
				assert.Equal(t, domain.TaskRunID{WfRunID: "wf-1", TaskGUID: "guid-1"}, id)
				return run, nil
			},
			getTaskDefFunc: func(_ context.Context, name string) (*domain.TaskDef, error) {
				assert.Equal(t, "approve-expense", name)
				return &domain.TaskDef{Name: name, Fields: []domain.TaskDefField{
					{Name: "approved", Type: domain.FieldTypeBoolean, Required: true},
				}}, nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops"))
		resp := api.GetCtx(ctx, "/tasks/wf-1/guid-1")
		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.TaskRunDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, domain.TaskStatusAssigned, body.Status)
		require.Len(t, body.Fields, 1)
		require.Len(t, body.Comments, 1)
		assert.Equal(t, "c1", body.Comments[0].ID)
	})

	t.Run("schema_failure_degrades_to_summary", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusAssigned, "alice", ""), nil
			},
			getTaskDefFunc: func(_ context.Context, _ string) (*domain.TaskDef, error) {
				return nil, domain.ErrInternal
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.GetCtx(ctx, "/tasks/wf-1/guid-1")
		require.Equal(t, http.StatusOK, resp.Code)

		var body v1.TaskRunDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Empty(t, body.Fields)
	})

	t.Run("invisible_task_is_401", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusAssigned, "bob", "finance"), nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops"))
		resp := api.GetCtx(ctx, "/tasks/wf-1/guid-1")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("unknown_task_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return nil, domain.ErrNotFound
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.GetCtx(ctx, "/tasks/wf-x/guid-x")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestCompleteTask(t *testing.T) {
	t.Parallel()

	def := &domain.TaskDef{Name: "approve-expense", Fields: []domain.TaskDefField{
		{Name: "approved", Type: domain.FieldTypeBoolean, Required: true},
		{Name: "comments", Type: domain.FieldTypeString, Required: true},
	}}

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var completed bool
		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusAssigned, "alice", ""), nil
			},
			getTaskDefFunc: func(_ context.Context, _ string) (*domain.TaskDef, error) {
				return def, nil
			},
			completeFunc: func(_ context.Context, _ domain.TaskRunID, req backend.CompleteRequest) error {
				completed = true
				assert.Equal(t, "alice", req.UserID)
				assert.Equal(t, "looks good", req.Results["comments"].Str)
				return nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/result", map[string]any{
			"results": map[string]any{
				"approved": map[string]any{"type": "BOOLEAN", "boolean": true},
				"comments": map[string]any{"type": "STR", "str": "looks good"},
			},
		})
		require.Equal(t, http.StatusNoContent, resp.Code)
		assert.True(t, completed, "backend Complete must be invoked")
	})

	t.Run("blank_required_field_is_400_naming_the_field", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusAssigned, "alice", ""), nil
			},
			getTaskDefFunc: func(_ context.Context, _ string) (*domain.TaskDef, error) {
				return def, nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/result", map[string]any{
			"results": map[string]any{
				"approved": map[string]any{"type": "BOOLEAN", "boolean": true},
				"comments": map[string]any{"type": "STR", "str": "   "},
			},
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "comments")
	})

	t.Run("terminal_task_is_403", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusDone, "alice", ""), nil
			},
			getTaskDefFunc: func(_ context.Context, _ string) (*domain.TaskDef, error) {
				return def, nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/result", map[string]any{"results": map[string]any{}})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestClaimTask(t *testing.T) {
	t.Parallel()

	t.Run("member_claim_sets_user_only", func(t *testing.T) {
		t.Parallel()

		var assigned bool
		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusUnassigned, "", "ops"), nil
			},
			assignFunc: func(_ context.Context, _ domain.TaskRunID, req backend.AssignRequest) error {
				assigned = true
				assert.Equal(t, "alice", req.UserID)
				assert.Empty(t, req.UserGroup, "group assignment must stay in place")
				assert.False(t, req.OverrideClaim)
				return nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops"))
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/claim")
		require.Equal(t, http.StatusNoContent, resp.Code)
		assert.True(t, assigned)
	})

	t.Run("non_member_claim_is_409", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusUnassigned, "", "finance"), nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops"))
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/claim")
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("lost_claim_race_is_409", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusUnassigned, "", "ops"), nil
			},
			assignFunc: func(_ context.Context, _ domain.TaskRunID, _ backend.AssignRequest) error {
				return domain.ErrConflict
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops"))
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/claim")
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("terminal_task_is_403", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusCancelled, "", "ops"), nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor("ops"))
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/claim")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestCancelTask(t *testing.T) {
	t.Parallel()

	t.Run("visible_live_task_cancels", func(t *testing.T) {
		t.Parallel()

		var cancelled bool
		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusAssigned, "alice", ""), nil
			},
			cancelFunc: func(_ context.Context, _ domain.TaskRunID) error {
				cancelled = true
				return nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/cancel")
		require.Equal(t, http.StatusNoContent, resp.Code)
		assert.True(t, cancelled)
	})

	t.Run("terminal_task_is_403", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		be := &mockBackend{
			getTaskRunFunc: func(_ context.Context, _ domain.TaskRunID) (*domain.TaskRun, error) {
				return liveRun(domain.TaskStatusDone, "alice", ""), nil
			},
		}
		v1.RegisterUserTaskRoutes(api)

		ctx := requestCtx(testTenant(be), memberActor())
		resp := api.PostCtx(ctx, "/tasks/wf-1/guid-1/cancel")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}
