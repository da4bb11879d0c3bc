package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/engine"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/identity"
)

type AdminListTasksInput struct {
	Status    string `query:"status" enum:"UNASSIGNED,ASSIGNED,DONE,CANCELLED," doc:"Filter by status"`
	DefName   string `query:"user_task_def_name" doc:"Filter by task definition name"`
	UserID    string `query:"user_id" doc:"Filter by assigned user"`
	UserGroup string `query:"user_group" doc:"Filter by assigned group"`
	Earliest  string `query:"earliest_start" doc:"Earliest scheduled time, RFC 3339"`
	Latest    string `query:"latest_start" doc:"Latest scheduled time, RFC 3339"`
	Limit     int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size"`
	Bookmark  string `query:"bookmark" doc:"Opaque pagination bookmark from a previous page"`
}

type AssignTaskInput struct {
	TaskRef
	Body domain.AssignmentRequest
}

// RegisterAdminTaskRoutes wires the administrator task surface. The router
// mounts these behind the admin-authority guard; the engine's admin rules
// (override claim, bypass group checks) still apply per operation.
func RegisterAdminTaskRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "admin-list-tasks",
		Method:      http.MethodGet,
		Path:        "/admin/tasks",
		Summary:     "List task-runs across all users and groups",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *AdminListTasksInput) (*ListTasksOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}
		bookmark, err := decodeBookmark(input.Bookmark)
		if err != nil {
			return nil, err
		}

		result, err := state.Tenant.Backend.SearchTaskRuns(ctx, backend.SearchRequest{
			Status:    domain.TaskStatus(input.Status),
			DefName:   input.DefName,
			UserID:    input.UserID,
			UserGroup: input.UserGroup,
			Earliest:  input.Earliest,
			Latest:    input.Latest,
			Limit:     input.Limit,
			Bookmark:  bookmark,
		})
		if err != nil {
			return nil, mapError(err)
		}

		return &ListTasksOutput{Body: &TaskRunList{
			Runs:     toSummaries(result.Runs),
			Bookmark: encodeBookmark(result.Bookmark),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-get-task",
		Method:      http.MethodGet,
		Path:        "/admin/tasks/{wfRunID}/{taskGUID}",
		Summary:     "Get one task-run with assignment enrichment",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}

		return &GetTaskOutput{Body: taskDetail(ctx, state, run)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-assign-task",
		Method:      http.MethodPost,
		Path:        "/admin/tasks/{wfRunID}/{taskGUID}/assign",
		Summary:     "Assign a task-run to a user and/or group",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *AssignTaskInput) (*EmptyOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}
		if run.Status.IsTerminal() {
			return nil, huma.Error403Forbidden("task-run is in a terminal state")
		}
		if input.Body.Empty() {
			return nil, huma.Error400BadRequest("assignment needs a user and/or a group")
		}

		// Pre-check the targets against the identity provider when one is
		// configured; without an adapter the raw identifiers pass through and
		// the backend mutation fails naturally on a bad target.
		if adapter, ok := state.Tenant.Identity(); ok {
			if err := identity.ValidateAssignmentProperties(ctx, adapter, input.Body); err != nil {
				return nil, mapError(err)
			}
		}

		resolver := state.Tenant.Resolver()
		groupName, err := resolver.ResolveGroupTarget(ctx, input.Body.GroupID)
		if err != nil {
			return nil, mapError(err)
		}

		mutation := resolver.BuildAssignmentMutation(input.Body, groupName, true)
		if err := state.Tenant.Backend.Assign(ctx, input.id(), mutation); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-claim-task",
		Method:      http.MethodPost,
		Path:        "/admin/tasks/{wfRunID}/{taskGUID}/claim",
		Summary:     "Claim a task-run, overriding any existing assignment",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ClaimTaskInput) (*EmptyOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}
		if err := engine.ValidateClaim(state.Actor, run); err != nil {
			return nil, mapError(err)
		}

		resolver := state.Tenant.Resolver()
		mutation := resolver.BuildAssignmentMutation(
			domain.AssignmentRequest{UserID: state.Actor.UserID}, "", true)

		if err := state.Tenant.Backend.Assign(ctx, input.id(), mutation); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-cancel-task",
		Method:      http.MethodPost,
		Path:        "/admin/tasks/{wfRunID}/{taskGUID}/cancel",
		Summary:     "Cancel a task-run",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *CancelTaskInput) (*EmptyOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}
		if err := engine.ValidateCancellation(run); err != nil {
			return nil, mapError(err)
		}

		if err := state.Tenant.Backend.Cancel(ctx, input.id()); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-complete-task",
		Method:      http.MethodPost,
		Path:        "/admin/tasks/{wfRunID}/{taskGUID}/result",
		Summary:     "Complete a task-run on a user's behalf",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *CompleteTaskInput) (*EmptyOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}

		def, err := state.Tenant.Backend.GetTaskDef(ctx, run.DefName)
		if err != nil {
			return nil, mapError(err)
		}
		if err := engine.ValidateCompletion(run, def, input.Body.Results); err != nil {
			return nil, mapError(err)
		}

		err = state.Tenant.Backend.Complete(ctx, input.id(), backend.CompleteRequest{
			UserID:  state.Actor.UserID,
			Results: input.Body.Results,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})
}
