package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/backend"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/engine"
)

type TaskRef struct {
	WfRunID  string `path:"wfRunID" doc:"Workflow run ID"`
	TaskGUID string `path:"taskGUID" doc:"User task GUID"`
}

func (r TaskRef) id() domain.TaskRunID {
	return domain.TaskRunID{WfRunID: r.WfRunID, TaskGUID: r.TaskGUID}
}

type ListMyTasksInput struct {
	Status   string `query:"status" enum:"UNASSIGNED,ASSIGNED,DONE,CANCELLED," doc:"Filter by status"`
	DefName  string `query:"user_task_def_name" doc:"Filter by task definition name"`
	Limit    int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size"`
	Bookmark string `query:"bookmark" doc:"Opaque pagination bookmark from a previous page"`
}

type ListTasksOutput struct {
	Body *TaskRunList
}

type ListClaimableTasksInput struct {
	UserGroup string `query:"user_group" doc:"Restrict to one of the caller's groups"`
	Limit     int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size"`
	Bookmark  string `query:"bookmark" doc:"Opaque pagination bookmark, honored when a single group is queried"`
}

type GetTaskInput struct {
	TaskRef
}

type GetTaskOutput struct {
	Body *TaskRunDetail
}

type CompleteTaskInput struct {
	TaskRef
	Body struct {
		Results map[string]domain.FieldValue `json:"results" doc:"Submitted field values keyed by field name"`
	}
}

type ClaimTaskInput struct {
	TaskRef
}

type CancelTaskInput struct {
	TaskRef
}

type EmptyOutput struct{}

// RegisterUserTaskRoutes wires the end-user task-inbox surface. Every
// operation re-fetches the task-run and decides against that fresh snapshot.
func RegisterUserTaskRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-my-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List the caller's task-runs",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListMyTasksInput) (*ListTasksOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}
		bookmark, err := decodeBookmark(input.Bookmark)
		if err != nil {
			return nil, err
		}

		result, err := state.Tenant.Backend.SearchTaskRuns(ctx, backend.SearchRequest{
			Status:   domain.TaskStatus(input.Status),
			DefName:  input.DefName,
			UserID:   state.Actor.UserID,
			Limit:    input.Limit,
			Bookmark: bookmark,
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
		OperationID: "list-claimable-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks/claimable",
		Summary:     "List unassigned task-runs routed to the caller's groups",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListClaimableTasksInput) (*ListTasksOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		groups := state.Actor.Groups
		if input.UserGroup != "" {
			if !state.Actor.InGroup(input.UserGroup) {
				return nil, huma.Error403Forbidden("not a member of the requested group")
			}
			groups = []string{input.UserGroup}
		}

		list := &TaskRunList{Runs: []TaskRunSummary{}}
		for _, group := range groups {
			req := backend.SearchRequest{
				Status:    domain.TaskStatusUnassigned,
				UserGroup: group,
				Limit:     input.Limit,
			}
			// The backend bookmark is scoped to one search, so it is only
			// honored when a single group is queried.
			if len(groups) == 1 {
				bookmark, err := decodeBookmark(input.Bookmark)
				if err != nil {
					return nil, err
				}
				req.Bookmark = bookmark
			}

			result, err := state.Tenant.Backend.SearchTaskRuns(ctx, req)
			if err != nil {
				return nil, mapError(err)
			}
			list.Runs = append(list.Runs, toSummaries(result.Runs)...)
			if len(groups) == 1 {
				list.Bookmark = encodeBookmark(result.Bookmark)
			}
		}

		return &ListTasksOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{wfRunID}/{taskGUID}",
		Summary:     "Get one task-run",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}
		if err := engine.RequireView(state.Actor, run); err != nil {
			return nil, mapError(err)
		}

		return &GetTaskOutput{Body: taskDetail(ctx, state, run)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{wfRunID}/{taskGUID}/result",
		Summary:     "Complete a task-run with submitted results",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CompleteTaskInput) (*EmptyOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}
		if err := engine.RequireView(state.Actor, run); err != nil {
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

	huma.Register(api, huma.Operation{
		OperationID: "claim-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{wfRunID}/{taskGUID}/claim",
		Summary:     "Claim an unassigned, group-routed task-run",
		Tags:        []string{"Tasks"},
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

		// A member claim sets only the user; the group assignment stays in
		// place so the group keeps its claim over the task.
		resolver := state.Tenant.Resolver()
		mutation := resolver.BuildAssignmentMutation(
			domain.AssignmentRequest{UserID: state.Actor.UserID}, "", state.Actor.IsAdmin)

		if err := state.Tenant.Backend.Assign(ctx, input.id(), mutation); err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{wfRunID}/{taskGUID}/cancel",
		Summary:     "Cancel a task-run",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CancelTaskInput) (*EmptyOutput, error) {
		state, err := stateFromContext(ctx)
		if err != nil {
			return nil, err
		}

		run, err := state.Tenant.Backend.GetTaskRun(ctx, input.id())
		if err != nil {
			return nil, mapError(err)
		}
		if err := engine.RequireView(state.Actor, run); err != nil {
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
}

// taskDetail assembles the detail view: summary, field schema, folded
// comments, and best-effort assignee enrichment. Schema and enrichment
// failures degrade rather than fail the read.
func taskDetail(ctx context.Context, state *requestState, run *domain.TaskRun) *TaskRunDetail {
	detail := &TaskRunDetail{
		TaskRunSummary: toSummary(run),
		Comments:       engine.FoldComments(run.Events).Comments(),
		AssignedUser:   enrichAssignee(ctx, state.Tenant, run),
	}
	if def, err := state.Tenant.Backend.GetTaskDef(ctx, run.DefName); err == nil {
		detail.Fields = def.Fields
	}
	return detail
}
