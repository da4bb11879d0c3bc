package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/engine"
)

type ListCommentsInput struct {
	TaskRef
}

type ListCommentsOutput struct {
	Body []domain.Comment
}

type AddCommentInput struct {
	TaskRef
	Body struct {
		Comment string `json:"comment" minLength:"1" maxLength:"4096" doc:"Comment text"`
	}
}

type AddCommentOutput struct {
	Body domain.Comment
}

type EditCommentInput struct {
	TaskRef
	CommentID string `path:"commentID" doc:"Logical comment ID"`
	Body      struct {
		Comment string `json:"comment" minLength:"1" maxLength:"4096" doc:"New comment text"`
	}
}

type DeleteCommentInput struct {
	TaskRef
	CommentID string `path:"commentID" doc:"Logical comment ID"`
}

// RegisterCommentRoutes wires the comment surface. Comments live in the
// task-run's append-only audit log; the handlers fold the freshly fetched
// log into the current view and never mutate events in place.
func RegisterCommentRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-comments",
		Method:      http.MethodGet,
		Path:        "/tasks/{wfRunID}/{taskGUID}/comments",
		Summary:     "List the current comment view of a task-run",
		Tags:        []string{"Comments"},
	}, func(ctx context.Context, input *ListCommentsInput) (*ListCommentsOutput, error) {
		_, run, err := fetchViewable(ctx, input.TaskRef)
		if err != nil {
			return nil, err
		}

		return &ListCommentsOutput{Body: engine.FoldComments(run.Events).Comments()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-comment",
		Method:      http.MethodPost,
		Path:        "/tasks/{wfRunID}/{taskGUID}/comment",
		Summary:     "Add a comment to a task-run",
		Tags:        []string{"Comments"},
	}, func(ctx context.Context, input *AddCommentInput) (*AddCommentOutput, error) {
		state, run, err := fetchViewable(ctx, input.TaskRef)
		if err != nil {
			return nil, err
		}
		if run.Status.IsTerminal() {
			return nil, huma.Error403Forbidden("task-run is in a terminal state")
		}

		// The logical comment id is minted here and shared by every later
		// edit/delete event of this comment.
		commentID := uuid.NewString()
		err = state.Tenant.Backend.PutComment(ctx, input.id(), commentID, state.Actor.UserID, input.Body.Comment)
		if err != nil {
			return nil, mapError(err)
		}

		return &AddCommentOutput{Body: domain.Comment{
			ID:     commentID,
			UserID: state.Actor.UserID,
			Text:   input.Body.Comment,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-comment",
		Method:      http.MethodPut,
		Path:        "/tasks/{wfRunID}/{taskGUID}/comment/{commentID}",
		Summary:     "Edit a comment the caller authored",
		Tags:        []string{"Comments"},
	}, func(ctx context.Context, input *EditCommentInput) (*EmptyOutput, error) {
		state, run, err := fetchViewable(ctx, input.TaskRef)
		if err != nil {
			return nil, err
		}
		if run.Status.IsTerminal() {
			return nil, huma.Error403Forbidden("task-run is in a terminal state")
		}
		if err := requireAuthor(state.Actor, run, input.CommentID); err != nil {
			return nil, err
		}

		err = state.Tenant.Backend.EditComment(ctx, input.id(), input.CommentID, state.Actor.UserID, input.Body.Comment)
		if err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-comment",
		Method:      http.MethodDelete,
		Path:        "/tasks/{wfRunID}/{taskGUID}/comment/{commentID}",
		Summary:     "Delete a comment the caller authored",
		Tags:        []string{"Comments"},
	}, func(ctx context.Context, input *DeleteCommentInput) (*EmptyOutput, error) {
		state, run, err := fetchViewable(ctx, input.TaskRef)
		if err != nil {
			return nil, err
		}
		if run.Status.IsTerminal() {
			return nil, huma.Error403Forbidden("task-run is in a terminal state")
		}
		if err := requireAuthor(state.Actor, run, input.CommentID); err != nil {
			return nil, err
		}

		err = state.Tenant.Backend.DeleteComment(ctx, input.id(), input.CommentID, state.Actor.UserID)
		if err != nil {
			return nil, mapError(err)
		}
		return &EmptyOutput{}, nil
	})
}

// fetchViewable fetches the task-run and enforces read visibility.
func fetchViewable(ctx context.Context, ref TaskRef) (*requestState, *domain.TaskRun, error) {
	state, err := stateFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	run, err := state.Tenant.Backend.GetTaskRun(ctx, ref.id())
	if err != nil {
		return nil, nil, mapError(err)
	}
	if err := engine.RequireView(state.Actor, run); err != nil {
		return nil, nil, mapError(err)
	}
	return state, run, nil
}

// requireAuthor folds the audit log and checks the comment exists, is not
// already deleted, and was authored by the actor. Admins may edit or delete
// any comment.
func requireAuthor(actor domain.Actor, run *domain.TaskRun, commentID string) error {
	comment, ok := engine.FoldComments(run.Events).Get(commentID)
	if !ok || comment.Deleted {
		return huma.Error404NotFound("no such comment")
	}
	if !actor.IsAdmin && !actor.IsUser(comment.UserID) {
		return huma.Error403Forbidden("only the comment author may modify it")
	}
	return nil
}
