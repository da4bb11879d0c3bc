package domain

import "time"

type AuditEventType string

const (
	AuditEventSaved          AuditEventType = "SAVED"
	AuditEventAssigned       AuditEventType = "ASSIGNED"
	AuditEventCancelled      AuditEventType = "CANCELLED"
	AuditEventCompleted      AuditEventType = "COMPLETED"
	AuditEventCommentAdded   AuditEventType = "COMMENT_ADDED"
	AuditEventCommentEdited  AuditEventType = "COMMENT_EDITED"
	AuditEventCommentDeleted AuditEventType = "COMMENT_DELETED"
)

// AuditEvent is one entry of a task-run's append-only history. The workflow
// backend owns the log; the bridge only reads and folds it. Comment events
// share a logical CommentID across the add/edit/delete lifecycle of the same
// comment.
type AuditEvent struct {
	Type      AuditEventType `json:"type"`
	Time      time.Time      `json:"time"`
	UserID    string         `json:"user_id,omitempty"`
	CommentID string         `json:"comment_id,omitempty"` // comment events only
	Comment   string         `json:"comment,omitempty"`    // added/edited payload
}

// IsComment reports whether the event belongs to the comment lifecycle.
func (e AuditEvent) IsComment() bool {
	switch e.Type {
	case AuditEventCommentAdded, AuditEventCommentEdited, AuditEventCommentDeleted:
		return true
	default:
		return false
	}
}

// Comment is the current state of one logical comment, derived by folding
// the audit log. Deleted comments stay in the view as deletion markers.
type Comment struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Text     string    `json:"text,omitempty"`
	Time     time.Time `json:"time"`
	EditedAt time.Time `json:"edited_at,omitzero"`
	Deleted  bool      `json:"deleted,omitempty"`
}
