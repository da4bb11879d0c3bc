package engine

import (
	"sort"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/domain"
)

// Ledger is the folded comment view of a task-run's audit log, keyed by
// logical comment id. The backend never removes history, so a deleted
// comment keeps its slot as a deletion marker; latest state wins per id.
// A Ledger is a value: Append copies, and each request re-derives its ledger
// from a freshly fetched event list.
type Ledger map[string]domain.Comment

// FoldComments reduces the ordered audit log into the current comment view.
// Folding is idempotent: the same input always yields the same ledger.
func FoldComments(events []domain.AuditEvent) Ledger {
	ledger := Ledger{}
	for _, e := range events {
		ledger = ledger.Append(e)
	}
	return ledger
}

// Append produces a new ledger with the event applied. Non-comment events
// leave the ledger unchanged (still as a fresh copy, so the receiver is
// never mutated).
func (l Ledger) Append(e domain.AuditEvent) Ledger {
	next := make(Ledger, len(l)+1)
	for id, c := range l {
		next[id] = c
	}
	if !e.IsComment() || e.CommentID == "" {
		return next
	}

	comment := next[e.CommentID]
	comment.ID = e.CommentID

	switch e.Type {
	case domain.AuditEventCommentAdded:
		comment.UserID = e.UserID
		comment.Text = e.Comment
		comment.Time = e.Time
		comment.Deleted = false
	case domain.AuditEventCommentEdited:
		comment.Text = e.Comment
		comment.EditedAt = e.Time
		comment.Deleted = false
		if comment.UserID == "" {
			comment.UserID = e.UserID
		}
	case domain.AuditEventCommentDeleted:
		comment.Text = ""
		comment.EditedAt = e.Time
		comment.Deleted = true
	}

	next[e.CommentID] = comment
	return next
}

// Get returns the current state of one logical comment.
func (l Ledger) Get(commentID string) (domain.Comment, bool) {
	c, ok := l[commentID]
	return c, ok
}

// Comments returns the visible comment set, deletion markers included.
// The fold itself guarantees no relative order; sorting by logical id keeps
// HTTP responses deterministic.
func (l Ledger) Comments() []domain.Comment {
	out := make([]domain.Comment, 0, len(l))
	for _, c := range l {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
