package workflows

import (
	"errors"
	"strings"
)

// ErrNoteRequired is returned when reject or request-changes carries no text.
var ErrNoteRequired = errors.New("a reason is required")

// ReviewAction is a reviewer command against one project.
type ReviewAction struct {
	Kind Action
	// Note is the rejection reason or the change request message.
	Note string
}

func Approve() ReviewAction             { return ReviewAction{Kind: ActionApprove} }
func Reject(reason string) ReviewAction { return ReviewAction{Kind: ActionReject, Note: reason} }
func Unpublish() ReviewAction           { return ReviewAction{Kind: ActionUnpublish} }
func StartReview() ReviewAction         { return ReviewAction{Kind: ActionStartReview} }
func RequestChanges(msg string) ReviewAction {
	return ReviewAction{Kind: ActionRequestChanges, Note: msg}
}

// RequiresNote reports whether the action carries mandatory text.
func (a Action) RequiresNote() bool {
	return a == ActionReject || a == ActionRequestChanges
}

// Validate blocks actions whose mandatory text is blank.
func (r ReviewAction) Validate() error {
	if r.Kind.RequiresNote() && strings.TrimSpace(r.Note) == "" {
		return ErrNoteRequired
	}
	return nil
}

// Label is the button text for an action.
func (a Action) Label() string {
	switch a {
	case ActionApprove:
		return "Approve"
	case ActionReject:
		return "Reject"
	case ActionRequestChanges:
		return "Request Changes"
	case ActionUnpublish:
		return "Unpublish"
	case ActionStartReview:
		return "Start Review"
	case ActionResubmit:
		return "Resubmit"
	}
	return string(a)
}

// ParseAction accepts both the wire form ("request_changes") and the
// command-line form ("request-changes").
func ParseAction(s string) (Action, error) {
	a := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := defaultMachine.transitions[a]; !ok {
		return "", ErrUnknownAction
	}
	return a, nil
}
