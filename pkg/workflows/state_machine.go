package workflows

import (
	"errors"
	"fmt"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// Action is a command that moves a project through review.
type Action string

const (
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionRequestChanges Action = "request_changes"
	ActionUnpublish      Action = "unpublish"
	ActionStartReview    Action = "start_review"
	ActionResubmit       Action = "resubmit"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownAction     = errors.New("unknown review action")
)

type transition struct {
	from []catalog.WorkflowStatus // nil means any state
	to   catalog.WorkflowStatus
}

// StateMachine enforces workflow status transitions
type StateMachine struct {
	transitions map[Action]transition
	// order in which reviewer actions are offered
	display []Action
}

// NewStateMachine creates a new state machine with allowed transitions
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[Action]transition{
			ActionApprove: {
				from: []catalog.WorkflowStatus{catalog.StatusSubmitted, catalog.StatusInReview, catalog.StatusChangesRequested},
				to:   catalog.StatusApproved,
			},
			ActionReject: {
				from: []catalog.WorkflowStatus{catalog.StatusSubmitted, catalog.StatusInReview, catalog.StatusChangesRequested},
				to:   catalog.StatusRejected,
			},
			// A rejected submission can be reopened by asking for changes.
			ActionRequestChanges: {
				from: []catalog.WorkflowStatus{catalog.StatusSubmitted, catalog.StatusInReview, catalog.StatusRejected},
				to:   catalog.StatusChangesRequested,
			},
			ActionUnpublish: {
				from: []catalog.WorkflowStatus{catalog.StatusApproved},
				to:   catalog.StatusSubmitted,
			},
			ActionStartReview: {
				from: []catalog.WorkflowStatus{catalog.StatusSubmitted},
				to:   catalog.StatusInReview,
			},
			ActionResubmit: {
				to: catalog.StatusSubmitted,
			},
		},
		display: []Action{ActionStartReview, ActionRequestChanges, ActionReject, ActionApprove, ActionUnpublish},
	}
}

// CanTransition checks if action is allowed from the current status
func (sm *StateMachine) CanTransition(current catalog.WorkflowStatus, action Action) bool {
	t, exists := sm.transitions[action]
	if !exists || !current.Valid() {
		return false
	}
	if t.from == nil {
		return true
	}
	for _, allowed := range t.from {
		if allowed == current {
			return true
		}
	}
	return false
}

// Next returns the status reached by applying action to current.
func (sm *StateMachine) Next(current catalog.WorkflowStatus, action Action) (catalog.WorkflowStatus, error) {
	t, exists := sm.transitions[action]
	if !exists {
		return current, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if !sm.CanTransition(current, action) {
		return current, fmt.Errorf("%w: cannot %s a project that is %s", ErrInvalidTransition, action, current)
	}
	return t.to, nil
}

// AvailableActions returns the reviewer actions legal from current, in
// display order. Resubmission belongs to the submitter and is not listed.
func (sm *StateMachine) AvailableActions(current catalog.WorkflowStatus) []Action {
	actions := []Action{}
	for _, a := range sm.display {
		if sm.CanTransition(current, a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// GetAllowedTransitions returns the statuses reachable from current
func (sm *StateMachine) GetAllowedTransitions(current catalog.WorkflowStatus) []catalog.WorkflowStatus {
	seen := map[catalog.WorkflowStatus]bool{}
	statuses := []catalog.WorkflowStatus{}
	candidates := append(append([]Action{}, sm.display...), ActionResubmit)
	for _, a := range candidates {
		if !sm.CanTransition(current, a) {
			continue
		}
		to := sm.transitions[a].to
		if to != current && !seen[to] {
			seen[to] = true
			statuses = append(statuses, to)
		}
	}
	return statuses
}

// ActionFor finds the single action that moves from one status to another.
// Admin edits that set workflow_status directly are resolved through it.
func (sm *StateMachine) ActionFor(from, to catalog.WorkflowStatus) (Action, bool) {
	for _, a := range sm.display {
		if sm.transitions[a].to == to && sm.CanTransition(from, a) {
			return a, true
		}
	}
	return "", false
}

var defaultMachine = NewStateMachine()

// CanTransition reports whether action is legal from current using the
// standard review table.
func CanTransition(current catalog.WorkflowStatus, action Action) bool {
	return defaultMachine.CanTransition(current, action)
}

// Default returns the shared standard state machine.
func Default() *StateMachine {
	return defaultMachine
}
