package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/workflows"
)

// ReviewState is what the review screen renders.
type ReviewState struct {
	Project *catalog.Project
	History []catalog.ReviewEvent
	// Actions are the buttons to offer, in display order.
	Actions    []workflows.Action
	Submitting bool
	Err        *ViewError
}

// ReviewController drives the admin review screen of one project.
//
// Actions are checked against the state machine before anything is sent.
// The displayed workflow status is never changed locally: a successful
// decision navigates back to the admin dashboard, and start-review shows
// the project as returned by the API.
type ReviewController struct {
	api     AdminAPI
	machine *workflows.StateMachine
	nav     Navigator
	logger  *zap.Logger

	mu    sync.Mutex
	state ReviewState
}

func NewReviewController(api AdminAPI, machine *workflows.StateMachine, nav Navigator, logger *zap.Logger) *ReviewController {
	if machine == nil {
		machine = workflows.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewController{api: api, machine: machine, nav: nav, logger: logger}
}

func (r *ReviewController) State() ReviewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state
	st.History = append([]catalog.ReviewEvent(nil), r.state.History...)
	st.Actions = append([]workflows.Action(nil), r.state.Actions...)
	return st
}

// Load fetches the project and its review history together.
func (r *ReviewController) Load(ctx context.Context, id string) error {
	var (
		project *catalog.Project
		history []catalog.ReviewEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		project, err = r.api.AdminGetProject(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		history, err = r.api.AdminHistory(gctx, id)
		return err
	})
	err := g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state.Err = newViewError(err)
		return err
	}
	r.show(project)
	r.state.History = history
	r.state.Err = nil
	return nil
}

// CanPerform reports whether the button for action should be enabled.
func (r *ReviewController) CanPerform(action workflows.Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Project != nil && r.machine.CanTransition(r.state.Project.WorkflowStatus, action)
}

// Perform sends a review decision. A blank reason or message and an action
// the current status does not allow fail without a request.
func (r *ReviewController) Perform(ctx context.Context, action workflows.ReviewAction) error {
	r.mu.Lock()
	if r.state.Project == nil {
		r.mu.Unlock()
		return errors.New("no project loaded")
	}
	if r.state.Submitting {
		r.mu.Unlock()
		return errors.New("a review action is already in progress")
	}
	id, status := r.state.Project.ID, r.state.Project.WorkflowStatus
	if err := action.Validate(); err != nil {
		r.state.Err = newViewError(err)
		r.state.Err.Fields = map[string]string{noteField(action.Kind): "is required"}
		r.mu.Unlock()
		return err
	}
	if !r.machine.CanTransition(status, action.Kind) || !slices.Contains(r.state.Actions, action.Kind) {
		err := fmt.Errorf("%w: %s from %s", ErrIllegalAction, action.Kind, status)
		r.state.Err = newViewError(err)
		r.mu.Unlock()
		return err
	}
	r.state.Submitting = true
	r.state.Err = nil
	r.mu.Unlock()

	updated, err := r.api.Review(ctx, id, action)

	r.mu.Lock()
	r.state.Submitting = false
	if err != nil {
		r.state.Err = newViewError(err)
		r.mu.Unlock()
		r.logger.Debug("Review action failed",
			zap.String("project_id", id),
			zap.String("action", string(action.Kind)),
			zap.Error(err))
		return err
	}
	if action.Kind == workflows.ActionStartReview {
		r.show(updated)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	r.nav.Navigate(RouteAdminDashboard)
	return nil
}

// Save applies an admin edit and shows the project the API returns.
func (r *ReviewController) Save(ctx context.Context, patch catalog.ProjectPatch) error {
	r.mu.Lock()
	if r.state.Project == nil {
		r.mu.Unlock()
		return errors.New("no project loaded")
	}
	id := r.state.Project.ID
	r.mu.Unlock()

	if err := patch.Validate(); err != nil {
		r.mu.Lock()
		r.state.Err = newViewError(err)
		r.mu.Unlock()
		return err
	}

	updated, err := r.api.AdminUpdateProject(ctx, id, patch)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state.Err = newViewError(err)
		return err
	}
	r.show(updated)
	r.state.Err = nil
	return nil
}

// Back returns to the admin dashboard without acting.
func (r *ReviewController) Back() {
	r.nav.Navigate(RouteAdminDashboard)
}

// show replaces the displayed project. Callers hold r.mu.
func (r *ReviewController) show(p *catalog.Project) {
	r.state.Project = p
	r.state.Actions = r.machine.AvailableActions(p.WorkflowStatus)
}

func noteField(a workflows.Action) string {
	if a == workflows.ActionReject {
		return "reason"
	}
	return "message"
}
