package views

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// SubmissionState is what the submission form renders.
type SubmissionState struct {
	// Token is the edit token of the project being edited, empty for a
	// new submission.
	Token   string
	Project *catalog.Project
	Saving  bool
	Err     *ViewError
}

// SubmissionController drives the public submission form and the
// edit-by-token flow.
type SubmissionController struct {
	api    SubmissionAPI
	nav    Navigator
	logger *zap.Logger

	mu    sync.Mutex
	state SubmissionState
}

func NewSubmissionController(api SubmissionAPI, nav Navigator, logger *zap.Logger) *SubmissionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionController{api: api, nav: nav, logger: logger}
}

func (s *SubmissionController) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns the form contents: the loaded project's submitter fields,
// or an empty form.
func (s *SubmissionController) Draft() catalog.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Project == nil {
		return catalog.Submission{}
	}
	return s.state.Project.Submission()
}

// Open loads the project an edit token grants access to.
func (s *SubmissionController) Open(ctx context.Context, token string) error {
	p, err := s.api.GetProjectByToken(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Err = newViewError(err)
		return err
	}
	s.state = SubmissionState{Token: token, Project: p}
	return nil
}

// Submit validates the form and sends it. With an edit token loaded the
// project is resubmitted, otherwise a new project is created and its edit
// token kept for later changes.
func (s *SubmissionController) Submit(ctx context.Context, form catalog.Submission) (*catalog.Project, error) {
	if err := form.Validate(); err != nil {
		s.mu.Lock()
		s.state.Err = newViewError(err)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	if s.state.Saving {
		s.mu.Unlock()
		return nil, errors.New("submission already in progress")
	}
	s.state.Saving = true
	token := s.state.Token
	s.mu.Unlock()

	var (
		p   *catalog.Project
		err error
	)
	if token != "" {
		p, err = s.api.UpdateProjectByToken(ctx, token, form)
	} else {
		p, err = s.api.SubmitProject(ctx, form)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Saving = false
	if err != nil {
		s.state.Err = newViewError(err)
		s.logger.Debug("Submission failed", zap.Bool("edit", token != ""), zap.Error(err))
		return nil, err
	}
	if token == "" {
		token = p.EditToken
	}
	s.state.Token = token
	s.state.Project = p
	s.state.Err = nil
	return p, nil
}

// EditLink is the route a submitter uses to come back to the form.
func (s *SubmissionController) EditLink() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" {
		return ""
	}
	return RouteSubmit + "?token=" + s.state.Token
}

// Done leaves the form for the public dashboard.
func (s *SubmissionController) Done() {
	s.nav.Navigate(RouteHome)
}
