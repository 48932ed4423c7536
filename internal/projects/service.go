package projects

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
	"uia-atlas/atlas-portal/pkg/workflows"
)

var ErrNotFound = errors.New("project not found")

// Notifier is told about workflow events that reach people. Implementations
// must not block the request for long and must swallow their own failures.
type Notifier interface {
	ProjectSubmitted(ctx context.Context, p *Project)
	ProjectApproved(ctx context.Context, p *Project)
	ProjectRejected(ctx context.Context, p *Project, reason string)
	ChangesRequested(ctx context.Context, p *Project, message string)
}

type nopNotifier struct{}

func (nopNotifier) ProjectSubmitted(context.Context, *Project)         {}
func (nopNotifier) ProjectApproved(context.Context, *Project)          {}
func (nopNotifier) ProjectRejected(context.Context, *Project, string)  {}
func (nopNotifier) ChangesRequested(context.Context, *Project, string) {}

// Page is one page of a project listing.
type Page struct {
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Projects []Project `json:"projects"`
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// OnChange registers a hook run after any write that can alter public data.
func OnChange(fn func()) Option {
	return func(s *Service) { s.onChange = append(s.onChange, fn) }
}

// Service implements the submission and review workflow.
type Service struct {
	repo     Repository
	machine  *workflows.StateMachine
	notifier Notifier
	onChange []func()
	logger   *zap.Logger
	newToken func() (string, error)
}

func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		machine:  workflows.Default(),
		notifier: nopNotifier{},
		logger:   logger,
		newToken: editToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func editToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate edit token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *Service) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

func (s *Service) record(ctx context.Context, e *ReviewEvent) {
	if err := s.repo.CreateEvent(ctx, e); err != nil {
		s.logger.Error("Failed to record review event",
			zap.Error(err),
			zap.String("project_id", e.ProjectID.String()),
			zap.String("action", e.Action))
	}
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// =====================================================
// Public operations
// =====================================================

// Submit stores a new submission awaiting review and returns it with its
// edit token.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*WithToken, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	p := &Project{WorkflowStatus: catalog.StatusSubmitted, EditToken: token}
	req.apply(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.record(ctx, &ReviewEvent{
		ProjectID: p.ID,
		Action:    EventSubmitted,
		To:        catalog.StatusSubmitted,
		Actor:     p.ContactEmail,
	})
	s.logger.Info("Project submitted",
		zap.String("project_id", p.ID.String()),
		zap.String("city", p.City))
	s.notifier.ProjectSubmitted(ctx, p)

	return &WithToken{Project: p, EditToken: token}, nil
}

// GetPublic returns an approved project. Anything else is not found.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (*Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.WorkflowStatus != catalog.StatusApproved {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) GetByToken(ctx context.Context, token string) (*WithToken, error) {
	p, err := s.repo.GetByEditToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get project by token: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return &WithToken{Project: p, EditToken: p.EditToken}, nil
}

// UpdateByToken replaces the submitter-owned fields and sends the project
// back to review.
func (s *Service) UpdateByToken(ctx context.Context, token string, req *SubmitRequest) (*WithToken, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	current, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	p := current.Project

	from := p.WorkflowStatus
	next, err := s.machine.Next(from, workflows.ActionResubmit)
	if err != nil {
		return nil, err
	}
	req.apply(p)
	p.WorkflowStatus = next
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.record(ctx, &ReviewEvent{
		ProjectID: p.ID,
		Action:    string(workflows.ActionResubmit),
		From:      from,
		To:        next,
		Actor:     p.ContactEmail,
	})
	s.logger.Info("Project resubmitted", zap.String("project_id", p.ID.String()))
	if from == catalog.StatusApproved {
		s.changed()
	}
	s.notifier.ProjectSubmitted(ctx, p)

	return &WithToken{Project: p, EditToken: p.EditToken}, nil
}

// ListPublic pages through approved projects matching f.
func (s *Service) ListPublic(ctx context.Context, f filters.Set, opts catalog.ListOptions) (*Page, error) {
	return s.list(ctx, ListQuery{
		Statuses:  []catalog.WorkflowStatus{catalog.StatusApproved},
		Filters:   f,
		Page:      opts.Page,
		PageSize:  opts.PageSize,
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
	})
}

// Approved returns every approved project matching f, unpaged.
func (s *Service) Approved(ctx context.Context, f filters.Set) ([]Project, error) {
	out, _, err := s.repo.List(ctx, ListQuery{
		Statuses: []catalog.WorkflowStatus{catalog.StatusApproved},
		Filters:  f,
		SortBy:   catalog.SortByCreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("list approved projects: %w", err)
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, q ListQuery) (*Page, error) {
	projects, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return &Page{Total: total, Page: q.Page, PageSize: q.PageSize, Projects: projects}, nil
}

// =====================================================
// Admin operations
// =====================================================

// ListPending returns submissions waiting for a reviewer, newest first. A
// zero pageSize returns all of them.
func (s *Service) ListPending(ctx context.Context, page, pageSize int) (*Page, error) {
	return s.list(ctx, ListQuery{
		Statuses:  []catalog.WorkflowStatus{catalog.StatusSubmitted, catalog.StatusInReview},
		Page:      page,
		PageSize:  pageSize,
		SortBy:    catalog.SortByCreatedAt,
		SortOrder: catalog.SortDesc,
	})
}

func (s *Service) ListAll(ctx context.Context, page, pageSize int, status catalog.WorkflowStatus) (*Page, error) {
	q := ListQuery{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    catalog.SortByCreatedAt,
		SortOrder: catalog.SortDesc,
	}
	if status != "" {
		q.Statuses = []catalog.WorkflowStatus{status}
	}
	return s.list(ctx, q)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.load(ctx, id)
}

// Update applies an admin edit. A workflow status in the patch is only
// honoured when it is the unpublish transition.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest, actor string) (*Project, error) {
	patch := req.patch()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, catalog.ValidationErrors{"location": "latitude and longitude must be given together"}
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.WorkflowStatus
	action := ""
	if patch.WorkflowStatus != nil && *patch.WorkflowStatus != from {
		a, ok := s.machine.ActionFor(from, *patch.WorkflowStatus)
		if !ok || a != workflows.ActionUnpublish {
			return nil, fmt.Errorf("%w: status %s cannot be set to %s by an edit",
				workflows.ErrInvalidTransition, from, *patch.WorkflowStatus)
		}
		action = string(a)
	}

	changes := applyPatch(p, patch)
	if action != "" {
		p.WorkflowStatus = *patch.WorkflowStatus
	}
	if len(changes) == 0 && action == "" {
		return p, nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if len(changes) > 0 {
		s.record(ctx, &ReviewEvent{
			ProjectID: p.ID,
			Action:    EventEdited,
			From:      from,
			To:        from,
			Actor:     actor,
			Changes:   changesJSON(changes),
		})
	}
	if action != "" {
		s.record(ctx, &ReviewEvent{ProjectID: p.ID, Action: action, From: from, To: p.WorkflowStatus, Actor: actor})
	}
	s.logger.Info("Project updated",
		zap.String("project_id", p.ID.String()),
		zap.Int("changed_fields", len(changes)),
		zap.String("actor", actor))
	if from == catalog.StatusApproved || p.WorkflowStatus == catalog.StatusApproved {
		s.changed()
	}
	return p, nil
}

// Review performs a reviewer decision. Illegal transitions fail with
// workflows.ErrInvalidTransition and leave the project untouched.
func (s *Service) Review(ctx context.Context, id uuid.UUID, action workflows.ReviewAction, actor string) (*Project, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.WorkflowStatus
	next, err := s.machine.Next(from, action.Kind)
	if err != nil {
		return nil, err
	}

	note := strings.TrimSpace(action.Note)
	p.WorkflowStatus = next
	switch action.Kind {
	case workflows.ActionReject:
		p.RejectionReason = note
	case workflows.ActionRequestChanges:
		p.ReviewerNotes = note
	case workflows.ActionApprove:
		p.RejectionReason = ""
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.record(ctx, &ReviewEvent{
		ProjectID: p.ID,
		Action:    string(action.Kind),
		From:      from,
		To:        next,
		Actor:     actor,
		Note:      note,
	})
	s.logger.Info("Project reviewed",
		zap.String("project_id", p.ID.String()),
		zap.String("action", string(action.Kind)),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
		zap.String("actor", actor))

	if from == catalog.StatusApproved || next == catalog.StatusApproved {
		s.changed()
	}
	switch action.Kind {
	case workflows.ActionApprove:
		s.notifier.ProjectApproved(ctx, p)
	case workflows.ActionReject:
		s.notifier.ProjectRejected(ctx, p, note)
	case workflows.ActionRequestChanges:
		s.notifier.ChangesRequested(ctx, p, note)
	}
	return p, nil
}

// History returns the review events of a project, oldest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]ReviewEvent, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	if events == nil {
		events = []ReviewEvent{}
	}
	return events, nil
}
