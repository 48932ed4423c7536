package views

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// AdminPageSize is the page size of both admin dashboard tabs.
const AdminPageSize = 20

type AdminTab string

const (
	TabPending AdminTab = "pending"
	TabAll     AdminTab = "all"
)

// AdminListState is what the admin dashboard renders.
type AdminListState struct {
	Tab AdminTab
	// Status narrows the "all" tab; empty means every status.
	Status   catalog.WorkflowStatus
	Page     int
	Projects catalog.ProjectPage
	Loading  bool
	Err      *ViewError
}

// AdminListController drives the pending and all-projects tabs.
type AdminListController struct {
	api    AdminAPI
	nav    Navigator
	logger *zap.Logger

	mu    sync.Mutex
	state AdminListState
	seq   uint64
}

func NewAdminListController(api AdminAPI, nav Navigator, logger *zap.Logger) *AdminListController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminListController{
		api:    api,
		nav:    nav,
		logger: logger,
		state:  AdminListState{Tab: TabPending, Page: 1},
	}
}

func (a *AdminListController) State() AdminListState {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.state
	st.Projects.Projects = append([]catalog.Project(nil), a.state.Projects.Projects...)
	return st
}

// Load fetches the current page of the current tab.
func (a *AdminListController) Load(ctx context.Context) error {
	a.mu.Lock()
	a.seq++
	seq := a.seq
	st := a.state
	a.state.Loading = true
	a.mu.Unlock()

	var (
		page *catalog.ProjectPage
		err  error
	)
	if st.Tab == TabAll {
		page, err = a.api.AdminListAll(ctx, st.Page, AdminPageSize, st.Status)
	} else {
		page, err = a.api.AdminListPending(ctx, st.Page, AdminPageSize)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.seq {
		return nil
	}
	a.state.Loading = false
	if err != nil {
		a.state.Err = newViewError(err)
		a.logger.Debug("Admin list failed", zap.String("tab", string(st.Tab)), zap.Error(err))
		return err
	}
	a.state.Projects = *page
	a.state.Err = nil
	return nil
}

// SetTab switches tabs and returns to page one.
func (a *AdminListController) SetTab(ctx context.Context, tab AdminTab) error {
	a.mu.Lock()
	a.state.Tab = tab
	a.state.Page = 1
	a.mu.Unlock()
	return a.Load(ctx)
}

// SetStatusFilter narrows the "all" tab and returns to page one.
func (a *AdminListController) SetStatusFilter(ctx context.Context, status catalog.WorkflowStatus) error {
	a.mu.Lock()
	a.state.Tab = TabAll
	a.state.Status = status
	a.state.Page = 1
	a.mu.Unlock()
	return a.Load(ctx)
}

func (a *AdminListController) GoToPage(ctx context.Context, page int) error {
	a.mu.Lock()
	a.state.Page = clamp(page, a.state.Projects.Total, AdminPageSize)
	a.mu.Unlock()
	return a.Load(ctx)
}

// Open navigates to the review screen of a listed project.
func (a *AdminListController) Open(id string) {
	a.nav.Navigate(ReviewRoute(id))
}
