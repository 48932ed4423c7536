// Package views holds the controllers behind the catalog screens.
//
// Controllers own a slice of screen state, compose the filter model, the
// API client and the review state machine, and never mutate fetched
// records locally: displayed state changes only after a confirmed round
// trip. Controllers are safe for concurrent use; State returns a copy.
package views

import (
	"context"
	"net/url"
	"sync"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
	"uia-atlas/atlas-portal/pkg/workflows"
)

// Routes the controllers navigate between.
const (
	RouteHome           = "/"
	RouteLogin          = "/admin/login"
	RouteAdminDashboard = "/admin/dashboard"
	RouteSubmit         = "/submit"
)

// ReviewRoute is the admin review screen of one project.
func ReviewRoute(id string) string {
	return "/admin/projects/" + url.PathEscape(id) + "/review"
}

// ProjectRoute is the public dashboard focused on one project.
func ProjectRoute(id string) string {
	return RouteHome + "?project=" + url.QueryEscape(id)
}

// Navigator moves the front end to another screen.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// History is a Navigator that records where it was sent.
type History struct {
	mu     sync.Mutex
	routes []string
}

func (h *History) Navigate(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
}

// Current returns the last route, or RouteHome before any navigation.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.routes) == 0 {
		return RouteHome
	}
	return h.routes[len(h.routes)-1]
}

func (h *History) Routes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.routes...)
}

// CatalogAPI is the public read side of the API client.
type CatalogAPI interface {
	ListProjects(ctx context.Context, f filters.Set, opts catalog.ListOptions) (*catalog.ProjectPage, error)
	GetProject(ctx context.Context, id string) (*catalog.Project, error)
	GetKPIs(ctx context.Context, f filters.Set) (catalog.KPIs, error)
	GetMapMarkers(ctx context.Context, f filters.Set) ([]catalog.MapMarker, error)
	GetFilterOptions(ctx context.Context) (catalog.FilterOptions, error)
	GetSDGDistribution(ctx context.Context, f filters.Set) ([]catalog.SDGCount, error)
	GetRegionalDistribution(ctx context.Context, f filters.Set) ([]catalog.RegionCount, error)
	GetTypologyDistribution(ctx context.Context, f filters.Set) ([]catalog.TypologyCount, error)
}

// AdminAPI is the authenticated review side of the API client.
type AdminAPI interface {
	AdminListPending(ctx context.Context, page, pageSize int) (*catalog.ProjectPage, error)
	AdminListAll(ctx context.Context, page, pageSize int, status catalog.WorkflowStatus) (*catalog.ProjectPage, error)
	AdminGetProject(ctx context.Context, id string) (*catalog.Project, error)
	AdminUpdateProject(ctx context.Context, id string, patch catalog.ProjectPatch) (*catalog.Project, error)
	AdminHistory(ctx context.Context, id string) ([]catalog.ReviewEvent, error)
	Review(ctx context.Context, id string, action workflows.ReviewAction) (*catalog.Project, error)
}

// SubmissionAPI is the edit-token path of the API client.
type SubmissionAPI interface {
	SubmitProject(ctx context.Context, s catalog.Submission) (*catalog.Project, error)
	GetProjectByToken(ctx context.Context, token string) (*catalog.Project, error)
	UpdateProjectByToken(ctx context.Context, token string, s catalog.Submission) (*catalog.Project, error)
}

// clamp keeps page inside 1..PageCount(total, size).
func clamp(page, total, size int) int {
	last := catalog.PageCount(total, size)
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}
