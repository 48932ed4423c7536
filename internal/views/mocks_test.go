package views

import (
	"context"

	"github.com/stretchr/testify/mock"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
	"uia-atlas/atlas-portal/pkg/workflows"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListProjects(ctx context.Context, f filters.Set, opts catalog.ListOptions) (*catalog.ProjectPage, error) {
	args := m.Called(ctx, f, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProjectPage), args.Error(1)
}

func (m *MockCatalog) GetProject(ctx context.Context, id string) (*catalog.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

func (m *MockCatalog) GetKPIs(ctx context.Context, f filters.Set) (catalog.KPIs, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(catalog.KPIs), args.Error(1)
}

func (m *MockCatalog) GetMapMarkers(ctx context.Context, f filters.Set) ([]catalog.MapMarker, error) {
	args := m.Called(ctx, f)
	markers, _ := args.Get(0).([]catalog.MapMarker)
	return markers, args.Error(1)
}

func (m *MockCatalog) GetFilterOptions(ctx context.Context) (catalog.FilterOptions, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.FilterOptions), args.Error(1)
}

func (m *MockCatalog) GetSDGDistribution(ctx context.Context, f filters.Set) ([]catalog.SDGCount, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]catalog.SDGCount)
	return out, args.Error(1)
}

func (m *MockCatalog) GetRegionalDistribution(ctx context.Context, f filters.Set) ([]catalog.RegionCount, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]catalog.RegionCount)
	return out, args.Error(1)
}

func (m *MockCatalog) GetTypologyDistribution(ctx context.Context, f filters.Set) ([]catalog.TypologyCount, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]catalog.TypologyCount)
	return out, args.Error(1)
}

type MockAdmin struct {
	mock.Mock
}

func (m *MockAdmin) AdminListPending(ctx context.Context, page, pageSize int) (*catalog.ProjectPage, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProjectPage), args.Error(1)
}

func (m *MockAdmin) AdminListAll(ctx context.Context, page, pageSize int, status catalog.WorkflowStatus) (*catalog.ProjectPage, error) {
	args := m.Called(ctx, page, pageSize, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProjectPage), args.Error(1)
}

func (m *MockAdmin) AdminGetProject(ctx context.Context, id string) (*catalog.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

func (m *MockAdmin) AdminUpdateProject(ctx context.Context, id string, patch catalog.ProjectPatch) (*catalog.Project, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

func (m *MockAdmin) AdminHistory(ctx context.Context, id string) ([]catalog.ReviewEvent, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).([]catalog.ReviewEvent)
	return out, args.Error(1)
}

func (m *MockAdmin) Review(ctx context.Context, id string, action workflows.ReviewAction) (*catalog.Project, error) {
	args := m.Called(ctx, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

type MockSubmissions struct {
	mock.Mock
}

func (m *MockSubmissions) SubmitProject(ctx context.Context, s catalog.Submission) (*catalog.Project, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

func (m *MockSubmissions) GetProjectByToken(ctx context.Context, token string) (*catalog.Project, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

func (m *MockSubmissions) UpdateProjectByToken(ctx context.Context, token string, s catalog.Submission) (*catalog.Project, error) {
	args := m.Called(ctx, token, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

func validSubmission() catalog.Submission {
	return catalog.Submission{
		ProjectName:      "Green Roofs Lisbon",
		OrganizationName: "Atelier Verde",
		ContactPerson:    "Ana Costa",
		ContactEmail:     "ana@example.org",
		ProjectStatus:    catalog.ProjectInProgress,
		FundingNeeded:    120000,
		Region:           catalog.RegionWesternEurope,
		City:             "Lisbon",
		Country:          "Portugal",
		Location:         &catalog.Location{Lat: 38.72, Lng: -9.14},
		BriefDescription: "Retrofitting social housing roofs",
		SDGs:             []int{11, 13},
		GDPRConsent:      true,
	}
}

func projectsPage(total int, ids ...string) *catalog.ProjectPage {
	page := &catalog.ProjectPage{Total: total}
	for _, id := range ids {
		page.Projects = append(page.Projects, catalog.Project{ID: id, ProjectName: "Project " + id})
	}
	return page
}

func withSDG(n int) interface{} {
	return mock.MatchedBy(func(f filters.Set) bool { return f.SDG == n })
}
