package projects

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
	"uia-atlas/atlas-portal/pkg/workflows"
)

// MockNotifier is a mock implementation of the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ProjectSubmitted(ctx context.Context, p *Project) {
	m.Called(ctx, p)
}

func (m *MockNotifier) ProjectApproved(ctx context.Context, p *Project) {
	m.Called(ctx, p)
}

func (m *MockNotifier) ProjectRejected(ctx context.Context, p *Project, reason string) {
	m.Called(ctx, p, reason)
}

func (m *MockNotifier) ChangesRequested(ctx context.Context, p *Project, message string) {
	m.Called(ctx, p, message)
}

func ptr[T any](v T) *T { return &v }

func validRequest() *SubmitRequest {
	return &SubmitRequest{
		ProjectName:         "Green Roofs Lisbon",
		OrganizationName:    "Lisboa E-Nova",
		ContactPerson:       "Ana Costa",
		ContactEmail:        "ana@example.org",
		ProjectStatus:       catalog.ProjectInProgress,
		FundingNeeded:       250000,
		Region:              catalog.RegionWesternEurope,
		City:                "Lisbon",
		Country:             "Portugal",
		Latitude:            ptr(38.72),
		Longitude:           ptr(-9.14),
		BriefDescription:    "Retrofitting municipal roofs with vegetation.",
		Typologies:          []string{"Nature-based solutions"},
		FundingRequirements: []string{"Public funding"},
		SDGs:                []int{11, 13},
		GDPRConsent:         true,
	}
}

func newService(t *testing.T, opts ...Option) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(repo, zap.NewNop(), opts...), repo
}

func TestSubmit(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("ProjectSubmitted", mock.Anything, mock.AnythingOfType("*projects.Project")).Return()
	svc, repo := newService(t, WithNotifier(notifier))
	ctx := context.Background()

	created, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusSubmitted, created.WorkflowStatus)
	assert.Len(t, created.EditToken, 64)
	assert.Equal(t, &catalog.Location{Lat: 38.72, Lng: -9.14}, created.Location())
	assert.NotNil(t, created.GovernmentRequirements)

	stored, err := repo.GetByEditToken(ctx, created.EditToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)

	events, err := svc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventSubmitted, events[0].Action)
	notifier.AssertExpectations(t)
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
		field  string
	}{
		{"no consent", func(r *SubmitRequest) { r.GDPRConsent = false }, "gdprConsent"},
		{"half location", func(r *SubmitRequest) { r.Longitude = nil }, "location"},
		{"latitude range", func(r *SubmitRequest) { r.Latitude = ptr(91.0) }, "location.lat"},
		{"longitude range", func(r *SubmitRequest) { r.Longitude = ptr(-181.0) }, "location.lng"},
		{"sdg range", func(r *SubmitRequest) { r.SDGs = []int{18} }, "sdgs"},
		{"negative funding", func(r *SubmitRequest) { r.FundingNeeded = -1 }, "fundingNeeded"},
		{"missing city", func(r *SubmitRequest) { r.City = "" }, "city"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := svc.Submit(ctx, req)
			require.ErrorIs(t, err, catalog.ErrInvalid)

			var verrs catalog.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestGetPublicHidesUnapproved(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.GetPublic(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Review(ctx, created.ID, workflows.Approve(), "admin@example.org")
	require.NoError(t, err)

	got, err := svc.GetPublic(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green Roofs Lisbon", got.ProjectName)

	_, err = svc.GetPublic(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewFlow(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("ProjectSubmitted", mock.Anything, mock.Anything).Return()
	notifier.On("ChangesRequested", mock.Anything, mock.Anything, "Add coordinates").Return().Once()
	notifier.On("ProjectRejected", mock.Anything, mock.Anything, "Out of scope").Return().Once()
	notifier.On("ProjectApproved", mock.Anything, mock.Anything).Return().Once()

	changes := 0
	svc, _ := newService(t, WithNotifier(notifier), OnChange(func() { changes++ }))
	ctx := context.Background()

	created, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	id := created.ID

	p, err := svc.Review(ctx, id, workflows.StartReview(), "rev@example.org")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusInReview, p.WorkflowStatus)

	p, err = svc.Review(ctx, id, workflows.RequestChanges("  Add coordinates "), "rev@example.org")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusChangesRequested, p.WorkflowStatus)
	assert.Equal(t, "Add coordinates", p.ReviewerNotes)

	p, err = svc.Review(ctx, id, workflows.Reject("Out of scope"), "rev@example.org")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusRejected, p.WorkflowStatus)
	assert.Equal(t, "Out of scope", p.RejectionReason)

	// A rejected project cannot be approved directly.
	_, err = svc.Review(ctx, id, workflows.Approve(), "rev@example.org")
	assert.ErrorIs(t, err, workflows.ErrInvalidTransition)
	stored, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusRejected, stored.WorkflowStatus)

	_, err = svc.Review(ctx, id, workflows.Reject("   "), "rev@example.org")
	assert.ErrorIs(t, err, workflows.ErrNoteRequired)

	// The submitter resubmits through the edit link and it gets approved.
	_, err = svc.UpdateByToken(ctx, created.EditToken, validRequest())
	require.NoError(t, err)
	p, err = svc.Review(ctx, id, workflows.Approve(), "rev@example.org")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusApproved, p.WorkflowStatus)
	assert.Empty(t, p.RejectionReason)
	assert.Equal(t, 1, changes)

	events, err := svc.History(ctx, id)
	require.NoError(t, err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{"submitted", "start_review", "request_changes", "reject", "resubmit", "approve"}, actions)
	assert.Equal(t, "rev@example.org", events[1].Actor)
	notifier.AssertExpectations(t)
}

func TestUpdate(t *testing.T) {
	changes := 0
	svc, _ := newService(t, OnChange(func() { changes++ }))
	ctx := context.Background()

	created, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	p, err := svc.Update(ctx, created.ID, &UpdateRequest{
		ProjectName: ptr("Green Roofs Lisboa"),
		SDGs:        []int{11},
	}, "admin@example.org")
	require.NoError(t, err)
	assert.Equal(t, "Green Roofs Lisboa", p.ProjectName)
	assert.Equal(t, []int64{11}, []int64(p.SDGs))
	assert.Equal(t, 0, changes)

	events, err := svc.History(ctx, created.ID)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, EventEdited, last.Action)
	var old map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(last.Changes, &old))
	assert.JSONEq(t, `"Green Roofs Lisbon"`, string(old["project_name"]))

	// Approving through a patch is refused; only unpublish is allowed.
	_, err = svc.Update(ctx, created.ID, &UpdateRequest{WorkflowStatus: ptr(catalog.StatusApproved)}, "admin@example.org")
	assert.ErrorIs(t, err, workflows.ErrInvalidTransition)

	_, err = svc.Review(ctx, created.ID, workflows.Approve(), "admin@example.org")
	require.NoError(t, err)
	p, err = svc.Update(ctx, created.ID, &UpdateRequest{WorkflowStatus: ptr(catalog.StatusSubmitted)}, "admin@example.org")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusSubmitted, p.WorkflowStatus)
	assert.Equal(t, 2, changes)

	_, err = svc.Update(ctx, created.ID, &UpdateRequest{Latitude: ptr(10.0)}, "admin@example.org")
	assert.ErrorIs(t, err, catalog.ErrInvalid)
}

func TestListPublic(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []struct {
		name   string
		city   string
		region catalog.Region
		sdgs   []int64
		status catalog.WorkflowStatus
	}{
		{"Solar Schools", "Nairobi", catalog.RegionMiddleEastAfri, []int64{7}, catalog.StatusApproved},
		{"Bike Lanes", "Bogota", catalog.RegionAmericas, []int64{11, 13}, catalog.StatusApproved},
		{"River Parks", "Seoul", catalog.RegionAsiaPacific, []int64{13, 15}, catalog.StatusApproved},
		{"Waste to Energy", "Bogota", catalog.RegionAmericas, []int64{12}, catalog.StatusSubmitted},
	}
	for i, s := range seed {
		require.NoError(t, repo.Create(ctx, &Project{
			ProjectName:    s.name,
			City:           s.city,
			Country:        "Somewhere",
			Region:         s.region,
			SDGs:           s.sdgs,
			WorkflowStatus: s.status,
			FundingNeeded:  float64(i * 1000),
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, err := svc.ListPublic(ctx, filters.Clear(), catalog.ListOptions{Page: 1, PageSize: 20, SortBy: catalog.SortByCreatedAt, SortOrder: catalog.SortDesc})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, "River Parks", page.Projects[0].ProjectName)

	f := filters.Clear()
	f.SDG = 13
	page, err = svc.ListPublic(ctx, f, catalog.ListOptions{Page: 1, PageSize: 20, SortBy: catalog.SortByName, SortOrder: catalog.SortAsc})
	require.NoError(t, err)
	require.Len(t, page.Projects, 2)
	assert.Equal(t, "Bike Lanes", page.Projects[0].ProjectName)

	f = filters.Clear()
	f.Search = "bog"
	page, err = svc.ListPublic(ctx, f, catalog.ListOptions{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.ListPublic(ctx, filters.Clear(), catalog.ListOptions{Page: 2, PageSize: 2, SortBy: catalog.SortByFundingNeeded, SortOrder: catalog.SortAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Projects, 1)
	assert.Equal(t, "River Parks", page.Projects[0].ProjectName)

	pending, err := svc.ListPending(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending.Total)
}

func TestFilterClause(t *testing.T) {
	clause, args := FilterClause(filters.Clear())
	assert.Empty(t, clause)
	assert.Empty(t, args)

	f := filters.Set{Region: catalog.RegionAmericas, SDG: 13, City: filters.AllCities, FundedBy: "EU funds", Search: "50%"}
	clause, args = FilterClause(f)
	assert.Equal(t, "uia_region = ? AND ? = ANY(sdgs) AND ? = ANY(funding_requirements) AND "+
		"(project_name ILIKE ? OR city ILIKE ? OR country ILIKE ?)", clause)
	assert.Equal(t, []any{string(catalog.RegionAmericas), 13, "EU funds", `%50\%%`, `%50\%%`, `%50\%%`}, args)
}

func TestRepositoryErrorIsWrapped(t *testing.T) {
	repo := new(MockRepository)
	boom := errors.New("connection reset")
	repo.On("GetByID", mock.Anything, mock.Anything).Return(nil, boom)
	svc := NewService(repo, zap.NewNop())

	_, err := svc.Review(context.Background(), uuid.New(), workflows.Approve(), "a")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) GetByEditToken(ctx context.Context, token string) (*Project, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) List(ctx context.Context, q ListQuery) ([]Project, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CreateEvent(ctx context.Context, e *ReviewEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRepository) ListEvents(ctx context.Context, projectID uuid.UUID) ([]ReviewEvent, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]ReviewEvent), args.Error(1)
}
