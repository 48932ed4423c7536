package views

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"uia-atlas/atlas-portal/internal/apiclient"
	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/workflows"
)

func loadedReview(t *testing.T, status catalog.WorkflowStatus) (*ReviewController, *MockAdmin, *History) {
	t.Helper()
	api := new(MockAdmin)
	api.On("AdminGetProject", mock.Anything, "p1").Return(&catalog.Project{ID: "p1", WorkflowStatus: status}, nil)
	api.On("AdminHistory", mock.Anything, "p1").Return([]catalog.ReviewEvent{{Action: "submit"}}, nil)
	nav := &History{}
	r := NewReviewController(api, nil, nav, nil)
	require.NoError(t, r.Load(context.Background(), "p1"))
	return r, api, nav
}

func TestReviewActionsFollowStatus(t *testing.T) {
	r, _, _ := loadedReview(t, catalog.StatusApproved)
	st := r.State()
	assert.Equal(t, []workflows.Action{workflows.ActionUnpublish}, st.Actions)
	assert.Len(t, st.History, 1)
	assert.False(t, r.CanPerform(workflows.ActionApprove))

	r, _, _ = loadedReview(t, catalog.StatusSubmitted)
	assert.Equal(t, []workflows.Action{
		workflows.ActionStartReview,
		workflows.ActionRequestChanges,
		workflows.ActionReject,
		workflows.ActionApprove,
	}, r.State().Actions)
}

func TestRejectWithoutReasonSendsNothing(t *testing.T) {
	for _, reason := range []string{"", "   "} {
		r, api, nav := loadedReview(t, catalog.StatusSubmitted)

		err := r.Perform(context.Background(), workflows.Reject(reason))
		require.ErrorIs(t, err, workflows.ErrNoteRequired)

		api.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything)
		st := r.State()
		assert.Equal(t, ErrorValidation, st.Err.Kind)
		assert.Equal(t, "is required", st.Err.Fields["reason"])
		assert.Equal(t, catalog.StatusSubmitted, st.Project.WorkflowStatus)
		assert.Empty(t, nav.Routes())
	}
}

func TestRequestChangesOnRejectedProject(t *testing.T) {
	r, api, _ := loadedReview(t, catalog.StatusRejected)
	action := workflows.RequestChanges("add more photos")
	api.On("Review", mock.Anything, "p1", action).
		Return(&catalog.Project{ID: "p1", WorkflowStatus: catalog.StatusChangesRequested}, nil)

	var seenStatus catalog.WorkflowStatus
	var routes []string
	r.nav = NavigatorFunc(func(route string) {
		routes = append(routes, route)
		seenStatus = r.State().Project.WorkflowStatus
	})

	require.NoError(t, r.Perform(context.Background(), action))

	api.AssertNumberOfCalls(t, "Review", 1)
	api.AssertCalled(t, "Review", mock.Anything, "p1", action)
	assert.Equal(t, []string{RouteAdminDashboard}, routes)
	assert.Equal(t, catalog.StatusRejected, seenStatus)
}

func TestIllegalActionIsBlocked(t *testing.T) {
	r, api, _ := loadedReview(t, catalog.StatusApproved)

	err := r.Perform(context.Background(), workflows.Approve())
	require.ErrorIs(t, err, ErrIllegalAction)
	api.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, ErrorFailure, r.State().Err.Kind)
}

func TestReviewFailureKeepsProject(t *testing.T) {
	r, api, nav := loadedReview(t, catalog.StatusInReview)
	api.On("Review", mock.Anything, "p1", workflows.Approve()).
		Return(nil, &apiclient.APIError{Method: "POST", Path: "/api/admin/projects/p1/approve", StatusCode: 409, Err: apiclient.ErrConflict})

	err := r.Perform(context.Background(), workflows.Approve())
	require.ErrorIs(t, err, apiclient.ErrConflict)

	st := r.State()
	assert.Equal(t, catalog.StatusInReview, st.Project.WorkflowStatus)
	assert.False(t, st.Submitting)
	assert.Equal(t, ErrorFailure, st.Err.Kind)
	assert.Empty(t, nav.Routes())
}

func TestStartReviewShowsReturnedProject(t *testing.T) {
	r, api, nav := loadedReview(t, catalog.StatusSubmitted)
	api.On("Review", mock.Anything, "p1", workflows.StartReview()).
		Return(&catalog.Project{ID: "p1", WorkflowStatus: catalog.StatusInReview}, nil)

	require.NoError(t, r.Perform(context.Background(), workflows.StartReview()))

	st := r.State()
	assert.Equal(t, catalog.StatusInReview, st.Project.WorkflowStatus)
	assert.NotContains(t, st.Actions, workflows.ActionStartReview)
	assert.Empty(t, nav.Routes())
}

func TestSaveAppliesPatch(t *testing.T) {
	r, api, _ := loadedReview(t, catalog.StatusSubmitted)
	name := "Renamed"
	patch := catalog.ProjectPatch{ProjectName: &name}
	api.On("AdminUpdateProject", mock.Anything, "p1", patch).
		Return(&catalog.Project{ID: "p1", ProjectName: name, WorkflowStatus: catalog.StatusSubmitted}, nil)

	require.NoError(t, r.Save(context.Background(), patch))
	assert.Equal(t, name, r.State().Project.ProjectName)
}

func TestLoadUnauthorized(t *testing.T) {
	api := new(MockAdmin)
	api.On("AdminGetProject", mock.Anything, "p1").Return(nil, apiclient.ErrUnauthorized)
	api.On("AdminHistory", mock.Anything, "p1").Return(nil, apiclient.ErrUnauthorized)

	r := NewReviewController(api, nil, &History{}, nil)
	err := r.Load(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, ErrorUnauthorized, r.State().Err.Kind)
	assert.Error(t, r.Perform(context.Background(), workflows.Approve()))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind ErrorKind
	}{
		{nil, ErrorNone},
		{apiclient.ErrUnauthorized, ErrorUnauthorized},
		{apiclient.ErrNotFound, ErrorNotFound},
		{&apiclient.ValidationError{Message: "bad"}, ErrorValidation},
		{catalog.ValidationErrors{"city": "is required"}, ErrorValidation},
		{workflows.ErrNoteRequired, ErrorValidation},
		{&apiclient.APIError{StatusCode: 500}, ErrorFailure},
		{errors.New("dial tcp: refused"), ErrorFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, Classify(tt.err), "%v", tt.err)
	}
}

func TestAdminListTabs(t *testing.T) {
	ctx := context.Background()
	api := new(MockAdmin)
	api.On("AdminListPending", mock.Anything, 1, AdminPageSize).Return(projectsPage(1, "p1"), nil)
	api.On("AdminListAll", mock.Anything, 1, AdminPageSize, catalog.StatusRejected).Return(projectsPage(41, "r1"), nil)
	api.On("AdminListAll", mock.Anything, 3, AdminPageSize, catalog.StatusRejected).Return(projectsPage(41, "r3"), nil)
	nav := &History{}

	a := NewAdminListController(api, nav, nil)
	require.NoError(t, a.Load(ctx))
	assert.Equal(t, TabPending, a.State().Tab)
	assert.Equal(t, "p1", a.State().Projects.Projects[0].ID)

	require.NoError(t, a.SetStatusFilter(ctx, catalog.StatusRejected))
	require.NoError(t, a.GoToPage(ctx, 9))
	st := a.State()
	assert.Equal(t, TabAll, st.Tab)
	assert.Equal(t, 3, st.Page)
	assert.Equal(t, "r3", st.Projects.Projects[0].ID)

	a.Open("r3")
	assert.Equal(t, "/admin/projects/r3/review", nav.Current())
}
