package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"uia-atlas/atlas-portal/internal/apiclient"
	"uia-atlas/atlas-portal/pkg/catalog"
)

func TestInvalidSubmissionSendsNothing(t *testing.T) {
	api := new(MockSubmissions)
	s := NewSubmissionController(api, &History{}, nil)

	form := validSubmission()
	form.GDPRConsent = false
	form.City = ""
	_, err := s.Submit(context.Background(), form)
	require.ErrorIs(t, err, catalog.ErrInvalid)

	api.AssertNotCalled(t, "SubmitProject", mock.Anything, mock.Anything)
	st := s.State()
	assert.Equal(t, ErrorValidation, st.Err.Kind)
	assert.Contains(t, st.Err.Fields, "gdprConsent")
	assert.Contains(t, st.Err.Fields, "city")
}

func TestSubmitKeepsEditToken(t *testing.T) {
	ctx := context.Background()
	api := new(MockSubmissions)
	form := validSubmission()
	api.On("SubmitProject", mock.Anything, form).
		Return(&catalog.Project{ID: "p1", EditToken: "tok", WorkflowStatus: catalog.StatusSubmitted}, nil)
	edited := form
	edited.FundingNeeded = 1
	api.On("UpdateProjectByToken", mock.Anything, "tok", edited).
		Return(&catalog.Project{ID: "p1", FundingNeeded: 1}, nil)

	s := NewSubmissionController(api, &History{}, nil)
	p, err := s.Submit(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "/submit?token=tok", s.EditLink())

	_, err = s.Submit(ctx, edited)
	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "SubmitProject", 1)
	api.AssertNumberOfCalls(t, "UpdateProjectByToken", 1)
	assert.Equal(t, "tok", s.State().Token)
}

func TestOpenUnknownToken(t *testing.T) {
	api := new(MockSubmissions)
	api.On("GetProjectByToken", mock.Anything, "nope").Return(nil, apiclient.ErrNotFound)

	s := NewSubmissionController(api, &History{}, nil)
	require.Error(t, s.Open(context.Background(), "nope"))
	assert.Equal(t, ErrorNotFound, s.State().Err.Kind)
	assert.Equal(t, catalog.Submission{}, s.Draft())
}

func TestServerValidationFieldsAreShown(t *testing.T) {
	api := new(MockSubmissions)
	api.On("SubmitProject", mock.Anything, mock.Anything).
		Return(nil, &apiclient.ValidationError{Message: "validation failed", Fields: map[string]string{"sdgs": "duplicate goal"}})

	s := NewSubmissionController(api, &History{}, nil)
	_, err := s.Submit(context.Background(), validSubmission())
	require.Error(t, err)

	st := s.State()
	assert.Equal(t, ErrorValidation, st.Err.Kind)
	assert.Equal(t, "duplicate goal", st.Err.Fields["sdgs"])
	assert.False(t, st.Saving)
}
