package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
)

func searching(q string) interface{} {
	return mock.MatchedBy(func(f filters.Set) bool { return f.Search == q })
}

func firstPageOfTen() interface{} {
	return mock.MatchedBy(func(o catalog.ListOptions) bool { return o.Page == 1 && o.PageSize == 10 })
}

func TestSuggestDerivesPlaces(t *testing.T) {
	api := new(MockCatalog)
	api.On("ListProjects", mock.Anything, searching("lis"), firstPageOfTen()).Return(&catalog.ProjectPage{
		Total: 3,
		Projects: []catalog.Project{
			{ID: "1", ProjectName: "Green Roofs", City: "Lisbon", Country: "Portugal"},
			{ID: "2", ProjectName: "Tram Corridors", City: "Lisbon", Country: "Portugal"},
			{ID: "3", ProjectName: "Lisu Gardens", City: "Accra", Country: "Ghana"},
		},
	}, nil)

	got, err := Suggest(context.Background(), api, "lis")
	require.NoError(t, err)

	var kinds []SuggestionKind
	for _, s := range got {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []SuggestionKind{SuggestProject, SuggestProject, SuggestProject, SuggestCity}, kinds)
	assert.Equal(t, "Lisbon, Portugal", got[0].Subtitle)
	assert.Equal(t, "Lisbon", got[3].Value)
}

func TestSuggestSDGFirst(t *testing.T) {
	api := new(MockCatalog)
	api.On("ListProjects", mock.Anything, searching("SDG 11"), mock.Anything).Return(&catalog.ProjectPage{}, nil)
	api.On("ListProjects", mock.Anything, searching("sdg 42"), mock.Anything).Return(&catalog.ProjectPage{}, nil)

	got, err := Suggest(context.Background(), api, "SDG 11")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{Kind: SuggestSDG, Label: "SDG 11", Subtitle: "Filter by Sustainable Development Goal", Value: "11"}, got[0])

	got, err = Suggest(context.Background(), api, "sdg 42")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestShortQueryNeverSearches(t *testing.T) {
	api := new(MockCatalog)
	got, err := Suggest(context.Background(), api, "l")
	require.NoError(t, err)
	assert.Nil(t, got)
	api.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestShortQueryCountsCharacters(t *testing.T) {
	api := new(MockCatalog)
	got, err := Suggest(context.Background(), api, "é")
	require.NoError(t, err)
	assert.Nil(t, got)

	var cleared bool
	s := NewSearchController(api, time.Hour, func(r []Suggestion, err error) {
		cleared = r == nil && err == nil
	}, nil)
	s.Input("é")
	s.Close()

	assert.True(t, cleared)
	api.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchDebounce(t *testing.T) {
	api := new(MockCatalog)
	api.On("ListProjects", mock.Anything, searching("Lisb"), mock.Anything).
		Return(projectsPage(1, "1"), nil)

	results := make(chan []Suggestion, 4)
	s := NewSearchController(api, 30*time.Millisecond, func(got []Suggestion, err error) {
		if err == nil {
			results <- got
		}
	}, nil)
	defer s.Close()

	s.Input("Li")
	s.Input("Lis")
	s.Input("Lisb")

	select {
	case got := <-results:
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].Value)
	case <-time.After(2 * time.Second):
		t.Fatal("search never ran")
	}
	api.AssertNumberOfCalls(t, "ListProjects", 1)
}

func TestShortInputClearsResults(t *testing.T) {
	api := new(MockCatalog)
	var got []Suggestion
	called := false
	s := NewSearchController(api, time.Hour, func(r []Suggestion, err error) {
		called = true
		got = r
	}, nil)

	s.Input("Lisbon")
	s.Input("L")
	s.Close()

	assert.True(t, called)
	assert.Nil(t, got)
	api.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplySuggestion(t *testing.T) {
	ctx := context.Background()
	api := new(MockCatalog)
	api.On("GetKPIs", mock.Anything, mock.Anything).Return(catalog.KPIs{}, nil)
	api.On("GetMapMarkers", mock.Anything, mock.Anything).Return([]catalog.MapMarker(nil), nil)
	api.On("ListProjects", mock.Anything, mock.Anything, mock.Anything).Return(projectsPage(0), nil)
	api.On("GetProject", mock.Anything, "p9").Return(&catalog.Project{ID: "p9"}, nil)

	d := NewDashboardController(api, nil)
	require.NoError(t, d.ApplySuggestion(ctx, Suggestion{Kind: SuggestSDG, Value: "11"}))
	require.NoError(t, d.ApplySuggestion(ctx, Suggestion{Kind: SuggestCity, Value: "Lisbon"}))
	require.NoError(t, d.ApplySuggestion(ctx, Suggestion{Kind: SuggestCountry, Value: "Portugal"}))
	require.NoError(t, d.ApplySuggestion(ctx, Suggestion{Kind: SuggestProject, Value: "p9"}))

	st := d.State()
	assert.Equal(t, 11, st.Filters.SDG)
	assert.Equal(t, "Lisbon", st.Filters.City)
	assert.Equal(t, "Portugal", st.Filters.Search)
	assert.Equal(t, "p9", st.Selected.ID)
}
