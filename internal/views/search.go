package views

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	// MinSearchLength is the shortest query, in characters, that reaches
	// the API.
	MinSearchLength = 2
	searchPageSize  = 10
	maxPlaces       = 3
)

type SuggestionKind string

const (
	SuggestProject SuggestionKind = "project"
	SuggestCity    SuggestionKind = "city"
	SuggestCountry SuggestionKind = "country"
	SuggestSDG     SuggestionKind = "sdg"
)

// Suggestion is one entry of the smart search dropdown.
type Suggestion struct {
	Kind     SuggestionKind
	Label    string
	Subtitle string
	// Value is the project id, city, country or SDG number.
	Value string
}

var sdgQuery = regexp.MustCompile(`(?i)sdg\s*(\d+)`)

// Suggest runs one search and derives suggestions from the first page of
// matching projects. An SDG suggestion is put first when the query names
// a goal ("sdg 11").
func Suggest(ctx context.Context, api CatalogAPI, query string) ([]Suggestion, error) {
	if utf8.RuneCountInString(query) < MinSearchLength {
		return nil, nil
	}
	f := filters.Merge(filters.Clear(), filters.Patch{Search: &query})
	page, err := api.ListProjects(ctx, f, catalog.ListOptions{Page: 1, PageSize: searchPageSize}.Normalize())
	if err != nil {
		return nil, err
	}

	var out []Suggestion
	if m := sdgQuery.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && catalog.ValidSDG(n) {
			out = append(out, Suggestion{
				Kind:     SuggestSDG,
				Label:    "SDG " + m[1],
				Subtitle: "Filter by Sustainable Development Goal",
				Value:    strconv.Itoa(n),
			})
		}
	}

	needle := strings.ToLower(query)
	var cities, countries []string
	for _, p := range page.Projects {
		out = append(out, Suggestion{
			Kind:     SuggestProject,
			Label:    p.ProjectName,
			Subtitle: p.City + ", " + p.Country,
			Value:    p.ID,
		})
		if strings.Contains(strings.ToLower(p.City), needle) {
			cities = appendUnique(cities, p.City)
		}
		if strings.Contains(strings.ToLower(p.Country), needle) {
			countries = appendUnique(countries, p.Country)
		}
	}
	for _, c := range head(cities, maxPlaces) {
		out = append(out, Suggestion{Kind: SuggestCity, Label: c, Subtitle: "Filter by city", Value: c})
	}
	for _, c := range head(countries, maxPlaces) {
		out = append(out, Suggestion{Kind: SuggestCountry, Label: c, Subtitle: "Filter by country", Value: c})
	}
	return out, nil
}

// SearchController debounces keystrokes into Suggest calls. Each new input
// cancels the pending timer; results of an older query are dropped.
type SearchController struct {
	api       CatalogAPI
	delay     time.Duration
	onResults func([]Suggestion, error)
	logger    *zap.Logger

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewSearchController delivers results to onResults, from the timer
// goroutine. A zero delay uses DefaultDebounce.
func NewSearchController(api CatalogAPI, delay time.Duration, onResults func([]Suggestion, error), logger *zap.Logger) *SearchController {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchController{api: api, delay: delay, onResults: onResults, logger: logger}
}

// Input records the current text of the search box.
func (s *SearchController) Input(query string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	short := utf8.RuneCountInString(query) < MinSearchLength
	if !short {
		s.timer = time.AfterFunc(s.delay, func() { s.run(seq, query) })
	}
	s.mu.Unlock()

	if short {
		s.onResults(nil, nil)
	}
}

// Close cancels a pending search.
func (s *SearchController) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *SearchController) run(seq uint64, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	results, err := Suggest(ctx, s.api, query)
	if err != nil {
		s.logger.Debug("Search failed", zap.String("query", query), zap.Error(err))
	}

	s.mu.Lock()
	current := seq == s.seq
	s.mu.Unlock()
	if current {
		s.onResults(results, err)
	}
}

// ApplySuggestion turns a picked suggestion into a dashboard action:
// projects open the detail panel, places and goals become filters.
// Countries have no filter of their own and become the search term.
func (d *DashboardController) ApplySuggestion(ctx context.Context, s Suggestion) error {
	switch s.Kind {
	case SuggestProject:
		return d.Select(ctx, s.Value)
	case SuggestCity:
		return d.SetFilters(ctx, filters.Patch{City: filters.Ref(s.Value)})
	case SuggestCountry:
		return d.SetFilters(ctx, filters.Patch{Search: filters.Ref(s.Value)})
	case SuggestSDG:
		n, err := strconv.Atoi(s.Value)
		if err != nil {
			return err
		}
		return d.SetFilters(ctx, filters.Patch{SDG: &n})
	}
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func head(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}
