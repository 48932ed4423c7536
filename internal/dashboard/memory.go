package dashboard

import (
	"context"
	"sort"

	"uia-atlas/atlas-portal/internal/projects"
	"uia-atlas/atlas-portal/pkg/filters"
)

// ProjectSource lists approved projects matching a filter set.
type ProjectSource interface {
	Approved(ctx context.Context, f filters.Set) ([]projects.Project, error)
}

// MemoryStore aggregates in Go over a ProjectSource. It serves the memory
// database driver.
type MemoryStore struct {
	source ProjectSource
}

func NewMemoryStore(source ProjectSource) *MemoryStore {
	return &MemoryStore{source: source}
}

func (s *MemoryStore) KPIs(ctx context.Context, f filters.Set) (*KPIs, error) {
	ps, err := s.source.Approved(ctx, f)
	if err != nil {
		return nil, err
	}
	cities := map[string]struct{}{}
	countries := map[string]struct{}{}
	k := &KPIs{TotalProjects: len(ps)}
	for _, p := range ps {
		cities[p.City] = struct{}{}
		countries[p.Country] = struct{}{}
		k.TotalFundingNeeded += p.FundingNeeded
		k.TotalFundingSpent += p.FundingSpent
	}
	k.CitiesEngaged = len(cities)
	k.CountriesRepresented = len(countries)
	return k, nil
}

func (s *MemoryStore) MapMarkers(ctx context.Context, f filters.Set) ([]MapMarker, error) {
	ps, err := s.source.Approved(ctx, f)
	if err != nil {
		return nil, err
	}
	markers := []MapMarker{}
	for _, p := range ps {
		loc := p.Location()
		if loc == nil {
			continue
		}
		markers = append(markers, MapMarker{
			ID:          p.ID,
			ProjectName: p.ProjectName,
			City:        p.City,
			Country:     p.Country,
			Latitude:    loc.Lat,
			Longitude:   loc.Lng,
			Region:      p.Region,
			Status:      p.ProjectStatus,
			ImageURL:    p.CoverImage(),
		})
	}
	sort.SliceStable(markers, func(i, j int) bool {
		if markers[i].ProjectName != markers[j].ProjectName {
			return markers[i].ProjectName < markers[j].ProjectName
		}
		return markers[i].ID.String() < markers[j].ID.String()
	})
	return markers, nil
}

func (s *MemoryStore) SDGDistribution(ctx context.Context, f filters.Set) ([]SDGCount, error) {
	ps, err := s.source.Approved(ctx, f)
	if err != nil {
		return nil, err
	}
	counts := map[int]int{}
	for _, p := range ps {
		seen := map[int64]bool{}
		for _, goal := range p.SDGs {
			if !seen[goal] {
				seen[goal] = true
				counts[int(goal)]++
			}
		}
	}
	out := make([]SDGCount, 0, len(counts))
	for goal, n := range counts {
		out = append(out, SDGCount{SDG: goal, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SDG < out[j].SDG })
	return out, nil
}

func (s *MemoryStore) RegionalDistribution(ctx context.Context, f filters.Set) ([]RegionCount, error) {
	ps, err := s.source.Approved(ctx, f)
	if err != nil {
		return nil, err
	}
	byRegion := map[string]*RegionCount{}
	for _, p := range ps {
		rc, ok := byRegion[string(p.Region)]
		if !ok {
			rc = &RegionCount{Region: p.Region}
			byRegion[string(p.Region)] = rc
		}
		rc.ProjectCount++
		rc.FundingNeeded += p.FundingNeeded
	}
	out := make([]RegionCount, 0, len(byRegion))
	for _, rc := range byRegion {
		out = append(out, *rc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectCount != out[j].ProjectCount {
			return out[i].ProjectCount > out[j].ProjectCount
		}
		return out[i].Region < out[j].Region
	})
	return out, nil
}

func (s *MemoryStore) TypologyDistribution(ctx context.Context, f filters.Set) ([]TypologyCount, error) {
	ps, err := s.source.Approved(ctx, f)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range ps {
		seen := map[string]bool{}
		for _, t := range p.Typologies {
			if !seen[t] {
				seen[t] = true
				counts[t]++
			}
		}
	}
	out := make([]TypologyCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypologyCount{Typology: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Typology < out[j].Typology
	})
	return out, nil
}

func (s *MemoryStore) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	ps, err := s.source.Approved(ctx, filters.Clear())
	if err != nil {
		return nil, err
	}
	cities := map[string]struct{}{}
	sources := map[string]struct{}{}
	for _, p := range ps {
		if p.City != "" {
			cities[p.City] = struct{}{}
		}
		for _, src := range p.FundingRequirements {
			if src != "" {
				sources[src] = struct{}{}
			}
		}
	}
	return &FilterOptions{Cities: sortedKeys(cities), FundingSources: sortedKeys(sources)}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
