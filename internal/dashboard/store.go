package dashboard

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"uia-atlas/atlas-portal/internal/projects"
	"uia-atlas/atlas-portal/pkg/filters"
)

// Store computes dashboard aggregates over approved projects. Each method
// applies the filter set it is given as is; dropping a grouped dimension is
// the caller's job.
type Store interface {
	KPIs(ctx context.Context, f filters.Set) (*KPIs, error)
	MapMarkers(ctx context.Context, f filters.Set) ([]MapMarker, error)
	SDGDistribution(ctx context.Context, f filters.Set) ([]SDGCount, error)
	RegionalDistribution(ctx context.Context, f filters.Set) ([]RegionCount, error)
	TypologyDistribution(ctx context.Context, f filters.Set) ([]TypologyCount, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
}

// SQLStore runs the aggregates directly in postgres.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// where renders the approved-and-filtered predicate for the projects table.
func where(f filters.Set, extra ...string) (string, []any) {
	clause := "workflow_status = 'approved'"
	filter, args := projects.FilterClause(f)
	if filter != "" {
		clause += " AND " + filter
	}
	for _, e := range extra {
		clause += " AND " + e
	}
	return clause, args
}

func (s *SQLStore) KPIs(ctx context.Context, f filters.Set) (*KPIs, error) {
	clause, args := where(f)
	query := s.db.Rebind(`
		SELECT COUNT(*) AS total_projects,
		       COUNT(DISTINCT city) AS cities_engaged,
		       COUNT(DISTINCT country) AS countries_represented,
		       COALESCE(SUM(funding_needed), 0) AS total_funding_needed,
		       COALESCE(SUM(funding_spent), 0) AS total_funding_spent
		FROM projects
		WHERE ` + clause)

	var k KPIs
	if err := s.db.GetContext(ctx, &k, query, args...); err != nil {
		return nil, fmt.Errorf("query kpis: %w", err)
	}
	return &k, nil
}

func (s *SQLStore) MapMarkers(ctx context.Context, f filters.Set) ([]MapMarker, error) {
	clause, args := where(f, "latitude IS NOT NULL", "longitude IS NOT NULL")
	query := s.db.Rebind(`
		SELECT id, project_name, city, country, latitude, longitude,
		       uia_region AS region, project_status AS status,
		       COALESCE(image_urls[1], '') AS image_url
		FROM projects
		WHERE ` + clause + `
		ORDER BY project_name, id`)

	markers := []MapMarker{}
	if err := s.db.SelectContext(ctx, &markers, query, args...); err != nil {
		return nil, fmt.Errorf("query map markers: %w", err)
	}
	return markers, nil
}

func (s *SQLStore) SDGDistribution(ctx context.Context, f filters.Set) ([]SDGCount, error) {
	clause, args := where(f)
	query := s.db.Rebind(`
		SELECT goal AS sdg, COUNT(DISTINCT id) AS count
		FROM projects, unnest(sdgs) AS goal
		WHERE ` + clause + `
		GROUP BY goal
		ORDER BY goal`)

	out := []SDGCount{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query sdg distribution: %w", err)
	}
	return out, nil
}

func (s *SQLStore) RegionalDistribution(ctx context.Context, f filters.Set) ([]RegionCount, error) {
	clause, args := where(f)
	query := s.db.Rebind(`
		SELECT uia_region AS region,
		       COUNT(*) AS project_count,
		       COALESCE(SUM(funding_needed), 0) AS funding_needed
		FROM projects
		WHERE ` + clause + `
		GROUP BY uia_region
		ORDER BY project_count DESC, uia_region`)

	out := []RegionCount{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query regional distribution: %w", err)
	}
	return out, nil
}

func (s *SQLStore) TypologyDistribution(ctx context.Context, f filters.Set) ([]TypologyCount, error) {
	clause, args := where(f)
	query := s.db.Rebind(`
		SELECT typology, COUNT(DISTINCT id) AS count
		FROM projects, unnest(typologies) AS typology
		WHERE ` + clause + `
		GROUP BY typology
		ORDER BY count DESC, typology`)

	out := []TypologyCount{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query typology distribution: %w", err)
	}
	return out, nil
}

func (s *SQLStore) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{Cities: []string{}, FundingSources: []string{}}
	err := s.db.SelectContext(ctx, &opts.Cities, `
		SELECT DISTINCT city FROM projects
		WHERE workflow_status = 'approved' AND city <> ''
		ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	err = s.db.SelectContext(ctx, &opts.FundingSources, `
		SELECT DISTINCT source FROM projects, unnest(funding_requirements) AS source
		WHERE workflow_status = 'approved' AND source <> ''
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("query funding sources: %w", err)
	}
	return opts, nil
}
