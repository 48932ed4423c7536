package dashboard

import (
	"time"

	"github.com/google/uuid"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// KPIs are the headline figures over the filtered approved projects.
type KPIs struct {
	TotalProjects        int     `db:"total_projects" json:"total_projects"`
	CitiesEngaged        int     `db:"cities_engaged" json:"cities_engaged"`
	CountriesRepresented int     `db:"countries_represented" json:"countries_represented"`
	TotalFundingNeeded   float64 `db:"total_funding_needed" json:"total_funding_needed"`
	TotalFundingSpent    float64 `db:"total_funding_spent" json:"total_funding_spent"`
}

// MapMarker is the map projection of a project with coordinates.
type MapMarker struct {
	ID          uuid.UUID             `db:"id" json:"id"`
	ProjectName string                `db:"project_name" json:"project_name"`
	City        string                `db:"city" json:"city"`
	Country     string                `db:"country" json:"country"`
	Latitude    float64               `db:"latitude" json:"latitude"`
	Longitude   float64               `db:"longitude" json:"longitude"`
	Region      catalog.Region        `db:"region" json:"region"`
	Status      catalog.ProjectStatus `db:"status" json:"status"`
	ImageURL    string                `db:"image_url" json:"image_url,omitempty"`
}

type SDGCount struct {
	SDG   int `db:"sdg" json:"sdg"`
	Count int `db:"count" json:"count"`
}

type RegionCount struct {
	Region        catalog.Region `db:"region" json:"region"`
	ProjectCount  int            `db:"project_count" json:"project_count"`
	FundingNeeded float64        `db:"funding_needed" json:"funding_needed"`
}

type TypologyCount struct {
	Typology string `db:"typology" json:"typology"`
	Count    int    `db:"count" json:"count"`
}

// FilterOptions feed the city and funder dropdowns.
type FilterOptions struct {
	Cities         []string `json:"cities"`
	FundingSources []string `json:"funding_sources"`
}

// Summary bundles every dashboard figure for one filter set.
type Summary struct {
	KPIs                 *KPIs           `json:"kpis"`
	SDGDistribution      []SDGCount      `json:"sdg_distribution"`
	RegionalDistribution []RegionCount   `json:"regional_distribution"`
	TypologyDistribution []TypologyCount `json:"typology_distribution"`
	ComputedAt           time.Time       `json:"computed_at"`
}
