package catalog

import "encoding/json"

// KPIs are the headline aggregates over the filtered public catalog.
type KPIs struct {
	TotalProjects        int     `json:"totalProjects"`
	CitiesEngaged        int     `json:"citiesEngaged"`
	CountriesRepresented int     `json:"countriesRepresented"`
	TotalFundingNeeded   float64 `json:"totalFundingNeeded"`
	TotalFundingSpent    float64 `json:"totalFundingSpent"`

	// Extra holds wire fields this version does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// MapMarker is the light projection of a project used for map rendering.
type MapMarker struct {
	ID          string        `json:"id"`
	ProjectName string        `json:"projectName"`
	City        string        `json:"city"`
	Country     string        `json:"country"`
	Location    Location      `json:"location"`
	Region      Region        `json:"region"`
	Status      ProjectStatus `json:"status"`
	ImageURL    string        `json:"imageUrl,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type SDGCount struct {
	SDG   int `json:"sdg"`
	Count int `json:"count"`

	Extra map[string]json.RawMessage `json:"-"`
}

type RegionCount struct {
	Region        Region  `json:"region"`
	ProjectCount  int     `json:"projectCount"`
	FundingNeeded float64 `json:"fundingNeeded"`

	Extra map[string]json.RawMessage `json:"-"`
}

type TypologyCount struct {
	Typology string `json:"typology"`
	Count    int    `json:"count"`

	Extra map[string]json.RawMessage `json:"-"`
}

// FilterOptions are the dropdown values derived from approved projects.
type FilterOptions struct {
	Cities         []string `json:"cities"`
	FundingSources []string `json:"fundingSources"`

	Extra map[string]json.RawMessage `json:"-"`
}

// SortField names a sortable project column.
type SortField string

const (
	SortByName          SortField = "project_name"
	SortByCreatedAt     SortField = "created_at"
	SortByFundingNeeded SortField = "funding_needed"
)

func (f SortField) Valid() bool {
	return f == SortByName || f == SortByCreatedAt || f == SortByFundingNeeded
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions carries 1-indexed pagination and ordering.
type ListOptions struct {
	Page      int
	PageSize  int
	SortBy    SortField
	SortOrder SortOrder
}

// Normalize fills zero values with the catalog defaults.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	if o.SortBy == "" {
		o.SortBy = SortByCreatedAt
	}
	if o.SortOrder == "" {
		o.SortOrder = SortDesc
	}
	return o
}

// ProjectPage is one page of a project listing.
type ProjectPage struct {
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Projects []Project `json:"projects"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PageCount returns how many pages total items span, never less than one.
func PageCount(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
