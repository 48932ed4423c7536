// Package filters models the set of constraints a catalog view queries with.
//
// Every field is optional. A field holding its "all" sentinel or its zero
// value places no constraint; the conjunction of the remaining fields is the
// active predicate. Values are never validated here: an unknown region or an
// out-of-range SDG is passed through to the API, which owns validation.
package filters

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// AllRegions is the region sentinel meaning "no constraint".
const AllRegions catalog.Region = "All Regions"

// Sentinels for the plain string fields. AllSDGs is only accepted as input;
// a Set stores SDG zero for all goals.
const (
	AllSDGs    = "All SDGs"
	AllCities  = "All Cities"
	AllFunders = "All"
)

// Field names a filter dimension. The value doubles as the query parameter key.
type Field string

const (
	FieldRegion   Field = "region"
	FieldSDG      Field = "sdg"
	FieldCity     Field = "city"
	FieldFundedBy Field = "funded_by"
	FieldSearch   Field = "search"
)

// Fields in serialization order.
var Fields = []Field{FieldRegion, FieldSDG, FieldCity, FieldFundedBy, FieldSearch}

// Set is a filter set. SDG zero means all goals.
type Set struct {
	Region   catalog.Region `json:"region" yaml:"region"`
	SDG      int            `json:"sdg" yaml:"sdg"`
	City     string         `json:"city" yaml:"city"`
	FundedBy string         `json:"fundedBy" yaml:"funded_by"`
	Search   string         `json:"search" yaml:"search"`
}

// Patch replaces the non-nil fields of a Set.
type Patch struct {
	Region   *catalog.Region
	SDG      *int
	City     *string
	FundedBy *string
	Search   *string
}

// Ref returns a pointer to v, for building patches inline.
func Ref[T any](v T) *T {
	return &v
}

// Param is one serialized query constraint.
type Param struct {
	Key   string
	Value string
}

// Clear returns the canonical all-sentinel set.
func Clear() Set {
	return Set{
		Region:   AllRegions,
		City:     AllCities,
		FundedBy: AllFunders,
	}
}

// Merge returns a copy of current with the fields present in patch replaced.
func Merge(current Set, patch Patch) Set {
	next := current
	if patch.Region != nil {
		next.Region = *patch.Region
	}
	if patch.SDG != nil {
		next.SDG = *patch.SDG
	}
	if patch.City != nil {
		next.City = *patch.City
	}
	if patch.FundedBy != nil {
		next.FundedBy = *patch.FundedBy
	}
	if patch.Search != nil {
		next.Search = *patch.Search
	}
	return next
}

// Reset returns s with a single field put back to its sentinel.
func Reset(s Set, field Field) Set {
	cleared := Clear()
	switch field {
	case FieldRegion:
		s.Region = cleared.Region
	case FieldSDG:
		s.SDG = cleared.SDG
	case FieldCity:
		s.City = cleared.City
	case FieldFundedBy:
		s.FundedBy = cleared.FundedBy
	case FieldSearch:
		s.Search = cleared.Search
	}
	return s
}

// Value returns the serialized constraint for field and whether it is active.
func (s Set) Value(field Field) (string, bool) {
	switch field {
	case FieldRegion:
		if s.Region == "" || s.Region == AllRegions {
			return "", false
		}
		return string(s.Region), true
	case FieldSDG:
		if s.SDG == 0 {
			return "", false
		}
		return strconv.Itoa(s.SDG), true
	case FieldCity:
		if s.City == "" || s.City == AllCities {
			return "", false
		}
		return s.City, true
	case FieldFundedBy:
		if s.FundedBy == "" || s.FundedBy == AllFunders {
			return "", false
		}
		return s.FundedBy, true
	case FieldSearch:
		// Whitespace-only search is a real constraint; only "" is trivial.
		if s.Search == "" {
			return "", false
		}
		return s.Search, true
	}
	return "", false
}

// QueryParams emits the non-trivial constraints of s in field order.
func QueryParams(s Set) []Param {
	return QueryParamsExcept(s)
}

// QueryParamsExcept is QueryParams with the given fields left out. Analytics
// breakdowns use it to drop the dimension they group by.
func QueryParamsExcept(s Set, skip ...Field) []Param {
	params := make([]Param, 0, len(Fields))
	for _, field := range Fields {
		if contains(skip, field) {
			continue
		}
		if v, ok := s.Value(field); ok {
			params = append(params, Param{Key: string(field), Value: v})
		}
	}
	return params
}

// IsActive reports whether any field differs from its sentinel.
func IsActive(s Set) bool {
	return len(QueryParams(s)) > 0
}

// Values converts params to url.Values, keeping every pair.
func Values(params []Param) url.Values {
	v := url.Values{}
	for _, p := range params {
		v.Add(p.Key, p.Value)
	}
	return v
}

// Parse reads a Set from query values, accepting sentinels as well as blanks.
// Only a non-numeric sdg is an error.
func Parse(values url.Values) (Set, error) {
	s := Clear()
	if region := values.Get(string(FieldRegion)); region != "" {
		s.Region = catalog.Region(region)
	}
	if raw := values.Get(string(FieldSDG)); raw != "" && raw != AllSDGs {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Set{}, fmt.Errorf("invalid sdg %q: %w", raw, err)
		}
		s.SDG = n
	}
	if city := values.Get(string(FieldCity)); city != "" {
		s.City = city
	}
	if funder := values.Get(string(FieldFundedBy)); funder != "" {
		s.FundedBy = funder
	}
	s.Search = values.Get(string(FieldSearch))
	return s, nil
}

// Key is a stable cache key for the active constraints.
func Key(s Set) string {
	params := QueryParams(s)
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

func contains(fields []Field, f Field) bool {
	for _, candidate := range fields {
		if candidate == f {
			return true
		}
	}
	return false
}
