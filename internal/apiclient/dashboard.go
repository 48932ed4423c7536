package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
)

// ListProjects fetches one page of approved projects matching f. The page may
// lie past the end of the result set, in which case Projects is empty.
func (c *Client) ListProjects(ctx context.Context, f filters.Set, opts catalog.ListOptions) (*catalog.ProjectPage, error) {
	opts = opts.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("page_size", strconv.Itoa(opts.PageSize))
	q.Set("sort_by", string(opts.SortBy))
	q.Set("sort_order", string(opts.SortOrder))
	for _, p := range filters.QueryParams(f) {
		q.Add(p.Key, p.Value)
	}

	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/dashboard/projects", query: q})
	if err != nil {
		return nil, err
	}
	return decodeInto(pageSchema, data)
}

// GetProject fetches a public project. Unapproved projects are not found.
func (c *Client) GetProject(ctx context.Context, id string) (*catalog.Project, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/projects/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	return decodeInto(projectSchema, data)
}

func (c *Client) GetKPIs(ctx context.Context, f filters.Set) (catalog.KPIs, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/dashboard/kpis", query: filters.Values(filters.QueryParams(f))})
	if err != nil {
		return catalog.KPIs{}, err
	}
	k, err := decodeInto(kpiSchema, data)
	if err != nil {
		return catalog.KPIs{}, err
	}
	return *k, nil
}

func (c *Client) GetMapMarkers(ctx context.Context, f filters.Set) ([]catalog.MapMarker, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/dashboard/map-markers", query: filters.Values(filters.QueryParams(f))})
	if err != nil {
		return nil, err
	}
	return markerSchema.decodeList(data)
}

func (c *Client) GetFilterOptions(ctx context.Context) (catalog.FilterOptions, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/dashboard/filters"})
	if err != nil {
		return catalog.FilterOptions{}, err
	}
	o, err := decodeInto(filterOptionsSchema, data)
	if err != nil {
		return catalog.FilterOptions{}, err
	}
	return *o, nil
}

// GetSDGDistribution counts projects per goal. The sdg constraint of f is not
// sent since the breakdown is over goals.
func (c *Client) GetSDGDistribution(ctx context.Context, f filters.Set) ([]catalog.SDGCount, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/dashboard/analytics/sdg-distribution",
		query:  filters.Values(filters.QueryParamsExcept(f, filters.FieldSDG)),
	})
	if err != nil {
		return nil, err
	}
	return sdgCountSchema.decodeList(data)
}

func (c *Client) GetRegionalDistribution(ctx context.Context, f filters.Set) ([]catalog.RegionCount, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/dashboard/analytics/regional-distribution",
		query:  filters.Values(filters.QueryParamsExcept(f, filters.FieldRegion)),
	})
	if err != nil {
		return nil, err
	}
	return regionCountSchema.decodeList(data)
}

func (c *Client) GetTypologyDistribution(ctx context.Context, f filters.Set) ([]catalog.TypologyCount, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/dashboard/analytics/typology-distribution",
		query:  filters.Values(filters.QueryParamsExcept(f, filters.FieldCity)),
	})
	if err != nil {
		return nil, err
	}
	return typologyCountSchema.decodeList(data)
}
