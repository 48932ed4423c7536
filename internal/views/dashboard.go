package views

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
)

// DashboardState is what the public dashboard renders.
type DashboardState struct {
	Filters  filters.Set
	Options  catalog.ListOptions
	KPIs     catalog.KPIs
	Markers  []catalog.MapMarker
	Projects catalog.ProjectPage
	// FilterChoices feed the city and funder dropdowns.
	FilterChoices catalog.FilterOptions
	Analytics     Analytics
	Selected      *catalog.Project
	Loading       bool
	Err           *ViewError
}

// Analytics holds the three distribution charts. Each one ignores the
// filter on its own dimension.
type Analytics struct {
	SDGs       []catalog.SDGCount
	Regions    []catalog.RegionCount
	Typologies []catalog.TypologyCount
}

// DashboardController drives the public map, table and KPI cards.
//
// A filter change starts a new batch (KPIs, markers and the first page of
// the table) and a page or sort change reloads the table alone. Results of
// a batch are applied only when no later batch of the same kind started
// in the meantime, so a slow response never overwrites fresher state.
type DashboardController struct {
	api    CatalogAPI
	logger *zap.Logger

	mu    sync.Mutex
	state DashboardState
	// sequence tokens per kind of request
	dataSeq      uint64
	listSeq      uint64
	analyticsSeq uint64
	selectSeq    uint64
	inFlight     int
}

func NewDashboardController(api CatalogAPI, logger *zap.Logger) *DashboardController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardController{
		api:    api,
		logger: logger,
		state: DashboardState{
			Filters: filters.Clear(),
			Options: catalog.ListOptions{}.Normalize(),
		},
	}
}

// State returns a snapshot of the screen state.
func (d *DashboardController) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.state
	st.Markers = append([]catalog.MapMarker(nil), d.state.Markers...)
	st.Projects.Projects = append([]catalog.Project(nil), d.state.Projects.Projects...)
	return st
}

// Load fetches the filter dropdown values and the first batch. The batch
// runs even when the dropdown values fail; that error is then reported in
// the state and returned.
func (d *DashboardController) Load(ctx context.Context) error {
	opts, optsErr := d.api.GetFilterOptions(ctx)
	if optsErr != nil {
		d.logger.Debug("Filter options failed", zap.Error(optsErr))
	} else {
		d.mu.Lock()
		d.state.FilterChoices = opts
		d.mu.Unlock()
	}
	if err := d.refresh(ctx); err != nil {
		return err
	}
	if optsErr != nil {
		d.fail(optsErr)
	}
	return optsErr
}

// Use replaces filters and list options without fetching. Front ends that
// build the whole query up front call it before Refresh.
func (d *DashboardController) Use(f filters.Set, opts catalog.ListOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Filters = f
	d.state.Options = opts.Normalize()
}

// Refresh reloads KPIs, markers and the current table page.
func (d *DashboardController) Refresh(ctx context.Context) error {
	return d.refresh(ctx)
}

// SetFilters merges patch into the current filters, returns to page one
// and reloads.
func (d *DashboardController) SetFilters(ctx context.Context, patch filters.Patch) error {
	d.mu.Lock()
	d.state.Filters = filters.Merge(d.state.Filters, patch)
	d.state.Options.Page = 1
	d.mu.Unlock()
	return d.refresh(ctx)
}

// RemoveFilter puts one field back to its sentinel.
func (d *DashboardController) RemoveFilter(ctx context.Context, field filters.Field) error {
	d.mu.Lock()
	d.state.Filters = filters.Reset(d.state.Filters, field)
	d.state.Options.Page = 1
	d.mu.Unlock()
	return d.refresh(ctx)
}

func (d *DashboardController) ClearFilters(ctx context.Context) error {
	d.mu.Lock()
	d.state.Filters = filters.Clear()
	d.state.Options.Page = 1
	d.mu.Unlock()
	return d.refresh(ctx)
}

// GoToPage moves the table, clamped to the pages the last total allows.
func (d *DashboardController) GoToPage(ctx context.Context, page int) error {
	d.mu.Lock()
	d.state.Options.Page = clamp(page, d.state.Projects.Total, d.state.Options.PageSize)
	d.mu.Unlock()
	return d.reloadList(ctx)
}

func (d *DashboardController) NextPage(ctx context.Context) error {
	return d.GoToPage(ctx, d.State().Options.Page+1)
}

func (d *DashboardController) PrevPage(ctx context.Context) error {
	return d.GoToPage(ctx, d.State().Options.Page-1)
}

// SetSort changes the table order and returns to page one.
func (d *DashboardController) SetSort(ctx context.Context, by catalog.SortField, order catalog.SortOrder) error {
	d.mu.Lock()
	d.state.Options.SortBy = by
	d.state.Options.SortOrder = order
	d.state.Options.Page = 1
	d.state.Options = d.state.Options.Normalize()
	d.mu.Unlock()
	return d.reloadList(ctx)
}

func (d *DashboardController) SetPageSize(ctx context.Context, size int) error {
	d.mu.Lock()
	d.state.Options.PageSize = size
	d.state.Options.Page = 1
	d.state.Options = d.state.Options.Normalize()
	d.mu.Unlock()
	return d.reloadList(ctx)
}

// Select opens the detail panel for one project.
func (d *DashboardController) Select(ctx context.Context, id string) error {
	d.mu.Lock()
	d.selectSeq++
	seq := d.selectSeq
	d.mu.Unlock()

	p, err := d.api.GetProject(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.selectSeq {
		return nil
	}
	if err != nil {
		d.state.Err = newViewError(err)
		return err
	}
	d.state.Selected = p
	d.state.Err = nil
	return nil
}

func (d *DashboardController) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectSeq++
	d.state.Selected = nil
}

// LoadAnalytics fetches the three distributions for the current filters.
func (d *DashboardController) LoadAnalytics(ctx context.Context) error {
	d.mu.Lock()
	d.analyticsSeq++
	seq := d.analyticsSeq
	f := d.state.Filters
	d.mu.Unlock()
	d.begin()
	defer d.end()

	var a Analytics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a.SDGs, err = d.api.GetSDGDistribution(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		a.Regions, err = d.api.GetRegionalDistribution(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		a.Typologies, err = d.api.GetTypologyDistribution(gctx, f)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.analyticsSeq {
		return nil
	}
	if err != nil {
		d.state.Err = newViewError(err)
		d.logger.Debug("Analytics batch failed", zap.Error(err))
		return err
	}
	d.state.Analytics = a
	d.state.Err = nil
	return nil
}

// refresh issues the KPI, marker and table calls together and applies
// them as one update.
func (d *DashboardController) refresh(ctx context.Context) error {
	d.mu.Lock()
	d.dataSeq++
	d.listSeq++
	dataSeq, listSeq := d.dataSeq, d.listSeq
	f, opts := d.state.Filters, d.state.Options
	d.mu.Unlock()
	d.begin()
	defer d.end()

	var (
		kpis    catalog.KPIs
		markers []catalog.MapMarker
		page    *catalog.ProjectPage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		kpis, err = d.api.GetKPIs(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		markers, err = d.api.GetMapMarkers(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		page, err = d.api.ListProjects(gctx, f, opts)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if dataSeq != d.dataSeq {
		return nil
	}
	if err != nil {
		d.state.Err = newViewError(err)
		d.logger.Debug("Dashboard batch failed", zap.Error(err))
		return err
	}
	d.state.KPIs = kpis
	d.state.Markers = markers
	if listSeq == d.listSeq {
		d.state.Projects = *page
	}
	d.state.Err = nil
	return nil
}

func (d *DashboardController) reloadList(ctx context.Context) error {
	d.mu.Lock()
	d.listSeq++
	seq := d.listSeq
	f, opts := d.state.Filters, d.state.Options
	d.mu.Unlock()
	d.begin()
	defer d.end()

	page, err := d.api.ListProjects(ctx, f, opts)

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.listSeq {
		return nil
	}
	if err != nil {
		d.state.Err = newViewError(err)
		return err
	}
	d.state.Projects = *page
	d.state.Err = nil
	return nil
}

func (d *DashboardController) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Err = newViewError(err)
}

func (d *DashboardController) begin() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight++
	d.state.Loading = true
}

func (d *DashboardController) end() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--
	d.state.Loading = d.inFlight > 0
}
