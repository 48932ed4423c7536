package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"uia-atlas/atlas-portal/internal/views"
	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
	"uia-atlas/atlas-portal/pkg/geospatial"
)

// filterFlags binds the filter model to command flags. Only flags the user
// set are merged into the cleared set.
type filterFlags struct {
	fs       *pflag.FlagSet
	region   string
	sdg      int
	city     string
	fundedBy string
	search   string
}

func addFilterFlags(cmd *cobra.Command) *filterFlags {
	f := &filterFlags{fs: cmd.Flags()}
	f.fs.StringVar(&f.region, "region", "", "UIA region, e.g. \"Section I - Western Europe\"")
	f.fs.IntVar(&f.sdg, "sdg", 0, "Sustainable Development Goal number (1-17)")
	f.fs.StringVar(&f.city, "city", "", "City")
	f.fs.StringVar(&f.fundedBy, "funded-by", "", "Funding source")
	f.fs.StringVar(&f.search, "search", "", "Search project name, city or country")
	return f
}

func (f *filterFlags) set() filters.Set {
	var p filters.Patch
	if f.fs.Changed("region") {
		p.Region = filters.Ref(catalog.Region(f.region))
	}
	if f.fs.Changed("sdg") {
		p.SDG = &f.sdg
	}
	if f.fs.Changed("city") {
		p.City = &f.city
	}
	if f.fs.Changed("funded-by") {
		p.FundedBy = &f.fundedBy
	}
	if f.fs.Changed("search") {
		p.Search = &f.search
	}
	return filters.Merge(filters.Clear(), p)
}

func (rt *runtime) printFilters(set filters.Set) {
	chips := filters.Chips(set)
	if len(chips) == 0 {
		return
	}
	labels := make([]string, len(chips))
	for i, c := range chips {
		labels[i] = c.Label
	}
	fmt.Fprintln(rt.streams.Out, rt.style.muted.Render("Filters: "+strings.Join(labels, " | ")))
}

func newProjectsCmd(rt *runtime) *cobra.Command {
	var (
		page, size int
		sortBy     string
		order      string
	)
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"ls"},
		Short:   "List approved projects",
		Example: `  atlas projects --sdg 11
  atlas projects --region "Section I - Western Europe" --sort project_name --order asc`,
		Args: cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&size, "page-size", 0, "Projects per page (default from config)")
	cmd.Flags().StringVar(&sortBy, "sort", string(catalog.SortByCreatedAt), "Sort by project_name, created_at or funding_needed")
	cmd.Flags().StringVar(&order, "order", string(catalog.SortDesc), "asc or desc")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if size == 0 {
			size = rt.cfg.PageSize
		}
		set := ff.set()
		d := views.NewDashboardController(rt.client, rt.logger)
		d.Use(set, catalog.ListOptions{
			Page:      page,
			PageSize:  size,
			SortBy:    catalog.SortField(sortBy),
			SortOrder: catalog.SortOrder(order),
		})
		if err := d.Refresh(cmd.Context()); err != nil {
			return describe(err)
		}
		st := d.State()
		rt.printFilters(set)
		printProjects(rt.streams.Out, rt.style, &st.Projects, false)
		return nil
	}
	return cmd
}

func newKPIsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Show headline figures for the filtered catalog",
		Args:  cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		d := views.NewDashboardController(rt.client, rt.logger)
		d.Use(ff.set(), catalog.ListOptions{PageSize: 1})
		if err := d.Refresh(cmd.Context()); err != nil {
			return describe(err)
		}
		k := d.State().KPIs
		rt.printFilters(ff.set())
		tw := newTable(rt.streams.Out)
		fmt.Fprintf(tw, "Projects\t%d\n", k.TotalProjects)
		fmt.Fprintf(tw, "Cities engaged\t%d\n", k.CitiesEngaged)
		fmt.Fprintf(tw, "Countries represented\t%d\n", k.CountriesRepresented)
		fmt.Fprintf(tw, "Funding needed\t%s\n", money(k.TotalFundingNeeded))
		fmt.Fprintf(tw, "Funding spent\t%s\n", money(k.TotalFundingSpent))
		return tw.Flush()
	}
	return cmd
}

func newMarkersCmd(rt *runtime) *cobra.Command {
	var (
		near   string
		radius float64
	)
	cmd := &cobra.Command{
		Use:   "markers",
		Short: "List map markers and the viewport framing them",
		Example: `  atlas markers --sdg 13
  atlas markers --near 38.72,-9.14 --radius 500`,
		Args: cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.Flags().StringVar(&near, "near", "", "Only markers around lat,lng")
	cmd.Flags().Float64Var(&radius, "radius", 100, "Radius in km for --near")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		d := views.NewDashboardController(rt.client, rt.logger)
		d.Use(ff.set(), catalog.ListOptions{PageSize: 1})
		if err := d.Refresh(cmd.Context()); err != nil {
			return describe(err)
		}
		markers := d.State().Markers
		if near != "" {
			center, err := parseLatLng(near)
			if err != nil {
				return err
			}
			markers = geospatial.Within(markers, center, radius)
		}

		tw := newTable(rt.streams.Out)
		for _, m := range markers {
			fmt.Fprintf(tw, "%s\t%s\t%s, %s\t%.4f\t%.4f\n", m.ID, m.ProjectName, m.City, m.Country, m.Location.Lat, m.Location.Lng)
		}
		tw.Flush()
		if vp, ok := geospatial.Frame(markers); ok {
			fmt.Fprintln(rt.streams.Out, rt.style.muted.Render(fmt.Sprintf(
				"%d markers, viewport (%.4f, %.4f) to (%.4f, %.4f), center (%.4f, %.4f)",
				len(markers), vp.SouthWest.Lat, vp.SouthWest.Lng, vp.NorthEast.Lat, vp.NorthEast.Lng, vp.Center.Lat, vp.Center.Lng)))
		} else {
			fmt.Fprintln(rt.streams.Out, rt.style.muted.Render("No markers."))
		}
		return nil
	}
	return cmd
}

func parseLatLng(s string) (catalog.Location, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return catalog.Location{}, fmt.Errorf("invalid location %q, expected lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return catalog.Location{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return catalog.Location{}, fmt.Errorf("invalid longitude: %w", err)
	}
	loc := catalog.Location{Lat: lat, Lng: lng}
	return loc, loc.Validate()
}

func newAnalyticsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show SDG, regional and typology distributions",
		Args:  cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		d := views.NewDashboardController(rt.client, rt.logger)
		d.Use(ff.set(), catalog.ListOptions{})
		if err := d.LoadAnalytics(cmd.Context()); err != nil {
			return describe(err)
		}
		a := d.State().Analytics
		out := rt.streams.Out
		rt.printFilters(ff.set())

		fmt.Fprintln(out, rt.style.header.Render("Projects per SDG"))
		tw := newTable(out)
		for _, c := range a.SDGs {
			fmt.Fprintf(tw, "%s\t%d\n", catalog.SDGLabel(c.SDG), c.Count)
		}
		tw.Flush()

		fmt.Fprintln(out, rt.style.header.Render("Projects per region"))
		tw = newTable(out)
		for _, c := range a.Regions {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Region, c.ProjectCount, money(c.FundingNeeded))
		}
		tw.Flush()

		fmt.Fprintln(out, rt.style.header.Render("Projects per typology"))
		tw = newTable(out)
		for _, c := range a.Typologies {
			fmt.Fprintf(tw, "%s\t%d\n", c.Typology, c.Count)
		}
		return tw.Flush()
	}
	return cmd
}

func newOptionsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the cities and funding sources to filter by",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := rt.client.GetFilterOptions(cmd.Context())
			if err != nil {
				return describe(err)
			}
			out := rt.streams.Out
			fmt.Fprintln(out, rt.style.header.Render("Cities"))
			for _, c := range opts.Cities {
				fmt.Fprintln(out, "  "+c)
			}
			fmt.Fprintln(out, rt.style.header.Render("Funding sources"))
			for _, f := range opts.FundingSources {
				fmt.Fprintln(out, "  "+f)
			}
			return nil
		},
	}
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show one approved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := views.NewDashboardController(rt.client, rt.logger)
			if err := d.Select(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			printProject(rt.streams.Out, rt.style, d.State().Selected)
			return nil
		},
	}
}

func newSearchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Suggest projects, places and goals matching a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if len(query) < views.MinSearchLength {
				return fmt.Errorf("search needs at least %d characters", views.MinSearchLength)
			}
			suggestions, err := views.Suggest(cmd.Context(), rt.client, query)
			if err != nil {
				return describe(err)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(rt.streams.Out, rt.style.muted.Render("No matches."))
				return nil
			}
			tw := newTable(rt.streams.Out)
			for _, s := range suggestions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Kind, s.Label, s.Subtitle, s.Value)
			}
			return tw.Flush()
		},
	}
}
