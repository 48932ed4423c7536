// Package export renders the project catalog as CSV, Excel or PDF documents
// for reviewers who work with the data outside the portal.
package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// Format is an output document type.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FileName is the default name of an export produced on day.
func (f Format) FileName(day time.Time) string {
	return fmt.Sprintf("atlas_33_projects_%s.%s", day.Format("2006-01-02"), f)
}

// Column is one exported field.
type Column struct {
	Label string
	Value func(p *catalog.Project) interface{}
}

// Columns lists every exported field in document order.
var Columns = []Column{
	{"Project ID", func(p *catalog.Project) interface{} { return p.ID }},
	{"Project Name", func(p *catalog.Project) interface{} { return p.ProjectName }},
	{"Organization", func(p *catalog.Project) interface{} { return p.OrganizationName }},
	{"Contact Person", func(p *catalog.Project) interface{} { return p.ContactPerson }},
	{"Contact Email", func(p *catalog.Project) interface{} { return p.ContactEmail }},
	{"Status", func(p *catalog.Project) interface{} { return string(p.ProjectStatus) }},
	{"Workflow Status", func(p *catalog.Project) interface{} { return string(p.WorkflowStatus) }},
	{"Region", func(p *catalog.Project) interface{} { return string(p.Region) }},
	{"City", func(p *catalog.Project) interface{} { return p.City }},
	{"Country", func(p *catalog.Project) interface{} { return p.Country }},
	{"Latitude", func(p *catalog.Project) interface{} {
		if p.Location == nil {
			return nil
		}
		return p.Location.Lat
	}},
	{"Longitude", func(p *catalog.Project) interface{} {
		if p.Location == nil {
			return nil
		}
		return p.Location.Lng
	}},
	{"Funding Needed", func(p *catalog.Project) interface{} { return p.FundingNeeded }},
	{"Funding Spent", func(p *catalog.Project) interface{} { return p.FundingSpent }},
	{"Brief Description", func(p *catalog.Project) interface{} { return p.BriefDescription }},
	{"Typologies", func(p *catalog.Project) interface{} { return strings.Join(p.Typologies, ", ") }},
	{"SDGs", func(p *catalog.Project) interface{} { return joinInts(p.SDGs) }},
	{"Created At", func(p *catalog.Project) interface{} { return p.CreatedAt }},
}

// Labels returns the header row for cols.
func Labels(cols []Column) []string {
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	return labels
}

// Pick returns the columns with the given labels, in that order.
func Pick(labels ...string) []Column {
	var cols []Column
	for _, l := range labels {
		for _, c := range Columns {
			if c.Label == l {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

// Lister is the admin listing endpoint an export reads from.
type Lister interface {
	AdminListAll(ctx context.Context, page, pageSize int, status catalog.WorkflowStatus) (*catalog.ProjectPage, error)
}

// Collect walks every page of the admin listing. An empty status selects
// all workflow states.
func Collect(ctx context.Context, l Lister, status catalog.WorkflowStatus) ([]catalog.Project, error) {
	var out []catalog.Project
	for page := 1; ; page++ {
		res, err := l.AdminListAll(ctx, page, catalog.MaxPageSize, status)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Projects...)
		if len(res.Projects) == 0 || len(out) >= res.Total {
			return out, nil
		}
	}
}

// Options describe the document around the rows.
type Options struct {
	Title       string
	GeneratedAt time.Time
}

// Write renders projects to w in format f.
func Write(w io.Writer, f Format, projects []catalog.Project, opts Options) error {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	if opts.Title == "" {
		opts.Title = "UIA Project Catalog"
	}
	switch f {
	case FormatCSV:
		e := NewCSVExporter(w, DefaultCSVOptions())
		if err := e.WriteHeader(Labels(Columns)); err != nil {
			return err
		}
		if err := e.WriteProjects(Columns, projects); err != nil {
			return err
		}
		return e.Flush()
	case FormatExcel:
		e := NewExcelExporter(DefaultExcelOptions())
		defer e.Close()
		if err := e.WriteHeader(Labels(Columns)); err != nil {
			return err
		}
		if err := e.WriteProjects(Columns, projects); err != nil {
			return err
		}
		return e.WriteTo(w)
	case FormatPDF:
		po := DefaultPDFOptions()
		po.Title = opts.Title
		po.GeneratedAt = opts.GeneratedAt
		g := NewPDFGenerator(po)
		if err := g.GenerateCatalog(projects); err != nil {
			return err
		}
		return g.WriteTo(w)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
