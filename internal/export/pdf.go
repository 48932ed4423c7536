package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// pdfColumns is the subset of Columns that fits a landscape page.
var pdfColumns = []string{
	"Project Name", "Organization", "City", "Country",
	"Region", "Workflow Status", "Funding Needed", "Created At",
}

// PDFGenerator renders a printable catalog summary.
type PDFGenerator struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
	tr      func(string) string
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string     `json:"page_size"`
	Orientation    string     `json:"orientation"`
	Title          string     `json:"title"`
	GeneratedAt    time.Time  `json:"generated_at"`
	DateFormat     string     `json:"date_format"`
	HeaderColor    PDFColor   `json:"header_color"`
	AlternateColor PDFColor   `json:"alternate_color"`
	FontFamily     string     `json:"font_family"`
	FontSize       float64    `json:"font_size"`
	TitleFontSize  float64    `json:"title_font_size"`
	Margins        PDFMargins `json:"margins"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFMargins represents page margins
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Orientation:    "landscape",
		Title:          "UIA Project Catalog",
		DateFormat:     "2006-01-02",
		HeaderColor:    PDFColor{R: 31, G: 111, B: 92},
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		FontFamily:     "Helvetica",
		FontSize:       9,
		TitleFontSize:  16,
		Margins:        PDFMargins{Left: 12, Right: 12, Top: 15, Bottom: 15},
	}
}

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}
	if options.GeneratedAt.IsZero() {
		options.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New(orientation, "mm", options.PageSize, "")
	pdf.SetMargins(options.Margins.Left, options.Margins.Top, options.Margins.Right)
	pdf.SetAutoPageBreak(true, options.Margins.Bottom)
	pdf.SetTitle(options.Title, true)

	g := &PDFGenerator{
		pdf:     pdf,
		options: options,
		// core fonts are cp1252; this maps accented city names onto it
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	g.setFooter()
	return g
}

// GenerateCatalog writes the summary block followed by the project table.
func (g *PDFGenerator) GenerateCatalog(projects []catalog.Project) error {
	g.pdf.AddPage()
	g.addTitle()
	g.addSummary(projects)
	g.pdf.Ln(6)

	cols := Pick(pdfColumns...)
	widths := g.columnWidths(cols, projects)
	g.addTableHeader(cols, widths)
	g.addTableData(cols, projects, widths)
	return g.pdf.Error()
}

func (g *PDFGenerator) addTitle() {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 10, g.tr(g.options.Title), "", 1, "L", false, 0, "")

	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.SetTextColor(128, 128, 128)
	g.pdf.CellFormat(0, 6, "Generated "+g.options.GeneratedAt.Format(g.options.DateFormat), "", 1, "L", false, 0, "")
	g.pdf.SetTextColor(0, 0, 0)
}

func (g *PDFGenerator) addSummary(projects []catalog.Project) {
	var needed, spent float64
	byStatus := make(map[catalog.WorkflowStatus]int)
	for i := range projects {
		needed += projects[i].FundingNeeded
		spent += projects[i].FundingSpent
		byStatus[projects[i].WorkflowStatus]++
	}

	type item struct{ label, value string }
	items := []item{
		{"Projects", fmt.Sprintf("%d", len(projects))},
		{"Funding needed", money(needed)},
		{"Funding spent", money(spent)},
	}
	statuses := make([]string, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		items = append(items, item{s, fmt.Sprintf("%d", byStatus[catalog.WorkflowStatus(s)])})
	}

	g.pdf.Ln(4)
	for _, it := range items {
		g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
		g.pdf.CellFormat(40, 5, it.label, "", 0, "L", false, 0, "")
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
		g.pdf.CellFormat(0, 5, it.value, "", 1, "L", false, 0, "")
	}
}

// columnWidths sizes each column to its widest value, scaled to the page.
func (g *PDFGenerator) columnWidths(cols []Column, projects []catalog.Project) []float64 {
	pageWidth, _ := g.pdf.GetPageSize()
	available := pageWidth - g.options.Margins.Left - g.options.Margins.Right

	widths := make([]float64, len(cols))
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	for i, c := range cols {
		widths[i] = g.pdf.GetStringWidth(c.Label) + 4
	}
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	sample := projects
	if len(sample) > 100 {
		sample = sample[:100]
	}
	for i := range sample {
		for j, c := range cols {
			if w := g.pdf.GetStringWidth(g.format(c.Value(&sample[i]))) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	scale := available / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

func (g *PDFGenerator) addTableHeader(cols []Column, widths []float64) {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	g.pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	g.pdf.SetTextColor(255, 255, 255)
	for i, c := range cols {
		g.pdf.CellFormat(widths[i], 7, c.Label, "1", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.SetTextColor(0, 0, 0)
}

func (g *PDFGenerator) addTableData(cols []Column, projects []catalog.Project, widths []float64) {
	const rowHeight = 6
	_, pageHeight := g.pdf.GetPageSize()

	for i := range projects {
		if g.pdf.GetY()+rowHeight > pageHeight-g.options.Margins.Bottom {
			g.pdf.AddPage()
			g.addTableHeader(cols, widths)
		}
		if i%2 == 1 {
			g.pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
		} else {
			g.pdf.SetFillColor(255, 255, 255)
		}
		for j, c := range cols {
			val := c.Value(&projects[i])
			align := "L"
			if _, ok := val.(float64); ok {
				align = "R"
			}
			g.pdf.CellFormat(widths[j], rowHeight, g.fit(g.format(val), widths[j]-2), "1", 0, align, true, 0, "")
		}
		g.pdf.Ln(-1)
	}
}

// fit truncates s with an ellipsis until it renders within width.
func (g *PDFGenerator) fit(s string, width float64) string {
	if g.pdf.GetStringWidth(s) <= width {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && g.pdf.GetStringWidth(string(b)+"...") > width {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}

// format renders a value in the output encoding.
func (g *PDFGenerator) format(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(g.options.DateFormat)
	case float64:
		return money(v)
	case string:
		return g.tr(v)
	default:
		return g.tr(fmt.Sprintf("%v", v))
	}
}

func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		g.pdf.SetY(-12)
		g.pdf.SetFont(g.options.FontFamily, "", 8)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// WriteTo writes the PDF to a writer
func (g *PDFGenerator) WriteTo(w io.Writer) error {
	return g.pdf.Output(w)
}

// money formats whole euros with thousands separators.
func money(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg, s = true, s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return "EUR " + s
}
