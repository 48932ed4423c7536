package export

import (
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// ExcelExporter exports projects to a single-sheet workbook.
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
	rows    int
	styles  excelStyles
}

type excelStyles struct {
	header, text, number, date int
}

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	SheetName      string  `json:"sheet_name"`
	FreezeHeader   bool    `json:"freeze_header"`
	AutoFilter     bool    `json:"auto_filter"`
	DateFormat     string  `json:"date_format"`
	NumberFormat   string  `json:"number_format"`
	HeaderFill     string  `json:"header_fill"`
	HeaderFont     string  `json:"header_font"`
	MinColumnWidth float64 `json:"min_column_width"`
	MaxColumnWidth float64 `json:"max_column_width"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:      "Projects",
		FreezeHeader:   true,
		AutoFilter:     true,
		DateFormat:     "yyyy-mm-dd hh:mm",
		NumberFormat:   "#,##0",
		HeaderFill:     "1F6F5C",
		HeaderFont:     "FFFFFF",
		MinColumnWidth: 10,
		MaxColumnWidth: 50,
	}
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", options.SheetName)
	return &ExcelExporter{
		file:    file,
		options: options,
	}
}

// WriteHeader writes the styled header row
func (e *ExcelExporter) WriteHeader(columns []string) error {
	if err := e.createStyles(); err != nil {
		return err
	}
	sheet := e.options.SheetName
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := e.file.SetCellStyle(sheet, "A1", last, e.styles.header); err != nil {
		return err
	}
	e.rows = 1

	if e.options.FreezeHeader {
		if err := e.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}
	return nil
}

// WriteProjects appends one row per project and sizes the columns.
func (e *ExcelExporter) WriteProjects(cols []Column, projects []catalog.Project) error {
	if e.rows == 0 {
		if err := e.WriteHeader(Labels(cols)); err != nil {
			return err
		}
	}
	sheet := e.options.SheetName
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = estimateWidth(c.Label)
	}

	for i := range projects {
		rowNum := e.rows + 1
		for j, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			val := c.Value(&projects[i])
			if err := e.setCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
			if w := estimateWidth(val); w > widths[j] {
				widths[j] = w
			}
		}
		e.rows = rowNum
	}

	if e.options.AutoFilter && len(projects) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(cols), e.rows)
		if err := e.file.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}

	for i, w := range widths {
		if w < e.options.MinColumnWidth {
			w = e.options.MinColumnWidth
		}
		if e.options.MaxColumnWidth > 0 && w > e.options.MaxColumnWidth {
			w = e.options.MaxColumnWidth
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := e.file.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo writes the workbook to w
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the workbook
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

func (e *ExcelExporter) createStyles() error {
	border := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}
	var err error
	if e.styles.header, err = e.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: e.options.HeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.options.HeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	}); err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if e.styles.text, err = e.file.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top"},
	}); err != nil {
		return err
	}
	if e.styles.number, err = e.file.NewStyle(&excelize.Style{
		Border:       border,
		CustomNumFmt: &e.options.NumberFormat,
	}); err != nil {
		return err
	}
	e.styles.date, err = e.file.NewStyle(&excelize.Style{
		Border:       border,
		CustomNumFmt: &e.options.DateFormat,
	})
	return err
}

func (e *ExcelExporter) setCellValue(sheet, cell string, val interface{}) error {
	style := e.styles.text
	switch v := val.(type) {
	case nil:
		val = ""
	case time.Time:
		if v.IsZero() {
			val = ""
		} else {
			val = v.UTC()
			style = e.styles.date
		}
	case float64:
		// Coordinates keep their decimals; whole amounts get separators.
		if v == math.Trunc(v) {
			style = e.styles.number
		}
	}
	if err := e.file.SetCellValue(sheet, cell, val); err != nil {
		return err
	}
	return e.file.SetCellStyle(sheet, cell, cell, style)
}

// estimateWidth approximates the display width of a cell value in
// character units, with some padding.
func estimateWidth(val interface{}) float64 {
	switch v := val.(type) {
	case nil:
		return 0
	case time.Time:
		return 18
	case string:
		return float64(utf8.RuneCountInString(v))*1.1 + 2
	default:
		return float64(len(fmt.Sprintf("%v", v)))*1.1 + 2
	}
}
