package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// DaySection groups the rendered lines of one calendar day for week exports.
type DaySection struct {
	Title string
	Lines []string
}

// PDFExporter renders weekly schedule grids into PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderWeek lays a Monday-to-Saturday schedule out as six day columns on a
// landscape page, one line per session block.
func (e *PDFExporter) RenderWeek(title string, days []DaySection) ([]byte, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("week export requires at least one day")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(8, 12, 8)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 9, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	colWidth := 281.0 / float64(len(days))
	pdf.SetFont("Arial", "B", 9)
	for _, day := range days {
		pdf.CellFormat(colWidth, 7, day.Title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	maxLines := 0
	for _, day := range days {
		if len(day.Lines) > maxLines {
			maxLines = len(day.Lines)
		}
	}

	pdf.SetFont("Arial", "", 8)
	for i := 0; i < maxLines; i++ {
		for _, day := range days {
			value := ""
			if i < len(day.Lines) {
				value = day.Lines[i]
			}
			pdf.CellFormat(colWidth, 6, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render week pdf: %w", err)
	}
	return buf.Bytes(), nil
}
