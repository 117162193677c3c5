// Package export renders report payloads into downloadable documents.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/report"
	"github.com/go-pdf/fpdf"
)

const (
	pageMargin      = 10.0
	subditColWidth  = 38.0
	lineHeight      = 4.2
	headerRowHeight = 7.0
	cellPadding     = 1.2
)

// PDFRenderer renders a report payload as a landscape A4 document, one
// section per day, with the grid laid out as subdits x units.
type PDFRenderer struct {
	now func() time.Time
}

// NewPDFRenderer creates a renderer. The clock is injectable for the
// generated-at stamp.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{now: time.Now}
}

// Render writes the document to w. setting may be nil; when it carries
// signature content the TDD footer is appended after the last day.
func (r *PDFRenderer) Render(w io.Writer, payload *report.Payload, setting *models.ReportSetting) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	r.writeTitle(pdf, payload.Title)

	for i, day := range payload.Days {
		if i > 0 {
			pdf.AddPage()
		}
		r.writeDay(pdf, day, payload.Units)
	}

	if setting != nil && setting.HasTDD() {
		r.writeSignature(pdf, setting)
	}
	r.writeStamp(pdf)

	return pdf.Output(w)
}

func (r *PDFRenderer) writeTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	for _, line := range strings.Split(title, "\n") {
		pdf.CellFormat(0, 6.5, line, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
}

func (r *PDFRenderer) writeDay(pdf *fpdf.Fpdf, day report.Day, units []report.UnitHeader) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, day.HeaderLine, "", 1, "L", false, 0, "")
	pdf.Ln(1)

	unitWidth := r.unitColumnWidth(pdf, len(units))

	r.writeGridHeader(pdf, units, unitWidth)
	for _, row := range day.Rows {
		r.writeGridRow(pdf, row, units, unitWidth)
	}
	pdf.Ln(4)
}

func (r *PDFRenderer) unitColumnWidth(pdf *fpdf.Fpdf, unitCount int) float64 {
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pageMargin - subditColWidth
	if unitCount == 0 {
		return usable
	}
	return usable / float64(unitCount)
}

func (r *PDFRenderer) writeGridHeader(pdf *fpdf.Fpdf, units []report.UnitHeader, unitWidth float64) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(subditColWidth, headerRowHeight, "SUBDIT", "1", 0, "C", true, 0, "")
	for _, unit := range units {
		pdf.CellFormat(unitWidth, headerRowHeight, strings.ToUpper(unit.Name), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

// writeGridRow draws one subdit row. Row height is the tallest cell;
// each cell body is the numbered entry lines wrapped to the column
// width.
func (r *PDFRenderer) writeGridRow(pdf *fpdf.Fpdf, row report.SubditRow, units []report.UnitHeader, unitWidth float64) {
	pdf.SetFont("Arial", "", 8)

	cellLines := make([][]string, len(row.Cells))
	maxLines := 1
	for i, cell := range row.Cells {
		cellLines[i] = r.wrapEntries(pdf, cell.Entries, unitWidth-2*cellPadding)
		if n := len(cellLines[i]); n > maxLines {
			maxLines = n
		}
	}

	nameLines := pdf.SplitText(row.SubditName, subditColWidth-2*cellPadding)
	if len(nameLines) > maxLines {
		maxLines = len(nameLines)
	}

	rowHeight := float64(maxLines)*lineHeight + 2*cellPadding

	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+rowHeight > pageHeight-pageMargin {
		pdf.AddPage()
		r.writeGridHeader(pdf, units, unitWidth)
		pdf.SetFont("Arial", "", 8)
	}

	x, y := pdf.GetXY()

	pdf.Rect(x, y, subditColWidth, rowHeight, "D")
	r.drawLines(pdf, x, y, subditColWidth, nameLines)

	offset := subditColWidth
	for _, lines := range cellLines {
		pdf.Rect(x+offset, y, unitWidth, rowHeight, "D")
		r.drawLines(pdf, x+offset, y, unitWidth, lines)
		offset += unitWidth
	}

	pdf.SetXY(x, y+rowHeight)
}

// wrapEntries formats one cell's entries as numbered, wrapped lines.
// An empty cell renders a single dash.
func (r *PDFRenderer) wrapEntries(pdf *fpdf.Fpdf, entries []report.EntryCell, width float64) []string {
	if len(entries) == 0 {
		return []string{"-"}
	}

	var lines []string
	for i, entry := range entries {
		text := fmt.Sprintf("%d. %s", i+1, entry.Description)
		if entry.TimeStart != nil {
			text = fmt.Sprintf("%d. [%s] %s", i+1, *entry.TimeStart, entry.Description)
		}
		lines = append(lines, pdf.SplitText(text, width)...)
	}
	return lines
}

func (r *PDFRenderer) drawLines(pdf *fpdf.Fpdf, x, y, width float64, lines []string) {
	for i, line := range lines {
		pdf.SetXY(x+cellPadding, y+cellPadding+float64(i)*lineHeight)
		pdf.CellFormat(width-2*cellPadding, lineHeight, line, "", 0, "L", false, 0, "")
	}
}

// writeSignature draws the TDD block right-aligned below the last grid.
func (r *PDFRenderer) writeSignature(pdf *fpdf.Fpdf, setting *models.ReportSetting) {
	pageWidth, pageHeight := pdf.GetPageSize()
	blockWidth := 90.0
	// Four text lines plus the signature gap.
	blockHeight := 4*5.5 + 18
	if pdf.GetY()+blockHeight > pageHeight-pageMargin {
		pdf.AddPage()
	}

	x := pageWidth - pageMargin - blockWidth
	pdf.SetFont("Arial", "", 10)

	pdf.SetX(x)
	pdf.CellFormat(blockWidth, 5.5, "An. "+setting.AtasNama, "", 1, "C", false, 0, "")
	pdf.SetX(x)
	pdf.CellFormat(blockWidth, 5.5, setting.Jabatan, "", 1, "C", false, 0, "")
	pdf.Ln(18)
	pdf.SetX(x)
	pdf.SetFont("Arial", "BU", 10)
	pdf.CellFormat(blockWidth, 5.5, setting.NamaPenandatangan, "", 1, "C", false, 0, "")
	pdf.SetX(x)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(blockWidth, 5.5, setting.PangkatNRP, "", 1, "C", false, 0, "")
}

func (r *PDFRenderer) writeStamp(pdf *fpdf.Fpdf) {
	pdf.SetFont("Arial", "I", 7)
	pdf.SetTextColor(120, 120, 120)
	pdf.Ln(6)
	pdf.CellFormat(0, 4, "Dicetak: "+r.now().Format("02-01-2006 15:04"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
