// Package export renders a panel's selection as a workroom sheet.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/drapery_api/internal/models"
)

// Line is one selected slot on the sheet.
type Line struct {
	Category models.SelectionCategory
	Item     models.CatalogItem
	Cost     decimal.Decimal
}

// Sheet is everything printed on a workroom sheet.
type Sheet struct {
	Title        string
	Treatment    models.TreatmentCategory
	Measurements models.Measurements
	Lines        []Line
	PreparedBy   string
	GeneratedAt  time.Time
}

// Page layout constants (A4 portrait in mm).
const (
	pageWidth   = 210.0
	marginLeft  = 15.0
	marginRight = 15.0
	marginTop   = 15.0
	rowHeight   = 7.0
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Slot", 25, "L"},
	{"Item", 60, "L"},
	{"Supplier", 35, "L"},
	{"Colour", 25, "L"},
	{"Estimate", 35, "R"},
}

// ErrEmptySheet is returned when there is nothing selected to print.
var ErrEmptySheet = errors.New("no selected items to export")

// WritePDF renders sheet to w.
func WritePDF(w io.Writer, sheet Sheet) error {
	if len(sheet.Lines) == 0 {
		return ErrEmptySheet
	}
	if sheet.GeneratedAt.IsZero() {
		sheet.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.AddPage()

	contentWidth := pageWidth - marginLeft - marginRight

	pdf.SetFont("Helvetica", "B", 16)
	title := sheet.Title
	if title == "" {
		title = "Workroom Selection Sheet"
	}
	pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	m := sheet.Measurements
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Treatment: %s", sheet.Treatment), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Measurements: %.1f x %.1f %s", m.Width, m.Height, unitLabel(m.Unit)), "", 1, "L", false, 0, "")
	prepared := sheet.GeneratedAt.Format("02 Jan 2006 15:04")
	if sheet.PreparedBy != "" {
		prepared = fmt.Sprintf("%s by %s", prepared, sheet.PreparedBy)
	}
	pdf.CellFormat(contentWidth, 6, "Prepared: "+prepared, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// header row
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, rowHeight, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	total := decimal.Zero
	for _, line := range sheet.Lines {
		cells := []string{
			string(line.Category),
			truncate(pdf, line.Item.Name, columns[1].width-2),
			truncate(pdf, line.Item.Supplier, columns[2].width-2),
			truncate(pdf, line.Item.Color, columns[3].width-2),
			line.Cost.StringFixed(2),
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, rowHeight, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
		total = total.Add(line.Cost)
	}

	pdf.SetFont("Helvetica", "B", 10)
	labelWidth := contentWidth - columns[len(columns)-1].width
	pdf.CellFormat(labelWidth, rowHeight, "Estimated total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(columns[len(columns)-1].width, rowHeight, total.StringFixed(2), "1", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// RenderPDF is WritePDF into a byte slice.
func RenderPDF(sheet Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sheet); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unitLabel(u models.Unit) string {
	if u == "" {
		return string(models.UnitCM)
	}
	return string(u)
}

// truncate shortens s with an ellipsis so it fits width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
