package transfer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/fairhaven/cetrack/ce"
)

// Table geometry and palette for the PDF export. Widths are inches on
// a landscape letter page with half-inch margins, so they sum to the
// 10-inch printable width.
var (
	pdfHeaders = []string{"Date", "Title", "Provider", "Category", "Hours", "Description"}
	pdfWidths  = []float64{0.9, 2.5, 1.8, 1.5, 0.7, 2.6}
	pdfAligns  = []string{"L", "L", "L", "L", "C", "L"}
)

const (
	pdfHeaderRowH = 0.28
	pdfBodyRowH   = 0.24
	pdfPageBottom = 8.0 // 8.5in page less the bottom margin
)

// Hard caps keep pathological values from dominating a cell before
// width fitting runs.
const (
	pdfTitleMax       = 60
	pdfProviderMax    = 40
	pdfDescriptionMax = 80
)

// PDFExporter renders a user's records as a printable table.
type PDFExporter struct {
	Users   ce.UserStore
	Records ce.RecordStore
}

// Export builds the PDF, optionally filtered to one category, and
// returns the bytes plus a suggested filename.
func (ex *PDFExporter) Export(ctx context.Context, userID ce.UserID, category string, now ce.TimePoint) ([]byte, string, error) {
	user, err := ex.Users.UserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	records, err := exportRecords(ctx, ex.Records, userID, category)
	if err != nil {
		return nil, "", err
	}

	totalHours := 0.0
	for _, rec := range records {
		totalHours += rec.Hours.Float64()
	}

	pdf := gofpdf.New("L", "in", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(0.5, 0.5, 0.5)
	pdf.SetAutoPageBreak(false, 0.5)
	pdf.SetCellMargin(0.04)
	pdf.AddPage()

	title := "CE Records"
	if category != "" {
		title += " - " + category
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 0.3, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 0.22, tr(fmt.Sprintf("%s | Exported %s", user.Username, now.Time.Format("January 02, 2006"))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 0.22, fmt.Sprintf("Total Records: %d | Total Hours: %.1f", len(records), totalHours), "", 1, "L", false, 0, "")
	pdf.Ln(0.1)

	pdf.SetDrawColor(226, 232, 240)
	pdf.SetLineWidth(0.007)

	tableHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(37, 99, 235)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range pdfHeaders {
			pdf.CellFormat(pdfWidths[i], pdfHeaderRowH, h, "1", 0, pdfAligns[i], true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
	}
	tableHeader()

	for i, rec := range records {
		if pdf.GetY()+pdfBodyRowH > pdfPageBottom {
			pdf.AddPage()
			tableHeader()
		}

		// Alternate row shading, white first.
		fill := i%2 == 1
		pdf.SetFillColor(248, 250, 252)

		cells := []string{
			rec.CompletedOn.String(),
			clip(rec.Title, pdfTitleMax),
			clip(rec.Provider, pdfProviderMax),
			rec.Category,
			rec.Hours.Value.String(),
			clip(rec.Description, pdfDescriptionMax),
		}
		for c, text := range cells {
			fitted := fitText(pdf, tr(text), pdfWidths[c]-0.1)
			pdf.CellFormat(pdfWidths[c], pdfBodyRowH, fitted, "1", 0, pdfAligns[c], fill, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), exportFilename("ce_records", category, "pdf", now), nil
}

// fitText trims s until it fits the given width in the current font,
// marking the cut with an ellipsis.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
