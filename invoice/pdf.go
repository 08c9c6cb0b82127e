package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 15.0
	descWidth    = 130.0
	amountWidth  = 50.0
	lineHeight   = 7.0
	currencyMark = "Rs."
)

// RenderPDF lays out the same sections as RenderHTML on one A4 page flow.
// The core fonts have no rupee glyph, so amounts are prefixed with "Rs.".
func RenderPDF(v View) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(v.BusinessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Invoice %s  |  %s", v.InvoiceNo, v.Date.Format("02 Jan 2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	label := func(name, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, name, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
	}
	label("Customer:", v.CustomerName)
	label("Mobile:", v.Mobile)
	label("Car:", fmt.Sprintf("%s (%s)", v.CarNumber, v.CarModel))
	problems := "-"
	if len(v.Problems) > 0 {
		problems = strings.Join(v.Problems, ", ")
	}
	label("Problems:", problems)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(descWidth, lineHeight, "Service", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, "Amount ("+currencyMark+")", "1", 1, "R", true, 0, "")

	row := func(style, desc, amount string) {
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(descWidth, lineHeight, tr(desc), "1", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, lineHeight, amount, "1", 1, "R", false, 0, "")
	}
	for _, s := range v.Services {
		row("", s.Name, money(s.Charge))
		for _, p := range s.Parts {
			desc := fmt.Sprintf("    %s (Qty %d x %s%s)", p.Name, p.Quantity, currencyMark, money(p.PricePerUnit))
			row("I", desc, money(p.Total))
		}
		row("B", "Subtotal", money(s.Subtotal))
	}
	row("", "Labor charge", money(v.LaborCharge))
	row("", "Extra charge", money(v.ExtraCharge))
	pdf.Ln(3)

	label("Remarks:", orDash(v.Remarks))
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Total: %s%s", currencyMark, money(v.Total)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
