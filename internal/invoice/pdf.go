package invoice

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 56.0
	rowHeight    = 20.0
	headingSize  = 20.0
	subheadSize  = 14.0
	bodySize     = 12.0
	gridLineWide = 0.25
)

var (
	colWidths = []float64{200, 50, 100, 100}
	colTitles = []string{"DESCRIPTION", "QTY", "UNIT PRICE", "AMOUNT"}

	darkBlue  = [3]int{0, 0, 139}
	lightBlue = [3]int{173, 216, 230}
)

// RenderPDF lays inv out on A4 pages. The table header repeats on every page
// the line items spill onto. Output depends only on inv: the document dates
// are taken from inv.Date.
func RenderPDF(inv Invoice) ([]byte, error) {
	pdf := render(inv)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func render(inv Invoice) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(inv.Date)
	pdf.SetModificationDate(inv.Date)
	pdf.SetTitle("Invoice "+inv.OrderID, true)
	pdf.SetAuthor(inv.Issuer.Name, true)

	tr := cp1252(pdf.UnicodeTranslatorFromDescriptor(""))

	pdf.AddPage()
	writeHeading(pdf, tr, inv)
	writeCustomer(pdf, tr, inv)
	writeTable(pdf, tr, inv)
	return pdf
}

func writeHeading(pdf *fpdf.Fpdf, tr func(string) string, inv Invoice) {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	pdf.SetTextColor(darkBlue[0], darkBlue[1], darkBlue[2])
	pdf.SetFont("Helvetica", "B", headingSize)
	pdf.CellFormat(width, 22, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(32)

	pdf.SetFont("Helvetica", "B", subheadSize)
	pdf.CellFormat(width, 18, tr(inv.Issuer.Name), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.CellFormat(width, 14, tr(inv.Issuer.Address), "", 1, "L", false, 0, "")
	pdf.CellFormat(width, 14, tr(inv.Issuer.Contact), "", 1, "L", false, 0, "")
	pdf.Ln(36)
}

func writeCustomer(pdf *fpdf.Fpdf, tr func(string) string, inv Invoice) {
	fields := [][2]string{
		{"Customer Name:", inv.CustomerName},
		{"Customer ID:", inv.CustomerID},
		{"Order ID:", inv.OrderID},
		{"Date:", inv.DateString()},
	}

	for _, f := range fields {
		pdf.SetFont("Helvetica", "B", bodySize)
		labelW := pdf.GetStringWidth(f[0]) + 4
		pdf.CellFormat(labelW, 18, f[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.CellFormat(0, 18, tr(f[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(32)
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, inv Invoice) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(gridLineWide)

	writeTableHeader(pdf)
	for _, l := range inv.Lines {
		ensureRoom(pdf)
		desc := fit(pdf, tr(l.Description), colWidths[0])
		writeRow(pdf, false, desc, strconv.Itoa(l.Quantity), Money(l.UnitPrice), Money(l.Amount))
	}

	summary := [][2]string{
		{"Subtotal", Money(inv.Subtotal)},
		{"Tax Rate", Percent(inv.TaxRate)},
		{"Tax", Money(inv.Tax)},
	}
	for _, s := range summary {
		ensureRoom(pdf)
		writeRow(pdf, false, "", "", s[0], s[1])
	}

	ensureRoom(pdf)
	pdf.SetFillColor(lightBlue[0], lightBlue[1], lightBlue[2])
	writeRow(pdf, true, "", "", "Total", Money(inv.Total))
}

func writeTableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFillColor(darkBlue[0], darkBlue[1], darkBlue[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", bodySize)
	for i, title := range colTitles {
		pdf.CellFormat(colWidths[i], rowHeight, title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", bodySize)
}

// writeRow fills only the last column when fillLast is set.
func writeRow(pdf *fpdf.Fpdf, fillLast bool, cells ...string) {
	for i, c := range cells {
		fill := fillLast && i == len(cells)-1
		pdf.CellFormat(colWidths[i], rowHeight, c, "1", 0, "C", fill, 0, "")
	}
	pdf.Ln(-1)
}

func ensureRoom(pdf *fpdf.Fpdf) {
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+rowHeight <= pageH-bottom {
		return
	}
	pdf.AddPage()
	writeTableHeader(pdf)
}

// cp1252 wraps the core-font translator. The built-in fonts only cover
// cp1252, so any rune the translator cannot map to a single byte prints
// as "?".
func cp1252(tr func(string) string) func(string) string {
	return func(s string) string {
		var b strings.Builder
		for _, r := range s {
			if r < utf8.RuneSelf {
				b.WriteRune(r)
				continue
			}
			if out := tr(string(r)); len(out) == 1 {
				b.WriteString(out)
				continue
			}
			b.WriteByte('?')
		}
		return b.String()
	}
}

// fit shortens an already translated string with a trailing "..." until it
// fits a cell of width w in the current font.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	room := w - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(s) <= room {
		return s
	}
	const ellipsis = "..."
	for n := len(s) - 1; n > 0; n-- {
		if pdf.GetStringWidth(s[:n]+ellipsis) <= room {
			return s[:n] + ellipsis
		}
	}
	return ellipsis
}
