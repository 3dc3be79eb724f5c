package service

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/pkg/printer"
)

const (
	receiptTextWidth = printer.Width80mm
	currencySymbol   = "$"
)

func money(amount string) string {
	if rest, negative := strings.CutPrefix(amount, "-"); negative {
		return "-" + currencySymbol + rest
	}
	return currencySymbol + amount
}

// receiptColumns returns the widths of the quantity, price and total columns
// for a line width. The product column takes what is left.
func receiptColumns(width int) []int {
	if width >= printer.Width80mm {
		return []int{5, 10, 10}
	}
	return []int{4, 9, 9}
}

type summaryLine struct {
	label string
	value string
}

func summaryLines(r *entity.Receipt) []summaryLine {
	return []summaryLine{
		{"Subtotal:", money(r.Summary.Subtotal)},
		{"Discount:", money(r.Summary.Discount)},
		{"Total:", money(r.Summary.Total)},
		{"Payment Received:", money(r.Summary.PaymentReceived)},
		{"Change:", money(r.Summary.Change)},
	}
}

func metadataLines(r *entity.Receipt) []summaryLine {
	return []summaryLine{
		{"Transaction ID:", r.TransactionID},
		{"Date:", r.Date},
		{"Cashier:", r.Cashier},
		{"Store:", r.StoreLocation},
	}
}

// FormatReceiptText renders a receipt as fixed-width plain text.
func FormatReceiptText(r *entity.Receipt, width int) string {
	if width <= 0 {
		width = receiptTextWidth
	}
	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(strings.TrimRight(s, " "))
		sb.WriteByte('\n')
	}
	center := func(s string) {
		s = printer.Truncate(s, width)
		line(strings.Repeat(" ", (width-printer.TextWidth(s))/2) + s)
	}
	keyValue := func(key, value string) {
		gap := width - printer.TextWidth(key) - printer.TextWidth(value)
		if gap < 1 {
			gap = 1
		}
		line(key + strings.Repeat(" ", gap) + value)
	}
	cols := receiptColumns(width)
	row := func(first string, rest ...string) {
		firstWidth := width
		for _, w := range cols {
			firstWidth -= w
		}
		s := printer.PadRight(printer.Truncate(first, firstWidth), firstWidth)
		for i, col := range rest {
			s += printer.PadLeft(printer.Truncate(col, cols[i]), cols[i])
		}
		line(s)
	}
	rule := strings.Repeat("-", width)

	center(r.Header.StoreName)
	center(r.Header.Title)
	line("")
	for _, m := range metadataLines(r) {
		line(m.label + " " + m.value)
	}
	line(rule)
	row("Product", "Qty", "Price", "Total")
	line(rule)
	for _, item := range r.Items {
		row(item.Name, strconv.Itoa(item.Quantity), money(item.UnitPrice), money(item.Total))
	}
	line(rule)
	for _, s := range summaryLines(r) {
		keyValue(s.label, s.value)
	}
	line(rule)
	for _, l := range printer.Wrap(r.Footer, width) {
		line(l)
	}

	return sb.String()
}

// FormatReceiptPDF renders a receipt as an A4 PDF. The document dates are
// pinned to created so the same receipt always yields the same bytes.
func FormatReceiptPDF(r *entity.Receipt, created time.Time, compress bool) ([]byte, error) {
	const margin = 14.0

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(r.Header.Title+" "+r.TransactionID, true)
	pdf.SetCreator(r.Header.StoreName, true)
	pdf.SetMargins(margin, 10, margin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*margin

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth, 9, tr(r.Header.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(contentWidth, 8, tr(r.Header.Title), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range metadataLines(r) {
		pdf.CellFormat(contentWidth, 5, tr(m.label+" "+m.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	widths := []float64{contentWidth * 0.46, contentWidth * 0.14, contentWidth * 0.20, contentWidth * 0.20}
	aligns := []string{"L", "R", "R", "R"}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(66, 66, 66)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range []string{"Product", "Quantity", "Price", "Total"} {
		pdf.CellFormat(widths[i], 6, h, "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, item := range r.Items {
		cells := []string{tr(item.Name), strconv.Itoa(item.Quantity), money(item.UnitPrice), money(item.Total)}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(240, 240, 240)
	for _, s := range summaryLines(r) {
		pdf.CellFormat(widths[0]+widths[1], 6, "", "1", 0, "", true, 0, "")
		pdf.CellFormat(widths[2], 6, s.label, "1", 0, "R", true, 0, "")
		pdf.CellFormat(widths[3], 6, s.value, "1", 0, "R", true, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(contentWidth, 5, tr(r.Footer), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
