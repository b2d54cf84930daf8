// Package render lays out a quotation as a printable PDF in one of several
// visual templates. It only consumes computed totals; it never prices lines.
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/internal/totals"

	"github.com/jung-kurt/gofpdf"
)

// DefaultTemplate is used when a quotation names none.
const DefaultTemplate = "classic"

type rgb struct{ r, g, b int }

type style struct {
	orientation string
	title       string
	titleSize   float64
	bodySize    float64
	rowHeight   float64
	headerFill  rgb
	headerText  rgb
	accent      rgb
	zebra       bool
	// column widths: #, item, qty, rate, tax %, amount
	columns [6]float64
}

var templates = map[string]style{
	"classic": {
		orientation: "P",
		title:       "QUOTATION",
		titleSize:   18,
		bodySize:    10,
		rowHeight:   8,
		headerFill:  rgb{230, 230, 230},
		headerText:  rgb{0, 0, 0},
		accent:      rgb{0, 0, 0},
		columns:     [6]float64{10, 70, 20, 30, 20, 40},
	},
	"modern": {
		orientation: "P",
		title:       "Quotation",
		titleSize:   22,
		bodySize:    10,
		rowHeight:   9,
		headerFill:  rgb{33, 87, 155},
		headerText:  rgb{255, 255, 255},
		accent:      rgb{33, 87, 155},
		zebra:       true,
		columns:     [6]float64{10, 70, 20, 30, 20, 40},
	},
	"compact": {
		orientation: "P",
		title:       "QUOTE",
		titleSize:   14,
		bodySize:    8,
		rowHeight:   6,
		headerFill:  rgb{245, 245, 245},
		headerText:  rgb{60, 60, 60},
		accent:      rgb{90, 90, 90},
		columns:     [6]float64{8, 80, 18, 28, 18, 38},
	},
}

// Templates lists the template names in a stable order.
func Templates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsTemplate reports whether name is a known template.
func IsTemplate(name string) bool {
	_, ok := templates[name]
	return ok
}

// Line is one printed row.
type Line struct {
	Name     string
	Brand    string
	Quantity int64
	Rate     string
	Tax      string
	Amount   string
}

// Document is everything printed on a quotation.
type Document struct {
	Number   int64
	Date     time.Time
	DueDate  *time.Time
	Status   model.PaymentStatus
	Owner    model.Owner
	Customer model.Customer
	Bank     model.BankDetails
	Lines    []Line
	Totals   totals.Summary
}

// NewDocument builds the printable form of a quotation with its computed totals.
func NewDocument(q *model.Quotation, owner model.Owner, res totals.Result, status model.PaymentStatus) Document {
	doc := Document{
		Number:   q.Number,
		Date:     q.CreatedAt,
		Status:   status,
		Owner:    owner,
		Customer: q.Customer,
		Bank:     q.BankDetails,
		Totals:   res.Summary(),
	}
	if q.Payment != nil {
		doc.DueDate = q.Payment.DueDate
	}
	for i, qi := range q.Items {
		line := Line{
			Name:     qi.Item.Name,
			Brand:    qi.Item.Brand,
			Quantity: qi.Quantity,
			Rate:     totals.Format(qi.Item.Rate),
			Tax:      qi.Tax.String(),
		}
		if i < len(res.Lines) {
			line.Amount = totals.Format(res.Lines[i].Amount)
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}

// PDF renders doc with the named template.
func PDF(doc Document, template string) ([]byte, error) {
	if template == "" {
		template = DefaultTemplate
	}
	st, ok := templates[template]
	if !ok {
		return nil, apperr.Validation("template", "unknown template %q, expected one of %s", template, strings.Join(Templates(), ", "))
	}

	pdf := gofpdf.New(st.orientation, "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Quotation %d", doc.Number), true)
	pdf.SetAuthor(doc.Owner.CompanyName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	writeHeader(pdf, st, doc, tr)
	writeParties(pdf, st, doc, tr)
	writeLines(pdf, st, doc, tr)
	writeTotals(pdf, st, doc, tr)
	writeFooter(pdf, st, doc, tr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, st style, doc Document, tr func(string) string) {
	pdf.SetTextColor(st.accent.r, st.accent.g, st.accent.b)
	pdf.SetFont("Arial", "B", st.titleSize)
	pdf.Cell(120, 10, tr(doc.Owner.CompanyName))
	pdf.SetFont("Arial", "B", st.titleSize-4)
	pdf.CellFormat(70, 10, st.title, "", 1, "R", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", st.bodySize)
	for _, l := range addressLines(doc.Owner.AddressLine, doc.Owner.City, doc.Owner.State, doc.Owner.Pincode) {
		pdf.Cell(120, st.rowHeight-3, tr(l))
		pdf.Ln(st.rowHeight - 3)
	}
	if doc.Owner.GSTNumber != "" {
		pdf.Cell(120, st.rowHeight-3, "GSTIN: "+doc.Owner.GSTNumber)
		pdf.Ln(st.rowHeight - 3)
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", st.bodySize)
	pdf.Cell(60, st.rowHeight, fmt.Sprintf("No. %d", doc.Number))
	pdf.Cell(60, st.rowHeight, "Date: "+doc.Date.Format("02 Jan 2006"))
	if doc.DueDate != nil {
		pdf.Cell(70, st.rowHeight, "Due: "+doc.DueDate.Format("02 Jan 2006"))
	}
	pdf.Ln(st.rowHeight + 2)
}

func writeParties(pdf *gofpdf.Fpdf, st style, doc Document, tr func(string) string) {
	pdf.SetFont("Arial", "B", st.bodySize+1)
	pdf.Cell(40, st.rowHeight, "Bill To:")
	pdf.Ln(st.rowHeight)

	pdf.SetFont("Arial", "", st.bodySize)
	c := doc.Customer
	lines := []string{c.Name, "Phone: " + c.Phone}
	lines = append(lines, addressLines(c.AddressLine, c.City, c.State, c.Pincode)...)
	if c.GSTNumber != "" {
		lines = append(lines, "GSTIN: "+c.GSTNumber)
	}
	if c.PANNumber != "" {
		lines = append(lines, "PAN: "+c.PANNumber)
	}
	for _, l := range lines {
		pdf.Cell(120, st.rowHeight-2, tr(l))
		pdf.Ln(st.rowHeight - 2)
	}
	pdf.Ln(4)
}

func writeLines(pdf *gofpdf.Fpdf, st style, doc Document, tr func(string) string) {
	headers := []string{"#", "Item", "Qty", "Rate", "Tax %", "Amount"}
	aligns := []string{"C", "L", "C", "R", "C", "R"}

	pdf.SetFont("Arial", "B", st.bodySize)
	pdf.SetFillColor(st.headerFill.r, st.headerFill.g, st.headerFill.b)
	pdf.SetTextColor(st.headerText.r, st.headerText.g, st.headerText.b)
	for i, h := range headers {
		pdf.CellFormat(st.columns[i], st.rowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", st.bodySize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(246, 248, 252)
	for i, l := range doc.Lines {
		name := l.Name
		if l.Brand != "" {
			name = fmt.Sprintf("%s (%s)", l.Name, l.Brand)
		}
		cells := []string{
			fmt.Sprintf("%d", i+1),
			tr(name),
			fmt.Sprintf("%d", l.Quantity),
			l.Rate,
			l.Tax,
			l.Amount,
		}
		fill := st.zebra && i%2 == 1
		for c, v := range cells {
			pdf.CellFormat(st.columns[c], st.rowHeight, v, "1", 0, aligns[c], fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func writeTotals(pdf *gofpdf.Fpdf, st style, doc Document, tr func(string) string) {
	labelWidth := st.columns[0] + st.columns[1] + st.columns[2] + st.columns[3] + st.columns[4]
	rows := [][2]string{
		{"Subtotal", doc.Totals.Subtotal},
		{"Tax", doc.Totals.TotalTax},
		{"Grand Total (Rs.)", doc.Totals.GrandTotal},
	}
	for i, row := range rows {
		fontStyle := ""
		if i == len(rows)-1 {
			fontStyle = "B"
		}
		pdf.SetFont("Arial", fontStyle, st.bodySize+1)
		pdf.CellFormat(labelWidth, st.rowHeight, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(st.columns[5], st.rowHeight, row[1], "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "I", st.bodySize)
	pdf.MultiCell(0, st.rowHeight-2, tr("Amount in words: "+doc.Totals.GrandTotalInWords+" Only"), "", "L", false)
	pdf.Ln(4)
}

func writeFooter(pdf *gofpdf.Fpdf, st style, doc Document, tr func(string) string) {
	b := doc.Bank
	pdf.SetFont("Arial", "B", st.bodySize)
	pdf.Cell(60, st.rowHeight, "Bank Details")
	pdf.Ln(st.rowHeight)
	pdf.SetFont("Arial", "", st.bodySize)
	for _, l := range []string{
		"Bank: " + b.BankName,
		"A/C No: " + b.AccountNumber,
		"IFSC: " + b.IFSC,
	} {
		pdf.Cell(120, st.rowHeight-2, tr(l))
		pdf.Ln(st.rowHeight - 2)
	}
	if b.UPIID != "" {
		pdf.Cell(120, st.rowHeight-2, tr(fmt.Sprintf("UPI: %s (%s)", b.UPIID, b.UPIName)))
		pdf.Ln(st.rowHeight - 2)
	}

	if doc.Owner.InvoiceInstructions != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", st.bodySize)
		pdf.Cell(60, st.rowHeight, "Instructions")
		pdf.Ln(st.rowHeight)
		pdf.SetFont("Arial", "", st.bodySize)
		pdf.MultiCell(0, st.rowHeight-2, tr(doc.Owner.InvoiceInstructions), "", "L", false)
	}
}

func addressLines(line, city, state, pincode string) []string {
	var out []string
	if line != "" {
		out = append(out, line)
	}
	var parts []string
	for _, p := range []string{city, state} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	tail := strings.Join(parts, ", ")
	if pincode != "" {
		tail = strings.TrimSpace(tail + " - " + pincode)
		tail = strings.TrimPrefix(tail, "- ")
	}
	if tail != "" {
		out = append(out, tail)
	}
	return out
}
