// Package export writes dashboard figures to an Excel workbook.
package export

import (
	"fmt"
	"time"

	"invoice-service/internal/analytics"
	"invoice-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	overviewSheet   = "Overview"
	monthlySheet    = "Monthly"
	quotationsSheet = "Quotations"
)

// QuotationRow is one line of the quotations sheet.
type QuotationRow struct {
	Number     int64
	Customer   string
	Date       time.Time
	Status     model.PaymentStatus
	GrandTotal decimal.Decimal
	Collected  decimal.Decimal
}

type styles struct {
	title, header, data, money int
}

// Workbook builds the analytics workbook and returns its bytes.
func Workbook(title string, sum analytics.Summary, rows []QuotationRow, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	// the default sheet becomes the overview
	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, err
	}
	for _, name := range []string{monthlySheet, quotationsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeOverview(f, st, title, sum, generated); err != nil {
		return nil, err
	}
	if err := writeMonthly(f, st, sum); err != nil {
		return nil, err
	}
	if err := writeQuotations(f, st, rows); err != nil {
		return nil, err
	}

	idx, err := f.GetSheetIndex(overviewSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)
	border := []excelize.Border{
		{Type: "left", Color: "CCCCCC", Style: 1},
		{Type: "top", Color: "CCCCCC", Style: 1},
		{Type: "bottom", Color: "CCCCCC", Style: 1},
		{Type: "right", Color: "CCCCCC", Style: 1},
	}
	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Vertical: "center"},
	}); err != nil {
		return st, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"21579B"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	}); err != nil {
		return st, err
	}
	if st.data, err = f.NewStyle(&excelize.Style{Border: border}); err != nil {
		return st, err
	}
	numFmt := "#,##0.00"
	if st.money, err = f.NewStyle(&excelize.Style{Border: border, CustomNumFmt: &numFmt}); err != nil {
		return st, err
	}
	return st, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeHeader(f *excelize.File, st styles, sheet string, row int, labels ...string) error {
	for i, label := range labels {
		c := cell(i+1, row)
		if err := f.SetCellValue(sheet, c, label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, c, c, st.header); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", string(rune('A'+len(labels)-1)), 18)
}

func writeOverview(f *excelize.File, st styles, title string, sum analytics.Summary, generated time.Time) error {
	sheet := overviewSheet
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, 1, 30); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A2", "Generated: "+generated.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}

	if err := writeHeader(f, st, sheet, 4, "Metric", "Value"); err != nil {
		return err
	}
	ov := sum.Overview
	metrics := []struct {
		label string
		value interface{}
		money bool
	}{
		{"Total revenue", ov.TotalRevenue.InexactFloat64(), true},
		{"Total collected", ov.TotalCollected.InexactFloat64(), true},
		{"Total pending", ov.TotalPending.InexactFloat64(), true},
		{"Collection rate %", ov.CollectionRate, false},
		{"Quotations", ov.Quotations, false},
		{"Customers", ov.Customers, false},
		{"Items", ov.Items, false},
		{"Bank accounts", ov.BankAccounts, false},
	}
	row := 5
	for _, m := range metrics {
		if err := setRow(f, st, sheet, row, []interface{}{m.label, m.value}, map[int]bool{2: m.money}); err != nil {
			return err
		}
		row++
	}

	row++
	if err := writeHeader(f, st, sheet, row, "Status", "Count", "Amount"); err != nil {
		return err
	}
	row++
	for _, status := range analytics.BucketStatuses {
		b := sum.PaymentStatus[status]
		if err := setRow(f, st, sheet, row, []interface{}{string(status), b.Count, b.Amount.InexactFloat64()}, map[int]bool{3: true}); err != nil {
			return err
		}
		row++
	}
	return setRow(f, st, sheet, row,
		[]interface{}{string(model.PaymentCancelled), sum.Cancelled.Count, sum.Cancelled.Amount.InexactFloat64()},
		map[int]bool{3: true})
}

func writeMonthly(f *excelize.File, st styles, sum analytics.Summary) error {
	sheet := monthlySheet
	if err := writeHeader(f, st, sheet, 1, "Month", "Revenue", "Collected", "Quotations", "New customers", "New items"); err != nil {
		return err
	}
	for i, m := range sum.MonthlyBreakdown {
		values := []interface{}{m.Label, m.Revenue.InexactFloat64(), m.Collected.InexactFloat64(), m.Quotations, 0, 0}
		if i < len(sum.Growth) {
			values[4] = sum.Growth[i].Customers
			values[5] = sum.Growth[i].Items
		}
		if err := setRow(f, st, sheet, i+2, values, map[int]bool{2: true, 3: true}); err != nil {
			return err
		}
	}
	return nil
}

func writeQuotations(f *excelize.File, st styles, rows []QuotationRow) error {
	sheet := quotationsSheet
	if err := writeHeader(f, st, sheet, 1, "Number", "Customer", "Date", "Status", "Grand total", "Collected"); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{
			r.Number,
			r.Customer,
			r.Date.Format("2006-01-02"),
			string(r.Status),
			r.GrandTotal.InexactFloat64(),
			r.Collected.InexactFloat64(),
		}
		if err := setRow(f, st, sheet, i+2, values, map[int]bool{5: true, 6: true}); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes values from column A; columns in money get the currency format.
func setRow(f *excelize.File, st styles, sheet string, row int, values []interface{}, money map[int]bool) error {
	for i, v := range values {
		c := cell(i+1, row)
		if err := f.SetCellValue(sheet, c, v); err != nil {
			return err
		}
		style := st.data
		if money[i+1] {
			style = st.money
		}
		if err := f.SetCellStyle(sheet, c, c, style); err != nil {
			return err
		}
	}
	return nil
}
