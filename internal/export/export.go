// Package export writes the expense list as an Excel workbook with the
// records, category and month totals, and native charts over the totals.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"expenselog/internal/core"
)

const (
	SheetExpenses   = "Expenses"
	SheetCategories = "By Category"
	SheetMonths     = "By Month"

	// Content type for HTTP responses.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	expenseHeader  = []string{"Date", "Category", "Amount", "Description"}
	categoryHeader = []string{"Category", "Total"}
	monthHeader    = []string{"Month", "Total"}
)

type styles struct {
	header int
	amount int
}

// WriteWorkbook writes records to w. An empty list gives a workbook with
// headers only and no charts. Records whose date cannot be read fail the
// whole export.
func WriteWorkbook(w io.Writer, records []core.Expense) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetCategories, SheetMonths} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := writeExpenses(f, st, records); err != nil {
		return err
	}

	var categories []core.CategoryTotal
	var months []core.MonthTotal
	if len(records) > 0 {
		if categories, err = core.CategoryTotals(records); err != nil {
			return err
		}
		if months, err = core.MonthTotals(records); err != nil {
			return err
		}
	}

	if err := writeCategories(f, st, categories); err != nil {
		return err
	}
	if err := writeMonths(f, st, months); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#60A3BC"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles{}, fmt.Errorf("header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return styles{}, fmt.Errorf("amount style: %w", err)
	}
	return styles{header: header, amount: amount}, nil
}

func writeHeader(f *excelize.File, st styles, sheet string, header []string) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, st.header)
}

// setRow writes values starting at column A of row and applies the amount
// style to column amountCol.
func setRow(f *excelize.File, st styles, sheet string, row, amountCol int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return err
	}
	amountCell, err := excelize.CoordinatesToCellName(amountCol, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, amountCell, amountCell, st.amount)
}

func writeExpenses(f *excelize.File, st styles, records []core.Expense) error {
	if err := writeHeader(f, st, SheetExpenses, expenseHeader); err != nil {
		return fmt.Errorf("expenses header: %w", err)
	}
	for i, e := range records {
		if err := setRow(f, st, SheetExpenses, i+2, 3, e.Date, e.Category, e.Amount.InexactFloat64(), e.Description); err != nil {
			return fmt.Errorf("expenses row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(SheetExpenses, "A", "C", 14); err != nil {
		return err
	}
	return f.SetColWidth(SheetExpenses, "D", "D", 40)
}

func writeCategories(f *excelize.File, st styles, totals []core.CategoryTotal) error {
	if err := writeHeader(f, st, SheetCategories, categoryHeader); err != nil {
		return fmt.Errorf("category header: %w", err)
	}
	for i, t := range totals {
		if err := setRow(f, st, SheetCategories, i+2, 2, t.Category, t.Total.InexactFloat64()); err != nil {
			return fmt.Errorf("category row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(SheetCategories, "A", "B", 18); err != nil {
		return err
	}
	if len(totals) == 0 {
		return nil
	}
	return addChart(f, SheetCategories, excelize.Pie, "Expense Distribution by Category", len(totals))
}

func writeMonths(f *excelize.File, st styles, totals []core.MonthTotal) error {
	if err := writeHeader(f, st, SheetMonths, monthHeader); err != nil {
		return fmt.Errorf("month header: %w", err)
	}
	for i, t := range totals {
		if err := setRow(f, st, SheetMonths, i+2, 2, t.Month.String(), t.Total.InexactFloat64()); err != nil {
			return fmt.Errorf("month row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(SheetMonths, "A", "B", 14); err != nil {
		return err
	}
	if len(totals) == 0 {
		return nil
	}
	return addChart(f, SheetMonths, excelize.Col, "Monthly Expenses", len(totals))
}

func addChart(f *excelize.File, sheet string, typ excelize.ChartType, title string, rows int) error {
	if rows < 1 {
		return errors.New("chart needs at least one row")
	}
	ref := func(col string) string {
		return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, rows+1)
	}
	chart := &excelize.Chart{
		Type: typ,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: ref("A"),
			Values:     ref("B"),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "right"},
		PlotArea: excelize.ChartPlotArea{
			ShowPercent: typ == excelize.Pie,
			ShowVal:     typ != excelize.Pie,
		},
		Dimension: excelize.ChartDimension{Width: 480, Height: 320},
	}
	if typ != excelize.Pie {
		chart.Legend.Position = "none"
	}
	if err := f.AddChart(sheet, "D2", chart); err != nil {
		return fmt.Errorf("add %s chart: %w", sheet, err)
	}
	return nil
}
