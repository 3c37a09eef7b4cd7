// Command expense-report prints category and monthly totals of the saved
// expenses to the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"expenselog/internal/cli"
	"expenselog/internal/core"
	applog "expenselog/internal/log"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#004c99")).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a3bc")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

func main() {
	cli.LoadEnvFile()
	// Keep logs off stdout unless something goes wrong.
	logger := cli.SetupLogger("warn")
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	be := cli.OpenBackend(ctx, logger, cfg)
	records, err := be.Repository.Load(ctx)
	if be.Cleanup != nil {
		_ = be.Cleanup()
	}
	if err != nil {
		logger.Error("Failed to load expenses", applog.FieldError, err, applog.FieldLocation, be.Repository.Location())
		os.Exit(1)
	}

	if err := render(os.Stdout, records); err != nil {
		logger.Error("Failed to build report", applog.FieldError, err)
		os.Exit(1)
	}
}

// render writes the report for records to w.
func render(w io.Writer, records []core.Expense) error {
	categories, err := core.CategoryTotals(records)
	if errors.Is(err, core.ErrEmptyDataset) {
		_, err = fmt.Fprintln(w, mutedStyle.Render("No expenses available."))
		return err
	}
	if err != nil {
		return err
	}
	months, err := core.MonthTotals(records)
	if err != nil {
		return err
	}

	catRows := make([][]string, 0, len(categories))
	for _, c := range categories {
		catRows = append(catRows, []string{c.Category, core.FormatTotal(c.Total)})
	}
	monthRows := make([][]string, 0, len(months))
	for _, m := range months {
		monthRows = append(monthRows, []string{m.Month.String(), core.FormatTotal(m.Total)})
	}

	out := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Expenses by Category"),
		totalsTable([]string{"Category", "Total"}, catRows).String(),
		titleStyle.Render("Monthly Summary"),
		totalsTable([]string{"Month", "Total"}, monthRows).String(),
		mutedStyle.Render(fmt.Sprintf("%d expenses, total %s", len(records), core.FormatTotal(core.SumAmounts(records)))),
	)
	_, err = fmt.Fprintln(w, out)
	return err
}

func totalsTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return numberStyle
			default:
				return cellStyle
			}
		})
}
