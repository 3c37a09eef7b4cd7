package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the summed amount for one category label.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// MonthTotal is the summed amount for one calendar month.
type MonthTotal struct {
	Month YearMonth
	Total decimal.Decimal
}

// CategoryTotals groups records by their exact category string and sums the
// amounts of each group. Labels are compared as opaque strings, so "Food"
// and "food " are different groups. Groups are returned in order of first
// appearance.
func CategoryTotals(records []Expense) ([]CategoryTotal, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	index := make(map[string]int, len(records))
	var out []CategoryTotal
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(r.Amount)
	}
	return out, nil
}

// MonthTotals groups records by the calendar month of their date and sums
// the amounts, oldest month first. A single unreadable date aborts the whole
// aggregation with a *DateError.
func MonthTotals(records []Expense) ([]MonthTotal, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	sums := make(map[YearMonth]decimal.Decimal)
	for i, r := range records {
		t, err := ParseDate(r.Date)
		if err != nil {
			return nil, &DateError{Index: i, Value: r.Date}
		}
		ym := YearMonthOf(t)
		if cur, ok := sums[ym]; ok {
			sums[ym] = cur.Add(r.Amount)
		} else {
			sums[ym] = r.Amount
		}
	}
	out := make([]MonthTotal, 0, len(sums))
	for ym, total := range sums {
		out = append(out, MonthTotal{Month: ym, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

// SumAmounts adds up every amount in records.
func SumAmounts(records []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
