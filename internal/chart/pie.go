// Package chart computes the geometry of the pie and bar charts shown by the
// UI. The templates turn the result into inline SVG.
package chart

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"expenselog/internal/core"
)

// Pastel1 palette, cycled when there are more categories than colours.
var pieColors = []string{
	"#fbb4ae", "#b3cde3", "#ccebc5", "#decbe4", "#fed9a6",
	"#ffffcc", "#e5d8bd", "#fddaec", "#f2f2f2",
}

const (
	pieSize       = 420.0
	pieRadius     = 150.0
	pieStartAngle = 140.0 // degrees, counter-clockwise from 3 o'clock
	pctDistance   = 0.6
	labelDistance = 1.1
)

type Slice struct {
	Category string
	Total    decimal.Decimal
	Percent  float64
	Color    string
	// Path is the SVG path data of the wedge.
	Path string
	// Percentage label, inside the wedge.
	PctX, PctY float64
	// Category label, outside the wedge.
	LabelX, LabelY float64
	LabelAnchor    string
}

// PercentLabel formats the share the way the slice is labelled.
func (s Slice) PercentLabel() string {
	return fmt.Sprintf("%.1f%%", s.Percent)
}

type Pie struct {
	Title  string
	Size   float64
	Slices []Slice
	// Omitted lists categories whose total is zero or negative. A pie has no
	// way to show them.
	Omitted []core.CategoryTotal
}

// NewPie lays out one wedge per category with a positive total, starting at
// 140 degrees and going counter-clockwise.
func NewPie(totals []core.CategoryTotal) Pie {
	p := Pie{Title: "Expense Distribution by Category", Size: pieSize}

	sum := decimal.Zero
	var shown []core.CategoryTotal
	for _, t := range totals {
		if !t.Total.IsPositive() {
			p.Omitted = append(p.Omitted, t)
			continue
		}
		shown = append(shown, t)
		sum = sum.Add(t.Total)
	}
	if len(shown) == 0 {
		return p
	}

	c := pieSize / 2
	angle := pieStartAngle
	for i, t := range shown {
		frac := t.Total.Div(sum).InexactFloat64()
		sweep := frac * 360
		mid := angle + sweep/2

		s := Slice{
			Category: t.Category,
			Total:    t.Total,
			Percent:  frac * 100,
			Color:    pieColors[i%len(pieColors)],
			Path:     wedgePath(c, c, pieRadius, angle, sweep),
		}
		s.PctX, s.PctY = polar(c, c, pieRadius*pctDistance, mid)
		s.LabelX, s.LabelY = polar(c, c, pieRadius*labelDistance, mid)
		s.LabelAnchor = "start"
		if s.LabelX < c {
			s.LabelAnchor = "end"
		}

		p.Slices = append(p.Slices, s)
		angle += sweep
	}
	return p
}

// polar returns the SVG point at distance r and angle deg (counter-clockwise,
// y axis pointing down).
func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return round2(cx + r*math.Cos(rad)), round2(cy - r*math.Sin(rad))
}

func wedgePath(cx, cy, r, start, sweep float64) string {
	if sweep >= 359.999 {
		// A full circle cannot be drawn with one arc command.
		x1, y1 := polar(cx, cy, r, start)
		x2, y2 := polar(cx, cy, r, start+180)
		return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 1 0 %.2f %.2f A %.2f %.2f 0 1 0 %.2f %.2f Z",
			x1, y1, r, r, x2, y2, r, r, x1, y1)
	}
	x1, y1 := polar(cx, cy, r, start)
	x2, y2 := polar(cx, cy, r, start+sweep)
	large := 0
	if sweep > 180 {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 0 %.2f %.2f Z",
		cx, cy, x1, y1, r, r, large, x2, y2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
