package chart

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"expenselog/internal/core"
)

const (
	barColor = "#60a3bc"

	barChartWidth  = 640.0
	barChartHeight = 400.0
	marginLeft     = 70.0
	marginRight    = 20.0
	marginTop      = 40.0
	marginBottom   = 60.0
	barFill        = 0.5 // share of a slot covered by its bar
	tickCount      = 4
)

type Bar struct {
	Label string
	Total decimal.Decimal
	X, Y  float64
	Width float64
	// Height is never negative; bars for negative totals hang below the axis.
	Height float64
	LabelX float64
}

type Tick struct {
	Y     float64
	Label string
}

type BarChart struct {
	Title         string
	Width, Height float64
	Color         string
	Bars          []Bar
	Ticks         []Tick
	// Plot area bounds and the y of the zero line.
	Left, Right, Top, Bottom float64
	AxisY                    float64
	LabelY                   float64
}

// NewBarChart lays out one bar per month in the order given.
func NewBarChart(totals []core.MonthTotal) BarChart {
	bc := BarChart{
		Title:  "Monthly Expenses",
		Width:  barChartWidth,
		Height: barChartHeight,
		Color:  barColor,
		Left:   marginLeft,
		Right:  barChartWidth - marginRight,
		Top:    marginTop,
		Bottom: barChartHeight - marginBottom,
	}
	bc.LabelY = bc.Bottom + 20

	hi, lo := 0.0, 0.0
	for _, t := range totals {
		v := t.Total.InexactFloat64()
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	if hi == lo {
		hi = 1
	}

	plotH := bc.Bottom - bc.Top
	scale := plotH / (hi - lo)
	bc.AxisY = round2(bc.Top + hi*scale)

	step := (hi - lo) / tickCount
	for i := 0; i <= tickCount; i++ {
		v := lo + float64(i)*step
		bc.Ticks = append(bc.Ticks, Tick{
			Y:     round2(bc.Top + (hi-v)*scale),
			Label: tickLabel(v, step),
		})
	}

	if len(totals) == 0 {
		return bc
	}
	slot := (bc.Right - bc.Left) / float64(len(totals))
	width := slot * barFill
	for i, t := range totals {
		v := t.Total.InexactFloat64()
		x := bc.Left + slot*float64(i) + (slot-width)/2
		b := Bar{
			Label:  t.Month.String(),
			Total:  t.Total,
			X:      round2(x),
			Width:  round2(width),
			Height: round2(math.Abs(v) * scale),
			LabelX: round2(x + width/2),
		}
		if v >= 0 {
			b.Y = round2(bc.AxisY - b.Height)
		} else {
			b.Y = bc.AxisY
		}
		bc.Bars = append(bc.Bars, b)
	}
	return bc
}

func tickLabel(v, step float64) string {
	prec := 0
	if step < 1 {
		prec = 2
	}
	if math.Abs(v) < 1e-9 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
