package chart

import (
	"fmt"
	"time"
)

func timeMonth(m int) time.Month { return time.Month(m) }

func formatPoint(x, y float64) string { return fmt.Sprintf("%.2f %.2f", x, y) }
