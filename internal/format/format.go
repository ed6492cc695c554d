// Package format renders aggregate values for display.
package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

var suffixes = []string{"", "k", "M", "B", "T"}

const (
	SubtitleOrderedSpend   = "Ordered Spend | EUR"
	SubtitleNumberOfOrders = "Number of Orders"
)

// Number renders value compactly. Whole values below 1000 print as
// integers; anything else is scaled by 1000 per suffix step and printed
// with one decimal, e.g. 1500000 -> "1.5M".
func Number(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}
	if math.Abs(value) < 1000 && value == math.Trunc(value) {
		return strconv.FormatInt(int64(value), 10)
	}

	magnitude := 0
	for math.Abs(value) >= 1000 && magnitude < len(suffixes)-1 {
		magnitude++
		value /= 1000
	}
	return fmt.Sprintf("%.1f%s", value, suffixes[magnitude])
}

// Decimal renders a monetary amount with Number.
func Decimal(value decimal.Decimal) string {
	return Number(value.InexactFloat64())
}

// Percent renders a ratio such as 0.25 as "25.0%". A nil ratio renders as
// an empty string.
func Percent(ratio *float64) string {
	if ratio == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *ratio*100)
}

// ResolveMeasure picks the measure and subtitle of the view toggle.
func ResolveMeasure(showOrderCount bool) (domain.Measure, string) {
	if showOrderCount {
		return domain.MeasureOrderCount, SubtitleNumberOfOrders
	}
	return domain.MeasureSpend, SubtitleOrderedSpend
}

// ResolveView is ResolveMeasure for a toggle label.
func ResolveView(view domain.ViewToggle) (domain.Measure, string) {
	return ResolveMeasure(view.ShowsOrderCount())
}
