package aggregate

import (
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
)

var monthLabels = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthLabel returns the three-letter label of a 1-based month.
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthLabels[month-1]
}

// MonthLabels returns every month label in calendar order.
func MonthLabels() []string {
	return append([]string(nil), monthLabels[:]...)
}

// MonthPoint is one month of a series.
type MonthPoint struct {
	Month int
	Label string
	Value float64
}

// MonthlySeries returns measure m per month of year in calendar order.
// Months without orders are omitted.
func MonthlySeries(a *domain.AggregateTable, year int, m domain.Measure) []MonthPoint {
	monthly := Rollup(ForYear(a, year), []domain.Dimension{domain.DimYear, domain.DimMonth})
	points := make([]MonthPoint, 0, len(monthly.Rows))
	for _, r := range monthly.Rows {
		points = append(points, MonthPoint{
			Month: r.Key.Month,
			Label: MonthLabel(r.Key.Month),
			Value: r.Value(m),
		})
	}
	return points
}
