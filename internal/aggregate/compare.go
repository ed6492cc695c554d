package aggregate

import (
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/samber/lo"
)

// YearlyTotals rolls a up to one row per year.
func YearlyTotals(a *domain.AggregateTable) *domain.AggregateTable {
	return Rollup(a, []domain.Dimension{domain.DimYear})
}

// YearValue returns measure m for year, or 0 if the year has no rows.
func YearValue(a *domain.AggregateTable, year int, m domain.Measure) float64 {
	return ForYear(a, year).Total(m)
}

// Delta is the change of current relative to reference. It is nil when
// the reference is zero.
func Delta(current, reference float64) *float64 {
	if reference == 0 {
		return nil
	}
	d := (current - reference) / reference
	return &d
}

// Ratio is part as a share of whole, nil when whole is zero.
func Ratio(part, whole float64) *float64 {
	if whole == 0 {
		return nil
	}
	r := part / whole
	return &r
}

// DeviatedOnly keeps orders of year that carry a deviation cause.
func DeviatedOnly(orders []domain.Order, year int) []domain.Order {
	return lo.Filter(orders, func(o domain.Order, _ int) bool {
		return o.Year == year && o.Deviated()
	})
}

// InYear keeps the orders of year; it is the "all orders" companion of
// DeviatedOnly.
func InYear(orders []domain.Order, year int) []domain.Order {
	return lo.Filter(orders, func(o domain.Order, _ int) bool {
		return o.Year == year
	})
}

// WithIndicator drops orders whose deviation indicator is undefined.
func WithIndicator(orders []domain.Order) []domain.Order {
	return lo.Filter(orders, func(o domain.Order, _ int) bool {
		return o.DeviationIndicator != ""
	})
}
