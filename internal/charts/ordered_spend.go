package charts

import (
	"strconv"

	"github.com/andresuchdata/procurement-dashboard/internal/aggregate"
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/format"
)

func orderedSpendCharts(tab domain.Tab, prefix string, style Style, opts Options) []Chart {
	mk := func(id, title string, point bool) base {
		return base{id: prefix + "-" + id, title: title, tab: tab, point: point, style: style, filter: opts.Filter}
	}
	return []Chart{
		&totalByYear{base: mk("total-by-year", "Total Orders", true)},
		&ordersByMonth{base: mk("by-month", "Orders by Month", false)},
		&ordersByOrg{base: mk("by-org", "Orders by Purchasing Organisation", false)},
		&topSuppliers{base: mk("top-suppliers", topTitle("Orders of Top %s Suppliers", opts.TopN), false), n: opts.TopN},
	}
}

func prepareOrders(t *domain.Table, period domain.Period, keys ...domain.Dimension) *Prepared {
	keys = aggregate.WithFilterDimensions(keys...)
	primary := aggregate.GroupOrders(t.Orders, keys, aggregate.CountRows)
	primary.Version = preparedVersion(t, period, "orders", keys)
	return &Prepared{Primary: primary, Period: period}
}

// preparedVersion identifies a prepared aggregate by its inputs, so charts
// grouping the same table the same way share filter memo entries.
func preparedVersion(t *domain.Table, period domain.Period, kind string, keys []domain.Dimension) string {
	if t.Version == "" {
		return ""
	}
	parts := []string{kind, period.String()}
	for _, k := range keys {
		parts = append(parts, string(k))
	}
	return aggregate.DeriveVersion(t.Version, parts...)
}

// inPeriod keeps the current and prior year rows.
func inPeriod(a *domain.AggregateTable, p domain.Period) *domain.AggregateTable {
	return aggregate.Where(a, func(r domain.AggregateRow) bool {
		return r.Key.Year == p.Current || r.Key.Year == p.Prior
	})
}

func newPoint(label string, v float64) domain.Point {
	return domain.Point{Label: label, Value: v, Text: format.Number(v)}
}

// categorySeries lays out one year of a Year x category table along the
// given category order. Categories without a row in that year are skipped.
func categorySeries(a *domain.AggregateTable, year int, category domain.Dimension, order []string, m domain.Measure) []domain.Point {
	values := make(map[string]float64)
	for _, r := range aggregate.ForYear(a, year).Rows {
		values[r.Dim(category)] += r.Value(m)
	}
	points := make([]domain.Point, 0, len(values))
	for _, c := range order {
		if v, ok := values[c]; ok {
			points = append(points, newPoint(c, v))
		}
	}
	return points
}

// totalByYear compares the current year's total with the prior year's.
type totalByYear struct{ base }

func (c *totalByYear) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareOrders(t, period, domain.DimYear)
}

func (c *totalByYear) Render(p *Prepared, q Query) domain.ChartData {
	filtered := c.primary(p, q.Filters)
	if filtered.IsEmpty() {
		return c.empty()
	}

	yearly := aggregate.YearlyTotals(filtered)
	current := aggregate.YearValue(yearly, p.Period.Current, q.Measure)
	prior := aggregate.YearValue(yearly, p.Period.Prior, q.Measure)

	out := c.frame(q.Measure)
	suffix := c.style.suffix(q.Measure)
	reference := prior
	out.Indicators = []domain.Indicator{
		{
			Label:     strconv.Itoa(p.Period.Current),
			Value:     current,
			Text:      format.Number(current),
			Suffix:    suffix,
			Reference: &reference,
			Delta:     aggregate.Delta(current, prior),
		},
		{
			Label:  strconv.Itoa(p.Period.Prior),
			Value:  prior,
			Text:   format.Number(prior),
			Suffix: suffix,
		},
	}
	return out
}

// ordersByMonth plots one line per year over calendar months.
type ordersByMonth struct{ base }

func (c *ordersByMonth) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareOrders(t, period, domain.DimYear, domain.DimMonth)
}

func (c *ordersByMonth) Render(p *Prepared, q Query) domain.ChartData {
	filtered := inPeriod(c.primary(p, q.Filters), p.Period)
	if filtered.IsEmpty() {
		return c.empty()
	}

	out := c.frame(q.Measure)
	out.Categories = aggregate.MonthLabels()
	for _, year := range []int{p.Period.Prior, p.Period.Current} {
		monthly := aggregate.MonthlySeries(filtered, year, q.Measure)
		points := make([]domain.Point, 0, len(monthly))
		for _, mp := range monthly {
			points = append(points, newPoint(mp.Label, mp.Value))
		}
		out.Series = append(out.Series, domain.Series{
			Name:   strconv.Itoa(year),
			Color:  c.yearColor(year, p.Period),
			Points: points,
		})
	}
	return out
}

func (b base) yearColor(year int, p domain.Period) string {
	if year == p.Current {
		return b.style.CurrentColor
	}
	return b.style.PriorColor
}

// ordersByOrg compares purchasing organisations across both years.
type ordersByOrg struct{ base }

func (c *ordersByOrg) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareOrders(t, period, domain.DimYear, domain.DimPurchasingOrg)
}

func (c *ordersByOrg) Render(p *Prepared, q Query) domain.ChartData {
	filtered := inPeriod(c.primary(p, q.Filters), p.Period)
	if filtered.IsEmpty() {
		return c.empty()
	}
	byOrg := aggregate.Rollup(filtered, []domain.Dimension{domain.DimYear, domain.DimPurchasingOrg})
	return c.yearBars(byOrg, domain.DimPurchasingOrg, p.Period, q.Measure)
}

// yearBars renders a prior/current horizontal bar pair per category.
func (b base) yearBars(a *domain.AggregateTable, category domain.Dimension, p domain.Period, m domain.Measure) domain.ChartData {
	out := b.frame(m)
	out.Categories = aggregate.SortForDisplay(a, category, m)
	for _, year := range []int{p.Prior, p.Current} {
		out.Series = append(out.Series, domain.Series{
			Name:   strconv.Itoa(year),
			Color:  b.yearColor(year, p),
			Points: categorySeries(a, year, category, out.Categories, m),
		})
	}
	return out
}

// topSuppliers compares the current year's largest suppliers by spend
// with their prior-year values.
type topSuppliers struct {
	base
	n int
}

func (c *topSuppliers) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareOrders(t, period, domain.DimYear, domain.DimSupplier)
}

func (c *topSuppliers) Render(p *Prepared, q Query) domain.ChartData {
	filtered := inPeriod(c.primary(p, q.Filters), p.Period)
	bySupplier := aggregate.Rollup(filtered, []domain.Dimension{domain.DimYear, domain.DimSupplier})

	// Ranked by spend whatever the toggle, so toggling keeps the same suppliers.
	top := aggregate.TopN(bySupplier, domain.DimSupplier, domain.MeasureSpend, p.Period.Current, c.n)
	if len(top) == 0 {
		return c.empty()
	}
	restricted := aggregate.RestrictTo(bySupplier, domain.DimSupplier, top)
	return c.yearBars(restricted, domain.DimSupplier, p.Period, q.Measure)
}
