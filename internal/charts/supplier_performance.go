package charts

import (
	"strconv"

	"github.com/andresuchdata/procurement-dashboard/internal/aggregate"
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/format"
)

const (
	panelCause     = "Deviation Cause"
	panelIndicator = "Deviation Indicator"
	stackCause     = "cause"
)

var indicatorOrder = []domain.DeviationIndicator{
	domain.IndicatorInTime,
	domain.IndicatorLateShort,
	domain.IndicatorLateMedium,
	domain.IndicatorLateLong,
}

func supplierPerformanceCharts(tab domain.Tab, prefix string, style Style, opts Options) []Chart {
	mk := func(id, title string, point bool) base {
		return base{id: prefix + "-" + id, title: title, tab: tab, point: point, style: style, filter: opts.Filter}
	}
	return []Chart{
		&totalDeviation{base: mk("total-deviation", "Total Deviated Orders", true)},
		&causeIndicator{base: mk("cause-indicator", "Deviated Orders by Deviation Cause and Indicator", false)},
		&deviationByMonth{base: mk("by-month", "Deviated Orders by Month", false)},
		&deviationByOrg{base: mk("by-org", "Deviated Orders by Purchasing Organisation", false)},
		&deviationTopSuppliers{base: mk("top-suppliers", topTitle("Deviated Orders of Top %s Suppliers", opts.TopN), false), n: opts.TopN},
	}
}

// prepareDeviated groups the current year's deviated orders, counting
// distinct purchasing documents.
func prepareDeviated(t *domain.Table, period domain.Period, keys ...domain.Dimension) *Prepared {
	deviated := aggregate.DeviatedOnly(t.Orders, period.Current)
	keys = aggregate.WithFilterDimensions(append([]domain.Dimension{domain.DimYear}, keys...)...)
	primary := aggregate.GroupOrders(deviated, keys, aggregate.CountDistinctDocuments)
	primary.Version = preparedVersion(t, period, "deviated", keys)
	return &Prepared{Primary: primary, Period: period}
}

// causeStacks renders one stacked series per deviation cause along the
// given category order.
func causeStacks(a *domain.AggregateTable, category domain.Dimension, order []string, m domain.Measure) []domain.Series {
	byCause := aggregate.Rollup(a, []domain.Dimension{domain.DimDeviationCause, category})
	var series []domain.Series
	index := make(map[string]int)
	values := make(map[string]map[string]float64)
	for _, r := range byCause.Rows {
		cause := r.Key.DeviationCause
		if _, ok := index[cause]; !ok {
			index[cause] = len(series)
			series = append(series, domain.Series{Name: cause, Stack: stackCause, Color: CauseColor(cause)})
			values[cause] = make(map[string]float64)
		}
		values[cause][r.Dim(category)] += r.Value(m)
	}
	for i := range series {
		points := make([]domain.Point, 0, len(order))
		for _, c := range order {
			if v, ok := values[series[i].Name][c]; ok {
				points = append(points, newPoint(c, v))
			}
		}
		series[i].Points = points
	}
	return series
}

// totalDeviation shows deviated orders and their share of all orders in
// the current year.
type totalDeviation struct{ base }

func (c *totalDeviation) Prepare(t *domain.Table, period domain.Period) *Prepared {
	p := prepareDeviated(t, period)
	p.Reference = aggregate.GroupOrders(aggregate.InYear(t.Orders, period.Current), domain.FilterDimensions, aggregate.CountDistinctDocuments)
	p.Reference.Version = preparedVersion(t, period, "in-year", domain.FilterDimensions)
	return p
}

func (c *totalDeviation) Render(p *Prepared, q Query) domain.ChartData {
	all := c.reference(p, q.Filters)
	if all.IsEmpty() {
		return c.empty()
	}
	deviated := c.primary(p, q.Filters).Total(q.Measure)
	share := aggregate.Ratio(deviated, all.Total(q.Measure))

	out := c.frame(q.Measure)
	out.Indicators = []domain.Indicator{
		{
			Label:  c.title,
			Value:  deviated,
			Text:   format.Number(deviated),
			Suffix: c.style.suffix(q.Measure),
		},
		{
			Label:      "Deviation",
			Value:      ratioValue(share),
			Text:       format.Percent(share),
			Percentage: share,
		},
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func ratioValue(r *float64) float64 {
	if r == nil {
		return 0
	}
	return *r
}

// causeIndicator splits deviated orders by cause and by lateness.
type causeIndicator struct{ base }

func (c *causeIndicator) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareDeviated(t, period, domain.DimDeviationCause, domain.DimDeviationIndicator)
}

func (c *causeIndicator) Render(p *Prepared, q Query) domain.ChartData {
	filtered := c.primary(p, q.Filters)
	if filtered.IsEmpty() {
		return c.empty()
	}

	out := c.frame(q.Measure)
	for _, r := range aggregate.Rollup(filtered, []domain.Dimension{domain.DimDeviationCause}).Rows {
		cause := r.Key.DeviationCause
		out.Series = append(out.Series, domain.Series{
			Name:   cause,
			Panel:  panelCause,
			Color:  CauseColor(cause),
			Points: []domain.Point{newPoint(cause, r.Value(q.Measure))},
		})
	}

	classified := aggregate.Where(filtered, func(r domain.AggregateRow) bool {
		return r.Key.DeviationIndicator != ""
	})
	byIndicator := aggregate.Rollup(classified, []domain.Dimension{domain.DimDeviationIndicator})
	values := make(map[domain.DeviationIndicator]float64, byIndicator.Len())
	for _, r := range byIndicator.Rows {
		values[r.Key.DeviationIndicator] = r.Value(q.Measure)
	}
	indicators := domain.Series{Name: panelIndicator, Panel: panelIndicator, Color: c.style.CurrentColor}
	for _, ind := range indicatorOrder {
		if v, ok := values[ind]; ok {
			indicators.Points = append(indicators.Points, newPoint(string(ind), v))
		}
	}
	if len(indicators.Points) > 0 {
		out.Series = append(out.Series, indicators)
	}
	return out
}

// deviationByMonth stacks deviation causes per month.
type deviationByMonth struct{ base }

func (c *deviationByMonth) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareDeviated(t, period, domain.DimMonth, domain.DimDeviationCause)
}

func (c *deviationByMonth) Render(p *Prepared, q Query) domain.ChartData {
	filtered := c.primary(p, q.Filters)
	if filtered.IsEmpty() {
		return c.empty()
	}

	months := aggregate.Rollup(filtered, []domain.Dimension{domain.DimMonth})
	order := make([]string, 0, months.Len())
	for _, r := range months.Rows {
		order = append(order, r.Dim(domain.DimMonth))
	}

	out := c.frame(q.Measure)
	out.Series = causeStacks(filtered, domain.DimMonth, order, q.Measure)
	for i := range out.Series {
		for j := range out.Series[i].Points {
			month := out.Series[i].Points[j].Label
			out.Series[i].Points[j].Label = aggregate.MonthLabel(atoi(month))
		}
	}
	for _, m := range order {
		out.Categories = append(out.Categories, aggregate.MonthLabel(atoi(m)))
	}
	return out
}

// deviationByOrg stacks deviation causes per purchasing organisation.
type deviationByOrg struct{ base }

func (c *deviationByOrg) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareDeviated(t, period, domain.DimPurchasingOrg, domain.DimDeviationCause)
}

func (c *deviationByOrg) Render(p *Prepared, q Query) domain.ChartData {
	filtered := c.primary(p, q.Filters)
	if filtered.IsEmpty() {
		return c.empty()
	}
	totals := aggregate.Rollup(filtered, []domain.Dimension{domain.DimYear, domain.DimPurchasingOrg})

	out := c.frame(q.Measure)
	out.Categories = aggregate.SortForDisplay(totals, domain.DimPurchasingOrg, q.Measure)
	out.Series = causeStacks(filtered, domain.DimPurchasingOrg, out.Categories, q.Measure)
	return out
}

// deviationTopSuppliers stacks deviation causes for the suppliers with the
// most deviated spend.
type deviationTopSuppliers struct {
	base
	n int
}

func (c *deviationTopSuppliers) Prepare(t *domain.Table, period domain.Period) *Prepared {
	return prepareDeviated(t, period, domain.DimSupplier, domain.DimDeviationCause)
}

func (c *deviationTopSuppliers) Render(p *Prepared, q Query) domain.ChartData {
	filtered := c.primary(p, q.Filters)
	top := aggregate.TopN(filtered, domain.DimSupplier, domain.MeasureSpend, p.Period.Current, c.n)
	if len(top) == 0 {
		return c.empty()
	}
	restricted := aggregate.RestrictTo(filtered, domain.DimSupplier, top)
	totals := aggregate.Rollup(restricted, []domain.Dimension{domain.DimYear, domain.DimSupplier})

	out := c.frame(q.Measure)
	out.Categories = aggregate.SortForDisplay(totals, domain.DimSupplier, q.Measure)
	out.Series = causeStacks(restricted, domain.DimSupplier, out.Categories, q.Measure)
	return out
}
