// Package charts defines each dashboard chart as a prepare/render pair.
// Prepare does the expensive grouping once per dataset version; Render
// filters the prepared aggregate and shapes it for the current UI state.
package charts

import (
	"fmt"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/filter"
	"github.com/andresuchdata/procurement-dashboard/internal/format"
)

// Prepared is the cacheable output of a chart's prepare step.
type Prepared struct {
	Primary   *domain.AggregateTable `json:"primary"`
	Reference *domain.AggregateTable `json:"reference,omitempty"`
	Period    domain.Period          `json:"period"`
}

// Query is the UI-dependent input of a render.
type Query struct {
	Measure domain.Measure
	Filters domain.FilterCriteria
}

// NewQuery resolves the measure of a UI state.
func NewQuery(state domain.UIState) Query {
	m, _ := format.ResolveView(state.View)
	return Query{
		Measure: m,
		Filters: state.Filters,
	}
}

// Chart is one dashboard chart.
type Chart interface {
	ID() string
	Title() string
	Tab() domain.Tab
	// Point marks the chart shown in the tab's numeric point slot.
	Point() bool
	Prepare(t *domain.Table, period domain.Period) *Prepared
	Render(p *Prepared, q Query) domain.ChartData
}

// AggregateFilter applies filter criteria to a prepared aggregate.
type AggregateFilter interface {
	ApplyAggregate(a *domain.AggregateTable, c domain.FilterCriteria) *domain.AggregateTable
}

type plainFilter struct{}

func (plainFilter) ApplyAggregate(a *domain.AggregateTable, c domain.FilterCriteria) *domain.AggregateTable {
	return filter.ApplyAggregate(a, c)
}

// Options configures the chart registry.
type Options struct {
	// TopN caps the supplier rankings; defaults to 10.
	TopN   int
	Filter AggregateFilter
}

// base holds what every chart shares.
type base struct {
	id     string
	title  string
	tab    domain.Tab
	point  bool
	style  Style
	filter AggregateFilter
}

func (b base) ID() string      { return b.id }
func (b base) Title() string   { return b.title }
func (b base) Tab() domain.Tab { return b.tab }
func (b base) Point() bool     { return b.point }

func (b base) empty() domain.ChartData {
	return domain.EmptyChart(b.id, b.title)
}

func (b base) frame(m domain.Measure) domain.ChartData {
	return domain.ChartData{
		ID:       b.id,
		Title:    b.title,
		Subtitle: b.style.Subtitle(m),
		Measure:  m,
	}
}

func (b base) primary(p *Prepared, c domain.FilterCriteria) *domain.AggregateTable {
	if p == nil {
		return &domain.AggregateTable{}
	}
	return b.filter.ApplyAggregate(p.Primary, c)
}

func (b base) reference(p *Prepared, c domain.FilterCriteria) *domain.AggregateTable {
	if p == nil {
		return &domain.AggregateTable{}
	}
	return b.filter.ApplyAggregate(p.Reference, c)
}

// Registry indexes the charts of every tab.
type Registry struct {
	charts []Chart
	byID   map[string]Chart
}

// NewRegistry builds the standard chart set.
func NewRegistry(opts Options) *Registry {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Filter == nil {
		opts.Filter = plainFilter{}
	}

	var all []Chart
	all = append(all, orderedSpendCharts(domain.TabOrderedSpend, "os", StandardStyle, opts)...)
	all = append(all, supplierPerformanceCharts(domain.TabSupplierPerformance, "sp", StandardStyle, opts)...)
	all = append(all, orderedSpendCharts(domain.TabOrderedSpendIBCS, "ibcs", IBCSStyle, opts)...)
	return NewRegistryOf(all...)
}

// NewRegistryOf indexes the given charts. IDs must be unique.
func NewRegistryOf(charts ...Chart) *Registry {
	r := &Registry{byID: make(map[string]Chart, len(charts))}
	for _, c := range charts {
		if _, dup := r.byID[c.ID()]; dup {
			panic(fmt.Sprintf("charts: duplicate chart id %q", c.ID()))
		}
		r.byID[c.ID()] = c
		r.charts = append(r.charts, c)
	}
	return r
}

// Get returns the chart with the given id.
func (r *Registry) Get(id string) (Chart, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// All returns every chart in registration order.
func (r *Registry) All() []Chart {
	return append([]Chart(nil), r.charts...)
}

// ForTab returns the charts of tab in registration order.
func (r *Registry) ForTab(tab domain.Tab) []Chart {
	var out []Chart
	for _, c := range r.charts {
		if c.Tab() == tab {
			out = append(out, c)
		}
	}
	return out
}

// PointChart returns the chart shown in the numeric point slot of tab.
func (r *Registry) PointChart(tab domain.Tab) (Chart, bool) {
	for _, c := range r.charts {
		if c.Tab() == tab && c.Point() {
			return c, true
		}
	}
	return nil, false
}

func topTitle(pattern string, n int) string {
	if n == 10 {
		return fmt.Sprintf(pattern, "Ten")
	}
	return fmt.Sprintf(pattern, fmt.Sprint(n))
}
