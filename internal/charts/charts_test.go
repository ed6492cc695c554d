package charts

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/filter"
	"github.com/shopspring/decimal"
)

type orderOpt func(*domain.Order)

func newOrder(year, month int, value int64, opts ...orderOpt) domain.Order {
	o := domain.Order{
		PurchasingDoc: fmt.Sprintf("45%04d%02d%d", year, month, value),
		DocumentDate:  time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Year:          year,
		Month:         month,
		CompanyCode:   "1000",
		PurchasingOrg: "P100",
		Plant:         "PL01",
		MaterialGroup: "1234",
		SupplierName:  "Acme",
		NetValue:      decimal.NewFromInt(value),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func supplier(name string) orderOpt { return func(o *domain.Order) { o.SupplierName = name } }
func org(code string) orderOpt      { return func(o *domain.Order) { o.PurchasingOrg = code } }
func deviated(code int, text string, ind domain.DeviationIndicator) orderOpt {
	return func(o *domain.Order) {
		o.DeviationCause = code
		o.DeviationCauseText = text
		o.DeviationIndicator = ind
	}
}

var period = domain.NewPeriod(2020)

func render(t *testing.T, r *Registry, id string, table *domain.Table, q Query) domain.ChartData {
	t.Helper()
	c, ok := r.Get(id)
	if !ok {
		t.Fatalf("chart %s not registered", id)
	}
	return c.Render(c.Prepare(table, period), q)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{})

	if got := len(r.ForTab(domain.TabOrderedSpend)); got != 4 {
		t.Errorf("expected 4 ordered spend charts, got %d", got)
	}
	if got := len(r.ForTab(domain.TabSupplierPerformance)); got != 5 {
		t.Errorf("expected 5 supplier performance charts, got %d", got)
	}
	if got := len(r.ForTab(domain.TabOrderedSpendIBCS)); got != 4 {
		t.Errorf("expected 4 IBCS charts, got %d", got)
	}
	for _, tab := range domain.Tabs {
		if _, ok := r.PointChart(tab); !ok {
			t.Errorf("expected a point chart for %s", tab)
		}
	}
	if _, ok := r.Get("missing"); ok {
		t.Errorf("expected unknown chart lookup to fail")
	}
}

func TestTotalByYearScenario(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2020, 1, 100),
		newOrder(2020, 2, 200),
		newOrder(2019, 3, 50),
	})
	r := NewRegistry(Options{})

	data := render(t, r, "os-total-by-year", table, Query{Measure: domain.MeasureSpend})
	if data.Empty {
		t.Fatalf("expected data, got placeholder")
	}
	if len(data.Indicators) != 2 {
		t.Fatalf("expected 2 indicators, got %d", len(data.Indicators))
	}
	current := data.Indicators[0]
	if current.Value != 300 || current.Text != "300" || current.Label != "2020" {
		t.Errorf("unexpected current indicator %+v", current)
	}
	if current.Delta == nil || *current.Delta != 5 {
		t.Errorf("expected delta 5, got %v", current.Delta)
	}
	if data.Subtitle != "Ordered Spend (in EUR)" {
		t.Errorf("unexpected subtitle %q", data.Subtitle)
	}

	counts := render(t, r, "os-total-by-year", table, Query{Measure: domain.MeasureOrderCount})
	if counts.Indicators[0].Value != 2 || counts.Indicators[1].Value != 1 {
		t.Errorf("unexpected counts %+v", counts.Indicators)
	}
	if counts.Indicators[0].Suffix != "" {
		t.Errorf("expected no currency suffix for counts")
	}
}

func TestTotalByYearZeroReference(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{newOrder(2020, 1, 100)})
	r := NewRegistry(Options{})

	data := render(t, r, "ibcs-total-by-year", table, Query{Measure: domain.MeasureSpend})
	if data.Indicators[0].Delta != nil {
		t.Errorf("expected undefined delta, got %v", *data.Indicators[0].Delta)
	}
	if data.Indicators[1].Value != 0 {
		t.Errorf("expected prior year value 0, got %v", data.Indicators[1].Value)
	}
	if data.Subtitle != "Ordered Spend | EUR" {
		t.Errorf("unexpected IBCS subtitle %q", data.Subtitle)
	}
}

func TestEmptyFilterYieldsPlaceholders(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2020, 1, 100, deviated(1, "delivery deviation - too late", domain.IndicatorLateShort)),
		newOrder(2019, 1, 50),
	})
	r := NewRegistry(Options{})
	q := Query{Measure: domain.MeasureSpend, Filters: domain.FilterCriteria{CompanyCode: "does-not-exist"}}

	for _, c := range r.All() {
		t.Run(c.ID(), func(t *testing.T) {
			data := c.Render(c.Prepare(table, period), q)
			if !data.Empty || data.Message != domain.NoDataMessage {
				t.Errorf("expected placeholder, got %+v", data)
			}
			if data.ID != c.ID() {
				t.Errorf("expected placeholder id %s, got %s", c.ID(), data.ID)
			}
		})
	}
}

func TestEmptyTableYieldsPlaceholders(t *testing.T) {
	table := domain.NewTable("v", nil)
	r := NewRegistry(Options{})

	for _, c := range r.All() {
		t.Run(c.ID(), func(t *testing.T) {
			if data := c.Render(c.Prepare(table, period), Query{}); !data.Empty {
				t.Errorf("expected placeholder, got %+v", data)
			}
		})
	}
}

func TestOrdersByMonth(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2020, 11, 1),
		newOrder(2020, 2, 2),
		newOrder(2019, 7, 3),
		newOrder(2018, 1, 99),
	})
	r := NewRegistry(Options{})

	data := render(t, r, "os-by-month", table, Query{Measure: domain.MeasureSpend})
	if len(data.Series) != 2 {
		t.Fatalf("expected prior and current series, got %d", len(data.Series))
	}
	if data.Series[0].Name != "2019" || data.Series[1].Name != "2020" {
		t.Errorf("unexpected series names %s, %s", data.Series[0].Name, data.Series[1].Name)
	}
	var labels []string
	for _, p := range data.Series[1].Points {
		labels = append(labels, p.Label)
	}
	if expected := []string{"Feb", "Nov"}; !reflect.DeepEqual(labels, expected) {
		t.Errorf("expected %v, got %v", expected, labels)
	}
	if len(data.Categories) != 12 || data.Categories[0] != "Jan" {
		t.Errorf("expected the twelve month categories, got %v", data.Categories)
	}
}

func TestOrdersByOrgDisplayOrder(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2019, 1, 500, org("P100")),
		newOrder(2020, 1, 30, org("P100")),
		newOrder(2020, 1, 20, org("P200")),
		newOrder(2020, 1, 40, org("P300")),
	})
	r := NewRegistry(Options{})

	data := render(t, r, "os-by-org", table, Query{Measure: domain.MeasureSpend})
	if expected := []string{"P200", "P100", "P300"}; !reflect.DeepEqual(data.Categories, expected) {
		t.Errorf("expected %v, got %v", expected, data.Categories)
	}
	if len(data.Series[0].Points) != 1 || data.Series[0].Points[0].Label != "P100" {
		t.Errorf("expected only P100 in the prior series, got %+v", data.Series[0].Points)
	}
}

func TestTopSuppliers(t *testing.T) {
	var orders []domain.Order
	for i := 1; i <= 12; i++ {
		orders = append(orders, newOrder(2020, 1, int64(i*10), supplier(fmt.Sprintf("S%02d", i))))
		orders = append(orders, newOrder(2019, 1, 1, supplier(fmt.Sprintf("S%02d", i))))
	}
	table := domain.NewTable("v", orders)
	r := NewRegistry(Options{})

	data := render(t, r, "os-top-suppliers", table, Query{Measure: domain.MeasureOrderCount})
	if len(data.Categories) != 10 {
		t.Fatalf("expected 10 suppliers, got %d: %v", len(data.Categories), data.Categories)
	}
	for _, s := range data.Categories {
		if s == "S01" || s == "S02" {
			t.Errorf("unexpected supplier %s in top ten", s)
		}
	}
	if len(data.Series[0].Points) != 10 {
		t.Errorf("expected prior year restricted to the same 10 suppliers, got %d", len(data.Series[0].Points))
	}
	if data.Title != "Orders of Top Ten Suppliers" {
		t.Errorf("unexpected title %q", data.Title)
	}
}

func TestTotalDeviation(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2020, 1, 100, deviated(1, "delivery deviation - too late", domain.IndicatorLateShort)),
		newOrder(2020, 2, 300),
		newOrder(2019, 2, 1000, deviated(1, "delivery deviation - too late", domain.IndicatorLateLong)),
	})
	r := NewRegistry(Options{})

	data := render(t, r, "sp-total-deviation", table, Query{Measure: domain.MeasureSpend})
	if data.Indicators[0].Value != 100 {
		t.Errorf("expected deviated spend 100, got %v", data.Indicators[0].Value)
	}
	share := data.Indicators[1].Percentage
	if share == nil || *share != 0.25 {
		t.Errorf("expected share 0.25, got %v", share)
	}
	if data.Indicators[1].Text != "25.0%" {
		t.Errorf("expected 25.0%%, got %q", data.Indicators[1].Text)
	}
}

func TestCauseIndicator(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2020, 1, 100, deviated(1, "delivery deviation - too late", domain.IndicatorLateShort)),
		newOrder(2020, 1, 50, deviated(4, "under-delivery", "")),
		newOrder(2020, 1, 30, deviated(1, "delivery deviation - too late", domain.IndicatorLateLong)),
	})
	r := NewRegistry(Options{})

	data := render(t, r, "sp-cause-indicator", table, Query{Measure: domain.MeasureSpend})
	var causes, indicators []domain.Series
	for _, s := range data.Series {
		if s.Panel == panelCause {
			causes = append(causes, s)
		} else {
			indicators = append(indicators, s)
		}
	}
	if len(causes) != 2 {
		t.Fatalf("expected 2 cause series, got %d", len(causes))
	}
	if causes[0].Color != "#E8743B" {
		t.Errorf("expected palette colour for late deliveries, got %s", causes[0].Color)
	}
	if len(indicators) != 1 || len(indicators[0].Points) != 2 {
		t.Fatalf("expected one indicator series with 2 points, got %+v", indicators)
	}
	if indicators[0].Points[0].Label != string(domain.IndicatorLateShort) || indicators[0].Points[0].Value != 100 {
		t.Errorf("unexpected first indicator point %+v", indicators[0].Points[0])
	}
}

func TestDeviationByMonthStacks(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2020, 3, 10, deviated(1, "delivery deviation - too late", domain.IndicatorLateShort)),
		newOrder(2020, 1, 20, deviated(4, "under-delivery", domain.IndicatorInTime)),
		newOrder(2020, 3, 30, deviated(4, "under-delivery", domain.IndicatorInTime)),
	})
	r := NewRegistry(Options{})

	data := render(t, r, "sp-by-month", table, Query{Measure: domain.MeasureOrderCount})
	if expected := []string{"Jan", "Mar"}; !reflect.DeepEqual(data.Categories, expected) {
		t.Errorf("expected %v, got %v", expected, data.Categories)
	}
	if len(data.Series) != 2 {
		t.Fatalf("expected a series per cause, got %d", len(data.Series))
	}
	for _, s := range data.Series {
		if s.Stack != stackCause {
			t.Errorf("expected stacked series, got %q", s.Stack)
		}
	}
}

func TestDeviationTopSuppliersRankBySpend(t *testing.T) {
	var orders []domain.Order
	for i := 1; i <= 11; i++ {
		orders = append(orders, newOrder(2020, 1, int64(i), supplier(fmt.Sprintf("S%02d", i)),
			deviated(1, "delivery deviation - too late", domain.IndicatorLateShort)))
	}
	table := domain.NewTable("v", orders)
	r := NewRegistry(Options{})

	data := render(t, r, "sp-top-suppliers", table, Query{Measure: domain.MeasureSpend})
	if len(data.Categories) != 10 || data.Categories[0] != "S02" || data.Categories[9] != "S11" {
		t.Errorf("unexpected supplier order %v", data.Categories)
	}
}

func TestRenderUsesInjectedFilter(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{newOrder(2020, 1, 10)})
	memo := filter.NewMemo()
	r := NewRegistry(Options{Filter: memo})

	c, _ := r.Get("os-by-org")
	p := c.Prepare(table, period)
	p.Primary.Version = "prepared"
	q := Query{Filters: domain.FilterCriteria{CompanyCode: "1000"}}

	first := c.Render(p, q)
	second := c.Render(p, q)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical renders")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{
		newOrder(2020, 1, 10, supplier("B"), org("P2")),
		newOrder(2020, 2, 10, supplier("A"), org("P1")),
		newOrder(2019, 2, 5, supplier("A"), org("P1"),
			deviated(1, "delivery deviation - too late", domain.IndicatorLateShort)),
		newOrder(2020, 3, 7, supplier("C"), org("P1"),
			deviated(4, "under-delivery", domain.IndicatorLateLong)),
	})
	r := NewRegistry(Options{})

	for _, c := range r.All() {
		t.Run(c.ID(), func(t *testing.T) {
			q := Query{Measure: domain.MeasureSpend}
			first := c.Render(c.Prepare(table, period), q)
			for i := 0; i < 10; i++ {
				if again := c.Render(c.Prepare(table, period), q); !reflect.DeepEqual(first, again) {
					t.Fatalf("render %d differs from the first", i)
				}
			}
		})
	}
}

func TestPreparedVersions(t *testing.T) {
	table := domain.NewTable("v", []domain.Order{newOrder(2020, 1, 100)})
	period := domain.NewPeriod(2020)
	reg := NewRegistry(Options{})

	seen := map[string]string{}
	for _, id := range []string{"os-by-month", "ibcs-by-month", "os-by-org", "sp-by-month"} {
		c, _ := reg.Get(id)
		p := c.Prepare(table, period)
		if p.Primary.Version == "" {
			t.Fatalf("%s: expected a prepared version", id)
		}
		seen[id] = p.Primary.Version
	}
	if seen["os-by-month"] != seen["ibcs-by-month"] {
		t.Error("charts grouping the same way should share a version")
	}
	if seen["os-by-month"] == seen["os-by-org"] || seen["os-by-month"] == seen["sp-by-month"] {
		t.Error("different groupings must not share a version")
	}

	c, _ := reg.Get("sp-total-deviation")
	p := c.Prepare(table, period)
	if p.Reference == nil || p.Reference.Version == "" || p.Reference.Version == p.Primary.Version {
		t.Errorf("expected a distinct reference version, got %+v", p.Reference)
	}
}
