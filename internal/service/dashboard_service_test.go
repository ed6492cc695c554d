package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/andresuchdata/procurement-dashboard/internal/cache"
	"github.com/andresuchdata/procurement-dashboard/internal/charts"
	"github.com/andresuchdata/procurement-dashboard/internal/dataset"
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/loader"
	"github.com/andresuchdata/procurement-dashboard/internal/reactive"
)

const ordersCSV = `Purchasing Doc.,Document Date,Supplier name,Company Code,Purchasing Org.,Plant,Material Group,Net Value,supplier delivery date,delivery date,deviation cause,deviation cause text
4500000001,2019-03-10,Acme,1000,P100,PL01,MG1,100,2019-03-20,2019-03-20,0,no deviation
4500000002,2020-01-15,Acme,1000,P100,PL01,MG1,300,2020-02-01,2020-02-08,1,delivery deviation - too late
4500000003,2020-02-02,Globex,2000,P200,PL02,MG2,200,2020-02-10,2020-02-10,0,no deviation
4500000004,2020-05-05,Initech,1000,P200,PL03,MG1,50,2020-05-10,2020-05-12,1,delivery deviation - too late
`

type memorySource struct {
	mu  sync.Mutex
	csv string
}

func (s *memorySource) Name() string { return "memory" }

func (s *memorySource) ReadSheet(ctx context.Context) (*loader.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loader.DecodeSheet("orders.csv", []byte(s.csv), "")
}

// countingCache records cache traffic around a memory cache.
type countingCache struct {
	cache.PreparedCache
	hits, misses, invalidations atomic.Int32
}

func (c *countingCache) Get(ctx context.Context, key string) (*charts.Prepared, bool, error) {
	p, ok, err := c.PreparedCache.Get(ctx, key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return p, ok, err
}

func (c *countingCache) InvalidateAll(ctx context.Context) error {
	c.invalidations.Add(1)
	return c.PreparedCache.InvalidateAll(ctx)
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) (*charts.Prepared, bool, error) {
	return nil, false, errors.New("redis get failed")
}

func (failingCache) Set(ctx context.Context, key string, p *charts.Prepared) error {
	return errors.New("redis set failed")
}

func (failingCache) InvalidateAll(ctx context.Context) error { return nil }

func newTestService(t *testing.T, c cache.PreparedCache) (*DashboardService, *memorySource) {
	t.Helper()
	src := &memorySource{csv: ordersCSV}
	ds := dataset.New(src, dataset.Options{})
	if err := ds.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return NewDashboardService(ds, c, Options{TopN: 10, UpdateWorkers: 2}), src
}

func TestHeader(t *testing.T) {
	svc, _ := newTestService(t, nil)
	tests := map[domain.Tab]string{
		domain.TabOrderedSpend:        "Ordered Spend",
		domain.TabOrderedSpendIBCS:    "Ordered Spend IBCS",
		domain.TabSupplierPerformance: "Supplier Performance",
	}
	for tab, want := range tests {
		got, err := svc.Header(tab)
		if err != nil || got != want {
			t.Errorf("Header(%q) = %q, %v", tab, got, err)
		}
	}
	if _, err := svc.Header("Inventory"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("expected ErrUnknownTab, got %v", err)
	}
}

func TestTabs(t *testing.T) {
	svc, _ := newTestService(t, nil)
	tabs := svc.Tabs()
	if len(tabs) != 3 {
		t.Fatalf("expected 3 tabs, got %d", len(tabs))
	}
	if tabs[1].Code != "sp" || len(tabs[1].Charts) != 5 {
		t.Errorf("unexpected supplier performance tab %+v", tabs[1])
	}
}

func TestChart(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	data, err := svc.Chart(ctx, "os-total-by-year", domain.UIState{})
	if err != nil {
		t.Fatalf("chart failed: %v", err)
	}
	if data.Empty || len(data.Indicators) != 2 {
		t.Fatalf("unexpected chart %+v", data)
	}
	if data.Indicators[0].Value != 550 || data.Indicators[1].Value != 100 {
		t.Errorf("expected 550 vs 100, got %v vs %v", data.Indicators[0].Value, data.Indicators[1].Value)
	}

	counted, err := svc.Chart(ctx, "os-total-by-year", domain.UIState{View: domain.ViewNumberOfOrders})
	if err != nil {
		t.Fatalf("chart failed: %v", err)
	}
	if counted.Indicators[0].Value != 3 || counted.Measure != domain.MeasureOrderCount {
		t.Errorf("expected 3 orders, got %+v", counted.Indicators[0])
	}

	filtered, err := svc.Chart(ctx, "os-total-by-year", domain.UIState{Filters: domain.FilterCriteria{CompanyCode: "9999"}})
	if err != nil {
		t.Fatalf("chart failed: %v", err)
	}
	if !filtered.Empty || filtered.Message != domain.NoDataMessage {
		t.Errorf("expected placeholder, got %+v", filtered)
	}

	if _, err := svc.Chart(ctx, "nope", domain.UIState{}); !errors.Is(err, ErrUnknownChart) {
		t.Errorf("expected ErrUnknownChart, got %v", err)
	}
}

func TestChartUsesPreparedCache(t *testing.T) {
	c := &countingCache{PreparedCache: cache.NewMemory()}
	svc, _ := newTestService(t, c)
	ctx := context.Background()

	for _, view := range []domain.ViewToggle{domain.ViewSpendAmount, domain.ViewNumberOfOrders} {
		if _, err := svc.Chart(ctx, "sp-by-month", domain.UIState{Tab: domain.TabSupplierPerformance, View: view}); err != nil {
			t.Fatalf("chart failed: %v", err)
		}
	}
	if c.misses.Load() != 1 || c.hits.Load() != 1 {
		t.Errorf("expected 1 miss then 1 hit, got %d misses %d hits", c.misses.Load(), c.hits.Load())
	}
}

func TestCacheFailuresFallThrough(t *testing.T) {
	svc, _ := newTestService(t, failingCache{})
	data, err := svc.Chart(context.Background(), "os-by-org", domain.UIState{})
	if err != nil {
		t.Fatalf("expected cache errors to be ignored, got %v", err)
	}
	if data.Empty {
		t.Error("expected a rendered chart")
	}
}

func TestTabCharts(t *testing.T) {
	svc, _ := newTestService(t, nil)
	list, err := svc.TabCharts(context.Background(), domain.TabSupplierPerformance, domain.UIState{})
	if err != nil {
		t.Fatalf("tab charts failed: %v", err)
	}
	if len(list) != 5 || !strings.HasPrefix(list[0].ID, "sp-") {
		t.Errorf("unexpected charts %d", len(list))
	}
	if _, err := svc.TabCharts(context.Background(), "Inventory", domain.UIState{}); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("expected ErrUnknownTab, got %v", err)
	}
}

func TestOptionsCascade(t *testing.T) {
	svc, _ := newTestService(t, nil)
	opts, err := svc.Options(context.Background(), domain.FilterCriteria{CompanyCode: "1000"})
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	if strings.Join(opts.CompanyCodes, ",") != "1000,2000" {
		t.Errorf("company codes must ignore their own filter, got %v", opts.CompanyCodes)
	}
	if strings.Join(opts.Plants, ",") != "PL01,PL03" {
		t.Errorf("plants must be narrowed by company code, got %v", opts.Plants)
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	state := domain.UIState{Tab: domain.TabSupplierPerformance}
	update, err := svc.Update(ctx, reactive.InitialEvent(state))
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if update.Results[reactive.HeaderID] != "Supplier Performance" {
		t.Errorf("unexpected header %v", update.Results[reactive.HeaderID])
	}
	point, ok := update.Results[reactive.PointID].(domain.ChartData)
	if !ok || point.ID != "sp-total-deviation" {
		t.Errorf("expected the supplier performance point chart, got %#v", update.Results[reactive.PointID])
	}
	if _, ok := update.Results[reactive.ChartOutputID("os-by-month")]; ok {
		t.Error("inactive tab charts must not be computed")
	}
	plants, ok := update.Results[reactive.OptionsOutputID(domain.DimPlant)].([]string)
	if !ok || len(plants) != 3 {
		t.Errorf("unexpected plant options %#v", update.Results[reactive.OptionsOutputID(domain.DimPlant)])
	}

	toggle := reactive.Event{
		Changed: []reactive.Input{reactive.InputView},
		State:   domain.UIState{Tab: domain.TabSupplierPerformance, View: domain.ViewNumberOfOrders},
	}
	update, err = svc.Update(ctx, toggle)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, ok := update.Results[reactive.HeaderID]; ok {
		t.Error("header does not depend on the view toggle")
	}
	if len(update.Results) != 5 {
		t.Errorf("expected point plus 4 charts, got %d", len(update.Results))
	}

	if _, err := svc.Update(ctx, reactive.Event{State: domain.UIState{Tab: "Inventory"}}); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("expected ErrUnknownTab, got %v", err)
	}
}

func TestReload(t *testing.T) {
	c := &countingCache{PreparedCache: cache.NewMemory()}
	svc, src := newTestService(t, c)
	ctx := context.Background()
	if err := svc.WarmUp(ctx); err != nil {
		t.Fatalf("warm up failed: %v", err)
	}
	before, _ := svc.DatasetInfo()

	src.mu.Lock()
	src.csv += "4500000005,2021-01-10,Acme,1000,P100,PL01,MG1,75,,,0,\n"
	src.mu.Unlock()

	info, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if info.Version == before.Version || info.Rows != 5 || info.Period.Current != 2021 {
		t.Errorf("unexpected info after reload %+v", info)
	}
	if c.invalidations.Load() != 1 {
		t.Errorf("expected one invalidation, got %d", c.invalidations.Load())
	}
}

func TestNotLoaded(t *testing.T) {
	ds := dataset.New(&memorySource{csv: ordersCSV}, dataset.Options{})
	svc := NewDashboardService(ds, nil, Options{})
	if _, err := svc.Chart(context.Background(), "os-by-month", domain.UIState{}); !errors.Is(err, ErrDatasetNotLoaded) {
		t.Errorf("expected ErrDatasetNotLoaded, got %v", err)
	}
	if _, err := svc.DatasetInfo(); !errors.Is(err, ErrDatasetNotLoaded) {
		t.Errorf("expected ErrDatasetNotLoaded, got %v", err)
	}
}
