package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/cache"
	"github.com/andresuchdata/procurement-dashboard/internal/charts"
	"github.com/andresuchdata/procurement-dashboard/internal/dataset"
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/filter"
	"github.com/andresuchdata/procurement-dashboard/internal/reactive"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownChart     = errors.New("unknown chart")
	ErrUnknownTab       = errors.New("unknown tab")
	ErrDatasetNotLoaded = dataset.ErrNotLoaded
)

type Options struct {
	TopN          int
	UpdateWorkers int
}

// ChartMeta describes a chart without rendering it.
type ChartMeta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Point bool   `json:"point"`
}

type TabSummary struct {
	Tab    domain.Tab  `json:"tab"`
	Code   string      `json:"code"`
	Header string      `json:"header"`
	Charts []ChartMeta `json:"charts"`
}

type DashboardService struct {
	dataset  *dataset.Dataset
	cache    cache.PreparedCache
	memo     *filter.Memo
	registry *charts.Registry
	runner   *reactive.Runner
}

func NewDashboardService(ds *dataset.Dataset, cacheImpl cache.PreparedCache, opts Options) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoop()
	}
	memo := filter.NewMemo()
	registry := charts.NewRegistry(charts.Options{TopN: opts.TopN, Filter: memo})
	return &DashboardService{
		dataset:  ds,
		cache:    cacheImpl,
		memo:     memo,
		registry: registry,
		runner:   reactive.NewRunner(reactive.NewGraph(registry), opts.UpdateWorkers),
	}
}

func (s *DashboardService) Registry() *charts.Registry { return s.registry }

func (s *DashboardService) Graph() *reactive.Graph { return s.runner.Graph() }

// Header returns the page header of tab.
func (s *DashboardService) Header(tab domain.Tab) (string, error) {
	for _, t := range domain.Tabs {
		if t == tab {
			return string(t), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, tab)
}

func (s *DashboardService) Tabs() []TabSummary {
	out := make([]TabSummary, 0, len(domain.Tabs))
	for _, tab := range domain.Tabs {
		header, _ := s.Header(tab)
		summary := TabSummary{Tab: tab, Code: tab.Code(), Header: header, Charts: []ChartMeta{}}
		for _, c := range s.registry.ForTab(tab) {
			summary.Charts = append(summary.Charts, ChartMeta{ID: c.ID(), Title: c.Title(), Point: c.Point()})
		}
		out = append(out, summary)
	}
	return out
}

// Options lists the selectable values of every filter picker. Each list is
// narrowed by the other three criteria only.
func (s *DashboardService) Options(ctx context.Context, criteria domain.FilterCriteria) (domain.FilterOptions, error) {
	table, _, err := s.dataset.Snapshot()
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return filter.Options(table, criteria), nil
}

// Chart renders chart id for state.
func (s *DashboardService) Chart(ctx context.Context, id string, state domain.UIState) (domain.ChartData, error) {
	chart, ok := s.registry.Get(id)
	if !ok {
		return domain.ChartData{}, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
	return s.render(ctx, chart, state)
}

// TabCharts renders every chart of tab in registration order.
func (s *DashboardService) TabCharts(ctx context.Context, tab domain.Tab, state domain.UIState) ([]domain.ChartData, error) {
	if _, err := s.Header(tab); err != nil {
		return nil, err
	}
	state.Tab = tab
	list := s.registry.ForTab(tab)
	out := make([]domain.ChartData, 0, len(list))
	for _, c := range list {
		data, err := s.render(ctx, c, state)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (s *DashboardService) render(ctx context.Context, chart charts.Chart, state domain.UIState) (domain.ChartData, error) {
	prepared, err := s.prepare(ctx, chart)
	if err != nil {
		return domain.ChartData{}, err
	}
	return chart.Render(prepared, charts.NewQuery(state.Normalize())), nil
}

// prepare returns the UI-independent aggregate of chart, through the cache.
func (s *DashboardService) prepare(ctx context.Context, chart charts.Chart) (*charts.Prepared, error) {
	table, period, err := s.dataset.Snapshot()
	if err != nil {
		return nil, err
	}

	key := cache.Key(chart.ID(), table.Version, period.String())
	if p, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return p, nil
	} else if err != nil {
		log.Warn().Err(err).Str("chart", chart.ID()).Msg("dashboard: cache get prepared failed")
	}

	p := chart.Prepare(table, period)

	if err := s.cache.Set(ctx, key, p); err != nil {
		log.Warn().Err(err).Str("chart", chart.ID()).Msg("dashboard: cache set prepared failed")
	}

	return p, nil
}

// Update routes a UI event through the reactive graph and computes every
// output it invalidates.
func (s *DashboardService) Update(ctx context.Context, event reactive.Event) (*reactive.Update, error) {
	state := event.State.Normalize()
	if _, err := s.Header(state.Tab); err != nil {
		return nil, err
	}
	event.State = state
	return s.runner.Run(ctx, s.Graph().Plan(event), state, s.compute)
}

func (s *DashboardService) compute(ctx context.Context, out reactive.Output, state domain.UIState) (any, error) {
	switch out.Kind {
	case reactive.KindHeader:
		return s.Header(state.Tab)
	case reactive.KindPoint:
		chart, ok := s.registry.PointChart(state.Tab)
		if !ok {
			return nil, fmt.Errorf("%w: no point chart on %q", ErrUnknownChart, state.Tab)
		}
		return s.render(ctx, chart, state)
	case reactive.KindChart:
		return s.Chart(ctx, out.Chart, state)
	case reactive.KindOptions:
		table, _, err := s.dataset.Snapshot()
		if err != nil {
			return nil, err
		}
		return filter.OptionsFor(table, state.Filters, out.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown output kind %q", out.Kind)
	}
}

// WarmUp prepares every chart so the first request is served from cache.
func (s *DashboardService) WarmUp(ctx context.Context) error {
	start := time.Now()
	for _, c := range s.registry.All() {
		if _, err := s.prepare(ctx, c); err != nil {
			return err
		}
	}
	log.Info().
		Int("charts", len(s.registry.All())).
		Str("version", s.dataset.Version()).
		Dur("elapsed", time.Since(start)).
		Msg("dashboard: charts prepared")
	return nil
}

func (s *DashboardService) DatasetInfo() (dataset.Info, error) {
	return s.dataset.Info()
}

// Reload reads the dataset again, drops cached results and prepares the
// charts for the new table.
func (s *DashboardService) Reload(ctx context.Context) (dataset.Info, error) {
	if err := s.dataset.Reload(ctx); err != nil {
		return dataset.Info{}, err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache invalidate failed")
	}
	s.memo.Reset()
	if err := s.WarmUp(ctx); err != nil {
		return dataset.Info{}, err
	}
	return s.dataset.Info()
}
