package reactive

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/andresuchdata/procurement-dashboard/internal/charts"
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/google/uuid"
)

func newTestGraph() *Graph {
	return NewGraph(charts.NewRegistry(charts.Options{}))
}

func chartIDs(g *Graph, tab domain.Tab) []OutputID {
	var ids []OutputID
	for _, o := range g.Outputs() {
		if o.Kind == KindChart && o.Tab == tab {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func optionIDs(dims ...domain.Dimension) []OutputID {
	ids := make([]OutputID, 0, len(dims))
	for _, d := range dims {
		ids = append(ids, OptionsOutputID(d))
	}
	return ids
}

func TestNewGraphOutputs(t *testing.T) {
	g := newTestGraph()

	counts := map[Kind]int{}
	for _, o := range g.Outputs() {
		counts[o.Kind]++
	}
	// 13 charts across three tabs, one of them per tab in the point slot.
	want := map[Kind]int{KindHeader: 1, KindPoint: 1, KindChart: 10, KindOptions: 4}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("expected outputs %v, got %v", want, counts)
	}

	opts, ok := g.Output(OptionsOutputID(domain.DimPlant))
	if !ok {
		t.Fatal("expected plant options output")
	}
	if !reflect.DeepEqual(opts.DependsOn, []Input{InputCompanyCode, InputPurchasingOrg, InputMaterialGroup}) {
		t.Errorf("plant options must depend on the other filters only, got %v", opts.DependsOn)
	}
}

func TestPlan(t *testing.T) {
	g := newTestGraph()
	osCharts := chartIDs(g, domain.TabOrderedSpend)
	spCharts := chartIDs(g, domain.TabSupplierPerformance)
	ibcsCharts := chartIDs(g, domain.TabOrderedSpendIBCS)

	concat := func(parts ...[]OutputID) []OutputID {
		out := []OutputID{}
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	tests := []struct {
		name           string
		event          Event
		wantRecompute  []OutputID
		wantSuppressed []OutputID
	}{
		{
			name:           "tab change",
			event:          Event{Changed: []Input{InputTab}, State: domain.UIState{Tab: domain.TabSupplierPerformance}},
			wantRecompute:  concat([]OutputID{HeaderID, PointID}, spCharts),
			wantSuppressed: concat(osCharts, ibcsCharts),
		},
		{
			name:           "view toggle",
			event:          Event{Changed: []Input{InputView}, State: domain.UIState{Tab: domain.TabOrderedSpend, View: domain.ViewNumberOfOrders}},
			wantRecompute:  concat([]OutputID{PointID}, osCharts),
			wantSuppressed: concat(spCharts, ibcsCharts),
		},
		{
			name:  "filter change",
			event: Event{Changed: []Input{InputPlant}, State: domain.UIState{Tab: domain.TabOrderedSpendIBCS}},
			wantRecompute: concat([]OutputID{PointID}, ibcsCharts,
				optionIDs(domain.DimCompanyCode, domain.DimPurchasingOrg, domain.DimMaterialGroup)),
			wantSuppressed: concat(osCharts, spCharts),
		},
		{
			name:           "nothing changed",
			event:          Event{State: domain.UIState{Tab: domain.TabOrderedSpend}},
			wantRecompute:  []OutputID{},
			wantSuppressed: []OutputID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := g.Plan(tt.event)
			if !reflect.DeepEqual(plan.Recompute, tt.wantRecompute) {
				t.Errorf("recompute:\n got %v\nwant %v", plan.Recompute, tt.wantRecompute)
			}
			if !reflect.DeepEqual(plan.Suppressed, tt.wantSuppressed) {
				t.Errorf("suppressed:\n got %v\nwant %v", plan.Suppressed, tt.wantSuppressed)
			}
		})
	}
}

func TestInitialEventRecomputesActiveTab(t *testing.T) {
	g := newTestGraph()
	plan := g.Plan(InitialEvent(domain.UIState{}))

	// Default tab is Ordered Spend: header, point, its 3 charts and 4 option lists.
	if len(plan.Recompute) != 2+3+4 {
		t.Errorf("expected 9 outputs, got %d: %v", len(plan.Recompute), plan.Recompute)
	}
	for _, id := range plan.Suppressed {
		o, _ := g.Output(id)
		if o.Tab == domain.TabOrderedSpend {
			t.Errorf("active tab output %s must not be suppressed", id)
		}
	}
}

func TestChangedBetween(t *testing.T) {
	before := domain.UIState{Tab: domain.TabOrderedSpend, View: domain.ViewSpendAmount}
	after := domain.UIState{
		Tab:     domain.TabOrderedSpend,
		View:    domain.ViewNumberOfOrders,
		Filters: domain.FilterCriteria{Plant: "PL01"},
	}
	got := ChangedBetween(before, after)
	if !reflect.DeepEqual(got, []Input{InputView, InputPlant}) {
		t.Errorf("unexpected changed inputs %v", got)
	}
	if got := ChangedBetween(domain.UIState{}, before); len(got) != 0 {
		t.Errorf("defaults should compare equal, got %v", got)
	}
}

func TestParseInput(t *testing.T) {
	for in, want := range map[string]Input{"tab": InputTab, "Company-Code": InputCompanyCode, " plant ": InputPlant} {
		got, err := ParseInput(in)
		if err != nil || got != want {
			t.Errorf("ParseInput(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseInput("year"); err == nil {
		t.Error("expected year to be rejected")
	}
}

func TestRunnerComputesEveryPlannedOutput(t *testing.T) {
	g := newTestGraph()
	runner := NewRunner(g, 2)
	state := domain.UIState{Tab: domain.TabSupplierPerformance}
	plan := g.Plan(InitialEvent(state))

	var calls atomic.Int32
	var inFlight, peak atomic.Int32
	update, err := runner.Run(context.Background(), plan, state, func(ctx context.Context, out Output, s domain.UIState) (any, error) {
		calls.Add(1)
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		if s.Tab != domain.TabSupplierPerformance || s.View != domain.ViewSpendAmount {
			return nil, errors.New("state not normalized")
		}
		return string(out.ID), nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if int(calls.Load()) != len(plan.Recompute) || len(update.Results) != len(plan.Recompute) {
		t.Errorf("expected %d results, got %d (calls %d)", len(plan.Recompute), len(update.Results), calls.Load())
	}
	for _, id := range plan.Recompute {
		if update.Results[id] != string(id) {
			t.Errorf("missing result for %s", id)
		}
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent computations, saw %d", peak.Load())
	}
	if _, err := uuid.Parse(update.CycleID); err != nil {
		t.Errorf("expected uuid cycle id, got %q", update.CycleID)
	}
}

func TestRunnerPropagatesErrors(t *testing.T) {
	g := newTestGraph()
	runner := NewRunner(g, 4)
	state := domain.UIState{}
	boom := errors.New("boom")

	_, err := runner.Run(context.Background(), g.Plan(InitialEvent(state)), state, func(ctx context.Context, out Output, s domain.UIState) (any, error) {
		if out.Kind == KindHeader {
			return nil, boom
		}
		return nil, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	_, err = runner.Run(context.Background(), Plan{Recompute: []OutputID{"chart:missing"}}, state, nil)
	if err == nil {
		t.Error("expected error for unknown output")
	}
}
