// Package reactive decides which dashboard outputs a UI event invalidates
// and recomputes them.
package reactive

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/procurement-dashboard/internal/charts"
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/samber/lo"
)

// Input is a piece of UI state an output can depend on.
type Input string

const (
	InputTab           Input = "tab"
	InputView          Input = "view"
	InputCompanyCode   Input = Input(domain.DimCompanyCode)
	InputPurchasingOrg Input = Input(domain.DimPurchasingOrg)
	InputPlant         Input = Input(domain.DimPlant)
	InputMaterialGroup Input = Input(domain.DimMaterialGroup)
)

// Inputs lists every input.
var Inputs = []Input{InputTab, InputView, InputCompanyCode, InputPurchasingOrg, InputPlant, InputMaterialGroup}

var filterInputs = []Input{InputCompanyCode, InputPurchasingOrg, InputPlant, InputMaterialGroup}

// ParseInput accepts an input name; filter inputs also accept their
// dimension spelling with dashes.
func ParseInput(s string) (Input, error) {
	in := Input(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if lo.Contains(Inputs, in) {
		return in, nil
	}
	return "", fmt.Errorf("unknown input %q", s)
}

// Kind says how an output is computed.
type Kind string

const (
	KindHeader  Kind = "header"
	KindPoint   Kind = "point"
	KindChart   Kind = "chart"
	KindOptions Kind = "options"
)

type OutputID string

// Output is one node of the graph.
type Output struct {
	ID   OutputID `json:"id"`
	Kind Kind     `json:"kind"`
	// Tab guards the output: it is only computed while that tab is active.
	// Empty means always.
	Tab       domain.Tab `json:"tab,omitempty"`
	DependsOn []Input    `json:"depends_on"`
	// Chart is set for chart outputs.
	Chart string `json:"chart,omitempty"`
	// Dimension is set for options outputs.
	Dimension domain.Dimension `json:"dimension,omitempty"`
}

func (o Output) dependsOnAny(changed []Input) bool {
	for _, in := range changed {
		if lo.Contains(o.DependsOn, in) {
			return true
		}
	}
	return false
}

const (
	HeaderID OutputID = "header"
	PointID  OutputID = "point"
)

func ChartOutputID(chartID string) OutputID { return OutputID("chart:" + chartID) }

func OptionsOutputID(d domain.Dimension) OutputID { return OutputID("options:" + string(d)) }

// Event is one UI change together with the state after it.
type Event struct {
	Changed []Input        `json:"changed"`
	State   domain.UIState `json:"state"`
}

// InitialEvent is the first render: every input counts as changed.
func InitialEvent(state domain.UIState) Event {
	return Event{Changed: append([]Input(nil), Inputs...), State: state}
}

// Plan is the outcome of routing an event through the graph.
type Plan struct {
	Recompute  []OutputID `json:"recompute"`
	Suppressed []OutputID `json:"suppressed"`
}

type Graph struct {
	outputs []Output
	byID    map[OutputID]Output
}

// NewGraph wires the header, the point slot, every non-point chart of the
// registry and one options list per filter dimension.
func NewGraph(registry *charts.Registry) *Graph {
	all := append([]Input{InputTab, InputView}, filterInputs...)

	outputs := []Output{
		{ID: HeaderID, Kind: KindHeader, DependsOn: []Input{InputTab}},
		{ID: PointID, Kind: KindPoint, DependsOn: all},
	}
	for _, c := range registry.All() {
		if c.Point() {
			continue
		}
		outputs = append(outputs, Output{
			ID:        ChartOutputID(c.ID()),
			Kind:      KindChart,
			Tab:       c.Tab(),
			DependsOn: all,
			Chart:     c.ID(),
		})
	}
	for _, d := range domain.FilterDimensions {
		self := Input(d)
		outputs = append(outputs, Output{
			ID:        OptionsOutputID(d),
			Kind:      KindOptions,
			DependsOn: lo.Without(filterInputs, self),
			Dimension: d,
		})
	}

	return NewGraphOf(outputs...)
}

// NewGraphOf builds a graph from explicit outputs. Output IDs must be unique.
func NewGraphOf(outputs ...Output) *Graph {
	g := &Graph{byID: make(map[OutputID]Output, len(outputs))}
	for _, o := range outputs {
		if _, dup := g.byID[o.ID]; dup {
			panic(fmt.Sprintf("reactive: duplicate output %s", o.ID))
		}
		g.byID[o.ID] = o
		g.outputs = append(g.outputs, o)
	}
	return g
}

func (g *Graph) Outputs() []Output {
	return append([]Output(nil), g.outputs...)
}

func (g *Graph) Output(id OutputID) (Output, bool) {
	o, ok := g.byID[id]
	return o, ok
}

// Plan lists the outputs whose inputs changed. Those guarded to a tab other
// than the active one are suppressed instead. Both lists keep graph order.
func (g *Graph) Plan(e Event) Plan {
	state := e.State.Normalize()
	plan := Plan{Recompute: []OutputID{}, Suppressed: []OutputID{}}
	for _, o := range g.outputs {
		if !o.dependsOnAny(e.Changed) {
			continue
		}
		if o.Tab != "" && o.Tab != state.Tab {
			plan.Suppressed = append(plan.Suppressed, o.ID)
			continue
		}
		plan.Recompute = append(plan.Recompute, o.ID)
	}
	return plan
}

// ChangedBetween diffs two states into the inputs an event should carry.
func ChangedBetween(before, after domain.UIState) []Input {
	before, after = before.Normalize(), after.Normalize()
	var changed []Input
	if before.Tab != after.Tab {
		changed = append(changed, InputTab)
	}
	if before.View != after.View {
		changed = append(changed, InputView)
	}
	for _, d := range domain.FilterDimensions {
		if before.Filters.Get(d) != after.Filters.Get(d) {
			changed = append(changed, Input(d))
		}
	}
	return changed
}
