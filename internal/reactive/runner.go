package reactive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// ComputeFunc produces the value of one output for a state. Implementations
// must not share mutable state across calls.
type ComputeFunc func(ctx context.Context, out Output, state domain.UIState) (any, error)

// Update is the result of one update cycle.
type Update struct {
	CycleID string           `json:"cycle_id"`
	State   domain.UIState   `json:"state"`
	Plan    Plan             `json:"plan"`
	Results map[OutputID]any `json:"results"`
	Elapsed time.Duration    `json:"elapsed_ns"`
}

type Runner struct {
	graph   *Graph
	workers int
}

// NewRunner bounds every cycle to workers concurrent computations.
func NewRunner(graph *Graph, workers int) *Runner {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Runner{graph: graph, workers: workers}
}

func (r *Runner) Graph() *Graph { return r.graph }

// Run computes every output of the plan. Outputs are independent of each
// other, so they run concurrently; the first error cancels the rest.
func (r *Runner) Run(ctx context.Context, plan Plan, state domain.UIState, compute ComputeFunc) (*Update, error) {
	start := time.Now()
	state = state.Normalize()
	cycle := uuid.NewString()
	logger := log.With().Str("cycle_id", cycle).Str("tab", string(state.Tab)).Logger()

	var mu sync.Mutex
	results := make(map[OutputID]any, len(plan.Recompute))

	outputs := make([]Output, 0, len(plan.Recompute))
	for _, id := range plan.Recompute {
		out, ok := r.graph.Output(id)
		if !ok {
			return nil, fmt.Errorf("reactive: unknown output %s", id)
		}
		outputs = append(outputs, out)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, out := range outputs {
		g.Go(func() error {
			v, err := compute(gctx, out, state)
			if err != nil {
				return fmt.Errorf("compute %s: %w", out.ID, err)
			}
			mu.Lock()
			results[out.ID] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("reactive: update cycle failed")
		return nil, err
	}

	u := &Update{
		CycleID: cycle,
		State:   state,
		Plan:    plan,
		Results: results,
		Elapsed: time.Since(start),
	}
	logger.Debug().
		Int("recomputed", len(plan.Recompute)).
		Int("suppressed", len(plan.Suppressed)).
		Dur("elapsed", u.Elapsed).
		Msg("reactive: update cycle done")
	return u, nil
}
