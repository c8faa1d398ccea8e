package dispatch

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Config tunes a Planner. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	// ReturnToDepot costs and routes a closing leg back to the depot for
	// every non-idle vehicle.
	ReturnToDepot bool
	// EmptyIsError makes Plan fail with ErrEmptyIncidentSet when no
	// incidents are submitted; when false an all-idle zero-cost plan is
	// returned instead.
	EmptyIsError bool
	// DedupeVehicles skips vehicle-relabeled twins during the search for
	// callers that treat vehicles as interchangeable. Off by default:
	// physical vehicles are distinguishable and the plan reports which one
	// drives which route.
	DedupeVehicles bool
	// Workers > 1 evaluates partitions on that many goroutines. The result
	// is identical to the sequential search; zero or one keeps the search
	// sequential.
	Workers int
}

func DefaultConfig() Config {
	return Config{EmptyIsError: true}
}

// Plan is the chosen assignment: one Tour per vehicle, in vehicle order, and
// the fleet-wide total cost. Evaluated counts the partitions examined.
type Plan struct {
	Depot     int64
	Incidents []int64
	Tours     []Tour
	TotalCost float64
	Evaluated uint64
}

// Planner runs the exact dispatch search over an Oracle. The Oracle may
// outlive the Planner if the caller wants pairwise-distance reuse across
// requests against a stable graph.
type Planner struct {
	oracle *Oracle
	cfg    Config
}

func NewPlanner(oracle *Oracle, cfg Config) *Planner {
	return &Planner{oracle: oracle, cfg: cfg}
}

// Oracle exposes the planner's distance oracle, mainly for cache metrics.
func (p *Planner) Oracle() *Oracle { return p.oracle }

// Plan computes the globally minimal-cost assignment of incidents to
// `vehicles` vehicles based at `depot`. Every partition of the incident set
// into labeled groups is evaluated against the optimal per-group tour; the
// strictly cheapest candidate wins and ties keep the first in enumeration
// order, so identical inputs always produce identical plans.
//
// Errors: ErrInvalidVehicleCount for vehicles <= 0, ErrEmptyIncidentSet per
// Config.EmptyIsError, and ErrUnreachableNodes if any required pair cannot
// be connected — there is no partial plan that drops an incident.
func (p *Planner) Plan(ctx context.Context, depot int64, incidents []int64, vehicles int) (*Plan, error) {
	parts, err := EnumeratePartitions(incidents, vehicles)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		if p.cfg.EmptyIsError {
			return nil, ErrEmptyIncidentSet
		}
		idle := make([]Tour, vehicles)
		for i := range idle {
			idle[i] = Tour{Path: []int64{depot}}
		}
		return &Plan{Depot: depot, Incidents: incidents, Tours: idle, Evaluated: 1}, nil
	}

	if p.cfg.Workers > 1 {
		return p.planParallel(ctx, depot, incidents, parts)
	}
	return p.planSequential(ctx, depot, incidents, parts)
}

// candidate is one evaluated partition; code is its enumeration index, the
// deterministic tie-break.
type candidate struct {
	code  uint64
	cost  float64
	tours []Tour
	ok    bool
}

func (c candidate) betterThan(o candidate) bool {
	if !o.ok {
		return true
	}
	if c.cost != o.cost {
		return c.cost < o.cost
	}
	return c.code < o.code
}

func (p *Planner) planSequential(ctx context.Context, depot int64, incidents []int64, parts *Partitions) (*Plan, error) {
	var best candidate
	evaluated := uint64(0)
	for code := uint64(0); code < parts.Total(); code++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.cfg.DedupeVehicles && !parts.Canonical(code) {
			continue
		}
		cand, err := p.evaluate(ctx, depot, parts, code)
		if err != nil {
			return nil, err
		}
		evaluated++
		if cand.betterThan(best) {
			best = cand
		}
	}
	return p.finish(depot, incidents, best, evaluated)
}

func (p *Planner) planParallel(ctx context.Context, depot int64, incidents []int64, parts *Partitions) (*Plan, error) {
	workers := p.cfg.Workers
	if workers > runtime.GOMAXPROCS(0)*4 {
		workers = runtime.GOMAXPROCS(0) * 4
	}

	var (
		next      atomic.Uint64
		evaluated atomic.Uint64
		mu        sync.Mutex
		best      candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var local candidate
			for {
				code := next.Add(1) - 1
				if code >= parts.Total() {
					break
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				if p.cfg.DedupeVehicles && !parts.Canonical(code) {
					continue
				}
				cand, err := p.evaluate(gctx, depot, parts, code)
				if err != nil {
					return err
				}
				evaluated.Add(1)
				if cand.betterThan(local) {
					local = cand
				}
			}
			if local.ok {
				mu.Lock()
				if local.betterThan(best) {
					best = local
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p.finish(depot, incidents, best, evaluated.Load())
}

// evaluate scores one partition: the optimal tour per group and their sum.
func (p *Planner) evaluate(ctx context.Context, depot int64, parts *Partitions, code uint64) (candidate, error) {
	groups := parts.At(code)
	tours := make([]Tour, len(groups))
	total := 0.0
	for i, group := range groups {
		tour, err := BestTour(ctx, p.oracle, depot, group, p.cfg.ReturnToDepot)
		if err != nil {
			return candidate{}, err
		}
		tours[i] = tour
		total += tour.Cost
	}
	return candidate{code: code, cost: total, tours: tours, ok: true}, nil
}

func (p *Planner) finish(depot int64, incidents []int64, best candidate, evaluated uint64) (*Plan, error) {
	if !best.ok {
		// Unreachable: n >= 1 means at least one candidate exists.
		return nil, ErrEmptyIncidentSet
	}
	return &Plan{
		Depot:     depot,
		Incidents: incidents,
		Tours:     best.tours,
		TotalCost: best.cost,
		Evaluated: evaluated,
	}, nil
}
