// Package dispatch implements the fleet dispatch optimizer: it assigns
// incident nodes to vehicles based at a shared depot and orders each
// vehicle's visits so the fleet's total travel cost is minimal. The search is
// exact; incident counts are expected to stay small (factorial per group,
// M^n across partitions), which is the caller's tractability lever.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// PathFinder resolves a shortest path between two road-network nodes. It
// must be deterministic for fixed graph state; edge weights are assumed
// non-negative.
type PathFinder interface {
	ShortestPath(ctx context.Context, from, to int64) (cost float64, path []int64, err error)
}

type pairKey struct {
	lo, hi int64
}

type pairValue struct {
	cost float64
	path []int64 // lo -> hi
}

// Oracle answers cost-and-path queries against a PathFinder, memoizing
// results by unordered node pair. The network is undirected, so one cached
// entry serves both directions. The cache lives as long as the Oracle; scope
// an Oracle to one dispatch computation, or keep it across requests while
// the underlying graph is stable.
type Oracle struct {
	finder PathFinder

	mu    sync.RWMutex
	cache map[pairKey]pairValue
	sf    singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func NewOracle(finder PathFinder) *Oracle {
	return &Oracle{finder: finder, cache: map[pairKey]pairValue{}}
}

// CostAndPath returns the shortest-path cost between a and b and the node
// sequence from a to b. Identical nodes cost zero with a single-element
// path. Unresolvable pairs fail with ErrUnreachableNodes; concurrent callers
// asking for the same pair share a single PathFinder invocation.
func (o *Oracle) CostAndPath(ctx context.Context, a, b int64) (float64, []int64, error) {
	if a == b {
		return 0, []int64{a}, nil
	}
	k := pairKey{lo: a, hi: b}
	if b < a {
		k = pairKey{lo: b, hi: a}
	}

	o.mu.RLock()
	v, ok := o.cache[k]
	o.mu.RUnlock()
	if ok {
		o.hits.Add(1)
		return v.cost, orient(v, a), nil
	}

	res, err, _ := o.sf.Do(fmt.Sprintf("%d:%d", k.lo, k.hi), func() (any, error) {
		// Re-check under the flight: a caller that raced past the read
		// lock must not resolve the pair a second time.
		o.mu.RLock()
		v, ok := o.cache[k]
		o.mu.RUnlock()
		if ok {
			return v, nil
		}
		cost, path, err := o.finder.ShortestPath(ctx, k.lo, k.hi)
		if err != nil {
			return nil, fmt.Errorf("%w: %d -> %d: %v", ErrUnreachableNodes, a, b, err)
		}
		val := pairValue{cost: cost, path: path}
		o.mu.Lock()
		o.cache[k] = val
		o.mu.Unlock()
		return val, nil
	})
	if err != nil {
		return 0, nil, err
	}
	o.misses.Add(1)
	return res.(pairValue).cost, orient(res.(pairValue), a), nil
}

// orient returns the cached path running from `from`, reversing a copy when
// the query direction is opposite to the stored lo->hi orientation.
func orient(v pairValue, from int64) []int64 {
	if len(v.path) == 0 || v.path[0] == from {
		return v.path
	}
	rev := make([]int64, len(v.path))
	for i, n := range v.path {
		rev[len(v.path)-1-i] = n
	}
	return rev
}

// CacheStats reports cache behavior since the Oracle was created.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

func (o *Oracle) Stats() CacheStats {
	o.mu.RLock()
	size := len(o.cache)
	o.mu.RUnlock()
	return CacheStats{Hits: o.hits.Load(), Misses: o.misses.Load(), Size: size}
}
