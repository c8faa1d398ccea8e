package dispatch

import (
	"context"
	"fmt"
	"sync"
)

// stubFinder is a call-counting PathFinder over a fixed symmetric cost
// table. Paths default to the two endpoints; explicit multi-node paths can
// be registered per pair.
type stubFinder struct {
	mu    sync.Mutex
	costs map[[2]int64]float64
	paths map[[2]int64][]int64
	calls int
}

func newStubFinder() *stubFinder {
	return &stubFinder{costs: map[[2]int64]float64{}, paths: map[[2]int64][]int64{}}
}

func (f *stubFinder) add(a, b int64, cost float64) {
	f.costs[key(a, b)] = cost
}

func (f *stubFinder) addPath(a, b int64, cost float64, path ...int64) {
	f.costs[key(a, b)] = cost
	f.paths[key(a, b)] = path
}

func key(a, b int64) [2]int64 {
	if b < a {
		a, b = b, a
	}
	return [2]int64{a, b}
}

func (f *stubFinder) ShortestPath(_ context.Context, from, to int64) (float64, []int64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	k := key(from, to)
	cost, ok := f.costs[k]
	if !ok {
		return 0, nil, fmt.Errorf("no path %d -> %d", from, to)
	}
	path, ok := f.paths[k]
	if !ok {
		path = []int64{k[0], k[1]}
	}
	if path[0] != from {
		rev := make([]int64, len(path))
		for i, n := range path {
			rev[len(path)-1-i] = n
		}
		path = rev
	}
	return cost, path, nil
}

func (f *stubFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fixture is the hand-checked scenario used across planner tests: depot 1
// and incidents A=2, B=3, C=4, D2=5 with known pairwise costs. The optimal
// fleet plan for two vehicles costs 13: one vehicle runs C, D2, B, A and the
// other stays at the depot.
func fixture() *stubFinder {
	f := newStubFinder()
	f.add(1, 2, 5) // depot-A
	f.add(1, 3, 7) // depot-B
	f.add(1, 4, 3) // depot-C
	f.add(1, 5, 9) // depot-D2
	f.add(2, 3, 2) // A-B
	f.add(2, 4, 6) // A-C
	f.add(2, 5, 4) // A-D2
	f.add(3, 4, 8) // B-C
	f.add(3, 5, 3) // B-D2
	f.add(4, 5, 5) // C-D2
	return f
}
