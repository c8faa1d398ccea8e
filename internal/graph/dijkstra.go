package graph

import (
	"container/heap"
	"context"
	"fmt"
)

// checkEvery bounds how often the search polls ctx; a power of two so the
// modulo folds to a mask.
const checkEvery = 1024

// ShortestPath runs Dijkstra from a to b and returns the path cost in meters
// together with the node sequence a..b inclusive. Both endpoints must exist;
// if b is not reachable from a the call fails with ErrNoPath.
//
// The search uses a min-heap with lazy decrease-key: improved distances push
// duplicate entries, and stale entries are skipped when popped. Heap order is
// (distance, node ID), so results are deterministic for a fixed graph.
func (g *Graph) ShortestPath(ctx context.Context, a, b int64) (float64, []int64, error) {
	if _, ok := g.nodes[a]; !ok {
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownNode, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownNode, b)
	}
	if a == b {
		return 0, []int64{a}, nil
	}

	dist := map[int64]float64{a: 0}
	prev := map[int64]int64{}
	visited := map[int64]bool{}

	pq := &pathHeap{{id: a, dist: 0}}
	heap.Init(pq)

	pops := 0
	for pq.Len() > 0 {
		item := heap.Pop(pq).(pathItem)
		u := item.id
		if visited[u] {
			continue
		}
		visited[u] = true

		pops++
		if pops%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}
		}

		if u == b {
			return dist[b], g.unwind(prev, a, b), nil
		}

		for _, e := range g.adj[u] {
			if visited[e.to] {
				continue
			}
			nd := dist[u] + e.weight
			if cur, ok := dist[e.to]; ok && nd >= cur {
				continue
			}
			dist[e.to] = nd
			prev[e.to] = u
			heap.Push(pq, pathItem{id: e.to, dist: nd})
		}
	}
	return 0, nil, fmt.Errorf("%w: %d -> %d", ErrNoPath, a, b)
}

// unwind reconstructs the node sequence a..b from the predecessor map.
func (g *Graph) unwind(prev map[int64]int64, a, b int64) []int64 {
	var rev []int64
	for cur := b; ; {
		rev = append(rev, cur)
		if cur == a {
			break
		}
		cur = prev[cur]
	}
	path := make([]int64, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}

type pathItem struct {
	id   int64
	dist float64
}

type pathHeap []pathItem

func (h pathHeap) Len() int { return len(h) }
func (h pathHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].id < h[j].id
}
func (h pathHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x any)   { *h = append(*h, x.(pathItem)) }
func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
