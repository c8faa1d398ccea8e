// Package graph holds the road network used for dispatch routing: an
// undirected weighted graph keyed by OSM-style int64 node IDs, with node
// coordinates for nearest-node lookup and position playback.
package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrUnknownNode    = errors.New("graph: unknown node")
	ErrNegativeWeight = errors.New("graph: negative edge weight")
	ErrNoPath         = errors.New("graph: no path")
	ErrEmptyGraph     = errors.New("graph: no nodes")
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

type edge struct {
	to     int64
	weight float64
}

// Graph is an undirected weighted road network. It is safe for concurrent
// reads once built; mutation and traversal must not overlap.
type Graph struct {
	nodes map[int64]Point
	adj   map[int64][]edge
	edges int
}

func New() *Graph {
	return &Graph{nodes: map[int64]Point{}, adj: map[int64][]edge{}}
}

// AddNode registers a node with its coordinate. Re-adding an ID overwrites
// the coordinate and keeps existing edges.
func (g *Graph) AddNode(id int64, lat, lng float64) {
	g.nodes[id] = Point{Lat: lat, Lng: lng}
}

// AddEdge connects a and b in both directions with the given weight (meters).
func (g *Graph) AddEdge(a, b int64, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("%w: %d-%d weight=%v", ErrNegativeWeight, a, b, weight)
	}
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, b)
	}
	g.insert(a, b, weight)
	g.insert(b, a, weight)
	g.edges++
	return nil
}

// insert keeps adjacency sorted by neighbor ID so traversal order is
// deterministic regardless of build order. Parallel edges keep the minimum
// weight, matching how simplified OSM multigraphs collapse.
func (g *Graph) insert(from, to int64, weight float64) {
	list := g.adj[from]
	i := sort.Search(len(list), func(i int) bool { return list[i].to >= to })
	if i < len(list) && list[i].to == to {
		if weight < list[i].weight {
			list[i].weight = weight
		}
		return
	}
	list = append(list, edge{})
	copy(list[i+1:], list[i:])
	list[i] = edge{to: to, weight: weight}
	g.adj[from] = list
}

func (g *Graph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the coordinate of id.
func (g *Graph) Node(id int64) (Point, bool) {
	p, ok := g.nodes[id]
	return p, ok
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return g.edges }

// NearestNode returns the node closest to the given coordinate by haversine
// distance. Ties resolve to the lowest node ID.
func (g *Graph) NearestNode(lat, lng float64) (int64, error) {
	if len(g.nodes) == 0 {
		return 0, ErrEmptyGraph
	}
	best := int64(0)
	bestDist := math.Inf(1)
	found := false
	for id, p := range g.nodes {
		d := Haversine(lat, lng, p.Lat, p.Lng)
		if !found || d < bestDist || (d == bestDist && id < best) {
			best, bestDist, found = id, d, true
		}
	}
	return best, nil
}

// Haversine returns the great-circle distance in meters between two
// coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusM = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
