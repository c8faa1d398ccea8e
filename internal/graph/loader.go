package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Snapshot is the on-disk JSON form of a road network, typically exported
// from an OSM extract by an external tool.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Edges []SnapshotEdge `json:"edges"`
}

type SnapshotNode struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type SnapshotEdge struct {
	From    int64   `json:"from"`
	To      int64   `json:"to"`
	LengthM float64 `json:"lengthM"`
}

// Load builds a Graph from a JSON snapshot.
func Load(r io.Reader) (*Graph, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("graph: decode snapshot: %w", err)
	}
	g := New()
	for _, n := range snap.Nodes {
		g.AddNode(n.ID, n.Lat, n.Lng)
	}
	for _, e := range snap.Edges {
		if err := g.AddEdge(e.From, e.To, e.LengthM); err != nil {
			return nil, fmt.Errorf("graph: edge %d-%d: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// LoadFile reads a snapshot file from disk.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graph: open snapshot %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}
