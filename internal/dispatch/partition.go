package dispatch

import (
	"fmt"
	"math"
)

// Partitions lazily enumerates every assignment of n incidents to m labeled
// vehicle groups: m^n candidates addressed by a base-m counter, where
// incident i takes group (code / m^i) % m. The order is fixed, which gives
// the planner a reproducible tie-break; code 0 puts every incident on
// vehicle 0. For m=2 this degenerates to the classic subset bitmask.
//
// Vehicle-relabeled twins are all emitted: vehicles are physical units with
// distinct identities, so "everything on vehicle 1" and "everything on
// vehicle 2" are different plans with equal cost. Callers that treat
// vehicles as interchangeable can skip non-canonical codes via Canonical.
type Partitions struct {
	incidents []int64
	m         int
	code      uint64
	total     uint64
}

// EnumeratePartitions validates the vehicle count and prepares the counter.
// Fleets whose m^n space does not fit in 64 bits are rejected; the counter
// must never wrap, or the enumeration would silently collapse.
func EnumeratePartitions(incidents []int64, m int) (*Partitions, error) {
	if m <= 0 {
		return nil, ErrInvalidVehicleCount
	}
	total := uint64(1)
	for range incidents {
		if total > math.MaxUint64/uint64(m) {
			return nil, fmt.Errorf("%w: %d^%d partitions overflow the counter", ErrInvalidVehicleCount, m, len(incidents))
		}
		total *= uint64(m)
	}
	return &Partitions{incidents: incidents, m: m, total: total}, nil
}

// Total is the number of candidates, m^n.
func (p *Partitions) Total() uint64 { return p.total }

// Next yields the next partition in enumeration order, or ok=false when the
// space is exhausted. Group slices preserve incident submission order.
func (p *Partitions) Next() ([][]int64, bool) {
	if p.code >= p.total {
		return nil, false
	}
	groups := p.At(p.code)
	p.code++
	return groups, true
}

// At decodes candidate `code` without advancing the iterator. It is the
// random-access form used when partitions are striped across workers.
func (p *Partitions) At(code uint64) [][]int64 {
	groups := make([][]int64, p.m)
	c := code
	for _, inc := range p.incidents {
		g := int(c % uint64(p.m))
		groups[g] = append(groups[g], inc)
		c /= uint64(p.m)
	}
	return groups
}

// Canonical reports whether `code` is the lowest-numbered representative of
// its relabeling class: reading incident digits in order, each group label
// first appears in increasing sequence (a restricted-growth string). Used to
// deduplicate when the caller considers vehicles interchangeable.
func (p *Partitions) Canonical(code uint64) bool {
	next := 0
	c := code
	for range p.incidents {
		g := int(c % uint64(p.m))
		if g > next {
			return false
		}
		if g == next {
			next++
		}
		c /= uint64(p.m)
	}
	return true
}
