package dispatch

import "context"

// Tour is one vehicle's assignment: its stops in optimal visiting order, the
// concrete node-level path starting at the depot, and the summed path cost.
type Tour struct {
	Stops []int64
	Path  []int64
	Cost  float64
}

// BestTour finds the visiting order of `group` minimizing the total cost of
// the legs depot -> g1 -> ... -> gk, by evaluating every permutation. The
// first minimal ordering in lexicographic submission order wins, so results
// are deterministic. An empty group yields a zero-cost tour parked at the
// depot. When returnToDepot is set the closing leg back to the depot is
// costed and appended to the path.
//
// Exhaustive search is k!; keeping k small is the caller's responsibility.
func BestTour(ctx context.Context, oracle *Oracle, depot int64, group []int64, returnToDepot bool) (Tour, error) {
	if len(group) == 0 {
		return Tour{Path: []int64{depot}}, nil
	}

	perm := make([]int, len(group))
	for i := range perm {
		perm[i] = i
	}

	var best []int
	bestCost := 0.0
	found := false
	for {
		cost, err := orderCost(ctx, oracle, depot, group, perm, returnToDepot)
		if err != nil {
			return Tour{}, err
		}
		if !found || cost < bestCost {
			best = append(best[:0], perm...)
			bestCost = cost
			found = true
		}
		if !nextPermutation(perm) {
			break
		}
	}

	stops := make([]int64, len(best))
	for i, idx := range best {
		stops[i] = group[idx]
	}
	path, err := stitchPath(ctx, oracle, depot, stops, returnToDepot)
	if err != nil {
		return Tour{}, err
	}
	return Tour{Stops: stops, Path: path, Cost: bestCost}, nil
}

// orderCost sums the oracle costs of consecutive legs for one ordering.
func orderCost(ctx context.Context, oracle *Oracle, depot int64, group []int64, perm []int, roundTrip bool) (float64, error) {
	total := 0.0
	cur := depot
	for _, idx := range perm {
		cost, _, err := oracle.CostAndPath(ctx, cur, group[idx])
		if err != nil {
			return 0, err
		}
		total += cost
		cur = group[idx]
	}
	if roundTrip {
		cost, _, err := oracle.CostAndPath(ctx, cur, depot)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}

// stitchPath concatenates the node paths of each leg, dropping the shared
// endpoint at every join so nodes are not duplicated.
func stitchPath(ctx context.Context, oracle *Oracle, depot int64, stops []int64, roundTrip bool) ([]int64, error) {
	full := []int64{depot}
	cur := depot
	legs := stops
	if roundTrip {
		legs = append(append([]int64{}, stops...), depot)
	}
	for _, next := range legs {
		_, leg, err := oracle.CostAndPath(ctx, cur, next)
		if err != nil {
			return nil, err
		}
		if len(leg) > 1 {
			full = append(full, leg[1:]...)
		}
		cur = next
	}
	return full, nil
}

// nextPermutation advances p to its lexicographic successor in place,
// returning false after the last permutation.
func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}
