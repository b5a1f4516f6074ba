package opt

// NearestNeighborTour builds an initial visiting order greedily: starting at
// start, always travel to the closest unvisited node next. Ties break on the
// lowest index. The result is a permutation of [0..N-1].
func NearestNeighborTour(dist [][]float64, start int) []int {
	n := len(dist)
	if n == 0 {
		return nil
	}
	if start < 0 || start >= n {
		start = 0
	}
	visited := make([]bool, n)
	visited[start] = true
	order := make([]int, 0, n)
	order = append(order, start)
	for len(order) < n {
		last := order[len(order)-1]
		next := -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if next == -1 || dist[last][j] < dist[last][next] {
				next = j
			}
		}
		visited[next] = true
		order = append(order, next)
	}
	return order
}

// RouteCost sums leg distances over consecutive pairs. The route is a path,
// not a closed cycle: there is no edge from the last node back to the first.
func RouteCost(order []int, dist [][]float64) float64 {
	total := 0.0
	for i := 0; i < len(order)-1; i++ {
		total += dist[order[i]][order[i+1]]
	}
	return total
}

// TwoOptImprove refines a tour by 2-opt segment reversal until a full pass
// finds no strictly improving move, leaving the tour at a local optimum.
// Route cost is monotonically non-increasing across passes. The input is not
// mutated; tours of three nodes or fewer have no swap window and come back
// unchanged.
func TwoOptImprove(order []int, dist [][]float64) []int {
	best := append([]int(nil), order...)
	bestCost := RouteCost(best, dist)
	n := len(best)
	improved := true
	for improved {
		improved = false
		for i := 1; i < n-2; i++ {
			for k := i + 1; k <= n-1; k++ {
				cand := reverseSegment(best, i, k)
				c := RouteCost(cand, dist)
				if c < bestCost {
					best = cand
					bestCost = c
					improved = true
				}
			}
		}
	}
	return best
}

// reverseSegment copies ord and reverses the half-open segment [i, k).
func reverseSegment(ord []int, i, k int) []int {
	out := append([]int(nil), ord...)
	for a, b := i, k-1; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}
