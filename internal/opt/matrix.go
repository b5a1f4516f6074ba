package opt

// Task is a unit of field work to visit. Tasks are supplied per call and are
// never persisted by this package.
type Task struct {
	ID             string
	Lat            float64
	Lon            float64
	EstimatedHours float64
	OperatorID     string
}

// DistanceMatrix computes the full pairwise haversine matrix in kilometers.
// The diagonal is set to exactly 0.0 by definition rather than computed, so
// it carries no floating-point near-zero noise.
func DistanceMatrix(tasks []Task) [][]float64 {
	n := len(tasks)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dist[i][j] = HaversineKm(tasks[i].Lat, tasks[i].Lon, tasks[j].Lat, tasks[j].Lon)
		}
	}
	return dist
}
