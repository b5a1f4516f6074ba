package opt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNoTasks is returned when an optimization is requested with an empty
	// task list.
	ErrNoTasks = errors.New("no tasks")
	// ErrBadCoordinate is returned when a task carries a non-finite latitude
	// or longitude. Rejecting beats skipping, which would silently drop the
	// task from the plan.
	ErrBadCoordinate = errors.New("latitude and longitude must be finite")
)

// Optimizer orchestrates the route pipeline for a single equipment unit:
// distance matrix, greedy nearest-neighbor construction, 2-opt refinement and
// composite scoring. It is a pure, synchronous computation over caller data
// and is safe to invoke concurrently for independent requests. 2-opt is a
// local-search heuristic; the result is a local optimum, not a guaranteed
// global one.
type Optimizer struct {
	Signals   SignalProvider
	Defaults  Weights
	SpeedKmph float64
}

// NewOptimizer returns an Optimizer with default weights and travel speed.
func NewOptimizer(signals SignalProvider) *Optimizer {
	return &Optimizer{Signals: signals, Defaults: DefaultWeights(), SpeedKmph: AssumedSpeedKmph}
}

// Plan is the result of one optimization call.
type Plan struct {
	EquipmentID  string
	RouteIndices []int
	Tasks        []Task // caller tasks reordered by RouteIndices
	Metrics      RouteMetrics
	WeightsUsed  Weights
	GeneratedAt  time.Time
}

// Optimize validates input, builds the distance matrix, constructs and
// refines the tour, and scores the result. Once validation passes the
// algorithmic stages are pure numeric code and cannot fail; only signal
// lookups can degrade, and those fall back rather than error.
func (o *Optimizer) Optimize(ctx context.Context, equipmentID string, tasks []Task, overrides map[string]float64) (Plan, error) {
	if len(tasks) == 0 {
		return Plan{}, ErrNoTasks
	}
	for i, t := range tasks {
		if !finite(t.Lat) || !finite(t.Lon) {
			return Plan{}, fmt.Errorf("task %d (%s): %w", i, t.ID, ErrBadCoordinate)
		}
	}
	w := o.Defaults.Merge(overrides)

	dist := DistanceMatrix(tasks)
	initial := NearestNeighborTour(dist, 0)
	refined := TwoOptImprove(initial, dist)
	metrics := o.ScoreRoute(ctx, refined, tasks, dist, equipmentID, w)

	ordered := make([]Task, len(refined))
	for i, idx := range refined {
		ordered[i] = tasks[idx]
	}
	return Plan{
		EquipmentID:  equipmentID,
		RouteIndices: refined,
		Tasks:        ordered,
		Metrics:      metrics,
		WeightsUsed:  w,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
