package opt

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestOptimizeRejectsEmpty(t *testing.T) {
	o := NewOptimizer(stubSignals{err: errors.New("down")})
	if _, err := o.Optimize(context.Background(), "eq1", nil, nil); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("got %v, want ErrNoTasks", err)
	}
}

func TestOptimizeRejectsBadCoordinates(t *testing.T) {
	o := NewOptimizer(stubSignals{err: errors.New("down")})
	tasks := []Task{
		{ID: "ok", Lat: 41, Lon: -95},
		{ID: "bad", Lat: math.NaN(), Lon: -95},
	}
	if _, err := o.Optimize(context.Background(), "eq1", tasks, nil); !errors.Is(err, ErrBadCoordinate) {
		t.Fatalf("got %v, want ErrBadCoordinate", err)
	}
}

func TestOptimizePlan(t *testing.T) {
	o := NewOptimizer(stubSignals{err: errors.New("down")})
	tasks := []Task{
		{ID: "t1", Lat: 41.00, Lon: -95.00},
		{ID: "t2", Lat: 41.30, Lon: -95.30},
		{ID: "t3", Lat: 41.05, Lon: -95.05},
		{ID: "t4", Lat: 41.20, Lon: -95.25},
	}
	plan, err := o.Optimize(context.Background(), "eq1", tasks, map[string]float64{"distance": 0.6})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if plan.EquipmentID != "eq1" {
		t.Fatalf("equipment: got %s", plan.EquipmentID)
	}
	if !isPermutation(plan.RouteIndices, len(tasks)) {
		t.Fatalf("indices not a permutation: %v", plan.RouteIndices)
	}
	if plan.RouteIndices[0] != 0 {
		t.Fatalf("route should start at the first task: %v", plan.RouteIndices)
	}
	for i, idx := range plan.RouteIndices {
		if plan.Tasks[i].ID != tasks[idx].ID {
			t.Fatalf("tasks not reordered by route: %v", plan.Tasks)
		}
	}
	if plan.WeightsUsed.Distance != 0.6 {
		t.Fatalf("override not applied: %+v", plan.WeightsUsed)
	}
	if plan.WeightsUsed.Fuel != 0.25 {
		t.Fatalf("default weight lost: %+v", plan.WeightsUsed)
	}
	if plan.Metrics.TotalKm <= 0 {
		t.Fatalf("total km: got %f", plan.Metrics.TotalKm)
	}
	if plan.GeneratedAt.IsZero() {
		t.Fatal("generated_at not set")
	}
}

func TestOptimizeSingleTask(t *testing.T) {
	o := NewOptimizer(stubSignals{err: errors.New("down")})
	plan, err := o.Optimize(context.Background(), "eq1", []Task{{ID: "only", Lat: 41, Lon: -95}}, nil)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if len(plan.RouteIndices) != 1 || plan.RouteIndices[0] != 0 {
		t.Fatalf("got %v", plan.RouteIndices)
	}
	if plan.Metrics.TotalKm != 0 {
		t.Fatalf("single task km: got %f", plan.Metrics.TotalKm)
	}
}
