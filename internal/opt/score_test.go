package opt

import (
	"context"
	"errors"
	"math"
	"testing"
)

type stubSignals struct {
	fuel     FuelSnapshot
	health   HealthSnapshot
	behavior BehaviorSnapshot
	err      error
}

func (s stubSignals) FuelSnapshot(ctx context.Context, equipmentID string) (FuelSnapshot, error) {
	return s.fuel, s.err
}

func (s stubSignals) HealthSnapshot(ctx context.Context, equipmentID string) (HealthSnapshot, error) {
	return s.health, s.err
}

func (s stubSignals) OperatorBehavior(ctx context.Context, operatorID string) (BehaviorSnapshot, error) {
	return s.behavior, s.err
}

func tenKmApart() ([]Task, [][]float64) {
	tasks := []Task{{ID: "a"}, {ID: "b"}}
	dist := [][]float64{{0, 10}, {10, 0}}
	return tasks, dist
}

func TestScoreRouteFallbacks(t *testing.T) {
	o := NewOptimizer(stubSignals{err: errors.New("down")})
	tasks, dist := tenKmApart()
	m := o.ScoreRoute(context.Background(), []int{0, 1}, tasks, dist, "eq1", DefaultWeights())

	// 10 km at 15 km/h and 3 L/h burns 2 liters
	if m.TotalKm != 10 {
		t.Fatalf("total km: got %f", m.TotalKm)
	}
	if m.FuelLitersEst != 2 {
		t.Fatalf("fuel: got %f", m.FuelLitersEst)
	}
	// fallback health 70 -> wear (100-70)/100 * 10 = 3
	if m.WearPenalty != 3 {
		t.Fatalf("wear: got %f", m.WearPenalty)
	}
	// no operator on first task -> fixed default risk
	if m.OperatorPenalty != 0.2 {
		t.Fatalf("operator: got %f", m.OperatorPenalty)
	}
	want := 0.50*10 + 0.25*2 + 0.15*3 + 0.10*0.2
	if math.Abs(m.Score-want) > 1e-9 {
		t.Fatalf("score: got %f, want %f", m.Score, want)
	}
	if len(m.DegradedSignals) != 2 {
		t.Fatalf("degraded: got %v, want fuel and health only", m.DegradedSignals)
	}
}

func TestScoreRouteLiveSignals(t *testing.T) {
	o := NewOptimizer(stubSignals{
		fuel:     FuelSnapshot{AvgHourlyFuel: 6},
		health:   HealthSnapshot{HealthScore: 90},
		behavior: BehaviorSnapshot{FinalBehaviorScore: 80},
	})
	tasks, dist := tenKmApart()
	tasks[0].OperatorID = "op1"
	m := o.ScoreRoute(context.Background(), []int{0, 1}, tasks, dist, "eq1", DefaultWeights())

	if m.FuelLitersEst != 4 {
		t.Fatalf("fuel: got %f", m.FuelLitersEst)
	}
	if m.WearPenalty != 1 {
		t.Fatalf("wear: got %f", m.WearPenalty)
	}
	if m.OperatorPenalty != 0.2 {
		t.Fatalf("operator: got %f", m.OperatorPenalty)
	}
	if len(m.DegradedSignals) != 0 {
		t.Fatalf("degraded: got %v, want none", m.DegradedSignals)
	}
	// operator risk comes from the first task of the optimized route
	tasks[0].OperatorID = ""
	tasks[1].OperatorID = "op1"
	m = o.ScoreRoute(context.Background(), []int{1, 0}, tasks, dist, "eq1", DefaultWeights())
	if m.OperatorPenalty != 0.2 {
		t.Fatalf("first-task operator should price the route: got %f", m.OperatorPenalty)
	}
}

func TestScoreRouteWeightOverride(t *testing.T) {
	o := NewOptimizer(stubSignals{err: errors.New("down")})
	tasks, dist := tenKmApart()
	w := DefaultWeights().Merge(map[string]float64{"distance": 1.0, "fuel": 0, "wear": 0, "operator": 0})
	m := o.ScoreRoute(context.Background(), []int{0, 1}, tasks, dist, "eq1", w)
	if m.Score != 10 {
		t.Fatalf("distance-only score: got %f", m.Score)
	}
}

func TestWeightsMerge(t *testing.T) {
	w := DefaultWeights().Merge(map[string]float64{"fuel": 0.4, "bogus": 9})
	if w.Fuel != 0.4 {
		t.Fatalf("fuel: got %f", w.Fuel)
	}
	if w.Distance != 0.50 || w.Wear != 0.15 || w.Operator != 0.10 {
		t.Fatalf("untouched weights changed: %+v", w)
	}
}
