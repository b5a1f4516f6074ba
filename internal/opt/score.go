package opt

import (
	"context"
	"math"
)

// Heuristic constants used by the scorer. Named so they can be tuned without
// touching the algorithm.
const (
	// AssumedSpeedKmph is the typical in-field travel speed used to turn
	// distance into travel hours.
	AssumedSpeedKmph = 15.0

	// Fallback signal values applied when a collaborator has no record.
	FallbackHourlyFuel    = 3.0
	FallbackHealthScore   = 70.0
	FallbackBehaviorScore = 50.0
	FallbackOperatorRisk  = 0.2
)

// Weights are the fractional weights of the composite score. They
// conventionally sum to 1.0 but are not required to.
type Weights struct {
	Distance float64 `json:"distance" yaml:"distance"`
	Fuel     float64 `json:"fuel" yaml:"fuel"`
	Wear     float64 `json:"wear" yaml:"wear"`
	Operator float64 `json:"operator" yaml:"operator"`
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{Distance: 0.50, Fuel: 0.25, Wear: 0.15, Operator: 0.10}
}

// Merge overlays caller overrides by key. Unknown keys are ignored.
func (w Weights) Merge(overrides map[string]float64) Weights {
	for k, v := range overrides {
		switch k {
		case "distance":
			w.Distance = v
		case "fuel":
			w.Fuel = v
		case "wear":
			w.Wear = v
		case "operator":
			w.Operator = v
		}
	}
	return w
}

// FuelSnapshot is an equipment fuel-efficiency reading in liters per hour.
type FuelSnapshot struct {
	AvgHourlyFuel float64 `json:"avg_hourly_fuel"`
}

// HealthSnapshot is an equipment health score in [0,100].
type HealthSnapshot struct {
	HealthScore float64 `json:"health_score"`
}

// BehaviorSnapshot is an operator behavior score in [0,100].
type BehaviorSnapshot struct {
	FinalBehaviorScore float64 `json:"final_behavior_score"`
}

// SignalProvider supplies read-only equipment and operator signals to the
// scorer. A failed lookup is never fatal: the scorer substitutes the
// documented fallback constant and reports the signal as degraded.
type SignalProvider interface {
	FuelSnapshot(ctx context.Context, equipmentID string) (FuelSnapshot, error)
	HealthSnapshot(ctx context.Context, equipmentID string) (HealthSnapshot, error)
	OperatorBehavior(ctx context.Context, operatorID string) (BehaviorSnapshot, error)
}

// RouteMetrics is the scored breakdown of a route. Lower Score is better.
// DegradedSignals lists collaborator lookups that fell back to defaults.
type RouteMetrics struct {
	Score           float64  `json:"score"`
	TotalKm         float64  `json:"total_km"`
	FuelLitersEst   float64  `json:"fuel_liters_est"`
	WearPenalty     float64  `json:"wear_penalty"`
	OperatorPenalty float64  `json:"operator_penalty"`
	DegradedSignals []string `json:"degraded_signals,omitempty"`
}

// ScoreRoute combines travel distance with fuel, wear and operator signals
// into one weighted score. Scoring is descriptive only: the search minimizes
// raw distance and never re-runs on the composite score.
//
// Operator risk is taken from the operator of the first task in the optimized
// route; the model assumes one operator drives the whole route. Per-leg risk
// aggregation would be the generalization if multi-operator tours ever become
// a real case.
func (o *Optimizer) ScoreRoute(ctx context.Context, route []int, tasks []Task, dist [][]float64, equipmentID string, w Weights) RouteMetrics {
	m := RouteMetrics{}
	totalKm := RouteCost(route, dist)
	hoursTravel := totalKm / o.SpeedKmph

	lph := FallbackHourlyFuel
	if fs, err := o.Signals.FuelSnapshot(ctx, equipmentID); err == nil {
		lph = fs.AvgHourlyFuel
	} else {
		m.DegradedSignals = append(m.DegradedSignals, "fuel")
	}
	fuelUsed := hoursTravel * lph

	health := FallbackHealthScore
	if hs, err := o.Signals.HealthSnapshot(ctx, equipmentID); err == nil {
		health = hs.HealthScore
	} else {
		m.DegradedSignals = append(m.DegradedSignals, "health")
	}
	wearScore := (100 - health) / 100
	wearPenalty := wearScore * totalKm

	// Operator of the first visited task prices the whole route. A task with
	// no operator attached is priced at the fixed default risk, which is
	// defined behavior rather than a degraded signal.
	operatorRisk := FallbackOperatorRisk
	if opID := tasks[route[0]].OperatorID; opID != "" {
		behavior := FallbackBehaviorScore
		if bs, err := o.Signals.OperatorBehavior(ctx, opID); err == nil {
			behavior = bs.FinalBehaviorScore
		} else {
			m.DegradedSignals = append(m.DegradedSignals, "operator")
		}
		operatorRisk = (100 - behavior) / 100
	}

	score := w.Distance*totalKm + w.Fuel*fuelUsed + w.Wear*wearPenalty + w.Operator*operatorRisk

	m.Score = roundTo(score, 3)
	m.TotalKm = roundTo(totalKm, 2)
	m.FuelLitersEst = roundTo(fuelUsed, 2)
	m.WearPenalty = roundTo(wearPenalty, 3)
	m.OperatorPenalty = roundTo(operatorRisk, 3)
	return m
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
