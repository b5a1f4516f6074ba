package store

import (
    "math"
    "strings"
    "time"

    "agrinav/internal/model"
)

// Signal snapshot heuristics shared by the memory and Postgres stores.

// fuelLookback bounds how far back fuel events count toward the burn rate.
const fuelLookback = 90 * 24 * time.Hour

// healthScore derives an equipment health score in [0,100] from age, logged
// usage and wear factor. Unknown year assumes a mid-age machine; "premium"
// models get a small reliability bonus.
func healthScore(eq model.Equipment, now time.Time) float64 {
    age := 5.0
    if eq.Year > 0 {
        age = math.Max(0, float64(now.Year()-eq.Year))
    }
    agePenalty := math.Min(40, age*3)

    usageHours := eq.UsageHours
    if usageHours <= 0 { usageHours = 200 }
    usagePenalty := math.Min(30, usageHours/100)

    wearFactor := eq.WearFactor
    if wearFactor <= 0 { wearFactor = 1 }
    wearPenalty := math.Min(20, wearFactor*5)

    bonus := 0.0
    if strings.Contains(strings.ToLower(eq.Model), "premium") { bonus = 5 }

    score := 100 - (agePenalty + usagePenalty + wearPenalty) + bonus
    return math.Max(0, math.Min(100, score))
}

// consumedLiters sums consumption (negative liters) from logs inside the
// lookback window. Entries with unparseable timestamps are skipped.
func consumedLiters(logs []model.FuelLog, now time.Time) float64 {
    cutoff := now.Add(-fuelLookback)
    total := 0.0
    for _, e := range logs {
        if e.Liters >= 0 { continue }
        ts, err := time.Parse(time.RFC3339, e.Timestamp)
        if err != nil || ts.Before(cutoff) { continue }
        total += -e.Liters
    }
    return total
}

// avgHourlyFuel converts consumed liters into a burn rate over the logged
// usage hours (at least one hour, to keep the rate bounded).
func avgHourlyFuel(consumed, usageHours float64) float64 {
    return consumed / math.Max(1, usageHours)
}

// behaviorScore blends a fuel-cost component with a machine-stress component
// from logged hours. No usage data scores the neutral 50.
func behaviorScore(usage []model.UsageLog, fuel []model.FuelLog) float64 {
    if len(usage) == 0 { return 50 }

    totalCost := 0.0
    for _, e := range fuel { totalCost += e.Cost }
    fuelScore := 80.0
    if totalCost > 5000 { fuelScore = 50 }
    if totalCost > 9000 { fuelScore = 30 }

    totalHours := 0.0
    for _, u := range usage { totalHours += u.Hours }
    stressScore := 80.0
    if totalHours > 150 { stressScore = 60 }
    if totalHours > 300 { stressScore = 40 }

    score := (fuelScore + stressScore) / 2
    return math.Max(0, math.Min(100, score))
}
