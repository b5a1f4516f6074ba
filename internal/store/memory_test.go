package store

import (
    "context"
    "errors"
    "testing"
    "time"

    "agrinav/internal/model"
)

func TestMemoryEquipmentCRUD(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()

    eq, err := m.CreateEquipment(ctx, model.Equipment{Name: "Combine 9500"})
    if err != nil { t.Fatalf("create: %v", err) }
    if eq.ID == "" { t.Fatal("no id assigned") }
    if eq.CreatedAt == "" { t.Fatal("no created_at") }

    got, err := m.GetEquipment(ctx, eq.ID)
    if err != nil { t.Fatalf("get: %v", err) }
    if got.Name != "Combine 9500" { t.Fatalf("name: got %s", got.Name) }

    if _, err := m.GetEquipment(ctx, "missing"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound", err)
    }

    items, next, err := m.ListEquipment(ctx, "", 10)
    if err != nil { t.Fatalf("list: %v", err) }
    if len(items) != 1 || next != "" { t.Fatalf("list: %d items, next=%q", len(items), next) }
}

func TestMemoryEquipmentPagination(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    for i := 0; i < 5; i++ {
        if _, err := m.CreateEquipment(ctx, model.Equipment{Name: "eq"}); err != nil { t.Fatalf("create: %v", err) }
    }
    page1, next, err := m.ListEquipment(ctx, "", 2)
    if err != nil { t.Fatalf("page1: %v", err) }
    if len(page1) != 2 || next == "" { t.Fatalf("page1: %d items, next=%q", len(page1), next) }
    page2, _, err := m.ListEquipment(ctx, next, 2)
    if err != nil { t.Fatalf("page2: %v", err) }
    if len(page2) != 2 { t.Fatalf("page2: %d items", len(page2)) }
    if page2[0].ID == page1[1].ID { t.Fatal("cursor did not advance") }
}

func TestMemoryHealthSnapshot(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    year := time.Now().UTC().Year() - 6
    eq, _ := m.CreateEquipment(ctx, model.Equipment{Name: "Tractor", Year: year, UsageHours: 1000, WearFactor: 2})

    snap, err := m.HealthSnapshot(ctx, eq.ID)
    if err != nil { t.Fatalf("health: %v", err) }
    // age 6 -> 18, usage 1000 -> 10, wear 2 -> 10
    if snap.HealthScore != 62 { t.Fatalf("score: got %f, want 62", snap.HealthScore) }

    prem, _ := m.CreateEquipment(ctx, model.Equipment{Name: "Tractor", Model: "AgriMax Premium", Year: year, UsageHours: 1000, WearFactor: 2})
    snap, err = m.HealthSnapshot(ctx, prem.ID)
    if err != nil { t.Fatalf("health: %v", err) }
    if snap.HealthScore != 67 { t.Fatalf("premium bonus: got %f, want 67", snap.HealthScore) }

    if _, err := m.HealthSnapshot(ctx, "missing"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound", err)
    }
}

func TestMemoryFuelSnapshot(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    eq, _ := m.CreateEquipment(ctx, model.Equipment{Name: "Tractor", UsageHours: 100})

    // no consumption yet
    if _, err := m.FuelSnapshot(ctx, eq.ID); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound before any consumption", err)
    }

    // a refill alone is not consumption
    if _, err := m.AppendFuelLog(ctx, model.FuelLog{EquipmentID: eq.ID, Liters: 120}); err != nil { t.Fatalf("append: %v", err) }
    if _, err := m.FuelSnapshot(ctx, eq.ID); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound with refills only", err)
    }

    if _, err := m.AppendFuelLog(ctx, model.FuelLog{EquipmentID: eq.ID, Liters: -50}); err != nil { t.Fatalf("append: %v", err) }
    snap, err := m.FuelSnapshot(ctx, eq.ID)
    if err != nil { t.Fatalf("fuel: %v", err) }
    if snap.AvgHourlyFuel != 0.5 { t.Fatalf("burn rate: got %f, want 0.5", snap.AvgHourlyFuel) }

    // events past the lookback window do not count
    old := time.Now().UTC().Add(-120 * 24 * time.Hour).Format(time.RFC3339)
    if _, err := m.AppendFuelLog(ctx, model.FuelLog{EquipmentID: eq.ID, Liters: -500, Timestamp: old}); err != nil { t.Fatalf("append: %v", err) }
    snap, err = m.FuelSnapshot(ctx, eq.ID)
    if err != nil { t.Fatalf("fuel: %v", err) }
    if snap.AvgHourlyFuel != 0.5 { t.Fatalf("stale event counted: got %f", snap.AvgHourlyFuel) }

    if _, err := m.AppendFuelLog(ctx, model.FuelLog{EquipmentID: "missing", Liters: -10}); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound for unknown equipment", err)
    }
}

func TestMemoryOperatorBehavior(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    op, err := m.CreateOperator(ctx, model.Operator{Name: "Sam"})
    if err != nil { t.Fatalf("create: %v", err) }

    // no usage data scores neutral
    snap, err := m.OperatorBehavior(ctx, op.ID)
    if err != nil { t.Fatalf("behavior: %v", err) }
    if snap.FinalBehaviorScore != 50 { t.Fatalf("neutral: got %f", snap.FinalBehaviorScore) }

    eq, _ := m.CreateEquipment(ctx, model.Equipment{Name: "Tractor"})
    if _, err := m.AppendUsageLog(ctx, model.UsageLog{OperatorID: op.ID, EquipmentID: eq.ID, Hours: 10}); err != nil {
        t.Fatalf("usage: %v", err)
    }
    if _, err := m.AppendFuelLog(ctx, model.FuelLog{EquipmentID: eq.ID, Liters: -20, Cost: 100, OperatorID: op.ID}); err != nil {
        t.Fatalf("fuel: %v", err)
    }
    snap, err = m.OperatorBehavior(ctx, op.ID)
    if err != nil { t.Fatalf("behavior: %v", err) }
    // light hours and low fuel cost both score 80
    if snap.FinalBehaviorScore != 80 { t.Fatalf("score: got %f, want 80", snap.FinalBehaviorScore) }

    if _, err := m.OperatorBehavior(ctx, "missing"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound", err)
    }
    if _, err := m.AppendUsageLog(ctx, model.UsageLog{OperatorID: "missing", Hours: 1}); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound for unknown operator", err)
    }
}

func TestMemoryPlans(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()

    plan := model.RoutePlan{ID: "p1", EquipmentID: "eq1", RouteIndices: []int{0, 1}, GeneratedAt: time.Now().UTC().Format(time.RFC3339)}
    if err := m.SavePlan(ctx, plan); err != nil { t.Fatalf("save: %v", err) }
    if err := m.SavePlan(ctx, model.RoutePlan{ID: "p2", EquipmentID: "eq2"}); err != nil { t.Fatalf("save: %v", err) }

    got, err := m.GetPlan(ctx, "p1")
    if err != nil { t.Fatalf("get: %v", err) }
    if got.EquipmentID != "eq1" { t.Fatalf("equipment: got %s", got.EquipmentID) }

    if _, err := m.GetPlan(ctx, "missing"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("got %v, want ErrNotFound", err)
    }

    items, _, err := m.ListPlans(ctx, "eq1", "", 10)
    if err != nil { t.Fatalf("list: %v", err) }
    if len(items) != 1 || items[0].ID != "p1" { t.Fatalf("filtered list: %+v", items) }

    all, _, err := m.ListPlans(ctx, "", "", 10)
    if err != nil { t.Fatalf("list all: %v", err) }
    if len(all) != 2 { t.Fatalf("all plans: got %d", len(all)) }
}

func TestBehaviorScoreThresholds(t *testing.T) {
    usage := []model.UsageLog{{Hours: 200}}
    fuel := []model.FuelLog{{Cost: 6000}}
    // fuel 50, stress 60 -> 55
    if got := behaviorScore(usage, fuel); got != 55 { t.Fatalf("got %f, want 55", got) }

    usage = []model.UsageLog{{Hours: 400}}
    fuel = []model.FuelLog{{Cost: 10000}}
    // fuel 30, stress 40 -> 35
    if got := behaviorScore(usage, fuel); got != 35 { t.Fatalf("got %f, want 35", got) }
}
