package store

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"

    "agrinav/internal/model"
    "agrinav/internal/opt"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu        sync.Mutex
    equipment map[string]model.Equipment
    eqOrder   []string
    operators map[string]model.Operator
    opOrder   []string
    fuelLogs  map[string][]model.FuelLog  // equipmentId -> entries
    usageLogs map[string][]model.UsageLog // operatorId -> entries
    opFuel    map[string][]model.FuelLog  // operatorId -> fuel entries
    plans     map[string]model.RoutePlan
    plansByEq map[string][]string // equipmentId -> plan ids, append order
}

func NewMemory() *Memory {
    return &Memory{
        equipment: map[string]model.Equipment{},
        operators: map[string]model.Operator{},
        fuelLogs:  map[string][]model.FuelLog{},
        usageLogs: map[string][]model.UsageLog{},
        opFuel:    map[string][]model.FuelLog{},
        plans:     map[string]model.RoutePlan{},
        plansByEq: map[string][]string{},
    }
}

func (m *Memory) CreateEquipment(ctx context.Context, in model.Equipment) (model.Equipment, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if in.ID == "" { in.ID = uuid.New().String() }
    in.CreatedAt = time.Now().UTC().Format(time.RFC3339)
    m.equipment[in.ID] = in
    m.eqOrder = append(m.eqOrder, in.ID)
    return in, nil
}

func (m *Memory) GetEquipment(ctx context.Context, id string) (model.Equipment, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    eq, ok := m.equipment[id]
    if !ok { return model.Equipment{}, ErrNotFound }
    return eq, nil
}

func (m *Memory) ListEquipment(ctx context.Context, cursor string, limit int) ([]model.Equipment, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    items := make([]model.Equipment, 0, len(m.eqOrder))
    for _, id := range m.eqOrder { items = append(items, m.equipment[id]) }
    return pageEquipment(items, cursor, limit)
}

func (m *Memory) CreateOperator(ctx context.Context, in model.Operator) (model.Operator, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if in.ID == "" { in.ID = uuid.New().String() }
    in.CreatedAt = time.Now().UTC().Format(time.RFC3339)
    m.operators[in.ID] = in
    m.opOrder = append(m.opOrder, in.ID)
    return in, nil
}

func (m *Memory) GetOperator(ctx context.Context, id string) (model.Operator, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    op, ok := m.operators[id]
    if !ok { return model.Operator{}, ErrNotFound }
    return op, nil
}

func (m *Memory) ListOperators(ctx context.Context, cursor string, limit int) ([]model.Operator, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    items := make([]model.Operator, 0, len(m.opOrder))
    for _, id := range m.opOrder { items = append(items, m.operators[id]) }
    start := 0
    if cursor != "" {
        for i := range items { if items[i].ID == cursor { start = i + 1; break } }
    }
    if limit <= 0 { limit = 100 }
    end := start + limit
    if end > len(items) { end = len(items) }
    out := append([]model.Operator(nil), items[start:end]...)
    next := ""
    if end < len(items) { next = items[end-1].ID }
    return out, next, nil
}

func (m *Memory) AppendFuelLog(ctx context.Context, entry model.FuelLog) (model.FuelLog, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.equipment[entry.EquipmentID]; !ok { return model.FuelLog{}, ErrNotFound }
    entry.ID = uuid.New().String()
    if entry.Timestamp == "" { entry.Timestamp = time.Now().UTC().Format(time.RFC3339) }
    m.fuelLogs[entry.EquipmentID] = append(m.fuelLogs[entry.EquipmentID], entry)
    if entry.OperatorID != "" {
        m.opFuel[entry.OperatorID] = append(m.opFuel[entry.OperatorID], entry)
    }
    return entry, nil
}

func (m *Memory) ListFuelLogs(ctx context.Context, equipmentID string, limit int) ([]model.FuelLog, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    logs := m.fuelLogs[equipmentID]
    if limit > 0 && len(logs) > limit { logs = logs[len(logs)-limit:] }
    return append([]model.FuelLog(nil), logs...), nil
}

func (m *Memory) AppendUsageLog(ctx context.Context, entry model.UsageLog) (model.UsageLog, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.operators[entry.OperatorID]; !ok { return model.UsageLog{}, ErrNotFound }
    entry.ID = uuid.New().String()
    if entry.LoggedAt == "" { entry.LoggedAt = time.Now().UTC().Format(time.RFC3339) }
    m.usageLogs[entry.OperatorID] = append(m.usageLogs[entry.OperatorID], entry)
    return entry, nil
}

func (m *Memory) SavePlan(ctx context.Context, plan model.RoutePlan) error {
    m.mu.Lock(); defer m.mu.Unlock()
    m.plans[plan.ID] = plan
    m.plansByEq[plan.EquipmentID] = append(m.plansByEq[plan.EquipmentID], plan.ID)
    return nil
}

func (m *Memory) GetPlan(ctx context.Context, id string) (model.RoutePlan, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    p, ok := m.plans[id]
    if !ok { return model.RoutePlan{}, ErrNotFound }
    return p, nil
}

func (m *Memory) ListPlans(ctx context.Context, equipmentID, cursor string, limit int) ([]model.RoutePlan, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    var ids []string
    if equipmentID != "" {
        ids = m.plansByEq[equipmentID]
    } else {
        for _, lst := range m.plansByEq { ids = append(ids, lst...) }
    }
    start := 0
    if cursor != "" {
        for i, id := range ids { if id == cursor { start = i + 1; break } }
    }
    if limit <= 0 { limit = 100 }
    out := []model.RoutePlan{}
    next := ""
    for i := start; i < len(ids) && len(out) < limit; i++ {
        out = append(out, m.plans[ids[i]])
        next = ids[i]
    }
    if start+len(out) >= len(ids) { next = "" }
    return out, next, nil
}

// FuelSnapshot derives the average hourly burn rate from consumption events
// inside the lookback window. No consumption data means no snapshot.
func (m *Memory) FuelSnapshot(ctx context.Context, equipmentID string) (opt.FuelSnapshot, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    eq, ok := m.equipment[equipmentID]
    if !ok { return opt.FuelSnapshot{}, ErrNotFound }
    consumed := consumedLiters(m.fuelLogs[equipmentID], time.Now().UTC())
    if consumed <= 0 { return opt.FuelSnapshot{}, ErrNotFound }
    return opt.FuelSnapshot{AvgHourlyFuel: avgHourlyFuel(consumed, eq.UsageHours)}, nil
}

func (m *Memory) HealthSnapshot(ctx context.Context, equipmentID string) (opt.HealthSnapshot, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    eq, ok := m.equipment[equipmentID]
    if !ok { return opt.HealthSnapshot{}, ErrNotFound }
    return opt.HealthSnapshot{HealthScore: healthScore(eq, time.Now().UTC())}, nil
}

func (m *Memory) OperatorBehavior(ctx context.Context, operatorID string) (opt.BehaviorSnapshot, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.operators[operatorID]; !ok { return opt.BehaviorSnapshot{}, ErrNotFound }
    score := behaviorScore(m.usageLogs[operatorID], m.opFuel[operatorID])
    return opt.BehaviorSnapshot{FinalBehaviorScore: score}, nil
}

// pageEquipment applies cursor pagination over an ordered slice.
func pageEquipment(items []model.Equipment, cursor string, limit int) ([]model.Equipment, string, error) {
    start := 0
    if cursor != "" {
        for i := range items { if items[i].ID == cursor { start = i + 1; break } }
    }
    if limit <= 0 { limit = 100 }
    end := start + limit
    if end > len(items) { end = len(items) }
    out := append([]model.Equipment(nil), items[start:end]...)
    next := ""
    if end < len(items) { next = items[end-1].ID }
    return out, next, nil
}
