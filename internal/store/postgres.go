package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "agrinav/internal/model"
    "agrinav/internal/opt"
)

// Postgres backs the store with PostgreSQL via the pgx stdlib driver.
type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

var schema = []string{
    `CREATE TABLE IF NOT EXISTS equipment (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        model TEXT,
        year INT,
        usage_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
        wear_factor DOUBLE PRECISION NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
    `CREATE TABLE IF NOT EXISTS operators (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        phone TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
    `CREATE TABLE IF NOT EXISTS fuel_logs (
        id TEXT PRIMARY KEY,
        equipment_id TEXT NOT NULL REFERENCES equipment(id),
        liters DOUBLE PRECISION NOT NULL,
        cost DOUBLE PRECISION NOT NULL DEFAULT 0,
        operator_id TEXT,
        ts TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
    `CREATE TABLE IF NOT EXISTS usage_logs (
        id TEXT PRIMARY KEY,
        operator_id TEXT NOT NULL REFERENCES operators(id),
        equipment_id TEXT NOT NULL,
        hours DOUBLE PRECISION NOT NULL,
        task_type TEXT,
        logged_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
    `CREATE TABLE IF NOT EXISTS route_plans (
        id TEXT PRIMARY KEY,
        equipment_id TEXT NOT NULL,
        payload JSONB NOT NULL,
        generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
    `CREATE INDEX IF NOT EXISTS fuel_logs_equipment_idx ON fuel_logs(equipment_id, ts)`,
    `CREATE INDEX IF NOT EXISTS usage_logs_operator_idx ON usage_logs(operator_id)`,
    `CREATE INDEX IF NOT EXISTS route_plans_equipment_idx ON route_plans(equipment_id)`,
}

// Migrate applies the embedded schema (dev helper; idempotent).
func (p *Postgres) Migrate(ctx context.Context) error {
    for _, stmt := range schema {
        if _, err := p.db.ExecContext(ctx, stmt); err != nil { return err }
    }
    return nil
}

func (p *Postgres) CreateEquipment(ctx context.Context, in model.Equipment) (model.Equipment, error) {
    if in.ID == "" { in.ID = uuid.New().String() }
    now := time.Now().UTC()
    _, err := p.db.ExecContext(ctx, `INSERT INTO equipment (id, name, model, year, usage_hours, wear_factor, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
        in.ID, in.Name, nullIfEmpty(in.Model), in.Year, in.UsageHours, in.WearFactor, now)
    if err != nil { return model.Equipment{}, err }
    in.CreatedAt = now.Format(time.RFC3339)
    return in, nil
}

func (p *Postgres) GetEquipment(ctx context.Context, id string) (model.Equipment, error) {
    var eq model.Equipment
    var mdl sql.NullString
    var created time.Time
    err := p.db.QueryRowContext(ctx, `SELECT id, name, model, year, usage_hours, wear_factor, created_at FROM equipment WHERE id=$1`, id).
        Scan(&eq.ID, &eq.Name, &mdl, &eq.Year, &eq.UsageHours, &eq.WearFactor, &created)
    if errors.Is(err, sql.ErrNoRows) { return model.Equipment{}, ErrNotFound }
    if err != nil { return model.Equipment{}, err }
    eq.Model = mdl.String
    eq.CreatedAt = created.UTC().Format(time.RFC3339)
    return eq, nil
}

func (p *Postgres) ListEquipment(ctx context.Context, cursor string, limit int) ([]model.Equipment, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    rows, err := p.db.QueryContext(ctx, `SELECT id, name, model, year, usage_hours, wear_factor, created_at FROM equipment WHERE id > $1 ORDER BY id LIMIT $2`, cursor, limit+1)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Equipment{}
    for rows.Next() {
        var eq model.Equipment
        var mdl sql.NullString
        var created time.Time
        if err := rows.Scan(&eq.ID, &eq.Name, &mdl, &eq.Year, &eq.UsageHours, &eq.WearFactor, &created); err != nil { return nil, "", err }
        eq.Model = mdl.String
        eq.CreatedAt = created.UTC().Format(time.RFC3339)
        out = append(out, eq)
    }
    next := ""
    if len(out) > limit {
        out = out[:limit]
        next = out[limit-1].ID
    }
    return out, next, rows.Err()
}

func (p *Postgres) CreateOperator(ctx context.Context, in model.Operator) (model.Operator, error) {
    if in.ID == "" { in.ID = uuid.New().String() }
    now := time.Now().UTC()
    _, err := p.db.ExecContext(ctx, `INSERT INTO operators (id, name, phone, created_at) VALUES ($1,$2,$3,$4)`,
        in.ID, in.Name, nullIfEmpty(in.Phone), now)
    if err != nil { return model.Operator{}, err }
    in.CreatedAt = now.Format(time.RFC3339)
    return in, nil
}

func (p *Postgres) GetOperator(ctx context.Context, id string) (model.Operator, error) {
    var op model.Operator
    var phone sql.NullString
    var created time.Time
    err := p.db.QueryRowContext(ctx, `SELECT id, name, phone, created_at FROM operators WHERE id=$1`, id).
        Scan(&op.ID, &op.Name, &phone, &created)
    if errors.Is(err, sql.ErrNoRows) { return model.Operator{}, ErrNotFound }
    if err != nil { return model.Operator{}, err }
    op.Phone = phone.String
    op.CreatedAt = created.UTC().Format(time.RFC3339)
    return op, nil
}

func (p *Postgres) ListOperators(ctx context.Context, cursor string, limit int) ([]model.Operator, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    rows, err := p.db.QueryContext(ctx, `SELECT id, name, phone, created_at FROM operators WHERE id > $1 ORDER BY id LIMIT $2`, cursor, limit+1)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Operator{}
    for rows.Next() {
        var op model.Operator
        var phone sql.NullString
        var created time.Time
        if err := rows.Scan(&op.ID, &op.Name, &phone, &created); err != nil { return nil, "", err }
        op.Phone = phone.String
        op.CreatedAt = created.UTC().Format(time.RFC3339)
        out = append(out, op)
    }
    next := ""
    if len(out) > limit {
        out = out[:limit]
        next = out[limit-1].ID
    }
    return out, next, rows.Err()
}

func (p *Postgres) AppendFuelLog(ctx context.Context, entry model.FuelLog) (model.FuelLog, error) {
    if _, err := p.GetEquipment(ctx, entry.EquipmentID); err != nil { return model.FuelLog{}, err }
    entry.ID = uuid.New().String()
    ts := time.Now().UTC()
    if entry.Timestamp != "" {
        if parsed, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil { ts = parsed }
    }
    _, err := p.db.ExecContext(ctx, `INSERT INTO fuel_logs (id, equipment_id, liters, cost, operator_id, ts) VALUES ($1,$2,$3,$4,$5,$6)`,
        entry.ID, entry.EquipmentID, entry.Liters, entry.Cost, nullIfEmpty(entry.OperatorID), ts)
    if err != nil { return model.FuelLog{}, err }
    entry.Timestamp = ts.Format(time.RFC3339)
    return entry, nil
}

func (p *Postgres) ListFuelLogs(ctx context.Context, equipmentID string, limit int) ([]model.FuelLog, error) {
    if limit <= 0 || limit > 1000 { limit = 100 }
    rows, err := p.db.QueryContext(ctx, `SELECT id, equipment_id, liters, cost, operator_id, ts FROM fuel_logs WHERE equipment_id=$1 ORDER BY ts DESC LIMIT $2`, equipmentID, limit)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []model.FuelLog{}
    for rows.Next() {
        var e model.FuelLog
        var opID sql.NullString
        var ts time.Time
        if err := rows.Scan(&e.ID, &e.EquipmentID, &e.Liters, &e.Cost, &opID, &ts); err != nil { return nil, err }
        e.OperatorID = opID.String
        e.Timestamp = ts.UTC().Format(time.RFC3339)
        out = append(out, e)
    }
    return out, rows.Err()
}

func (p *Postgres) AppendUsageLog(ctx context.Context, entry model.UsageLog) (model.UsageLog, error) {
    if _, err := p.GetOperator(ctx, entry.OperatorID); err != nil { return model.UsageLog{}, err }
    entry.ID = uuid.New().String()
    ts := time.Now().UTC()
    if entry.LoggedAt != "" {
        if parsed, err := time.Parse(time.RFC3339, entry.LoggedAt); err == nil { ts = parsed }
    }
    _, err := p.db.ExecContext(ctx, `INSERT INTO usage_logs (id, operator_id, equipment_id, hours, task_type, logged_at) VALUES ($1,$2,$3,$4,$5,$6)`,
        entry.ID, entry.OperatorID, entry.EquipmentID, entry.Hours, nullIfEmpty(entry.TaskType), ts)
    if err != nil { return model.UsageLog{}, err }
    entry.LoggedAt = ts.Format(time.RFC3339)
    return entry, nil
}

func (p *Postgres) SavePlan(ctx context.Context, plan model.RoutePlan) error {
    payload, err := json.Marshal(plan)
    if err != nil { return err }
    generated := time.Now().UTC()
    if parsed, err := time.Parse(time.RFC3339, plan.GeneratedAt); err == nil { generated = parsed }
    _, err = p.db.ExecContext(ctx, `INSERT INTO route_plans (id, equipment_id, payload, generated_at) VALUES ($1,$2,$3,$4)`,
        plan.ID, plan.EquipmentID, payload, generated)
    return err
}

func (p *Postgres) GetPlan(ctx context.Context, id string) (model.RoutePlan, error) {
    var payload []byte
    err := p.db.QueryRowContext(ctx, `SELECT payload FROM route_plans WHERE id=$1`, id).Scan(&payload)
    if errors.Is(err, sql.ErrNoRows) { return model.RoutePlan{}, ErrNotFound }
    if err != nil { return model.RoutePlan{}, err }
    var plan model.RoutePlan
    if err := json.Unmarshal(payload, &plan); err != nil { return model.RoutePlan{}, err }
    return plan, nil
}

func (p *Postgres) ListPlans(ctx context.Context, equipmentID, cursor string, limit int) ([]model.RoutePlan, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    var rows *sql.Rows
    var err error
    if equipmentID != "" {
        rows, err = p.db.QueryContext(ctx, `SELECT payload, id FROM route_plans WHERE equipment_id=$1 AND id > $2 ORDER BY id LIMIT $3`, equipmentID, cursor, limit+1)
    } else {
        rows, err = p.db.QueryContext(ctx, `SELECT payload, id FROM route_plans WHERE id > $1 ORDER BY id LIMIT $2`, cursor, limit+1)
    }
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.RoutePlan{}
    ids := []string{}
    for rows.Next() {
        var payload []byte
        var id string
        if err := rows.Scan(&payload, &id); err != nil { return nil, "", err }
        var plan model.RoutePlan
        if err := json.Unmarshal(payload, &plan); err != nil { return nil, "", err }
        out = append(out, plan)
        ids = append(ids, id)
    }
    next := ""
    if len(out) > limit {
        out = out[:limit]
        next = ids[limit-1]
    }
    return out, next, rows.Err()
}

// FuelSnapshot aggregates consumption in the lookback window in SQL, then
// applies the shared burn-rate heuristic.
func (p *Postgres) FuelSnapshot(ctx context.Context, equipmentID string) (opt.FuelSnapshot, error) {
    eq, err := p.GetEquipment(ctx, equipmentID)
    if err != nil { return opt.FuelSnapshot{}, err }
    var consumed float64
    cutoff := time.Now().UTC().Add(-fuelLookback)
    err = p.db.QueryRowContext(ctx, `SELECT COALESCE(-SUM(liters), 0) FROM fuel_logs WHERE equipment_id=$1 AND liters < 0 AND ts >= $2`, equipmentID, cutoff).Scan(&consumed)
    if err != nil { return opt.FuelSnapshot{}, err }
    if consumed <= 0 { return opt.FuelSnapshot{}, ErrNotFound }
    return opt.FuelSnapshot{AvgHourlyFuel: avgHourlyFuel(consumed, eq.UsageHours)}, nil
}

func (p *Postgres) HealthSnapshot(ctx context.Context, equipmentID string) (opt.HealthSnapshot, error) {
    eq, err := p.GetEquipment(ctx, equipmentID)
    if err != nil { return opt.HealthSnapshot{}, err }
    return opt.HealthSnapshot{HealthScore: healthScore(eq, time.Now().UTC())}, nil
}

func (p *Postgres) OperatorBehavior(ctx context.Context, operatorID string) (opt.BehaviorSnapshot, error) {
    if _, err := p.GetOperator(ctx, operatorID); err != nil { return opt.BehaviorSnapshot{}, err }
    usage := []model.UsageLog{}
    rows, err := p.db.QueryContext(ctx, `SELECT id, operator_id, equipment_id, hours, task_type, logged_at FROM usage_logs WHERE operator_id=$1`, operatorID)
    if err != nil { return opt.BehaviorSnapshot{}, err }
    defer rows.Close()
    for rows.Next() {
        var u model.UsageLog
        var taskType sql.NullString
        var ts time.Time
        if err := rows.Scan(&u.ID, &u.OperatorID, &u.EquipmentID, &u.Hours, &taskType, &ts); err != nil { return opt.BehaviorSnapshot{}, err }
        u.TaskType = taskType.String
        u.LoggedAt = ts.UTC().Format(time.RFC3339)
        usage = append(usage, u)
    }
    if err := rows.Err(); err != nil { return opt.BehaviorSnapshot{}, err }
    fuel := []model.FuelLog{}
    frows, err := p.db.QueryContext(ctx, `SELECT id, equipment_id, liters, cost, operator_id, ts FROM fuel_logs WHERE operator_id=$1`, operatorID)
    if err != nil { return opt.BehaviorSnapshot{}, err }
    defer frows.Close()
    for frows.Next() {
        var e model.FuelLog
        var opID sql.NullString
        var ts time.Time
        if err := frows.Scan(&e.ID, &e.EquipmentID, &e.Liters, &e.Cost, &opID, &ts); err != nil { return opt.BehaviorSnapshot{}, err }
        e.OperatorID = opID.String
        e.Timestamp = ts.UTC().Format(time.RFC3339)
        fuel = append(fuel, e)
    }
    if err := frows.Err(); err != nil { return opt.BehaviorSnapshot{}, err }
    return opt.BehaviorSnapshot{FinalBehaviorScore: behaviorScore(usage, fuel)}, nil
}

func nullIfEmpty(s string) any {
    if s == "" { return nil }
    return s
}
