package api

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"

    "agrinav/internal/buildinfo"
    "agrinav/internal/metrics"
    "agrinav/internal/model"
    "agrinav/internal/opt"
    "agrinav/internal/store"
)

// OptimizeHandler handles POST /v1/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req model.OptimizeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if err := validateOptimizeRequest(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
        return
    }
    if len(req.Tasks) == 0 {
        writeJSON(w, http.StatusOK, map[string]any{"status": "no_tasks", "equipment_id": req.EquipmentID})
        return
    }

    tasks := make([]opt.Task, 0, len(req.Tasks))
    for _, t := range req.Tasks {
        tasks = append(tasks, opt.Task{
            ID:             t.TaskID,
            Lat:            *t.Lat,
            Lon:            *t.Lon,
            EstimatedHours: t.EstimatedHours,
            OperatorID:     t.OperatorID,
        })
    }

    start := time.Now()
    plan, err := s.Opt.Optimize(r.Context(), req.EquipmentID, tasks, req.WeightConfig)
    metrics.OptimizeDuration.Observe(time.Since(start).Seconds())
    if err != nil {
        metrics.OptimizeRuns.WithLabelValues("error").Inc()
        if errors.Is(err, opt.ErrBadCoordinate) || errors.Is(err, opt.ErrNoTasks) {
            writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
            return
        }
        writeProblem(w, http.StatusInternalServerError, "Optimize failed", err.Error(), r.URL.Path)
        return
    }
    metrics.OptimizeRuns.WithLabelValues("ok").Inc()
    for _, sig := range plan.Metrics.DegradedSignals {
        metrics.SignalFallbacks.WithLabelValues(sig).Inc()
        log.Printf("optimize equipment=%s degraded signal=%s fallback applied", req.EquipmentID, sig)
    }

    // Reorder the wire tasks to match the optimized visit order.
    ordered := make([]model.Task, 0, len(plan.RouteIndices))
    for _, idx := range plan.RouteIndices { ordered = append(ordered, req.Tasks[idx]) }

    saved := model.RoutePlan{
        ID:           uuid.New().String(),
        EquipmentID:  req.EquipmentID,
        RouteIndices: plan.RouteIndices,
        Tasks:        ordered,
        Metrics:      plan.Metrics,
        WeightsUsed:  plan.WeightsUsed,
        GeneratedAt:  plan.GeneratedAt.Format(time.RFC3339),
    }
    if err := s.Store.SavePlan(r.Context(), saved); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Save plan failed", err.Error(), r.URL.Path)
        return
    }
    s.Broker.Publish(req.EquipmentID, SSEEvent{Type: "plan.created", Data: map[string]any{
        "planId":      saved.ID,
        "equipmentId": saved.EquipmentID,
        "score":       saved.Metrics.Score,
        "totalKm":     saved.Metrics.TotalKm,
        "generatedAt": saved.GeneratedAt,
    }})
    writeJSON(w, http.StatusOK, saved)
}

// PlansHandler handles GET /v1/plans
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    equipmentID := r.URL.Query().Get("equipment_id")
    cursor := r.URL.Query().Get("cursor")
    limit := 100
    if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
    items, next, err := s.Store.ListPlans(r.Context(), equipmentID, cursor, limit)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List plans failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// PlanByIDHandler handles GET /v1/plans/{id}
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
    id := strings.TrimPrefix(r.URL.Path, "/v1/plans/")
    if id == "" || strings.Contains(id, "/") {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    plan, err := s.Store.GetPlan(r.Context(), id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Plan not found", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, plan)
}

// EquipmentHandler handles POST/GET /v1/equipment
func (s *Server) EquipmentHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost:
        var in model.Equipment
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if in.Name == "" { writeProblem(w, http.StatusBadRequest, "Invalid equipment", "name is required", r.URL.Path); return }
        eq, err := s.Store.CreateEquipment(r.Context(), in)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Create equipment failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusCreated, eq)
    case http.MethodGet:
        cursor := r.URL.Query().Get("cursor")
        limit := 100
        if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        items, next, err := s.Store.ListEquipment(r.Context(), cursor, limit)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List equipment failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// EquipmentByIDHandler handles /v1/equipment/{id} and its subresources:
// /fuel-logs, /fuel, /health, /plans/stream (SSE).
func (s *Server) EquipmentByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/equipment/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]
    if len(parts) > 2 && parts[1] == "plans" && parts[2] == "stream" {
        s.streamPlans(w, r, id)
        return
    }
    if len(parts) > 1 {
        switch parts[1] {
        case "fuel-logs":
            s.fuelLogs(w, r, id)
        case "fuel":
            if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
            snap, err := s.Store.FuelSnapshot(r.Context(), id)
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusNotFound, "Fuel snapshot unavailable", "no consumption data", r.URL.Path)
                return
            }
            if err != nil { writeProblem(w, http.StatusInternalServerError, "Fuel snapshot failed", err.Error(), r.URL.Path); return }
            writeJSON(w, http.StatusOK, snap)
        case "health":
            if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
            snap, err := s.Store.HealthSnapshot(r.Context(), id)
            if err != nil { writeProblem(w, http.StatusNotFound, "Equipment not found", err.Error(), r.URL.Path); return }
            writeJSON(w, http.StatusOK, snap)
        default:
            writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
        }
        return
    }
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    eq, err := s.Store.GetEquipment(r.Context(), id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Equipment not found", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, eq)
}

func (s *Server) fuelLogs(w http.ResponseWriter, r *http.Request, equipmentID string) {
    switch r.Method {
    case http.MethodPost:
        var entry model.FuelLog
        if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        entry.EquipmentID = equipmentID
        saved, err := s.Store.AppendFuelLog(r.Context(), entry)
        if errors.Is(err, store.ErrNotFound) {
            writeProblem(w, http.StatusNotFound, "Equipment not found", equipmentID, r.URL.Path)
            return
        }
        if err != nil { writeProblem(w, http.StatusInternalServerError, "Append fuel log failed", err.Error(), r.URL.Path); return }
        writeJSON(w, http.StatusCreated, saved)
    case http.MethodGet:
        limit := 100
        if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        items, err := s.Store.ListFuelLogs(r.Context(), equipmentID, limit)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List fuel logs failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// streamPlans serves SSE for plan events on one equipment unit.
func (s *Server) streamPlans(w http.ResponseWriter, r *http.Request, equipmentID string) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(equipmentID)
    defer s.Broker.Unsubscribe(equipmentID, ch)
    // initial heartbeat
    fmt.Fprintf(w, "event: heartbeat\n")
    fmt.Fprintf(w, "data: {\"equipmentId\":\"%s\",\"ts\":\"%s\"}\n\n", equipmentID, time.Now().Format(time.RFC3339))
    flusher.Flush()
    notify := r.Context().Done()
    for {
        select {
        case <-notify:
            return
        case evt := <-ch:
            b, _ := json.Marshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            fmt.Fprintf(w, "event: heartbeat\n")
            fmt.Fprintf(w, "data: {\"equipmentId\":\"%s\",\"ts\":\"%s\"}\n\n", equipmentID, time.Now().Format(time.RFC3339))
            flusher.Flush()
        }
    }
}

// OperatorsHandler handles POST/GET /v1/operators
func (s *Server) OperatorsHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost:
        var in model.Operator
        if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if in.Name == "" { writeProblem(w, http.StatusBadRequest, "Invalid operator", "name is required", r.URL.Path); return }
        op, err := s.Store.CreateOperator(r.Context(), in)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Create operator failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusCreated, op)
    case http.MethodGet:
        cursor := r.URL.Query().Get("cursor")
        limit := 100
        if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        items, next, err := s.Store.ListOperators(r.Context(), cursor, limit)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List operators failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// OperatorByIDHandler handles /v1/operators/{id} plus /behavior and
// /usage-logs subresources.
func (s *Server) OperatorByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/operators/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]
    if len(parts) > 1 {
        switch parts[1] {
        case "behavior":
            if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
            snap, err := s.Store.OperatorBehavior(r.Context(), id)
            if err != nil { writeProblem(w, http.StatusNotFound, "Operator not found", err.Error(), r.URL.Path); return }
            writeJSON(w, http.StatusOK, snap)
        case "usage-logs":
            if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
            var entry model.UsageLog
            if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
                writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
                return
            }
            entry.OperatorID = id
            saved, err := s.Store.AppendUsageLog(r.Context(), entry)
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusNotFound, "Operator not found", id, r.URL.Path)
                return
            }
            if err != nil { writeProblem(w, http.StatusInternalServerError, "Append usage log failed", err.Error(), r.URL.Path); return }
            writeJSON(w, http.StatusCreated, saved)
        default:
            writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
        }
        return
    }
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    op, err := s.Store.GetOperator(r.Context(), id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Operator not found", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, op)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type pinger interface {
    Ping(ctx context.Context) error
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    if p, ok := s.Store.(pinger); ok {
        ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
        defer cancel()
        if err := p.Ping(ctx); err != nil {
            writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
            return
        }
    }
    writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) DebugHandler(w http.ResponseWriter, r *http.Request) {
    info := map[string]any{
        "build": buildinfo.Info(),
        "time":  time.Now().UTC().Format(time.RFC3339),
        "config": map[string]any{
            "LISTEN_ADDR":      s.Cfg.ListenAddr,
            "SPEED_KMPH":       s.Cfg.SpeedKmph,
            "RATE_RPS":         s.Cfg.RateRPS,
            "RATE_BURST":       s.Cfg.RateBurst,
            "HAS_DATABASE_URL": s.Cfg.DatabaseURL != "",
            "HAS_REDIS_URL":    s.Cfg.RedisURL != "",
        },
    }
    writeJSON(w, http.StatusOK, info)
}
