package model

import "agrinav/internal/opt"

// Wire types for the API. Field names follow the service's snake_case
// contract.

// Task is a unit of field work supplied per optimization call. Lat/Lon are
// pointers so a missing coordinate is distinguishable from zero and can be
// rejected instead of silently dropping the task.
type Task struct {
	TaskID         string   `json:"task_id"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	EstimatedHours float64  `json:"estimated_hours,omitempty"`
	OperatorID     string   `json:"operator_id,omitempty"`
}

type OptimizeRequest struct {
	EquipmentID  string             `json:"equipment_id"`
	Tasks        []Task             `json:"tasks"`
	WeightConfig map[string]float64 `json:"weight_config,omitempty"`
}

// RoutePlan is the stored result of one optimization call.
type RoutePlan struct {
	ID           string           `json:"plan_id"`
	EquipmentID  string           `json:"equipment_id"`
	RouteIndices []int            `json:"optimized_route_indices"`
	Tasks        []Task           `json:"optimized_tasks"`
	Metrics      opt.RouteMetrics `json:"metrics"`
	WeightsUsed  opt.Weights      `json:"weights_used"`
	GeneratedAt  string           `json:"generated_at"`
}

// Equipment registry record. Year, usage hours and wear factor feed the
// health snapshot heuristic.
type Equipment struct {
	ID         string  `json:"equipment_id"`
	Name       string  `json:"name"`
	Model      string  `json:"model,omitempty"`
	Year       int     `json:"year,omitempty"`
	UsageHours float64 `json:"usage_hours,omitempty"`
	WearFactor float64 `json:"wear_factor,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

type Operator struct {
	ID        string `json:"operator_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// FuelLog is one fuel event for an equipment unit. Negative liters record
// consumption, positive liters a refill.
type FuelLog struct {
	ID          string  `json:"log_id,omitempty"`
	EquipmentID string  `json:"equipment_id"`
	Liters      float64 `json:"liters"`
	Cost        float64 `json:"cost,omitempty"`
	OperatorID  string  `json:"operator_id,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// UsageLog is one operator-on-equipment work entry.
type UsageLog struct {
	ID          string  `json:"log_id,omitempty"`
	OperatorID  string  `json:"operator_id"`
	EquipmentID string  `json:"equipment_id"`
	Hours       float64 `json:"hours"`
	TaskType    string  `json:"task_type,omitempty"`
	LoggedAt    string  `json:"logged_at,omitempty"`
}
