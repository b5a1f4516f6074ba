package store

import (
	"context"
	"errors"

	"agrinav/internal/model"
	"agrinav/internal/opt"
)

// Store is the persistence interface used by the API server. It also
// implements opt.SignalProvider, feeding the scorer its equipment and
// operator snapshots. Snapshot lookups return ErrNotFound for unknown ids;
// the scorer maps that to its documented fallback constants.
type Store interface {
	// Equipment registry
	CreateEquipment(ctx context.Context, in model.Equipment) (model.Equipment, error)
	GetEquipment(ctx context.Context, id string) (model.Equipment, error)
	ListEquipment(ctx context.Context, cursor string, limit int) ([]model.Equipment, string, error)

	// Operators
	CreateOperator(ctx context.Context, in model.Operator) (model.Operator, error)
	GetOperator(ctx context.Context, id string) (model.Operator, error)
	ListOperators(ctx context.Context, cursor string, limit int) ([]model.Operator, string, error)

	// Logs
	AppendFuelLog(ctx context.Context, entry model.FuelLog) (model.FuelLog, error)
	ListFuelLogs(ctx context.Context, equipmentID string, limit int) ([]model.FuelLog, error)
	AppendUsageLog(ctx context.Context, entry model.UsageLog) (model.UsageLog, error)

	// Route plans
	SavePlan(ctx context.Context, plan model.RoutePlan) error
	GetPlan(ctx context.Context, id string) (model.RoutePlan, error)
	ListPlans(ctx context.Context, equipmentID, cursor string, limit int) ([]model.RoutePlan, string, error)

	// Signal snapshots (opt.SignalProvider)
	FuelSnapshot(ctx context.Context, equipmentID string) (opt.FuelSnapshot, error)
	HealthSnapshot(ctx context.Context, equipmentID string) (opt.HealthSnapshot, error)
	OperatorBehavior(ctx context.Context, operatorID string) (opt.BehaviorSnapshot, error)
}

var ErrNotFound = errors.New("not found")
