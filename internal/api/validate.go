package api

import (
	"fmt"
	"math"

	"agrinav/internal/model"
)

func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if req.EquipmentID == "" {
		return fmt.Errorf("equipment_id is required")
	}
	for i, t := range req.Tasks {
		if t.Lat == nil || t.Lon == nil {
			return fmt.Errorf("task %d (%s): lat and lon are required", i, t.TaskID)
		}
		if !isFinite(*t.Lat) || !isFinite(*t.Lon) {
			return fmt.Errorf("task %d (%s): lat and lon must be finite", i, t.TaskID)
		}
		if *t.Lat < -90 || *t.Lat > 90 || *t.Lon < -180 || *t.Lon > 180 {
			return fmt.Errorf("task %d (%s): lat/lon out of range", i, t.TaskID)
		}
		if t.EstimatedHours < 0 {
			return fmt.Errorf("task %d (%s): estimated_hours must be >= 0", i, t.TaskID)
		}
	}
	for k, v := range req.WeightConfig {
		if v < 0 || !isFinite(v) {
			return fmt.Errorf("weight %s must be a finite value >= 0", k)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
