package opt

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	if d := HaversineKm(41.0, -95.0, 41.0, -95.0); d != 0 {
		t.Fatalf("same point: got %f, want 0", d)
	}
	// one degree of latitude is about 111.19 km
	d := HaversineKm(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.1 {
		t.Fatalf("1 deg latitude: got %f", d)
	}
}

func TestDistanceMatrix(t *testing.T) {
	tasks := []Task{
		{ID: "a", Lat: 41.0, Lon: -95.0},
		{ID: "b", Lat: 41.1, Lon: -95.1},
		{ID: "c", Lat: 40.9, Lon: -94.9},
	}
	m := DistanceMatrix(tasks)
	if len(m) != 3 {
		t.Fatalf("got %d rows", len(m))
	}
	for i := range m {
		if m[i][i] != 0 {
			t.Fatalf("diagonal [%d][%d] = %f, want exactly 0", i, i, m[i][i])
		}
		for j := range m {
			if m[i][j] != m[j][i] {
				t.Fatalf("asymmetric at [%d][%d]: %f vs %f", i, j, m[i][j], m[j][i])
			}
			if i != j && m[i][j] <= 0 {
				t.Fatalf("distinct points [%d][%d] = %f, want > 0", i, j, m[i][j])
			}
		}
	}
}
