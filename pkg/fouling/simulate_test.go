package fouling

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimulator_SameSeedSameSequence(t *testing.T) {
	a, b := NewSimulator(7), NewSimulator(7)
	for i := 0; i < 50; i++ {
		if diff := cmp.Diff(a.Next(i), b.Next(i)); diff != "" {
			t.Fatalf("step %d differs (-a +b):\n%s", i, diff)
		}
	}
}

func TestSimulator_DifferentSeeds(t *testing.T) {
	a, b := NewSimulator(1), NewSimulator(2)
	same := 0
	for i := 0; i < 20; i++ {
		if a.Next(0) == b.Next(0) {
			same++
		}
	}
	if same == 20 {
		t.Error("different seeds produced identical sequences")
	}
}

func TestSimulator_PlausibleRanges(t *testing.T) {
	s := NewSimulator(42)
	for i := 0; i < 500; i++ {
		r := s.Next(i)
		if r.SeaTemperatureC < 8 || r.SeaTemperatureC > 31 {
			t.Fatalf("SeaTemperatureC %.2f out of range", r.SeaTemperatureC)
		}
		if r.SalinityPSU < 30 || r.SalinityPSU > 38 {
			t.Fatalf("SalinityPSU %.2f out of range", r.SalinityPSU)
		}
		if r.VesselSpeedKnots > 0 && r.IdleHours > 0 {
			t.Fatalf("vessel both underway and idle: %+v", r)
		}
		if r.ChlorophyllAMgM3 < 0 {
			t.Fatalf("negative chlorophyll %.2f", r.ChlorophyllAMgM3)
		}
		if r.DaysSinceClean != i {
			t.Fatalf("DaysSinceClean = %d, want %d", r.DaysSinceClean, i)
		}
	}
}

func TestSimulator_ObservationsResolve(t *testing.T) {
	obs := NewSimulator(3).Observations()
	if len(obs) != 7 {
		t.Fatalf("Observations() has %d keys, want 7", len(obs))
	}
	if _, err := FromObservations(obs).Resolve(); err != nil {
		t.Errorf("simulated observations do not resolve: %v", err)
	}
}
