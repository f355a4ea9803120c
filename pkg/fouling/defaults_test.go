package fouling

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T { return &v }

func TestPartialResolve_AppliesFallbacks(t *testing.T) {
	p := Partial{SeaTemperatureC: ptr(25.0), SalinityPSU: ptr(35.0)}
	got, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := Reading{
		SeaTemperatureC:  25,
		SalinityPSU:      35,
		VesselSpeedKnots: 10,
		IdleHours:        0,
		DaysSinceClean:   0,
		ChlorophyllAMgM3: 0.5,
		WindSpeedMps:     5,
		CurrentSpeedMps:  0.5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, Defaults(25, 35)); diff != "" {
		t.Errorf("Defaults() mismatch (-want +got):\n%s", diff)
	}
}

func TestPartialResolve_KeepsExplicitZeros(t *testing.T) {
	p := Partial{
		SeaTemperatureC:  ptr(20.0),
		SalinityPSU:      ptr(34.0),
		VesselSpeedKnots: ptr(0.0),
		ChlorophyllAMgM3: ptr(0.0),
		WindSpeedMps:     ptr(0.0),
		CurrentSpeedMps:  ptr(0.0),
		DaysSinceClean:   ptr(14),
	}
	got, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.VesselSpeedKnots != 0 || got.ChlorophyllAMgM3 != 0 || got.WindSpeedMps != 0 || got.CurrentSpeedMps != 0 {
		t.Errorf("explicit zeros replaced by fallbacks: %+v", got)
	}
	if got.DaysSinceClean != 14 {
		t.Errorf("DaysSinceClean = %d, want 14", got.DaysSinceClean)
	}
}

func TestPartialResolve_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		p     Partial
		field string
	}{
		{"no temperature", Partial{SalinityPSU: ptr(35.0)}, "sea_temperature_c"},
		{"no salinity", Partial{SeaTemperatureC: ptr(25.0)}, "salinity_psu"},
		{"empty", Partial{}, "sea_temperature_c"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.p.Resolve()
			var mfe *MissingFieldError
			if !errors.As(err, &mfe) {
				t.Fatalf("Resolve() error = %v, want *MissingFieldError", err)
			}
			if mfe.Field != tc.field {
				t.Errorf("Field = %q, want %q", mfe.Field, tc.field)
			}
		})
	}
}

func TestFromObservations(t *testing.T) {
	obs := map[string]float64{
		ObsSeaTemperature: 18,
		ObsSalinity:       33,
		ObsVesselSpeed:    0,
		"unrelated_gauge": 7,
	}
	r, err := FromObservations(obs).Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.SeaTemperatureC != 18 || r.SalinityPSU != 33 {
		t.Errorf("temperature/salinity = %.1f/%.1f, want 18/33", r.SeaTemperatureC, r.SalinityPSU)
	}
	if r.VesselSpeedKnots != 0 {
		t.Errorf("VesselSpeedKnots = %.1f, want explicit 0", r.VesselSpeedKnots)
	}
	if r.WindSpeedMps != DefaultWindSpeedMps {
		t.Errorf("WindSpeedMps = %.1f, want fallback %.1f", r.WindSpeedMps, DefaultWindSpeedMps)
	}
}
