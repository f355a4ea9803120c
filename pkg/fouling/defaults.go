package fouling

import "fmt"

// Fallback values for observations a caller could not supply.
// Sea temperature and salinity have no fallback.
const (
	DefaultVesselSpeedKnots = 10.0
	DefaultIdleHours        = 0.0
	DefaultDaysSinceClean   = 0
	DefaultChlorophyllA     = 0.5
	DefaultWindSpeedMps     = 5.0
	DefaultCurrentSpeedMps  = 0.5
)

// Partial is a Reading in which any field may be absent (nil).
// It is the shape accepted from JSON request bodies and sensor scrapes.
type Partial struct {
	SeaTemperatureC  *float64 `json:"sea_temperature_c,omitempty"`
	SalinityPSU      *float64 `json:"salinity_psu,omitempty"`
	VesselSpeedKnots *float64 `json:"vessel_speed_knots,omitempty"`
	IdleHours        *float64 `json:"idle_hours,omitempty"`
	DaysSinceClean   *int     `json:"days_since_clean,omitempty"`
	ChlorophyllAMgM3 *float64 `json:"chlorophyll_a_mg_m3,omitempty"`
	WindSpeedMps     *float64 `json:"wind_speed_mps,omitempty"`
	CurrentSpeedMps  *float64 `json:"current_speed_mps,omitempty"`
}

// MissingFieldError reports a required observation that had no value.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("fouling: %s is required", e.Field)
}

// Resolve fills absent fields with their fallbacks and returns the complete
// Reading. It fails only when sea temperature or salinity is missing.
func (p Partial) Resolve() (Reading, error) {
	if p.SeaTemperatureC == nil {
		return Reading{}, &MissingFieldError{Field: "sea_temperature_c"}
	}
	if p.SalinityPSU == nil {
		return Reading{}, &MissingFieldError{Field: "salinity_psu"}
	}
	return Reading{
		SeaTemperatureC:  *p.SeaTemperatureC,
		SalinityPSU:      *p.SalinityPSU,
		VesselSpeedKnots: orFloat(p.VesselSpeedKnots, DefaultVesselSpeedKnots),
		IdleHours:        orFloat(p.IdleHours, DefaultIdleHours),
		DaysSinceClean:   orInt(p.DaysSinceClean, DefaultDaysSinceClean),
		ChlorophyllAMgM3: orFloat(p.ChlorophyllAMgM3, DefaultChlorophyllA),
		WindSpeedMps:     orFloat(p.WindSpeedMps, DefaultWindSpeedMps),
		CurrentSpeedMps:  orFloat(p.CurrentSpeedMps, DefaultCurrentSpeedMps),
	}, nil
}

// Defaults returns a Reading at the given temperature and salinity with
// every other field at its fallback.
func Defaults(seaTemperatureC, salinityPSU float64) Reading {
	r, _ := Partial{SeaTemperatureC: &seaTemperatureC, SalinityPSU: &salinityPSU}.Resolve()
	return r
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
