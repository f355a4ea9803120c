package fouling

// Canonical observation keys used by sensor scrapes and the wire format.
const (
	ObsSeaTemperature = "sea_temperature_c"
	ObsSalinity       = "salinity_psu"
	ObsVesselSpeed    = "vessel_speed_knots"
	ObsIdleHours      = "idle_hours"
	ObsChlorophyllA   = "chlorophyll_a_mg_m3"
	ObsWindSpeed      = "wind_speed_mps"
	ObsCurrentSpeed   = "current_speed_mps"
)

// ObservationKeys lists the canonical observation keys in a stable order.
func ObservationKeys() []string {
	return []string{
		ObsSeaTemperature,
		ObsSalinity,
		ObsVesselSpeed,
		ObsIdleHours,
		ObsChlorophyllA,
		ObsWindSpeed,
		ObsCurrentSpeed,
	}
}

// FromObservations builds a Partial from a map of canonical observation
// keys. Unknown keys are ignored; days since clean is not an observation
// and is left unset.
func FromObservations(obs map[string]float64) Partial {
	var p Partial
	pick := func(key string) *float64 {
		if v, ok := obs[key]; ok {
			return &v
		}
		return nil
	}
	p.SeaTemperatureC = pick(ObsSeaTemperature)
	p.SalinityPSU = pick(ObsSalinity)
	p.VesselSpeedKnots = pick(ObsVesselSpeed)
	p.IdleHours = pick(ObsIdleHours)
	p.ChlorophyllAMgM3 = pick(ObsChlorophyllA)
	p.WindSpeedMps = pick(ObsWindSpeed)
	p.CurrentSpeedMps = pick(ObsCurrentSpeed)
	return p
}
