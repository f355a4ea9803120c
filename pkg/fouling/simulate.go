package fouling

import (
	"math"
	"math/rand"
)

// Simulator produces plausible synthetic Readings for demos and load tests.
// All randomness comes from the seeded source, so two simulators built with
// the same seed yield identical sequences. A Simulator is not safe for
// concurrent use.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator returns a Simulator seeded with seed.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // demo data
}

// Next returns a synthetic reading for a hull last cleaned daysSinceClean
// days ago.
func (s *Simulator) Next(daysSinceClean int) Reading {
	speed := 0.0
	idle := 0.0
	// Roughly one sample in four finds the vessel alongside.
	if s.rng.Float64() < 0.25 {
		idle = s.uniform(2, 96)
	} else {
		speed = s.uniform(6, 18)
	}
	return Reading{
		SeaTemperatureC:  Round2(s.uniform(8, 31)),
		SalinityPSU:      Round2(s.uniform(30, 38)),
		VesselSpeedKnots: Round2(speed),
		IdleHours:        Round2(idle),
		DaysSinceClean:   daysSinceClean,
		ChlorophyllAMgM3: Round2(math.Abs(s.rng.NormFloat64()*0.3 + 0.5)),
		WindSpeedMps:     Round2(s.uniform(0, 15)),
		CurrentSpeedMps:  Round2(s.uniform(0, 2)),
	}
}

// Observations returns Next as a map keyed by the canonical observation
// names, omitting days since clean (which a vessel tracks itself).
func (s *Simulator) Observations() map[string]float64 {
	r := s.Next(0)
	return map[string]float64{
		ObsSeaTemperature: r.SeaTemperatureC,
		ObsSalinity:       r.SalinityPSU,
		ObsVesselSpeed:    r.VesselSpeedKnots,
		ObsIdleHours:      r.IdleHours,
		ObsChlorophyllA:   r.ChlorophyllAMgM3,
		ObsWindSpeed:      r.WindSpeedMps,
		ObsCurrentSpeed:   r.CurrentSpeedMps,
	}
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
