package compute

import (
	"time"

	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/pkg/fouling"
)

// uptimeWindow is the number of recent sampling outcomes tracked for uptime %.
const uptimeWindow = 20

// vesselState holds the per-vessel history the estimator inputs depend on.
type vesselState struct {
	firstSeen time.Time
	history   []bool // circular buffer of sample outcomes, newest last

	// Idle tracking, used when the source does not report idle_hours.
	lastSample time.Time
	idleHours  float64
}

func (st *vesselState) recordSample(success bool) {
	if len(st.history) >= uptimeWindow {
		st.history = st.history[1:]
	}
	st.history = append(st.history, success)
}

func (st *vesselState) uptimePct() float64 {
	if len(st.history) == 0 {
		return 100 // assume up before first observation
	}
	var ok int
	for _, s := range st.history {
		if s {
			ok++
		}
	}
	return float64(ok) / float64(len(st.history)) * 100
}

// trackIdle returns the idle hours to feed the estimator. A reported value
// wins. Otherwise time between consecutive samples at or below the idle
// speed threshold accumulates, and any sample above it resets the count.
// A sample with no speed is assumed underway at the default speed.
func (st *vesselState) trackIdle(p fouling.Partial, idleSpeed float64, now time.Time) float64 {
	prev := st.lastSample
	st.lastSample = now

	if p.IdleHours != nil {
		st.idleHours = *p.IdleHours
		return st.idleHours
	}

	speed := fouling.DefaultVesselSpeedKnots
	if p.VesselSpeedKnots != nil {
		speed = *p.VesselSpeedKnots
	}
	if speed > idleSpeed {
		st.idleHours = 0
		return 0
	}
	if !prev.IsZero() && now.After(prev) {
		st.idleHours += now.Sub(prev).Hours()
	}
	return st.idleHours
}

// daysSinceClean counts whole days from the vessel's last cleaning date, or
// from the first sample when no date is configured.
func (st *vesselState) daysSinceClean(v config.Vessel, now time.Time) int {
	since := st.firstSeen
	if t, ok, err := v.CleanedAt(); err == nil && ok {
		since = t
	}
	if !now.After(since) {
		return 0
	}
	return int(now.Sub(since).Hours() / 24)
}
