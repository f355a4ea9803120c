package compute

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/agent/internal/scraper"
	"github.com/seawise/seawise/pkg/fouling"
	"github.com/seawise/seawise/pkg/types"
)

// Result is the fouling snapshot for one vessel at one sampling cycle,
// ready to be handed to the gRPC shipper.
type Result struct {
	VesselID   string
	VesselName string
	SourceType string
	Variant    string
	Timestamp  time.Time
	State      string // one of the types.State* values

	// Reading is the fully resolved input; zero when State is unknown.
	Reading fouling.Reading
	// Prediction is the estimator output; zero when State is unknown.
	Prediction fouling.Prediction

	UptimePct    float64
	ErrorMessage string // non-empty when the sample could not be taken
	MissingField string // observation a usable sample lacked
}

// Engine maintains per-vessel state across sampling cycles and turns raw
// observations into fouling predictions.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	states map[string]*vesselState
}

// NewEngine returns a ready-to-use Engine.
func NewEngine() *Engine {
	return &Engine{states: make(map[string]*vesselState)}
}

// Process ingests a ScrapeResult for vessel v and returns the prediction.
//
// now is passed explicitly so callers (and tests) control the clock without
// sleeping. Use time.Now() in production.
//
// A failed scrape or an unknown variant yields a Result with State
// "unknown" and ErrorMessage set. A sample without sea temperature or
// salinity is also unknown but names the gap in MissingField instead.
func (e *Engine) Process(v config.Vessel, res *scraper.ScrapeResult, now time.Time) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateFor(v.ID, now)
	success := res.Err == nil
	st.recordSample(success)

	out := &Result{
		VesselID:   v.ID,
		VesselName: v.Name,
		SourceType: res.SourceType,
		Variant:    v.Variant,
		Timestamp:  now,
		UptimePct:  st.uptimePct(),
	}

	if !success {
		slog.Warn("compute: scrape failed, marking unknown", "vessel", v.ID, "err", res.Err)
		return unknown(out, res.Err)
	}

	est, err := fouling.Lookup(v.Variant)
	if err != nil {
		return unknown(out, err)
	}
	out.Variant = est.Name()

	partial := fouling.FromObservations(res.Observations)
	idle := st.trackIdle(partial, v.IdleSpeed(), now)
	partial.IdleHours = &idle
	days := st.daysSinceClean(v, now)
	partial.DaysSinceClean = &days

	reading, err := partial.Resolve()
	if err != nil {
		var missing *fouling.MissingFieldError
		if errors.As(err, &missing) {
			slog.Debug("compute: incomplete sample", "vessel", v.ID, "field", missing.Field)
			out.State = types.StateUnknown
			out.MissingField = missing.Field
			return out
		}
		return unknown(out, err)
	}

	pred := est.Estimate(reading)
	out.Reading = reading
	out.Prediction = pred
	out.State = string(pred.FoulingClass)
	return out
}

// Forget drops the state kept for a vessel, e.g. after it is removed from
// the configuration or its hull has been cleaned.
func (e *Engine) Forget(vesselID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.states, vesselID)
}

func (e *Engine) stateFor(id string, now time.Time) *vesselState {
	if st, ok := e.states[id]; ok {
		return st
	}
	st := &vesselState{firstSeen: now}
	e.states[id] = st
	return st
}

func unknown(out *Result, err error) *Result {
	out.State = types.StateUnknown
	out.ErrorMessage = fmt.Sprint(err)
	return out
}
