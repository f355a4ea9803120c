package compute

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/agent/internal/scraper"
	"github.com/seawise/seawise/pkg/fouling"
	"github.com/seawise/seawise/pkg/types"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

// tick returns baseTime advanced by n hours.
func tick(n float64) time.Time {
	return baseTime.Add(time.Duration(n * float64(time.Hour)))
}

func vessel(variant string) config.Vessel {
	return config.Vessel{
		ID:          "mv-aurora",
		Name:        "MV Aurora",
		Variant:     variant,
		LastCleaned: "2026-01-01",
	}
}

// temperate is a complete sample at 25 °C, 35 PSU, 12 kn.
func temperate() map[string]float64 {
	return map[string]float64{
		fouling.ObsSeaTemperature: 25,
		fouling.ObsSalinity:       35,
		fouling.ObsVesselSpeed:    12,
		fouling.ObsChlorophyllA:   0.5,
		fouling.ObsWindSpeed:      5,
		fouling.ObsCurrentSpeed:   0.5,
	}
}

func makeResult(obs map[string]float64) *scraper.ScrapeResult {
	return &scraper.ScrapeResult{
		VesselID:     "mv-aurora",
		SourceType:   "static",
		ScrapedAt:    baseTime,
		Observations: obs,
	}
}

func failed() *scraper.ScrapeResult {
	return &scraper.ScrapeResult{VesselID: "mv-aurora", SourceType: "prometheus", Err: errors.New("connection refused")}
}

func TestEngine_Process_Prediction(t *testing.T) {
	e := NewEngine()
	out := e.Process(vessel(""), makeResult(temperate()), baseTime)

	if out.State != types.StateLow {
		t.Fatalf("State = %q, want %q (err=%q)", out.State, types.StateLow, out.ErrorMessage)
	}
	if out.Variant != fouling.VariantEnhanced {
		t.Errorf("Variant = %q, want enhanced", out.Variant)
	}
	if out.Reading.DaysSinceClean != 30 {
		t.Errorf("DaysSinceClean = %d, want 30", out.Reading.DaysSinceClean)
	}
	if out.Reading.IdleHours != 0 {
		t.Errorf("IdleHours = %v, want 0 while underway", out.Reading.IdleHours)
	}
	if out.Prediction.FoulingPercent != 25.41 {
		t.Errorf("FoulingPercent = %.2f, want 25.41", out.Prediction.FoulingPercent)
	}
	if out.VesselName != "MV Aurora" || out.SourceType != "static" {
		t.Errorf("identity = %q/%q", out.VesselName, out.SourceType)
	}
	if out.UptimePct != 100 {
		t.Errorf("UptimePct = %v, want 100", out.UptimePct)
	}
	if !out.Timestamp.Equal(baseTime) {
		t.Errorf("Timestamp = %v, want %v", out.Timestamp, baseTime)
	}
}

func TestEngine_Process_BaselineVariant(t *testing.T) {
	e := NewEngine()
	enhanced := e.Process(vessel("enhanced"), makeResult(temperate()), baseTime)
	baseline := e.Process(vessel("baseline"), makeResult(temperate()), baseTime)

	if baseline.Variant != fouling.VariantBaseline {
		t.Errorf("Variant = %q, want baseline", baseline.Variant)
	}
	if baseline.Prediction.FoulingPercent >= enhanced.Prediction.FoulingPercent {
		t.Errorf("baseline %.2f should be below enhanced %.2f",
			baseline.Prediction.FoulingPercent, enhanced.Prediction.FoulingPercent)
	}
}

func TestEngine_Process_Unknown(t *testing.T) {
	noSalinity := temperate()
	delete(noSalinity, fouling.ObsSalinity)

	tests := []struct {
		name      string
		v         config.Vessel
		res       *scraper.ScrapeResult
		wantMsg   string
		wantField string
	}{
		{"scrape failure", vessel(""), failed(), "connection refused", ""},
		{"missing salinity", vessel(""), makeResult(noSalinity), "", fouling.ObsSalinity},
		{"missing temperature", vessel(""), makeResult(map[string]float64{fouling.ObsSalinity: 35}), "", fouling.ObsSeaTemperature},
		{"unknown variant", vessel("quantum"), makeResult(temperate()), "unknown estimator variant", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := NewEngine().Process(tc.v, tc.res, baseTime)
			if out.State != types.StateUnknown {
				t.Errorf("State = %q, want unknown", out.State)
			}
			if tc.wantMsg == "" && out.ErrorMessage != "" {
				t.Errorf("ErrorMessage = %q, want empty for an incomplete sample", out.ErrorMessage)
			}
			if !strings.Contains(out.ErrorMessage, tc.wantMsg) {
				t.Errorf("ErrorMessage = %q, want it to contain %q", out.ErrorMessage, tc.wantMsg)
			}
			if out.MissingField != tc.wantField {
				t.Errorf("MissingField = %q, want %q", out.MissingField, tc.wantField)
			}
			if out.Prediction != (fouling.Prediction{}) {
				t.Errorf("Prediction = %+v, want zero", out.Prediction)
			}
		})
	}
}

func TestEngine_Uptime(t *testing.T) {
	e := NewEngine()
	v := vessel("")

	e.Process(v, makeResult(temperate()), tick(0))
	out := e.Process(v, failed(), tick(1))
	if out.UptimePct != 50 {
		t.Errorf("UptimePct after 1 ok + 1 fail = %v, want 50", out.UptimePct)
	}

	// Fill the window with successes; the failure rolls out.
	for i := 0; i < uptimeWindow; i++ {
		out = e.Process(v, makeResult(temperate()), tick(float64(2+i)))
	}
	if out.UptimePct != 100 {
		t.Errorf("UptimePct after full window of successes = %v, want 100", out.UptimePct)
	}
}

func TestEngine_IdleTracking(t *testing.T) {
	e := NewEngine()
	v := vessel("")

	moored := temperate()
	moored[fouling.ObsVesselSpeed] = 0.2

	steps := []struct {
		at   float64
		obs  map[string]float64
		want float64
	}{
		{0, moored, 0},
		{2, moored, 2},
		{5, moored, 5},
		{6, temperate(), 0}, // underway resets
		{7, moored, 1},
		{40, moored, 34},
		{79, moored, 73}, // three days alongside, no ceiling
	}
	for i, s := range steps {
		out := e.Process(v, makeResult(s.obs), tick(s.at))
		if out.Reading.IdleHours != s.want {
			t.Errorf("step %d: IdleHours = %v, want %v", i, out.Reading.IdleHours, s.want)
		}
	}
}

func TestEngine_ZeroIdleSpeedCountsOnlyStopped(t *testing.T) {
	e := NewEngine()
	v := vessel("")
	zero := 0.0
	v.IdleSpeedKnots = &zero

	drifting := temperate()
	drifting[fouling.ObsVesselSpeed] = 0.2
	stopped := temperate()
	stopped[fouling.ObsVesselSpeed] = 0

	e.Process(v, makeResult(drifting), tick(0))
	if out := e.Process(v, makeResult(drifting), tick(3)); out.Reading.IdleHours != 0 {
		t.Errorf("drifting at 0.2 kn: IdleHours = %v, want 0", out.Reading.IdleHours)
	}
	e.Process(v, makeResult(stopped), tick(4))
	if out := e.Process(v, makeResult(stopped), tick(10)); out.Reading.IdleHours != 6 {
		t.Errorf("stopped: IdleHours = %v, want 6", out.Reading.IdleHours)
	}
}

func TestEngine_ReportedIdleWins(t *testing.T) {
	obs := temperate()
	obs[fouling.ObsVesselSpeed] = 0
	obs[fouling.ObsIdleHours] = 9

	e := NewEngine()
	e.Process(vessel(""), makeResult(obs), tick(0))
	out := e.Process(vessel(""), makeResult(obs), tick(3))
	if out.Reading.IdleHours != 9 {
		t.Errorf("IdleHours = %v, want reported 9", out.Reading.IdleHours)
	}
}

func TestEngine_MissingSpeedAssumesUnderway(t *testing.T) {
	obs := temperate()
	delete(obs, fouling.ObsVesselSpeed)

	e := NewEngine()
	e.Process(vessel(""), makeResult(obs), tick(0))
	out := e.Process(vessel(""), makeResult(obs), tick(4))
	if out.Reading.IdleHours != 0 {
		t.Errorf("IdleHours = %v, want 0", out.Reading.IdleHours)
	}
	if out.Reading.VesselSpeedKnots != fouling.DefaultVesselSpeedKnots {
		t.Errorf("VesselSpeedKnots = %v, want default", out.Reading.VesselSpeedKnots)
	}
}

func TestEngine_DaysSinceFirstSeen(t *testing.T) {
	v := vessel("")
	v.LastCleaned = ""

	e := NewEngine()
	first := e.Process(v, makeResult(temperate()), baseTime)
	if first.Reading.DaysSinceClean != 0 {
		t.Errorf("first DaysSinceClean = %d, want 0", first.Reading.DaysSinceClean)
	}
	later := e.Process(v, makeResult(temperate()), baseTime.AddDate(0, 0, 10).Add(time.Hour))
	if later.Reading.DaysSinceClean != 10 {
		t.Errorf("later DaysSinceClean = %d, want 10", later.Reading.DaysSinceClean)
	}
}

func TestEngine_CleanedInFuture(t *testing.T) {
	v := vessel("")
	v.LastCleaned = "2027-01-01"
	out := NewEngine().Process(v, makeResult(temperate()), baseTime)
	if out.Reading.DaysSinceClean != 0 || out.State != types.StateClean {
		t.Errorf("days=%d state=%q, want 0/clean", out.Reading.DaysSinceClean, out.State)
	}
}

func TestEngine_Forget(t *testing.T) {
	e := NewEngine()
	v := vessel("")
	e.Process(v, failed(), tick(0))
	e.Forget(v.ID)

	out := e.Process(v, makeResult(temperate()), tick(1))
	if out.UptimePct != 100 {
		t.Errorf("UptimePct after Forget = %v, want 100", out.UptimePct)
	}
}

func TestEngine_ConcurrentVessels(t *testing.T) {
	e := NewEngine()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := vessel("")
			v.ID = string(rune('a' + i))
			for j := 0; j < 50; j++ {
				e.Process(v, makeResult(temperate()), tick(float64(j)))
			}
		}(i)
	}
	wg.Wait()
	if got := len(e.states); got != 8 {
		t.Errorf("tracked vessels = %d, want 8", got)
	}
}
