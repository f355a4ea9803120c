package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/pkg/fouling"
)

// exporterMetrics is a typical hull-sensor exporter page. Temperature comes
// from two sea chests and must be averaged.
const exporterMetrics = `
# HELP seawise_sea_temperature_celsius Sea water temperature at the intake.
# TYPE seawise_sea_temperature_celsius gauge
seawise_sea_temperature_celsius{chest="port"} 25
seawise_sea_temperature_celsius{chest="starboard"} 27

# HELP seawise_salinity_psu Practical salinity.
# TYPE seawise_salinity_psu gauge
seawise_salinity_psu 34.5

# HELP seawise_vessel_speed_knots Speed over ground.
# TYPE seawise_vessel_speed_knots gauge
seawise_vessel_speed_knots 12

# HELP seawise_idle_hours Hours stationary in the last day.
# TYPE seawise_idle_hours gauge
seawise_idle_hours 6

# HELP go_goroutines Number of goroutines that currently exist.
# TYPE go_goroutines gauge
go_goroutines 12
`

func promFor(url string, client *http.Client) *promScraper {
	return &promScraper{httpSource: httpSource{
		vesselID: "mv-test",
		src:      config.Source{Type: "prometheus", Endpoint: url},
		client:   client,
	}}
}

func TestPromScraper_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(exporterMetrics))
	}))
	defer srv.Close()

	res, err := promFor(srv.URL, srv.Client()).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if res.Err != nil {
		t.Fatalf("res.Err = %v", res.Err)
	}
	if res.VesselID != "mv-test" || res.SourceType != "prometheus" {
		t.Errorf("identity = %q/%q", res.VesselID, res.SourceType)
	}

	want := map[string]float64{
		fouling.ObsSeaTemperature: 26,
		fouling.ObsSalinity:       34.5,
		fouling.ObsVesselSpeed:    12,
		fouling.ObsIdleHours:      6,
	}
	if len(res.Observations) != len(want) {
		t.Errorf("Observations = %v, want %d keys", res.Observations, len(want))
	}
	for k, v := range want {
		if got := res.Observations[k]; got != v {
			t.Errorf("Observations[%s] = %v, want %v", k, got, v)
		}
	}
}

func TestPromScraper_UntypedFamilies(t *testing.T) {
	body := `
seawise_chlorophyll_a_mg_m3 0.4
seawise_wind_speed_mps 8
seawise_current_speed_mps 1.5
`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	res, _ := promFor(srv.URL, srv.Client()).Scrape(context.Background())
	if res.Err != nil {
		t.Fatalf("res.Err = %v", res.Err)
	}
	if got := res.Observations[fouling.ObsChlorophyllA]; got != 0.4 {
		t.Errorf("chlorophyll = %v, want 0.4", got)
	}
	if got := res.Observations[fouling.ObsCurrentSpeed]; got != 1.5 {
		t.Errorf("current = %v, want 1.5", got)
	}
	if _, ok := res.Observations[fouling.ObsSeaTemperature]; ok {
		t.Error("temperature should be absent when not exported")
	}
}

func TestPromScraper_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res, err := promFor(srv.URL, srv.Client()).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() should not return err, got: %v", err)
	}
	if res.Err == nil {
		t.Fatal("res.Err should be set on a non-200 response")
	}
}

func TestPromScraper_ConnectFailure(t *testing.T) {
	res, err := promFor("http://127.0.0.1:1", &http.Client{}).Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() should not return err, got: %v", err)
	}
	if res.Err == nil {
		t.Fatal("res.Err should be set when endpoint is unreachable")
	}
}
