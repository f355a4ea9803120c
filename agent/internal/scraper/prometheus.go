package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/common/expfmt"

	"github.com/seawise/seawise/pkg/fouling"
)

// promFamilies maps exporter metric names onto canonical observation keys.
var promFamilies = map[string]string{
	"seawise_sea_temperature_celsius": fouling.ObsSeaTemperature,
	"seawise_salinity_psu":            fouling.ObsSalinity,
	"seawise_vessel_speed_knots":      fouling.ObsVesselSpeed,
	"seawise_idle_hours":              fouling.ObsIdleHours,
	"seawise_chlorophyll_a_mg_m3":     fouling.ObsChlorophyllA,
	"seawise_wind_speed_mps":          fouling.ObsWindSpeed,
	"seawise_current_speed_mps":       fouling.ObsCurrentSpeed,
}

type promScraper struct {
	httpSource
}

// Scrape fetches a vessel exporter's /metrics endpoint and extracts the
// environmental gauges it knows about. Families the exporter does not
// publish are left out of Observations.
func (s *promScraper) Scrape(ctx context.Context) (*ScrapeResult, error) {
	res := newResult(s.vesselID, "prometheus")

	body, err := s.get(ctx, string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err != nil {
		res.Err = fmt.Errorf("prometheus scrape %q: %w", s.vesselID, err)
		slog.Warn("scraper: prometheus fetch failed", "vessel", s.vesselID, "err", err)
		return res, nil
	}
	defer body.Close()

	mfs, err := parseMetrics(body)
	if err != nil {
		res.Err = fmt.Errorf("prometheus scrape %q: %w", s.vesselID, err)
		slog.Warn("scraper: prometheus parse failed", "vessel", s.vesselID, "err", err)
		return res, nil
	}

	for family, key := range promFamilies {
		if v, ok := meanFamily(mfs[family]); ok {
			res.Observations[key] = v
		}
	}
	return res, nil
}
