package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/seawise/seawise/pkg/fouling"
)

type jsonScraper struct {
	httpSource
}

// Scrape fetches a flat JSON object from the endpoint and keeps the numeric
// fields whose names are canonical observation keys. Other fields are ignored.
func (s *jsonScraper) Scrape(ctx context.Context) (*ScrapeResult, error) {
	res := newResult(s.vesselID, "json")

	body, err := s.get(ctx, "application/json")
	if err != nil {
		res.Err = fmt.Errorf("json scrape %q: %w", s.vesselID, err)
		slog.Warn("scraper: json fetch failed", "vessel", s.vesselID, "err", err)
		return res, nil
	}
	defer body.Close()

	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		res.Err = fmt.Errorf("json scrape %q: decode: %w", s.vesselID, err)
		slog.Warn("scraper: json decode failed", "vessel", s.vesselID, "err", err)
		return res, nil
	}

	for _, key := range fouling.ObservationKeys() {
		if v, ok := raw[key].(float64); ok {
			res.Observations[key] = v
		}
	}
	return res, nil
}
