package scraper

import (
	"context"
	"sync"

	"github.com/seawise/seawise/pkg/fouling"
)

// staticScraper reports fixed observations from configuration. It is used
// for moored vessels and for demos without live sensors.
type staticScraper struct {
	vesselID string
	obs      map[string]float64
}

func (s *staticScraper) Scrape(_ context.Context) (*ScrapeResult, error) {
	res := newResult(s.vesselID, "static")
	for k, v := range s.obs {
		res.Observations[k] = v
	}
	return res, nil
}

// simScraper draws a fresh randomized reading on every scrape.
type simScraper struct {
	vesselID string

	mu  sync.Mutex
	sim *fouling.Simulator
}

func newSimScraper(vesselID string, seed int64) *simScraper {
	return &simScraper{vesselID: vesselID, sim: fouling.NewSimulator(seed)}
}

func (s *simScraper) Scrape(_ context.Context) (*ScrapeResult, error) {
	s.mu.Lock()
	obs := s.sim.Observations()
	s.mu.Unlock()

	res := newResult(s.vesselID, "simulated")
	res.Observations = obs
	return res, nil
}
