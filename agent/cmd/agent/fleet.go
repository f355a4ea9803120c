package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/seawise/seawise/agent/internal/compute"
	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/agent/internal/scraper"
	"github.com/seawise/seawise/pkg/types"
)

// certRefresh is how often sensor certificates are re-inspected.
const certRefresh = time.Hour

// processor turns a scrape into a prediction.
type processor interface {
	Process(v config.Vessel, res *scraper.ScrapeResult, now time.Time) *compute.Result
	Forget(vesselID string)
}

type certChecker interface {
	Check(ctx context.Context, v config.Vessel) *types.CertStatus
}

type sink interface {
	Ship(res *compute.Result, certs ...types.CertStatus)
}

// pipeline is the scraper and cached certificate state for one vessel.
type pipeline struct {
	vessel  config.Vessel
	scraper scraper.Scraper

	cert      *types.CertStatus
	certFresh time.Time
}

// fleet owns the per-vessel pipelines. reload swaps them atomically so the
// sample loop and the config watcher can run concurrently.
type fleet struct {
	engine processor
	certs  certChecker
	out    sink

	mu        sync.Mutex
	pipelines []*pipeline
}

func newFleet(engine processor, certs certChecker, out sink) *fleet {
	return &fleet{engine: engine, certs: certs, out: out}
}

// reload rebuilds pipelines from vessels. Vessels that disappeared have
// their engine state dropped. A vessel whose scraper cannot be built is
// skipped with a log line.
func (f *fleet) reload(vessels []config.Vessel) {
	next := make([]*pipeline, 0, len(vessels))
	keep := make(map[string]bool, len(vessels))
	for _, v := range vessels {
		s, err := scraper.New(v)
		if err != nil {
			slog.Error("skipping vessel, could not build scraper", "vessel", v.ID, "err", err)
			continue
		}
		next = append(next, &pipeline{vessel: v, scraper: s})
		keep[v.ID] = true
		slog.Info("registered vessel", "id", v.ID, "type", v.Source.Type, "variant", v.Variant)
	}

	f.mu.Lock()
	prev := f.pipelines
	f.pipelines = next
	f.mu.Unlock()

	for _, p := range prev {
		if !keep[p.vessel.ID] {
			f.engine.Forget(p.vessel.ID)
		}
	}
	if len(next) == 0 {
		slog.Warn("no vessels configured, agent will idle")
	}
}

// sample runs one cycle: scrape, predict and ship for every vessel.
func (f *fleet) sample(ctx context.Context, now time.Time) {
	f.mu.Lock()
	pipelines := f.pipelines
	f.mu.Unlock()

	for _, p := range pipelines {
		if ctx.Err() != nil {
			return
		}
		res, err := p.scraper.Scrape(ctx)
		if err != nil {
			slog.Warn("scrape error", "vessel", p.vessel.ID, "err", err)
			continue
		}
		result := f.engine.Process(p.vessel, res, now)

		var certs []types.CertStatus
		if cs := f.certFor(ctx, p, now); cs != nil {
			certs = append(certs, *cs)
		}
		f.out.Ship(result, certs...)
		slog.Debug("shipped prediction",
			"vessel", p.vessel.ID,
			"state", result.State,
			"fouling_pct", result.Prediction.FoulingPercent,
		)
	}
}

func (f *fleet) certFor(ctx context.Context, p *pipeline, now time.Time) *types.CertStatus {
	if p.certFresh.IsZero() || now.Sub(p.certFresh) >= certRefresh {
		p.cert = f.certs.Check(ctx, p.vessel)
		p.certFresh = now
	}
	return p.cert
}
