package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/time/rate"

	"github.com/seawise/seawise/agent/internal/config"
)

const defaultScrapeTimeout = 10 * time.Second

// ScrapeResult is the normalized output of one sampling cycle for a vessel.
type ScrapeResult struct {
	VesselID   string
	SourceType string
	ScrapedAt  time.Time

	// Observations holds the values the source reported, keyed by canonical
	// observation name (fouling.Obs*). Absent keys were not reported.
	Observations map[string]float64

	// Err is non-nil if the scrape itself failed (connectivity, auth, parse).
	// The compute engine treats a non-nil Err as an unknown state.
	Err error
}

// Scraper is the common interface implemented by every sensor source.
type Scraper interface {
	Scrape(ctx context.Context) (*ScrapeResult, error)
}

// New returns the appropriate Scraper for the vessel's source configuration.
// HTTP-backed scrapers build their client and rate limiter once.
func New(v config.Vessel) (Scraper, error) {
	src := v.Source
	switch src.Type {
	case "static":
		return &staticScraper{vesselID: v.ID, obs: src.Static}, nil
	case "simulated":
		return newSimScraper(v.ID, src.Seed), nil
	}

	client, err := buildHTTPClient(src)
	if err != nil {
		return nil, fmt.Errorf("scraper %q: build http client: %w", v.ID, err)
	}
	h := httpSource{vesselID: v.ID, src: src, client: client, limiter: newLimiter(src.RateLimit)}
	switch src.Type {
	case "prometheus":
		return &promScraper{httpSource: h}, nil
	case "json":
		return &jsonScraper{httpSource: h}, nil
	default:
		return nil, fmt.Errorf("scraper: unsupported type %q", src.Type)
	}
}

// httpSource is the state shared by scrapers that poll an HTTP endpoint.
type httpSource struct {
	vesselID string
	src      config.Source
	client   *http.Client
	limiter  *rate.Limiter // nil when unlimited
}

// get waits for the rate limiter, then performs a GET against the source
// endpoint. The caller must close the returned body.
func (h *httpSource) get(ctx context.Context, accept string) (io.ReadCloser, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.src.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.EffectiveHeader(), t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the source's auth and TLS settings.
func buildHTTPClient(src config.Source) (*http.Client, error) {
	tlsCfg, err := src.Auth.ClientTLS()
	if err != nil {
		return nil, err
	}
	tlsCfg.InsecureSkipVerify = src.TLS.InsecureSkipVerify //nolint:gosec // user-configured

	return &http.Client{
		Transport: &authRoundTripper{
			base: &http.Transport{TLSClientConfig: tlsCfg},
			auth: src.Auth,
		},
		Timeout: defaultScrapeTimeout,
	}, nil
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// meanFamily averages the gauge, counter or untyped values in a family.
// Several sensors reporting the same quantity (port and starboard sea
// chests, say) collapse to their mean. ok is false when the family is
// absent or empty.
func meanFamily(mf *dto.MetricFamily) (mean float64, ok bool) {
	if mf == nil {
		return 0, false
	}
	var total float64
	var n int
	for _, m := range mf.GetMetric() {
		switch {
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// newResult initialises an empty ScrapeResult.
func newResult(vesselID, sourceType string) *ScrapeResult {
	return &ScrapeResult{
		VesselID:     vesselID,
		SourceType:   sourceType,
		ScrapedAt:    time.Now().UTC(),
		Observations: make(map[string]float64),
	}
}
