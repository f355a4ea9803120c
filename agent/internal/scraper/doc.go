// Package scraper collects environmental observations for each configured
// vessel. Every scraper returns a ScrapeResult whose Observations map is keyed
// by the canonical names in pkg/fouling (sea_temperature_c, salinity_psu and
// so on). The compute engine turns those into fouling predictions.
//
// Sources: a Prometheus exporter (prometheus.go), a flat JSON endpoint
// (json.go), and fixed or randomized readings (static.go). New(config.Vessel)
// returns the correct Scraper.
//
// HTTP sources share the authRoundTripper in base.go for mTLS, API key,
// bearer and basic auth, and an optional golang.org/x/time/rate limiter.
package scraper
