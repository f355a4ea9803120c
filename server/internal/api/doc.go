// Package api implements the HTTP REST API for seawise-server.
//
// New(store, alerts, history) returns an http.Handler that serves:
//
//	GET  /api/v1/health                 fleet summary: per-class counts, mean fouling
//	GET  /api/v1/vessels                all live vessels ([]VesselResponse)
//	GET  /api/v1/vessels/{id}           single vessel; 404 if unknown or stale
//	GET  /api/v1/vessels/{id}/history   persisted samples; 503 without storage
//	GET  /api/v1/alerts                 firing and recently resolved alerts
//	GET  /api/v1/certs                  sensor certificate status per vessel
//	GET  /api/v1/snapshot               all live vessels + generated_at
//	GET  /api/v1/variants               estimator variant names
//	POST /api/v1/predict?variant=       on-demand estimate for a posted reading
//
// Wrong methods get 405 and every error body is {"error": "..."}.
// Each vessel carries advisory hints computed in hints.go.
package api
