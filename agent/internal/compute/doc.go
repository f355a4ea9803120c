// Package compute turns scraped vessel observations into fouling
// predictions.
//
// engine.go provides the stateful Engine. For every vessel it resolves the
// configured estimator variant, fills in the inputs a sensor feed cannot
// supply (days since the last hull cleaning, idle hours derived from speed
// history) and runs the estimate from pkg/fouling. vessel.go holds the
// per-vessel state: a rolling sample-uptime window and the idle tracker.
//
// Engine.Process accepts an injectable time.Time so tests are deterministic.
package compute
