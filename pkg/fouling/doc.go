// Package fouling estimates hull biofouling from environmental and
// operational observations.
//
// Estimate(Reading) is the canonical estimator. It derives six multiplicative
// factors (temperature, salinity, speed, idle, nutrient, environmental
// stress), turns their product into a daily growth rate, accumulates growth
// over the days since the last hull clean and maps the resulting fouling
// percentage onto a class, a fuel penalty and a speed loss:
//
//	daily   = 3.2 × Π factors
//	fouling = days × daily                              (days ≤ 30)
//	        = 30 × daily + (days − 30) × daily × 1.2    (days > 30)
//	fuel    = (fouling/100)^1.3 × 35
//	speed   = (fouling/100) × 18 × (1 + fouling/500)
//
// Class thresholds: clean ≤10, low ≤30, medium ≤70, high >70. Cleaning is
// recommended above 75 %. All emitted floats are rounded to 2 decimals.
//
// The estimator never validates its input. Out-of-range values produce
// extreme (clamped where documented) results; non-finite values are the
// caller's problem. Every call is pure and safe for concurrent use.
//
// Two variants implement the Estimator interface: Enhanced (canonical) and
// Baseline (the older simple model with a 2.0 base rate). Lookup resolves
// a variant by name.
package fouling
