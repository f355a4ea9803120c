package fouling

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Class is the four-level fouling bucket derived from FoulingPercent.
type Class string

// Fouling classes, ordered from least to most fouled.
const (
	ClassClean  Class = "clean"
	ClassLow    Class = "low"
	ClassMedium Class = "medium"
	ClassHigh   Class = "high"
)

// Upper bounds (inclusive) for each class. Anything above ThresholdMedium
// is ClassHigh.
const (
	ThresholdClean  = 10.0
	ThresholdLow    = 30.0
	ThresholdMedium = 70.0

	// CleaningThreshold is the fouling percentage above which a hull
	// clean is recommended.
	CleaningThreshold = 75.0
)

// Calibration constants shared by both variants.
const (
	enhancedBaseRate = 3.2
	baselineBaseRate = 2.0

	accelerationDay    = 30
	accelerationFactor = 1.2

	maxFuelPenaltyPct    = 35.0
	fuelPenaltyExponent  = 1.3
	maxSpeedReductionPct = 18.0
)

// Reading is one set of environmental and operational observations for a
// vessel. Fields are independent; nothing is validated.
type Reading struct {
	SeaTemperatureC  float64 `json:"sea_temperature_c" yaml:"sea_temperature_c"`
	SalinityPSU      float64 `json:"salinity_psu" yaml:"salinity_psu"`
	VesselSpeedKnots float64 `json:"vessel_speed_knots" yaml:"vessel_speed_knots"`
	IdleHours        float64 `json:"idle_hours" yaml:"idle_hours"`
	DaysSinceClean   int     `json:"days_since_clean" yaml:"days_since_clean"`
	ChlorophyllAMgM3 float64 `json:"chlorophyll_a_mg_m3" yaml:"chlorophyll_a_mg_m3"`
	WindSpeedMps     float64 `json:"wind_speed_mps" yaml:"wind_speed_mps"`
	CurrentSpeedMps  float64 `json:"current_speed_mps" yaml:"current_speed_mps"`
}

// Factors holds the intermediate multipliers. They are kept for display
// only and are never fed back into the model.
type Factors struct {
	Temperature         float64 `json:"temperature"`
	Salinity            float64 `json:"salinity"`
	Speed               float64 `json:"speed"`
	Idle                float64 `json:"idle"`
	Nutrient            float64 `json:"nutrient"`
	EnvironmentalStress float64 `json:"environmental_stress"`
}

// Product returns the combined environmental multiplier.
func (f Factors) Product() float64 {
	return f.Temperature * f.Salinity * f.Speed * f.Idle * f.Nutrient * f.EnvironmentalStress
}

// Prediction is the estimator output for one Reading.
type Prediction struct {
	FoulingPercent         float64 `json:"fouling_pct"`
	FoulingClass           Class   `json:"fouling_class"`
	FuelPenaltyPercent     float64 `json:"fuel_penalty_pct"`
	SpeedReductionPercent  float64 `json:"speed_reduction_pct"`
	DailyGrowthRatePercent float64 `json:"daily_growth_pct"`
	RecommendedCleaning    bool    `json:"recommended_cleaning"`
	Factors                Factors `json:"environmental_factors"`
}

// Estimator maps a Reading to a Prediction.
// Implementations must be pure and safe for concurrent use.
type Estimator interface {
	Name() string
	Estimate(r Reading) Prediction
}

// ErrUnknownVariant is returned by Lookup for an unregistered variant name.
var ErrUnknownVariant = errors.New("fouling: unknown estimator variant")

// Variant names accepted by Lookup.
const (
	VariantEnhanced = "enhanced"
	VariantBaseline = "baseline"
)

var variants = map[string]Estimator{
	VariantEnhanced: Enhanced{},
	VariantBaseline: Baseline{},
}

// Lookup returns the estimator registered under name. An empty name
// resolves to the canonical Enhanced variant.
func Lookup(name string) (Estimator, error) {
	if name == "" {
		return Enhanced{}, nil
	}
	est, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return est, nil
}

// Variants returns the registered variant names in sorted order.
func Variants() []string {
	out := make([]string, 0, len(variants))
	for name := range variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Estimate runs the canonical Enhanced estimator.
func Estimate(r Reading) Prediction {
	return Enhanced{}.Estimate(r)
}

// Enhanced is the canonical estimator: six environmental factors, a 3.2 %
// base daily growth rate and 20 % faster growth after day 30.
type Enhanced struct{}

// Name implements Estimator.
func (Enhanced) Name() string { return VariantEnhanced }

// Estimate implements Estimator.
func (Enhanced) Estimate(r Reading) Prediction {
	f := Factors{
		Temperature:         temperatureFactor(r.SeaTemperatureC),
		Salinity:            salinityFactor(r.SalinityPSU),
		Speed:               speedFactor(r.VesselSpeedKnots),
		Idle:                idleFactor(r.IdleHours),
		Nutrient:            math.Min(1.3, 1+r.ChlorophyllAMgM3),
		EnvironmentalStress: math.Max(0.7, 1-(r.WindSpeedMps+r.CurrentSpeedMps)/20),
	}
	daily := enhancedBaseRate * f.Product()

	// Growth accelerates once the hull has been uncleaned for a month.
	// The kink at day 30 is part of the model.
	days := float64(r.DaysSinceClean)
	var raw float64
	if r.DaysSinceClean <= accelerationDay {
		raw = days * daily
	} else {
		raw = accelerationDay*daily + (days-accelerationDay)*daily*accelerationFactor
	}
	return finish(raw, daily, f)
}

// Baseline is the older simple estimator. It uses only the temperature,
// salinity, speed and idle factors, a 2.0 % base daily growth rate and
// linear accumulation. Nutrient and stress factors are reported as 1.
type Baseline struct{}

// Name implements Estimator.
func (Baseline) Name() string { return VariantBaseline }

// Estimate implements Estimator.
func (Baseline) Estimate(r Reading) Prediction {
	f := Factors{
		Temperature:         temperatureFactor(r.SeaTemperatureC),
		Salinity:            salinityFactor(r.SalinityPSU),
		Speed:               speedFactor(r.VesselSpeedKnots),
		Idle:                idleFactor(r.IdleHours),
		Nutrient:            1,
		EnvironmentalStress: 1,
	}
	daily := baselineBaseRate * f.Product()
	return finish(float64(r.DaysSinceClean)*daily, daily, f)
}

// finish clamps raw fouling, derives the penalty metrics and rounds every
// emitted value. Class and cleaning advice are taken from the rounded
// percentage so the published fields always agree with each other.
func finish(raw, daily float64, f Factors) Prediction {
	pct := clamp(0, 100, raw)
	fuel := math.Pow(pct/100, fuelPenaltyExponent) * maxFuelPenaltyPct
	speed := (pct / 100) * maxSpeedReductionPct * (1 + pct/500)

	shown := Round2(pct)
	return Prediction{
		FoulingPercent:         shown,
		FoulingClass:           ClassFor(shown),
		FuelPenaltyPercent:     Round2(fuel),
		SpeedReductionPercent:  Round2(speed),
		DailyGrowthRatePercent: Round2(daily),
		RecommendedCleaning:    shown > CleaningThreshold,
		Factors: Factors{
			Temperature:         Round2(f.Temperature),
			Salinity:            Round2(f.Salinity),
			Speed:               Round2(f.Speed),
			Idle:                Round2(f.Idle),
			Nutrient:            Round2(f.Nutrient),
			EnvironmentalStress: Round2(f.EnvironmentalStress),
		},
	}
}

// ClassFor maps a fouling percentage to its Class.
func ClassFor(pct float64) Class {
	switch {
	case pct <= ThresholdClean:
		return ClassClean
	case pct <= ThresholdLow:
		return ClassLow
	case pct <= ThresholdMedium:
		return ClassMedium
	default:
		return ClassHigh
	}
}

// temperatureFactor peaks at 1.2; above 30 °C growth is damped by 0.8.
func temperatureFactor(t float64) float64 {
	damp := 1.0
	if t >= 30 {
		damp = 0.8
	}
	return clamp(0, 1.2, (t-20)/8*damp)
}

// salinityFactor is 1 at oceanic salinity (35 PSU), floored at 0.2.
func salinityFactor(s float64) float64 {
	return clamp(0.2, 1.0, 1-math.Abs(s-35)/10)
}

// speedFactor decays with speed; a hull underway sheds larvae.
func speedFactor(knots float64) float64 {
	return math.Max(0.1, math.Exp(-knots/15))
}

func idleFactor(hours float64) float64 {
	return 1 + (hours/24)*0.8
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds v to two decimal places, half away from zero. Every
// percentage the service emits goes through it.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
