package api

import (
	"fmt"
	"sort"

	"github.com/seawise/seawise/pkg/types"
)

// Hint levels, most severe first.
const (
	LevelCritical = "critical"
	LevelWarning  = "warning"
	LevelInfo     = "info"
	LevelOK       = "ok"
)

// Thresholds that trigger advisory hints.
const (
	heavyFoulingPct   = 60.0
	fuelPenaltyWarn   = 10.0
	idleGrowthHours   = 12.0
	fastGrowthPct     = 1.5
	samplingGapUptime = 80.0
)

// AdvisoryHint is one plain-language observation about a vessel's hull.
// The dashboard shows Title as a chip and Detail on click.
type AdvisoryHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical".
	Level string `json:"level"`
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional number the hint refers to (e.g. fuel penalty %).
	Value *float64 `json:"value,omitempty"`
}

var levelRank = map[string]int{
	LevelCritical: 0,
	LevelWarning:  1,
	LevelInfo:     2,
	LevelOK:       3,
}

// computeHints derives advisory hints from a snapshot, most severe first.
func computeHints(snap *types.PredictionSnapshot) []AdvisoryHint {
	hints := []AdvisoryHint{}

	if snap.ErrorMessage != "" {
		hints = append(hints, AdvisoryHint{
			Key:   "sample_failed",
			Level: LevelCritical,
			Title: "Sensor feed failing",
			Detail: fmt.Sprintf(
				"The agent could not read this vessel's sensors: %q. "+
					"Until the feed recovers no fouling estimate is available.",
				snap.ErrorMessage),
		})
		return hints
	}
	if snap.State == types.StateUnknown {
		detail := "The latest sample did not carry enough data for an estimate."
		if snap.MissingField != "" {
			detail = fmt.Sprintf("The latest sample did not report %s, which the estimate needs.", snap.MissingField)
		}
		hints = append(hints, AdvisoryHint{
			Key:    "no_prediction",
			Level:  LevelInfo,
			Title:  "No estimate yet",
			Detail: detail,
		})
		return hints
	}

	pred := snap.Prediction
	reading := snap.Reading

	if pred.RecommendedCleaning {
		v := pred.FoulingPercent
		hints = append(hints, AdvisoryHint{
			Key:   "cleaning_due",
			Level: LevelWarning,
			Title: "Hull cleaning due",
			Detail: fmt.Sprintf(
				"Estimated fouling coverage is %.1f%% after %d days since the last clean. "+
					"Schedule a hull cleaning at the next port call.",
				pred.FoulingPercent, reading.DaysSinceClean),
			Value: &v,
		})
	}
	if pred.FoulingPercent >= heavyFoulingPct {
		v := pred.FoulingPercent
		hints = append(hints, AdvisoryHint{
			Key:   "heavy_fouling",
			Level: LevelCritical,
			Title: fmt.Sprintf("%.0f%% fouled", pred.FoulingPercent),
			Detail: fmt.Sprintf(
				"Coverage is %.1f%% and speed loss is already %.1f%%. "+
					"Heavy growth hardens over time and becomes harder to remove.",
				pred.FoulingPercent, pred.SpeedReductionPercent),
			Value: &v,
		})
	}
	if pred.FuelPenaltyPercent >= fuelPenaltyWarn {
		v := pred.FuelPenaltyPercent
		hints = append(hints, AdvisoryHint{
			Key:   "fuel_penalty",
			Level: LevelWarning,
			Title: fmt.Sprintf("+%.1f%% fuel", pred.FuelPenaltyPercent),
			Detail: fmt.Sprintf(
				"Hull drag is costing an estimated %.1f%% extra fuel at the current speed.",
				pred.FuelPenaltyPercent),
			Value: &v,
		})
	}
	if reading.IdleHours >= idleGrowthHours {
		v := reading.IdleHours
		hints = append(hints, AdvisoryHint{
			Key:   "idle_growth",
			Level: LevelInfo,
			Title: "Long idle period",
			Detail: fmt.Sprintf(
				"The vessel has been idle for %.0f hours. Stationary hulls foul faster, "+
					"especially in warm water.",
				reading.IdleHours),
			Value: &v,
		})
	}
	if pred.DailyGrowthRatePercent >= fastGrowthPct {
		v := pred.DailyGrowthRatePercent
		hints = append(hints, AdvisoryHint{
			Key:   "fast_growth",
			Level: LevelInfo,
			Title: "Fast growth conditions",
			Detail: fmt.Sprintf(
				"Current conditions add about %.2f%% coverage per day.",
				pred.DailyGrowthRatePercent),
			Value: &v,
		})
	}
	if snap.UptimePct < samplingGapUptime {
		v := snap.UptimePct
		hints = append(hints, AdvisoryHint{
			Key:   "sampling_gaps",
			Level: LevelWarning,
			Title: "Sampling gaps",
			Detail: fmt.Sprintf(
				"Only %.0f%% of recent samples succeeded. Estimates may lag the real hull state.",
				snap.UptimePct),
			Value: &v,
		})
	}
	for _, c := range snap.Certs {
		if c.Status == "valid" {
			continue
		}
		level := LevelWarning
		if c.Status == "expired" {
			level = LevelCritical
		}
		hints = append(hints, AdvisoryHint{
			Key:    "sensor_cert",
			Level:  level,
			Title:  "Sensor certificate " + c.Status,
			Detail: fmt.Sprintf("The TLS certificate at %s is %s (%d days left).", c.Endpoint, c.Status, c.DaysLeft),
		})
	}

	if len(hints) == 0 {
		hints = append(hints, AdvisoryHint{
			Key:    "all_clear",
			Level:  LevelOK,
			Title:  "Hull in good shape",
			Detail: "No action needed. Fouling and fuel penalty are within normal bounds.",
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}
