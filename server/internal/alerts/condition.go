package alerts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seawise/seawise/pkg/types"
)

// condition is a parsed rule expression of the form "field op value".
type condition struct {
	field string
	op    string
	raw   string  // right-hand side as written
	num   float64 // right-hand side for numeric fields
}

// numericFields maps rule field names to snapshot values.
var numericFields = map[string]func(*types.PredictionSnapshot) float64{
	"fouling_pct":         func(s *types.PredictionSnapshot) float64 { return s.Prediction.FoulingPercent },
	"fuel_penalty_pct":    func(s *types.PredictionSnapshot) float64 { return s.Prediction.FuelPenaltyPercent },
	"speed_reduction_pct": func(s *types.PredictionSnapshot) float64 { return s.Prediction.SpeedReductionPercent },
	"daily_growth_pct":    func(s *types.PredictionSnapshot) float64 { return s.Prediction.DailyGrowthRatePercent },
	"days_since_clean":    func(s *types.PredictionSnapshot) float64 { return float64(s.Reading.DaysSinceClean) },
	"idle_hours":          func(s *types.PredictionSnapshot) float64 { return s.Reading.IdleHours },
	"uptime_pct":          func(s *types.PredictionSnapshot) float64 { return s.UptimePct },
}

// parseCondition parses a rule condition string.
//
// Supported expressions:
//
//	fouling_pct > 70
//	fuel_penalty_pct >= 10
//	speed_reduction_pct > 5
//	daily_growth_pct > 1
//	days_since_clean >= 90
//	idle_hours > 12
//	uptime_pct < 90
//	cert_days_left < 14
//	class == high
//	state == unknown
//	recommended_cleaning == true
func parseCondition(expr string) (condition, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return condition{}, fmt.Errorf("condition %q: want \"field op value\"", expr)
	}
	c := condition{field: parts[0], op: parts[1], raw: parts[2]}

	switch c.field {
	case "class", "state":
		if c.op != "==" && c.op != "!=" {
			return condition{}, fmt.Errorf("condition %q: %s supports only == and !=", expr, c.field)
		}
		return c, nil

	case "recommended_cleaning":
		if c.op != "==" && c.op != "!=" {
			return condition{}, fmt.Errorf("condition %q: %s supports only == and !=", expr, c.field)
		}
		if _, err := strconv.ParseBool(c.raw); err != nil {
			return condition{}, fmt.Errorf("condition %q: want true or false", expr)
		}
		return c, nil
	}

	if _, ok := numericFields[c.field]; !ok && c.field != "cert_days_left" {
		return condition{}, fmt.Errorf("condition %q: unknown field %q", expr, c.field)
	}
	switch c.op {
	case ">", ">=", "<", "<=", "==", "!=":
	default:
		return condition{}, fmt.Errorf("condition %q: unknown operator %q", expr, c.op)
	}
	v, err := strconv.ParseFloat(c.raw, 64)
	if err != nil {
		return condition{}, fmt.Errorf("condition %q: threshold: %w", expr, err)
	}
	c.num = v
	return c, nil
}

// applies reports whether snap carries the data the condition reads.
// A snapshot in the unknown state has no prediction, so only state
// conditions can be judged against it.
func (c condition) applies(snap *types.PredictionSnapshot) bool {
	return c.field == "state" || snap.State != types.StateUnknown
}

// eval reports whether snap satisfies the condition and the value that was
// compared. Callers check applies first; eval never fires on an unknown
// snapshot for non-state fields.
func (c condition) eval(snap *types.PredictionSnapshot) (bool, float64) {
	switch c.field {
	case "state":
		return (snap.State == c.raw) == (c.op == "=="), 0
	}

	if snap.State == types.StateUnknown {
		return false, 0
	}

	switch c.field {
	case "class":
		return (string(snap.Prediction.FoulingClass) == c.raw) == (c.op == "=="), snap.Prediction.FoulingPercent

	case "recommended_cleaning":
		want, _ := strconv.ParseBool(c.raw)
		return (snap.Prediction.RecommendedCleaning == want) == (c.op == "=="), snap.Prediction.FoulingPercent

	case "cert_days_left":
		for _, cs := range snap.Certs {
			v := float64(cs.DaysLeft)
			if compareFloat(v, c.op, c.num) {
				return true, v
			}
		}
		return false, 0
	}

	v := numericFields[c.field](snap)
	return compareFloat(v, c.op, c.num), v
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
