package api

import (
	"github.com/seawise/seawise/pkg/fouling"
	"github.com/seawise/seawise/pkg/types"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	// State is the worst fouling class across live vessels, or "unknown"
	// when no vessel has a prediction.
	State            string  `json:"state"`
	VesselCount      int     `json:"vessel_count"`
	CleanCount       int     `json:"clean_count"`
	LowCount         int     `json:"low_count"`
	MediumCount      int     `json:"medium_count"`
	HighCount        int     `json:"high_count"`
	UnknownCount     int     `json:"unknown_count"`
	MeanFoulingPct   float64 `json:"mean_fouling_pct"`
	CleaningDueCount int     `json:"cleaning_due_count"`
	AlertCount       int     `json:"alert_count"`
}

// VesselResponse is one vessel entry in GET /api/v1/vessels or
// GET /api/v1/vessels/{id}.
type VesselResponse struct {
	VesselID     string              `json:"vessel_id"`
	VesselName   string              `json:"vessel_name,omitempty"`
	SourceType   string              `json:"source_type"`
	Variant      string              `json:"variant"`
	State        string              `json:"state"`
	Reading      *fouling.Reading    `json:"reading,omitempty"`    // nil when state is unknown
	Prediction   *fouling.Prediction `json:"prediction,omitempty"` // nil when state is unknown
	UptimePct    float64             `json:"uptime_pct"`
	ErrorMessage string              `json:"error_message,omitempty"`
	MissingField string              `json:"missing_field,omitempty"`
	Certs        []types.CertStatus  `json:"certs"`
	Hints        []AdvisoryHint      `json:"hints"`
	SampledAt    string              `json:"sampled_at"` // RFC3339, agent clock
	LastSeen     string              `json:"last_seen"`  // RFC3339, server clock
}

// HistoryPoint is one sample in a vessel's fouling history.
type HistoryPoint struct {
	Timestamp         string  `json:"timestamp"` // RFC3339
	State             string  `json:"state"`
	FoulingPct        float64 `json:"fouling_pct"`
	FuelPenaltyPct    float64 `json:"fuel_penalty_pct"`
	SpeedReductionPct float64 `json:"speed_reduction_pct"`
	DailyGrowthPct    float64 `json:"daily_growth_pct"`
	DaysSinceClean    int     `json:"days_since_clean"`
}

// HistoryResponse is the payload for GET /api/v1/vessels/{id}/history.
type HistoryResponse struct {
	VesselID string         `json:"vessel_id"`
	Points   []HistoryPoint `json:"points"`
}

// CertResponse is one sensor certificate in GET /api/v1/certs.
type CertResponse struct {
	VesselID string `json:"vessel_id"`
	types.CertStatus
}

// PredictResponse is the payload for POST /api/v1/predict.
type PredictResponse struct {
	Variant    string             `json:"variant"`
	Reading    fouling.Reading    `json:"reading"` // with defaults applied
	Prediction fouling.Prediction `json:"prediction"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot.
type SnapshotResponse struct {
	Vessels     []VesselResponse `json:"vessels"`
	GeneratedAt string           `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
