package types

import (
	"time"

	"github.com/seawise/seawise/pkg/fouling"
)

// State values carried by a snapshot. The four known states mirror the
// fouling classes; StateUnknown means no prediction could be made.
const (
	StateClean   = string(fouling.ClassClean)
	StateLow     = string(fouling.ClassLow)
	StateMedium  = string(fouling.ClassMedium)
	StateHigh    = string(fouling.ClassHigh)
	StateUnknown = "unknown"
)

// PredictionSnapshot is one vessel's latest fouling estimate together with
// the reading it was derived from.
type PredictionSnapshot struct {
	ID            string `json:"id"`
	VesselID      string `json:"vessel_id"`
	VesselName    string `json:"vessel_name,omitempty"`
	SourceType    string `json:"source_type"`
	Variant       string `json:"variant"`
	TimestampUnix int64  `json:"timestamp_unix"`
	State         string `json:"state"`

	Reading    fouling.Reading    `json:"reading"`
	Prediction fouling.Prediction `json:"prediction"`

	// UptimePct is the share of recent sampling cycles that produced data.
	UptimePct float64 `json:"uptime_pct"`

	// ErrorMessage is non-empty when the latest sample failed.
	ErrorMessage string `json:"error_message,omitempty"`
	// MissingField names the observation an otherwise good sample lacked.
	MissingField string `json:"missing_field,omitempty"`

	Certs []CertStatus `json:"certs,omitempty"`
}

// Timestamp returns TimestampUnix as a UTC time.
func (s *PredictionSnapshot) Timestamp() time.Time {
	return time.Unix(s.TimestampUnix, 0).UTC()
}

// CertStatus describes the TLS certificate presented by a sensor endpoint.
type CertStatus struct {
	Endpoint string `json:"endpoint"`
	AuthType string `json:"auth_type"`
	Status   string `json:"status"` // valid | expiring | expired | unreachable
	DaysLeft int32  `json:"days_left"`
	Issuer   string `json:"issuer,omitempty"`
	NotAfter string `json:"not_after,omitempty"`
}

// SendResponse acknowledges a shipped snapshot.
type SendResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
