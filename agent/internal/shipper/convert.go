package shipper

import (
	"github.com/google/uuid"

	"github.com/seawise/seawise/agent/internal/compute"
	"github.com/seawise/seawise/pkg/types"
)

// toSnapshot converts a compute.Result into the wire snapshot sent to the
// server. Every snapshot gets a fresh random ID so the server's history can
// deduplicate resends after a reconnect.
func toSnapshot(r *compute.Result, certs []types.CertStatus) *types.PredictionSnapshot {
	snap := &types.PredictionSnapshot{
		ID:            uuid.NewString(),
		VesselID:      r.VesselID,
		VesselName:    r.VesselName,
		SourceType:    r.SourceType,
		Variant:       r.Variant,
		TimestampUnix: r.Timestamp.Unix(),
		State:         r.State,
		UptimePct:     r.UptimePct,
		ErrorMessage:  r.ErrorMessage,
		MissingField:  r.MissingField,
	}
	if r.State != types.StateUnknown {
		snap.Reading = r.Reading
		snap.Prediction = r.Prediction
	}
	if len(certs) > 0 {
		snap.Certs = append([]types.CertStatus(nil), certs...)
	}
	return snap
}
