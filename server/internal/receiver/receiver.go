package receiver

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/seawise/seawise/pkg/types"
	"github.com/seawise/seawise/server/internal/store"
)

// Recorder persists accepted snapshots. *history.History satisfies it.
type Recorder interface {
	Append(ctx context.Context, snap *types.PredictionSnapshot) error
}

// Evaluator checks alert rules against accepted snapshots.
// *alerts.Engine satisfies it.
type Evaluator interface {
	Evaluate(snap *types.PredictionSnapshot)
}

// Receiver implements wire.PredictionServiceServer.
// It validates each incoming snapshot, stores it as the vessel's latest
// state, records it in history and evaluates alert rules.
type Receiver struct {
	store   *store.Store
	history Recorder  // nil when history is disabled
	alerts  Evaluator // nil when alerting is disabled
	now     func() time.Time
}

// New creates a Receiver that writes accepted snapshots to st. hist and
// alerts may be nil.
func New(st *store.Store, hist Recorder, alerts Evaluator) *Receiver {
	return &Receiver{store: st, history: hist, alerts: alerts, now: time.Now}
}

var knownStates = map[string]bool{
	types.StateClean:   true,
	types.StateLow:     true,
	types.StateMedium:  true,
	types.StateHigh:    true,
	types.StateUnknown: true,
}

// SendPrediction is the unary RPC handler called by seawise-agent instances.
// Authentication is enforced by the gRPC server interceptor before this is called.
func (r *Receiver) SendPrediction(ctx context.Context, snap *types.PredictionSnapshot) (*types.SendResponse, error) {
	if snap.VesselID == "" {
		return nil, status.Error(codes.InvalidArgument, "vessel_id is required")
	}
	if !knownStates[snap.State] {
		return nil, status.Errorf(codes.InvalidArgument, "state %q is not one of clean|low|medium|high|unknown", snap.State)
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.TimestampUnix == 0 {
		snap.TimestampUnix = r.now().Unix()
	}

	latest := r.store.Put(snap)

	if r.history != nil {
		if err := r.history.Append(ctx, snap); err != nil {
			slog.Error("receiver: history append failed", "vessel", snap.VesselID, "err", err)
		}
	}
	if !latest {
		slog.Debug("receiver: out-of-order snapshot kept in history only",
			"vessel", snap.VesselID, "timestamp", snap.TimestampUnix)
		return &types.SendResponse{Ok: true}, nil
	}
	if r.alerts != nil {
		r.alerts.Evaluate(snap)
	}

	slog.Debug("receiver: snapshot stored",
		"vessel", snap.VesselID,
		"source_type", snap.SourceType,
		"state", snap.State,
		"fouling_pct", snap.Prediction.FoulingPercent,
	)
	return &types.SendResponse{Ok: true}, nil
}
