// Package receiver implements wire.PredictionServiceServer, the gRPC endpoint
// that accepts PredictionSnapshot messages from seawise-agent instances.
//
// Receiver.SendPrediction rejects snapshots without a vessel_id or with an
// unrecognised state (codes.InvalidArgument), then updates the live store,
// appends to the history log and runs the alert rules. Authentication is
// enforced upstream by the gRPC server interceptor (see package auth).
package receiver
