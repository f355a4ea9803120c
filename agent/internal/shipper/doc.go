// Package shipper sends PredictionSnapshot messages to seawise-server via
// gRPC (PredictionService.SendPrediction unary RPC, JSON codec from pkg/wire).
//
// Shipper.Ship() is non-blocking: results are converted to snapshots and
// placed in an in-memory channel (default capacity 1000). When the buffer is
// full the oldest entry is evicted so the latest fouling data is preserved.
//
// Shipper.Run() drains the buffer in a loop, reconnecting with truncated
// exponential backoff (1s to 60s, ±25% jitter) on connection or send errors.
// Permanent gRPC errors (Unauthenticated, PermissionDenied, InvalidArgument)
// discard the snapshot immediately rather than retrying.
//
// Auth: mTLS via credentials.NewTLS(), API key via gRPC metadata header,
// or insecure (plaintext) for local development.
package shipper
