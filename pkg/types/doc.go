// Package types defines the Go types shared by the agent and the server.
// PredictionSnapshot is the unit shipped agent → server over the
// PredictionService RPC and is also what the server stores, persists and
// serves from its REST API.
package types
