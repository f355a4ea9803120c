// Package ws implements the WebSocket hub for seawise-server.
//
// The hub pushes the fleet snapshot to every connected dashboard on a fixed
// interval and once immediately on connect. Messages use the envelope
//
//	{"event": "snapshot", "data": { /* GET /api/v1/snapshot */ }}
//
// Clients that fall behind by more than a small buffer are disconnected.
// The server mounts the hub at /ws/stream.
package ws
