// Package history persists every prediction snapshot the server receives in
// a SQLite database (modernc.org/sqlite, no cgo). The REST API reads it to
// draw per-vessel fouling curves, and a retention loop prunes old rows.
package history
