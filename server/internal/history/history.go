package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seawise/seawise/pkg/types"
)

// DefaultLimit caps Query results when the caller passes limit <= 0.
const DefaultLimit = 500

// MaxLimit is the largest page Query will return.
const MaxLimit = 10000

// ErrClosed is returned by operations on a closed History.
var ErrClosed = errors.New("history: closed")

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id          TEXT PRIMARY KEY,
	vessel_id   TEXT NOT NULL,
	ts          INTEGER NOT NULL,
	state       TEXT NOT NULL,
	fouling_pct REAL NOT NULL,
	body        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_vessel_ts ON predictions(vessel_id, ts);
CREATE INDEX IF NOT EXISTS idx_predictions_ts ON predictions(ts);
`

// History is an append-only log of prediction snapshots in SQLite.
// It is safe for concurrent use.
type History struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %q: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &History{db: db}, nil
}

// Close releases the database. Later calls on h return ErrClosed.
func (h *History) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	return h.db.Close()
}

// Append records snap. A snapshot whose ID is already stored is ignored, so
// resends after an agent reconnect do not duplicate rows.
func (h *History) Append(ctx context.Context, snap *types.PredictionSnapshot) error {
	if h.closed.Load() {
		return fmt.Errorf("history: append: %w", ErrClosed)
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("history: encode snapshot: %w", err)
	}
	_, err = h.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO predictions (id, vessel_id, ts, state, fouling_pct, body)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.VesselID, snap.TimestampUnix, snap.State, snap.Prediction.FoulingPercent, string(body),
	)
	if err != nil {
		return wrap("append", err)
	}
	return nil
}

// Query returns up to limit snapshots for vesselID with timestamps in
// [from, to], oldest first. A zero from or to leaves that side open. When
// more rows match than limit, the most recent ones are returned.
func (h *History) Query(ctx context.Context, vesselID string, from, to time.Time, limit int) ([]*types.PredictionSnapshot, error) {
	if h.closed.Load() {
		return nil, fmt.Errorf("history: query: %w", ErrClosed)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	lo, hi := int64(0), int64(1<<62)
	if !from.IsZero() {
		lo = from.Unix()
	}
	if !to.IsZero() {
		hi = to.Unix()
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT body FROM (
			SELECT body, ts, rowid FROM predictions
			WHERE vessel_id = ? AND ts >= ? AND ts <= ?
			ORDER BY ts DESC, rowid DESC
			LIMIT ?
		) ORDER BY ts ASC, rowid ASC`,
		vesselID, lo, hi, limit,
	)
	if err != nil {
		return nil, wrap("query", err)
	}
	defer rows.Close()

	var out []*types.PredictionSnapshot
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, wrap("scan", err)
		}
		var snap types.PredictionSnapshot
		if err := json.Unmarshal([]byte(body), &snap); err != nil {
			return nil, fmt.Errorf("history: decode row: %w", err)
		}
		out = append(out, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("rows", err)
	}
	return out, nil
}

// Prune deletes rows older than before and returns how many were removed.
func (h *History) Prune(ctx context.Context, before time.Time) (int64, error) {
	if h.closed.Load() {
		return 0, fmt.Errorf("history: prune: %w", ErrClosed)
	}
	res, err := h.db.ExecContext(ctx, `DELETE FROM predictions WHERE ts < ?`, before.Unix())
	if err != nil {
		return 0, wrap("prune", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// RunRetention prunes rows older than retention once at start and then
// hourly. It blocks until ctx is cancelled. A non-positive retention keeps
// everything and returns immediately.
func (h *History) RunRetention(ctx context.Context, retention time.Duration) {
	if retention <= 0 {
		return
	}
	prune := func() {
		n, err := h.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("history: prune failed", "err", err)
			}
			return
		}
		if n > 0 {
			slog.Info("history: pruned old predictions", "rows", n, "retention", retention)
		}
	}

	prune()
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			prune()
		}
	}
}

func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("history: %s: %w", op, ErrClosed)
	}
	return fmt.Errorf("history: %s: %w", op, err)
}
