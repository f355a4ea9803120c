package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/seawise/seawise/pkg/types"
)

// Entry is a vessel snapshot together with the time it was last received.
type Entry struct {
	Snapshot  *types.PredictionSnapshot
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory store of the latest snapshot per vessel.
// A background goroutine (Run) periodically evicts entries that have not
// been updated within the configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// TTL returns the configured freshness window.
func (s *Store) TTL() time.Duration { return s.ttl }

// Put stores or replaces the snapshot for snap.VesselID and reports whether
// it became the vessel's latest. A snapshot timestamped before the one
// already held is ignored, so a late retry never masks a newer reading.
// Callers must not modify snap after calling Put.
func (s *Store) Put(snap *types.PredictionSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.data[snap.VesselID]; ok && snap.TimestampUnix < cur.Snapshot.TimestampUnix {
		return false
	}
	s.data[snap.VesselID] = &Entry{
		Snapshot:  snap,
		UpdatedAt: s.now(),
	}
	return true
}

// Get returns the live Entry for the given vessel. Entries older than the
// TTL are reported as missing even before Run evicts them.
func (s *Store) Get(vesselID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[vesselID]
	if !ok || !s.live(e, s.now()) {
		return nil, false
	}
	return e, true
}

// List returns all live entries ordered by vessel ID.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	now := s.now()
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if s.live(e, now) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Snapshot.VesselID < out[j].Snapshot.VesselID
	})
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.data {
		if !s.live(e, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

func (s *Store) live(e *Entry, now time.Time) bool {
	return e.UpdatedAt.After(now.Add(-s.ttl))
}

// Run starts the background TTL eviction loop. It ticks at half the TTL interval
// (minimum 1 second) so entries are evicted promptly. Run blocks until ctx is
// cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Info("store: evicted stale vessels", "count", n)
			}
		}
	}
}
