package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/seawise/seawise/pkg/types"
)

func snap(id string) *types.PredictionSnapshot {
	return &types.PredictionSnapshot{VesselID: id, SourceType: "static", State: types.StateClean}
}

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestPutAndGet(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(snap("mv-aurora"))

	e, ok := st.Get("mv-aurora")
	if !ok {
		t.Fatal("Get: expected entry, got none")
	}
	if e.Snapshot.VesselID != "mv-aurora" {
		t.Errorf("VesselID: got %q, want mv-aurora", e.Snapshot.VesselID)
	}
	if st.TTL() != 5*time.Minute {
		t.Errorf("TTL: got %v", st.TTL())
	}
}

func TestGet_Missing(t *testing.T) {
	st := New(5 * time.Minute)
	if _, ok := st.Get("unknown"); ok {
		t.Fatal("Get on empty store: expected false, got true")
	}
}

func TestGet_StaleHidden(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)
	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(snap("old"))

	st.now = fixedClock(base)
	if _, ok := st.Get("old"); ok {
		t.Error("Get: stale entry should be reported missing")
	}
	if st.Count() != 1 {
		t.Errorf("Count: got %d, want 1 until evicted", st.Count())
	}
}

func TestPut_Overwrites(t *testing.T) {
	st := New(5 * time.Minute)
	s1 := &types.PredictionSnapshot{VesselID: "mv", State: types.StateLow}
	s2 := &types.PredictionSnapshot{VesselID: "mv", State: types.StateMedium}

	st.Put(s1)
	st.Put(s2)

	e, ok := st.Get("mv")
	if !ok {
		t.Fatal("Get: expected entry after two Puts")
	}
	if e.Snapshot.State != types.StateMedium {
		t.Errorf("State: got %q, want medium", e.Snapshot.State)
	}
}

func TestPut_IgnoresOlderSnapshot(t *testing.T) {
	st := New(5 * time.Minute)
	newer := &types.PredictionSnapshot{VesselID: "mv", State: types.StateMedium, TimestampUnix: 200}
	older := &types.PredictionSnapshot{VesselID: "mv", State: types.StateLow, TimestampUnix: 100}

	if !st.Put(newer) {
		t.Fatal("Put(newer) = false, want true")
	}
	if st.Put(older) {
		t.Error("Put(older) = true, want false")
	}
	e, _ := st.Get("mv")
	if e.Snapshot.TimestampUnix != 200 || e.Snapshot.State != types.StateMedium {
		t.Errorf("latest = ts %d state %q, want ts 200 state medium", e.Snapshot.TimestampUnix, e.Snapshot.State)
	}

	same := &types.PredictionSnapshot{VesselID: "mv", State: types.StateHigh, TimestampUnix: 200}
	if !st.Put(same) {
		t.Error("Put with an equal timestamp should replace")
	}
}

func TestList_ExcludesStaleAndSorts(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute)) // stale
	st.Put(snap("old"))

	st.now = fixedClock(base)
	st.Put(snap("zephyr"))
	st.Put(snap("aurora"))

	entries := st.List()
	if len(entries) != 2 {
		t.Fatalf("List: got %d entries, want 2", len(entries))
	}
	if entries[0].Snapshot.VesselID != "aurora" || entries[1].Snapshot.VesselID != "zephyr" {
		t.Errorf("List order: got %q, %q", entries[0].Snapshot.VesselID, entries[1].Snapshot.VesselID)
	}
}

func TestEvict_RemovesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(snap("old1"))
	st.Put(snap("old2"))

	st.now = fixedClock(base)
	st.Put(snap("live"))

	if removed := st.Evict(base); removed != 2 {
		t.Errorf("Evict: removed %d, want 2", removed)
	}
	if st.Count() != 1 {
		t.Errorf("Count after evict: got %d, want 1", st.Count())
	}
}

func TestEvict_NoOp_AllLive(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)
	st.now = fixedClock(base)
	st.Put(snap("mv"))

	if removed := st.Evict(base); removed != 0 {
		t.Errorf("Evict on live entry: removed %d, want 0", removed)
	}
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			st.Put(snap("mv-a"))
		}()
		go func() {
			defer wg.Done()
			st.List()
		}()
		go func() {
			defer wg.Done()
			st.Get("mv-a")
		}()
	}
	wg.Wait()

	if st.Count() != 1 {
		t.Errorf("Count after concurrent puts: got %d, want 1", st.Count())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	st := New(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}
