package shipper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/seawise/seawise/agent/internal/compute"
	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/pkg/types"
	"github.com/seawise/seawise/pkg/wire"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2
	sendTimeout       = 10 * time.Second
)

// Shipper buffers compute.Results and ships them to seawise-server via gRPC.
// Ship() is non-blocking; when the buffer is full the oldest snapshot is evicted.
// Run() must be called in a goroutine to drain the buffer and handle reconnection.
type Shipper struct {
	cfg    config.AgentConfig
	buf    chan *types.PredictionSnapshot
	retry  atomic.Pointer[types.PredictionSnapshot] // failed send, goes out first
	dialFn dialFunc                                 // injectable for tests
}

// dialFunc is the function signature used to open a gRPC connection.
// Abstracted so tests can point the shipper at an in-process server.
type dialFunc func(ctx context.Context, endpoint string, cfg config.AgentConfig) (*grpc.ClientConn, error)

// New creates a Shipper using the given agent config.
func New(cfg config.AgentConfig) *Shipper {
	return &Shipper{
		cfg:    cfg,
		buf:    make(chan *types.PredictionSnapshot, cfg.BufferSize),
		dialFn: defaultDial,
	}
}

// Ship converts a compute.Result and the vessel's sensor certificate
// statuses to a snapshot and enqueues it. If the buffer is full the oldest
// entry is evicted to make room.
func (s *Shipper) Ship(res *compute.Result, certs ...types.CertStatus) {
	s.enqueue(toSnapshot(res, certs))
}

func (s *Shipper) enqueue(snap *types.PredictionSnapshot) {
	for {
		select {
		case s.buf <- snap:
			return
		default:
		}
		// Buffer full: drop the oldest snapshot, keep the newest.
		select {
		case old := <-s.buf:
			slog.Warn("shipper: buffer full, evicted oldest snapshot",
				"vessel", old.VesselID, "buffer_cap", cap(s.buf))
		default:
		}
	}
}

// Pending reports how many snapshots are waiting to be sent.
func (s *Shipper) Pending() int {
	n := len(s.buf)
	if s.retry.Load() != nil {
		n++
	}
	return n
}

// Run flushes the buffer to the server every ShipInterval. A lost or
// refused connection is retried with exponential backoff. Run blocks until
// ctx is cancelled.
func (s *Shipper) Run(ctx context.Context) {
	bo := newBackoff()
	for ctx.Err() == nil {
		err := s.session(ctx, bo)
		if ctx.Err() != nil {
			return
		}
		wait := bo.next()
		slog.Warn("shipper: server unavailable, will retry",
			"endpoint", s.cfg.ServerEndpoint,
			"err", err,
			"retry_in", wait,
			"pending", s.Pending())
		if !sleep(ctx, wait) {
			return
		}
	}
}

// session dials once and delivers snapshots until the connection fails.
func (s *Shipper) session(ctx context.Context, bo *backoff) error {
	conn, err := s.dialFn(ctx, s.cfg.ServerEndpoint, s.cfg)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	slog.Info("shipper: connected", "endpoint", s.cfg.ServerEndpoint)
	bo.reset()
	return s.drain(ctx, wire.NewPredictionServiceClient(conn))
}

// drain flushes the buffer once per ShipInterval until a transient send
// error or ctx cancellation.
func (s *Shipper) drain(ctx context.Context, client wire.PredictionServiceClient) error {
	interval := s.cfg.ShipInterval
	if interval <= 0 {
		interval = config.DefaultShipInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if err := s.flush(ctx, client); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// flush sends the held-back snapshot, if any, then everything buffered.
// A snapshot that hits a transient error is held back rather than
// re-queued, so it still goes out ahead of newer readings.
func (s *Shipper) flush(ctx context.Context, client wire.PredictionServiceClient) error {
	for ctx.Err() == nil {
		snap := s.retry.Swap(nil)
		if snap == nil {
			select {
			case snap = <-s.buf:
			default:
				return nil
			}
		}
		err := s.send(ctx, client, snap)
		switch {
		case err == nil:
		case isPermanentError(err):
			slog.Error("shipper: snapshot refused, discarding",
				"vessel", snap.VesselID, "err", err)
		default:
			s.retry.Store(snap)
			return fmt.Errorf("send: %w", err)
		}
	}
	return nil
}

func (s *Shipper) send(ctx context.Context, client wire.PredictionServiceClient, snap *types.PredictionSnapshot) error {
	ctx, cancel := context.WithTimeout(s.withCredentials(ctx), sendTimeout)
	defer cancel()

	resp, err := client.SendPrediction(ctx, snap)
	if err != nil {
		return err
	}
	if !resp.Ok {
		slog.Warn("shipper: server did not accept snapshot",
			"vessel", snap.VesselID, "message", resp.Message)
		return nil
	}
	slog.Debug("shipper: snapshot delivered", "vessel", snap.VesselID, "state", snap.State)
	return nil
}

// withCredentials attaches the API key to outgoing metadata in apikey mode.
func (s *Shipper) withCredentials(ctx context.Context) context.Context {
	auth := s.cfg.ServerAuth
	if auth.Mode != "apikey" {
		return ctx
	}
	key := auth.Key()
	if key == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, auth.EffectiveHeader(), key)
}

// isPermanentError reports whether the server rejected the snapshot itself,
// in which case resending it can never succeed.
func isPermanentError(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied:
		return true
	default:
		return false
	}
}

// defaultDial opens a gRPC connection to endpoint with transport security
// taken from the server auth config.
func defaultDial(ctx context.Context, endpoint string, cfg config.AgentConfig) (*grpc.ClientConn, error) {
	opts, err := dialOptions(cfg.ServerAuth)
	if err != nil {
		return nil, err
	}
	return grpc.DialContext(ctx, endpoint, opts...) //nolint:staticcheck // NewClient needs grpc >= 1.63
}

// dialOptions uses TLS with a client certificate in mtls mode and a
// plaintext channel otherwise; API keys travel per call.
func dialOptions(auth config.AuthConfig) ([]grpc.DialOption, error) {
	if auth.Mode != "mtls" {
		return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, nil
	}
	tlsCfg, err := auth.ClientTLS()
	if err != nil {
		return nil, fmt.Errorf("shipper: %w", err)
	}
	return []grpc.DialOption{grpc.WithTransportCredentials(credentials.NewTLS(tlsCfg))}, nil
}

// backoff is truncated exponential backoff with ±25 % jitter.
type backoff struct {
	step time.Duration
}

func newBackoff() *backoff {
	return &backoff{step: backoffInitial}
}

// next returns a jittered wait around the current step and doubles the
// step up to backoffMax.
func (b *backoff) next() time.Duration {
	spread := float64(b.step) * 0.25 * (2*rand.Float64() - 1) //nolint:gosec // jitter only
	d := b.step + time.Duration(spread)

	b.step *= backoffMultiplier
	if b.step > backoffMax {
		b.step = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.step = backoffInitial
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
