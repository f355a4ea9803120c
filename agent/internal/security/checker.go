package security

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"math"
	"net"
	"net/url"
	"time"

	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/pkg/types"
)

// Certificate status values reported in types.CertStatus.
const (
	StatusValid       = "valid"
	StatusExpiring    = "expiring"
	StatusExpired     = "expired"
	StatusUnreachable = "unreachable"
)

// ExpiringWithin is how close to NotAfter a certificate is flagged expiring.
const ExpiringWithin = 30 * 24 * time.Hour

const dialTimeout = 10 * time.Second

// Checker inspects the leaf certificate of HTTPS sensor endpoints.
type Checker struct {
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Check dials the sensor endpoint of v and describes its certificate.
//
// Returns nil for sources without an HTTPS endpoint. The dial is bounded by
// a 10-second timeout so an unreachable buoy does not stall the sample loop.
func (c *Checker) Check(ctx context.Context, v config.Vessel) *types.CertStatus {
	src := v.Source
	u, err := url.Parse(src.Endpoint)
	if err != nil || u.Scheme != "https" {
		return nil
	}

	cs := &types.CertStatus{Endpoint: src.Endpoint, AuthType: src.Auth.Mode}
	if cs.AuthType == "" {
		cs.AuthType = "none"
	}

	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "443")
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			InsecureSkipVerify: src.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
		},
	}
	conn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		cs.Status = StatusUnreachable
		return cs
	}
	defer conn.Close()

	peers := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(peers) == 0 {
		cs.Status = StatusUnreachable
		return cs
	}
	describe(cs, peers[0], c.now())
	return cs
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// describe fills the certificate fields of cs from leaf as seen at now.
func describe(cs *types.CertStatus, leaf *x509.Certificate, now time.Time) {
	left := leaf.NotAfter.Sub(now)
	cs.NotAfter = leaf.NotAfter.UTC().Format(time.RFC3339)
	cs.Issuer = leaf.Issuer.CommonName
	cs.DaysLeft = int32(math.Floor(left.Hours() / 24))

	switch {
	case left <= 0:
		cs.Status = StatusExpired
	case left <= ExpiringWithin:
		cs.Status = StatusExpiring
	default:
		cs.Status = StatusValid
	}
}
