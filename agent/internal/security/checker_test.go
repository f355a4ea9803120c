package security

import (
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seawise/seawise/agent/internal/config"
	"github.com/seawise/seawise/pkg/types"
)

func vesselAt(endpoint string) config.Vessel {
	return config.Vessel{ID: "mv", Source: config.Source{
		Type:     "json",
		Endpoint: endpoint,
		TLS:      config.TLSConfig{InsecureSkipVerify: true},
	}}
}

func TestCheck_PlainHTTP(t *testing.T) {
	c := &Checker{}
	if cs := c.Check(context.Background(), vesselAt("http://buoy.local:9100/metrics")); cs != nil {
		t.Errorf("Check(http) = %+v, want nil", cs)
	}
	if cs := c.Check(context.Background(), config.Vessel{Source: config.Source{Type: "static"}}); cs != nil {
		t.Errorf("Check(static) = %+v, want nil", cs)
	}
}

func TestCheck_TLSServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	leaf := srv.Certificate()
	c := &Checker{Now: func() time.Time { return leaf.NotBefore.Add(time.Hour) }}

	cs := c.Check(context.Background(), vesselAt(srv.URL))
	if cs == nil {
		t.Fatal("Check() = nil for an https endpoint")
	}
	if cs.Status != StatusValid {
		t.Errorf("Status = %q, want valid", cs.Status)
	}
	if cs.AuthType != "none" {
		t.Errorf("AuthType = %q, want none", cs.AuthType)
	}
	if cs.NotAfter != leaf.NotAfter.UTC().Format(time.RFC3339) {
		t.Errorf("NotAfter = %q", cs.NotAfter)
	}
}

func TestCheck_Unreachable(t *testing.T) {
	cs := (&Checker{}).Check(context.Background(), vesselAt("https://127.0.0.1:1"))
	if cs == nil || cs.Status != StatusUnreachable {
		t.Errorf("Check() = %+v, want unreachable", cs)
	}
}

func TestDescribe(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		notAfter time.Time
		want     string
		wantDays int32
	}{
		{"valid", now.AddDate(0, 0, 90), StatusValid, 90},
		{"expiring", now.AddDate(0, 0, 10), StatusExpiring, 10},
		{"boundary", now.Add(ExpiringWithin), StatusExpiring, 30},
		{"expired", now.AddDate(0, 0, -2), StatusExpired, -2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			leaf := &x509.Certificate{NotAfter: tc.notAfter, Issuer: pkix.Name{CommonName: "Sensor CA"}}
			var cs types.CertStatus
			describe(&cs, leaf, now)
			if cs.Status != tc.want || cs.DaysLeft != tc.wantDays {
				t.Errorf("status=%q days=%d, want %q/%d", cs.Status, cs.DaysLeft, tc.want, tc.wantDays)
			}
			if cs.Issuer != "Sensor CA" {
				t.Errorf("Issuer = %q", cs.Issuer)
			}
		})
	}
}
