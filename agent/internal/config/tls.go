package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// ClientTLS builds the client-side TLS config for mtls mode: the client key
// pair plus, when CAFile is set, a private root pool. Other modes get an
// empty config that trusts the system roots.
func (a AuthConfig) ClientTLS() (*tls.Config, error) {
	out := &tls.Config{MinVersion: tls.VersionTLS12}
	if a.Mode != "mtls" {
		return out, nil
	}

	pair, err := tls.LoadX509KeyPair(a.CertFile, a.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("config: load client cert: %w", err)
	}
	out.Certificates = []tls.Certificate{pair}

	if a.CAFile == "" {
		return out, nil
	}
	pem, err := os.ReadFile(a.CAFile)
	if err != nil {
		return nil, fmt.Errorf("config: read ca file: %w", err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("config: ca file %q holds no PEM certificates", a.CAFile)
	}
	out.RootCAs = roots
	return out, nil
}
