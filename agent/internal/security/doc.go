// Package security checks the TLS certificates of HTTPS sensor endpoints.
// The agent attaches the resulting CertStatus records to each vessel's
// prediction snapshot so operators see expiring sensor certificates next to
// the fouling state.
package security
