// Package auth provides API key authentication for seawise-server.
//
// APIKeyInterceptor guards the gRPC receiver and APIKeyMiddleware guards the
// REST API. Both compare keys in constant time and pass everything through
// when the mode is not "apikey" or no key is configured.
package auth
