package auth

import (
	"encoding/json"
	"net/http"
)

// APIKeyMiddleware wraps next with the same API key check as
// APIKeyInterceptor, reading the key from the named HTTP header.
// Requests whose path is listed in exempt are always let through, which is
// how the health endpoint stays reachable for load balancers.
//
// Rejected requests get 401 with a JSON {"error": ...} body.
func APIKeyMiddleware(mode, header, key string, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}
	return func(next http.Handler) http.Handler {
		if !enforced(mode, key) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] || keyMatches(r.Header.Get(header), key) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"})
		})
	}
}
