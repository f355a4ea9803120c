package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/seawise/seawise/server/internal/auth"
)

// newHTTPHandler mounts the REST API, the WebSocket stream and, when uiDir
// is set, the dashboard's static files. The API key check covers everything
// except health and the static UI.
func newHTTPHandler(apiHandler, hub http.Handler, uiDir, mode, header, key string) http.Handler {
	protect := auth.APIKeyMiddleware(mode, header, key, "/api/v1/health")

	mux := http.NewServeMux()
	mux.Handle("/api/", protect(apiHandler))
	mux.Handle("/ws/stream", protect(hub))

	if uiDir != "" {
		mux.Handle("/", spaHandler(uiDir))
		slog.Info("serving UI static files", "dir", uiDir)
	}
	return mux
}

// spaHandler serves files from dir and falls back to index.html for paths
// that do not exist, so client-side routes survive a reload.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
