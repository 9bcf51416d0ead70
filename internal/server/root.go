package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// rootHandler handles GET /: a connectivity probe reporting the database's
// current time in plaintext.
func (cfg Config) rootHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var now time.Time
		if err := cfg.DB.QueryRowContext(r.Context(), "SELECT NOW()").Scan(&now); err != nil {
			log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "root time query failed", err)
			http.Error(w, "Database connection failed.", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "Database connected successfully. Server time: %s", now.Format(time.RFC3339))
	})
}

// healthHandler is a static liveness probe.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
}

// readyHandler reports readiness: can we still query the database?
func (cfg Config) readyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var result int
		if err := cfg.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
