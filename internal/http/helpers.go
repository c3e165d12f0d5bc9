package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"spendboard/internal/core"
)

type requestIDKey struct{}

// requestIDFromContext returns the request ID set by the middleware, if any.
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// parseFilter maps the query parameters to the engine's filter
// specification. Absent parameters and the "All" sentinel mean no
// constraint; nothing here can fail.
func parseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()
	return core.Filter{
		Cloud: strings.TrimSpace(q.Get("cloud")),
		Team:  strings.TrimSpace(q.Get("team")),
		Env:   strings.TrimSpace(q.Get("env")),
		Month: strings.TrimSpace(q.Get("month")),
	}
}

// writeJSON serializes v with the standard response headers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError emits a small error object; the API has no HTML error
// surface.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// extractClientIP extracts the client IP, preferring forwarding headers the
// way the reverse proxy sets them.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
