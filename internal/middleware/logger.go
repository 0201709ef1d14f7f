package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/ramdeus-bot/internal/logger"
	"github.com/jwebster45206/ramdeus-bot/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// routes are the paths recorded as metric labels; anything else is "other".
var routes = map[string]struct{}{
	"/health":           {},
	"/metrics":          {},
	"/interactions":     {},
	"/v1/battle":        {},
	"/v1/battle/state":  {},
	"/v1/battle/attack": {},
	"/v1/battle/reset":  {},
}

func routeLabel(path string) string {
	if _, ok := routes[path]; ok {
		return path
	}
	return "other"
}

func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	}
	return "OTHER"
}

// requestID keeps a UUID supplied by the caller and mints a new one otherwise.
func requestID(r *http.Request) string {
	if id, err := uuid.Parse(r.Header.Get(RequestIDHeader)); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logger tags each request with an id, logs its outcome and records it in m
// (which may be nil).
func Logger(log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := requestID(r)
			w.Header().Set(RequestIDHeader, reqID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			m.ObserveRequest(methodLabel(r.Method), routeLabel(r.URL.Path), rec.status, elapsed)

			reqLog := logger.WithRequestID(log, reqID)
			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			reqLog.Log(r.Context(), level, "Request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
				"remote_addr", r.RemoteAddr)
		})
	}
}
