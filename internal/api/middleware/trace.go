// Package middleware provides HTTP middleware for the API layer.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hindisrs/hindi-srs/internal/api/shared"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
)

// TraceMiddleware adds a unique trace ID to each request context and attaches
// a request-scoped logger carrying it, so downstream handlers and services
// log with the same correlation ID that error responses expose.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			reqLogger := base.With(
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			ctx = logger.WithLogger(ctx, reqLogger)

			reqLogger.Debug("request started")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
