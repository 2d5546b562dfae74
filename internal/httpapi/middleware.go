package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"vibemcp/internal/contextutil"
)

// LoggerMiddleware attaches a per-request structured logger to the
// request context, the way the MCP tool handlers pick up their logger.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default().With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		ctx := context.WithValue(r.Context(), contextutil.LoggerKey(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
