package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// Logger logs every dispatched request once it completes, with the response
// code the kontroller (or the router itself) produced.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info(
				fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				"response_code", m.Code,
				"duration", m.Duration,
				"bytes_sent", m.Written,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
