package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func record(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// Logging returns middleware that logs every request.
// It logs the method, path, status and duration. Client errors are logged at
// Warn and server errors at Error.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.ErrorContext(r.Context(), "HTTP error", attrs...)
			case rec.status >= http.StatusBadRequest:
				logger.WarnContext(r.Context(), "HTTP error", attrs...)
			default:
				logger.InfoContext(r.Context(), "HTTP ok", attrs...)
			}
		})
	}
}
