package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mmynk/expensesplit/internal/metrics"
)

// unmatchedRoute labels requests that reached no registered route.
const unmatchedRoute = "unmatched"

// Metrics returns router middleware that records request counts and latency
// labelled by the matched route template, so /expenses/{id} stays one series.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			m.ObserveRequest(r.Method, routeTemplate(r), rec.status, time.Since(start))
		})
	}
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}
