package middleware

import (
	"net/http"
	"time"
)

type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// Instrument records count and latency for a single route. The route label is
// the registered pattern, never the raw path, to keep cardinality bounded.
func Instrument(obs RequestObserver, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			obs.ObserveRequest(r.Method, route, rec.status, time.Since(start))
		})
	}
}
