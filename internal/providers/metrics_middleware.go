package providers

import (
	"net/http"
	"time"
)

const unmatchedEndpoint = "unmatched"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// endpointLabel prefers the mux pattern that served the request, so probes of
// random paths collapse into one series. Without a mux the raw path is used.
func endpointLabel(r *http.Request, routed bool) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	if routed {
		return unmatchedEndpoint
	}
	return r.URL.Path
}

// MetricsMiddleware counts and times requests. When next is a ServeMux the
// endpoint label is the matched route pattern.
func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	_, routed := next.(*http.ServeMux)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		endpoint := endpointLabel(r, routed)
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
