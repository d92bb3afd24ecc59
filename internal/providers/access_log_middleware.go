package providers

import (
	"net/http"
	"time"
)

// AccessLogMiddleware logs every request to the log of its method type.
// Server errors are logged as warnings, everything else at debug level.
func AccessLogMiddleware(logger Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logType := LogTypeForMethod(r.Method)
		if sw.status >= http.StatusInternalServerError {
			logger.Warnf(logType, "%s %s from %s -> %d in %s", r.Method, r.URL.Path, r.RemoteAddr, sw.status, time.Since(start))
			return
		}
		logger.Debugf(logType, "%s %s from %s -> %d in %s", r.Method, r.URL.Path, r.RemoteAddr, sw.status, time.Since(start))
	})
}
