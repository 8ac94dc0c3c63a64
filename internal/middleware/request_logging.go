package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// RequestLogging logs one structured line per request. Health and
// metrics probes are skipped to keep the log readable.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(sw, r)

		log.WithFields(log.Fields{
			"component": "http",
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    sw.status,
			"duration":  time.Since(start).String(),
		}).Info("request")
	})
}
