package api

import (
	"net/http"
	"strconv"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := a.clock.Now()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		a.observe(r.Method, r.URL.Path, sr.status, start)
	})
}

// observe logs one request and records it in the HTTP metrics. Unknown paths are
// counted under the "other" route.
func (a *API) observe(method, path string, status int, start time.Time) {
	elapsed := a.clock.Since(start)

	route := path
	switch path {
	case RouteGroundwater, RoutePostalCodes, "/healthz", "/metrics":
	default:
		route = "other"
	}

	a.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	a.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

	a.logger.Info("http request",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsHeaders {
			if k == "Content-Type" {
				continue
			}
			w.Header().Set(k, v)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
