package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fixora/resourcesvc/infrastructure/service/logger"
	"github.com/fixora/resourcesvc/infrastructure/service/metrics"
)

// SlowRequestThreshold is the duration above which a request is also logged
// as a performance event.
var SlowRequestThreshold = time.Second

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestLogger logs one line per request and feeds the HTTP metrics.
// Either dependency may be disabled: pass enableLog=false or m=nil.
func RequestLogger(log logger.Logger, m *metrics.Metrics, enableLog bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			if m != nil {
				m.InFlightRequests.Inc()
				defer m.InFlightRequests.Dec()
			}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			duration := time.Since(start)
			path := routeTemplate(r)

			if m != nil {
				m.RecordHTTPRequest(r.Method, path, rec.status, duration)
			}
			if !enableLog {
				return
			}

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"route":       path,
				"status":      rec.status,
				"bytes":       rec.bytes,
				"duration_ms": duration.Milliseconds(),
				"ip":          getClientIP(r),
			}
			if actor := ActorID(r.Context()); actor != "" {
				fields["user_id"] = actor
			}

			if duration >= SlowRequestThreshold {
				logger.LogPerformance(r.Context(), log, r.Method+" "+path, duration, map[string]interface{}{
					"status": rec.status,
				})
			}

			switch {
			case rec.status >= 500:
				log.Error(r.Context(), "HTTP request failed", nil, fields)
			case rec.status >= 400:
				log.Warn(r.Context(), "HTTP request rejected", fields)
			default:
				log.Info(r.Context(), "HTTP request", fields)
			}
		})
	}
}

// routeTemplate keeps metric labels bounded by using the mux pattern
// instead of the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
