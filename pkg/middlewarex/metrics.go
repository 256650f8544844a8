package middlewarex

import (
	"cmp"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zenazn/goji/web/mutil"
)

//nolint:gochecknoglobals
var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "propinvest",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request duration by route pattern and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// Metrics пишет длительность запросов. Маршрут берётся из шаблона chi, чтобы не плодить метки.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := mutil.WrapWriter(w)

		next.ServeHTTP(lw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		httpRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(cmp.Or(lw.Status(), http.StatusOK))).
			Observe(time.Since(start).Seconds())
	})
}
