// Package metrics exposes Prometheus metrics for the HTTP server and imports.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trello_imports_total",
			Help: "Trello board imports by result",
		},
		[]string{"result"},
	)

	importBlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trello_import_blocks_total",
			Help: "Blocks created by Trello imports",
		},
		[]string{"type"},
	)

	importWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trello_import_warnings_total",
			Help: "Unresolved references skipped during Trello imports",
		},
		[]string{"kind"},
	)
)

const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

func RecordImport(result string) { importsTotal.WithLabelValues(result).Inc() }

func RecordBlocks(blockType string, n int) {
	importBlocksTotal.WithLabelValues(blockType).Add(float64(n))
}

func RecordWarning(kind string) { importWarningsTotal.WithLabelValues(kind).Inc() }

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request counts and latency labelled by the matched
// ServeMux pattern. Requests no pattern matched share one label.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
