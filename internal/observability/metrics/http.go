package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	generationTotal    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	outlineMutations   *prometheus.CounterVec
	exportTotal        *prometheus.CounterVec
	uploadFilesTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drafter",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drafter",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drafter",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	generationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drafter",
			Subsystem: "generation",
			Name:      "sections_total",
			Help:      "Total single-section generation requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	generationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drafter",
			Subsystem: "generation",
			Name:      "section_duration_seconds",
			Help:      "Single-section generation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	outlineMutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drafter",
			Subsystem: "outline",
			Name:      "mutations_total",
			Help:      "Total structural outline mutations by kind.",
		},
		[]string{"service", "kind"},
	)
	exportTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drafter",
			Subsystem: "export",
			Name:      "toc_total",
			Help:      "Total table-of-contents exports by outcome.",
		},
		[]string{"service", "outcome"},
	)
	uploadFilesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drafter",
			Subsystem: "assets",
			Name:      "upload_files_total",
			Help:      "Total uploaded files by result (stored or deduplicated).",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		generationTotal,
		generationDuration,
		outlineMutations,
		exportTotal,
		uploadFilesTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		generationTotal:    generationTotal,
		generationDuration: generationDuration,
		outlineMutations:   outlineMutations,
		exportTotal:        exportTotal,
		uploadFilesTotal:   uploadFilesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource ids so the path label stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/outlines/"):
		rest := strings.TrimPrefix(path, "/v1/outlines/")
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/outlines/{outline_id}/" + rest[idx+1:]
		}
		return "/v1/outlines/{outline_id}"
	case strings.HasPrefix(path, "/v1/nodes/"):
		rest := strings.TrimPrefix(path, "/v1/nodes/")
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/nodes/{node_id}/" + rest[idx+1:]
		}
		return "/v1/nodes/{node_id}"
	case strings.HasPrefix(path, "/v1/assets/"):
		return "/v1/assets/{asset_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSectionGeneration(service string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.generationTotal.WithLabelValues(service, outcome).Inc()
	m.generationDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordOutlineMutation(service, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.outlineMutations.WithLabelValues(service, kind).Inc()
}

func (m *HTTPServerMetrics) RecordTOCExport(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.exportTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordUploadedFiles(service string, stored, skipped int) {
	if stored > 0 {
		m.uploadFilesTotal.WithLabelValues(service, "stored").Add(float64(stored))
	}
	if skipped > 0 {
		m.uploadFilesTotal.WithLabelValues(service, "deduplicated").Add(float64(skipped))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
