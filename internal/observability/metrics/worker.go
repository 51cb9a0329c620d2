package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics observes whole-outline batch generation in the worker.
type WorkerMetrics struct {
	service  string
	registry *prometheus.Registry

	sectionTotal    *prometheus.CounterVec
	sectionDuration *prometheus.HistogramVec
	batchTotal      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchInFlight   prometheus.Gauge
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	sectionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drafter",
			Subsystem: "worker",
			Name:      "sections_total",
			Help:      "Total generated sections by outcome.",
		},
		[]string{"service", "outcome"},
	)
	sectionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drafter",
			Subsystem: "worker",
			Name:      "section_duration_seconds",
			Help:      "Per-section generation duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drafter",
			Subsystem: "worker",
			Name:      "outline_batches_total",
			Help:      "Total whole-outline generation runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drafter",
			Subsystem: "worker",
			Name:      "outline_batch_duration_seconds",
			Help:      "Whole-outline generation duration in seconds by outcome.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "outcome"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drafter",
			Subsystem: "worker",
			Name:      "outline_batches_in_flight",
			Help:      "Number of outline generation runs in progress.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drafter",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between job publication and generation start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(sectionTotal, sectionDuration, batchTotal, batchDuration, batchInFlight, queueLag)

	return &WorkerMetrics{
		service:         service,
		registry:        registry,
		sectionTotal:    sectionTotal,
		sectionDuration: sectionDuration,
		batchTotal:      batchTotal,
		batchDuration:   batchDuration,
		batchInFlight:   batchInFlight,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveSection(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.sectionTotal.WithLabelValues(m.service, outcome).Inc()
	m.sectionDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveBatch(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.batchTotal.WithLabelValues(m.service, outcome).Inc()
	m.batchDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

func (m *WorkerMetrics) FinishBatch() {
	m.batchInFlight.Dec()
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
