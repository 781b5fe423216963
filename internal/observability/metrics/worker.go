package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the corpus sync worker.
type WorkerMetrics struct {
	registry *prometheus.Registry

	syncTotal    *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	syncInFlight prometheus.Gauge
	syncedRows   *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	syncTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "worker",
			Name:      "corpus_sync_total",
			Help:      "Total corpus sync runs by status.",
		},
		[]string{"service", "status"},
	)
	syncDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "worker",
			Name:      "corpus_sync_duration_seconds",
			Help:      "Corpus sync duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	syncInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "campus",
			Subsystem: "worker",
			Name:      "corpus_sync_in_flight",
			Help:      "Number of in-flight corpus sync runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	syncedRows := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "worker",
			Name:      "corpus_synced_rows",
			Help:      "Distribution of indexed rows per synced sheet.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"service"},
	)

	registry.MustRegister(syncTotal, syncDuration, syncInFlight, syncedRows)

	return &WorkerMetrics{
		registry:     registry,
		syncTotal:    syncTotal,
		syncDuration: syncDuration,
		syncInFlight: syncInFlight,
		syncedRows:   syncedRows,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartSync() {
	m.syncInFlight.Inc()
}

func (m *WorkerMetrics) FinishSync(service string, duration time.Duration, err error) {
	m.syncInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.syncTotal.WithLabelValues(service, status).Inc()
	m.syncDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveSyncedRows(service string, rows int) {
	if rows <= 0 {
		return
	}
	m.syncedRows.WithLabelValues(service).Observe(float64(rows))
}
