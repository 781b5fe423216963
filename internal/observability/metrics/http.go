package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics is the API-side registry: request-level metrics plus
// pipeline observations (intent mix, retrieval hits, model fallbacks).
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answersTotal       *prometheus.CounterVec
	answerSources      *prometheus.HistogramVec
	answerDuration     *prometheus.HistogramVec
	noContextTotal     *prometheus.CounterVec
	modelAnswersTotal  *prometheus.CounterVec
	ticketsOpenedTotal *prometheus.CounterVec
	webhookTotal       *prometheus.CounterVec
	evalScores         *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "campus",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "answers_total",
			Help:      "Total answered questions by planner intent.",
		},
		[]string{"service", "endpoint", "intent"},
	)
	answerSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "answer_sources",
			Help:      "Distribution of cited sources per answered question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 20},
		},
		[]string{"service", "endpoint"},
	)
	answerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "answer_duration_seconds",
			Help:      "End-to-end answer pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	noContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total answered questions with no retrieved context.",
		},
		[]string{"service", "endpoint"},
	)
	modelAnswersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "model_answers_total",
			Help:      "Total answers by generating model, including fallbacks.",
		},
		[]string{"service", "model"},
	)
	ticketsOpenedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "livechat",
			Name:      "tickets_opened_total",
			Help:      "Total live-chat escalation tickets opened.",
		},
		[]string{"service"},
	)
	webhookTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "livechat",
			Name:      "webhook_messages_total",
			Help:      "Total WhatsApp webhook messages by session mode.",
		},
		[]string{"service", "mode"},
	)
	evalScores := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "eval",
			Name:      "scores",
			Help:      "Distribution of judge scores.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		answersTotal,
		answerSources,
		answerDuration,
		noContextTotal,
		modelAnswersTotal,
		ticketsOpenedTotal,
		webhookTotal,
		evalScores,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		answersTotal:       answersTotal,
		answerSources:      answerSources,
		answerDuration:     answerDuration,
		noContextTotal:     noContextTotal,
		modelAnswersTotal:  modelAnswersTotal,
		ticketsOpenedTotal: ticketsOpenedTotal,
		webhookTotal:       webhookTotal,
		evalScores:         evalScores,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
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
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordAnswer(service, endpoint, intent, model string, sourceCount int, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	m.answersTotal.WithLabelValues(service, endpoint, intent).Inc()
	m.answerSources.WithLabelValues(service, endpoint).Observe(float64(sourceCount))
	m.answerDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
	if sourceCount == 0 {
		m.noContextTotal.WithLabelValues(service, endpoint).Inc()
	}
	if model != "" {
		m.modelAnswersTotal.WithLabelValues(service, model).Inc()
	}
}

func (m *HTTPServerMetrics) RecordTicketOpened(service string) {
	m.ticketsOpenedTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordWebhookMessage(service, mode string) {
	if mode == "" {
		mode = "unknown"
	}
	m.webhookTotal.WithLabelValues(service, mode).Inc()
}

func (m *HTTPServerMetrics) RecordEvalScore(service string, score int) {
	m.evalScores.WithLabelValues(service).Observe(float64(score))
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
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
