package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics хранит метрики HTTP-сервера и оформления заказов в собственном реестре.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latencyMS *prometheus.HistogramVec
	checkouts *prometheus.CounterVec
	replays   prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route", "method"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "results_total",
		Help:      "Checkout attempts by result.",
	}, []string{"result"})
	replays := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "idempotent_replays_total",
		Help:      "Checkouts answered from an idempotency key.",
	})

	registry.MustRegister(
		requests, latency, checkouts, replays,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:  registry,
		requests:  requests,
		latencyMS: latency,
		checkouts: checkouts,
		replays:   replays,
	}
}

// ObserveRequest учитывает один обработанный HTTP-запрос.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latencyMS.WithLabelValues(route, method).Observe(float64(elapsed.Milliseconds()))
}

// ObserveCheckout учитывает результат оформления заказа (success, empty_cart, insufficient_stock, ...).
func (m *Metrics) ObserveCheckout(result string) {
	m.checkouts.WithLabelValues(result).Inc()
}

// ObserveIdempotentReplay учитывает ответ на повторный запрос с тем же ключом идемпотентности.
func (m *Metrics) ObserveIdempotentReplay() {
	m.replays.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
