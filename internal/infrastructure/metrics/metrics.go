// Package metrics публикует метрики HTTP-сервиса в формате Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics счётчики запросов и результатов классификации.
// Каждый экземпляр держит собственный реестр.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	verdicts *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hive_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_verdicts_total",
			Help: "Classified hive photos by verdict",
		}, []string{"healthy", "informative"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.verdicts,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRequest учитывает завершённый HTTP запрос.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveVerdict учитывает результат классификации фото.
func (m *Metrics) ObserveVerdict(healthy, informative bool) {
	m.verdicts.WithLabelValues(strconv.FormatBool(healthy), strconv.FormatBool(informative)).Inc()
}

// Handler отдаёт метрики для scrape.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
