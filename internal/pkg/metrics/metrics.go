package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os coletores Prometheus do serviço.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPStatusClass     *prometheus.CounterVec
	RateLimitedTotal    prometheus.Counter
	AuthFailuresTotal   *prometheus.CounterVec
}

// New registra os coletores em reg usando prefix como prefixo dos nomes.
func New(reg prometheus.Registerer, prefix string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total de requisições HTTP",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duração das requisições HTTP em segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPStatusClass: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_responses_by_class_total",
				Help: "Total de respostas HTTP por classe de status (2xx, 4xx, 5xx)",
			},
			[]string{"class"},
		),
		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_rate_limited_total",
				Help: "Total de requisições rejeitadas pelo rate limiter",
			},
		),
		AuthFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_failures_total",
				Help: "Total de falhas de autenticação/autorização",
			},
			[]string{"reason"},
		),
	}
}

// ObserveRequest registra uma requisição concluída.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
	m.HTTPStatusClass.WithLabelValues(StatusClass(status)).Inc()
}

// RecordRateLimited conta uma requisição bloqueada. Aceita receptor nil.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

// RecordAuthFailure conta uma falha de autenticação. Aceita receptor nil.
func (m *Metrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// StatusClass devolve "2xx", "4xx" etc.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
