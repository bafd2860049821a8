package printone

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "printone"

// Metrics holds the client-side request metrics.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewMetrics creates the request metrics and registers them with reg.
// Registering twice with the same registerer reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of print.one API requests",
			},
			[]string{"method", "resource", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Duration of print.one API requests in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "resource"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "client",
				Name:      "requests_in_flight",
				Help:      "Number of print.one API requests currently in flight",
			},
		),
	}

	m.requestsTotal = register(reg, m.requestsTotal)
	m.requestDuration = register(reg, m.requestDuration)
	m.inFlight = register(reg, m.inFlight)

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) start() func(method, resource string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	m.inFlight.Inc()
	begin := time.Now()
	return func(method, resource string, status int) {
		m.inFlight.Dec()
		label := "error"
		if status > 0 {
			label = strconv.Itoa(status)
		}
		m.requestsTotal.WithLabelValues(method, resource, label).Inc()
		m.requestDuration.WithLabelValues(method, resource).Observe(time.Since(begin).Seconds())
	}
}
