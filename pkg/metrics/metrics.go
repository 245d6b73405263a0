// pkg/metrics/metrics.go

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors for invoice generation.
type Metrics struct {
	Generated       prometheus.Counter
	Failures        *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	NumberCollision prometheus.Counter
	RenderDuration  prometheus.Histogram
}

// New registers and returns the collectors. A nil registerer uses the
// default one.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_generated_total",
			Help:      "Invoices computed and rendered successfully.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_failures_total",
			Help:      "Invoice generation attempts that failed, by reason.",
		}, []string{"reason"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_deliveries_total",
			Help:      "Invoice delivery attempts, by outcome.",
		}, []string{"outcome"}),
		NumberCollision: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_number_collisions_total",
			Help:      "Invoice numbers issued more than once in this process.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_render_duration_ms",
			Help:      "Time spent rendering invoice documents in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
	m.Generated = register(reg, m.Generated)
	m.Failures = register(reg, m.Failures)
	m.Deliveries = register(reg, m.Deliveries)
	m.NumberCollision = register(reg, m.NumberCollision)
	m.RenderDuration = register(reg, m.RenderDuration)
	return m
}

// ObserveRender records how long a render took.
func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(float64(d) / float64(time.Millisecond))
}

// Fail counts a failed generation attempt.
func (m *Metrics) Fail(reason string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(reason).Inc()
}

// Success counts a generated invoice.
func (m *Metrics) Success() {
	if m == nil {
		return
	}
	m.Generated.Inc()
}

// Delivery counts a delivery attempt by outcome.
func (m *Metrics) Delivery(outcome string) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(outcome).Inc()
}

// Collision counts a reused invoice number.
func (m *Metrics) Collision() {
	if m == nil {
		return
	}
	m.NumberCollision.Inc()
}

// register adds c to reg, reusing a collector registered earlier under the
// same name.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
