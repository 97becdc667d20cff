package metrics

import "github.com/prometheus/client_golang/prometheus"

// CalendarMetrics exposes counters/histograms for the scheduling core.
type CalendarMetrics struct {
	storeCalls        *prometheus.HistogramVec
	transitionsTotal  *prometheus.CounterVec
	projectionLatency *prometheus.HistogramVec
}

func NewCalendarMetrics(reg prometheus.Registerer) *CalendarMetrics {
	m := &CalendarMetrics{
		storeCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "calendar",
			Name:      "store_call_seconds",
			Help:      "Latency of store calls by operation and outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "calendar",
			Name:      "status_transitions_total",
			Help:      "Appointment status transitions by from/to and result",
		}, []string{"from", "to", "result"}),
		projectionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "calendar",
			Name:      "projection_seconds",
			Help:      "Latency of calendar view projections",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"view"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.storeCalls, m.transitionsTotal, m.projectionLatency)
	return m
}

func (m *CalendarMetrics) ObserveStoreCall(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.storeCalls.WithLabelValues(operation, outcome).Observe(seconds)
}

func (m *CalendarMetrics) ObserveTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to, result).Inc()
}

func (m *CalendarMetrics) ObserveProjection(view string, seconds float64) {
	if m == nil {
		return
	}
	m.projectionLatency.WithLabelValues(view).Observe(seconds)
}
