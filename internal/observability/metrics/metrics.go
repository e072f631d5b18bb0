package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the nomination intake flow.
type IntakeMetrics struct {
	nominationsTotal *prometheus.CounterVec
	dispatchTotal    *prometheus.CounterVec
	insightsTotal    *prometheus.CounterVec
	dispatchLatency  *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		nominationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nominations",
			Subsystem: "intake",
			Name:      "requests_total",
			Help:      "Total nomination submissions by outcome",
		}, []string{"outcome"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nominations",
			Subsystem: "intake",
			Name:      "dispatch_total",
			Help:      "Total downstream dispatches by channel and status",
		}, []string{"channel", "status"}),
		insightsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nominations",
			Subsystem: "intake",
			Name:      "insights_total",
			Help:      "Total insight generations by status",
		}, []string{"status"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nominations",
			Subsystem: "intake",
			Name:      "dispatch_latency_seconds",
			Help:      "Latency of each downstream dispatch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.nominationsTotal, m.dispatchTotal, m.insightsTotal, m.dispatchLatency)
	return m
}

// ObserveNomination counts a finished request, e.g. "ok", "invalid", "failed".
func (m *IntakeMetrics) ObserveNomination(outcome string) {
	if m == nil {
		return
	}
	m.nominationsTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObserveDispatch(channel, status string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(channel, status).Inc()
	m.dispatchLatency.WithLabelValues(channel).Observe(seconds)
}

func (m *IntakeMetrics) ObserveInsights(status string) {
	if m == nil {
		return
	}
	m.insightsTotal.WithLabelValues(status).Inc()
}
