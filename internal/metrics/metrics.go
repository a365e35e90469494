// Package metrics exposes Prometheus instruments for the wizard funnel.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Wizard counts how visitors move through the flow.
type Wizard struct {
	stepsEntered      *prometheus.CounterVec
	stops             *prometheus.CounterVec
	submissions       *prometheus.CounterVec
	submissionLatency *prometheus.HistogramVec
	liveSessions      prometheus.Gauge
}

func NewWizard(reg prometheus.Registerer) *Wizard {
	m := &Wizard{
		stepsEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turan",
			Subsystem: "wizard",
			Name:      "steps_entered_total",
			Help:      "Total wizard steps entered",
		}, []string{"flow", "step"}),
		stops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turan",
			Subsystem: "wizard",
			Name:      "stops_total",
			Help:      "Total times a visitor stopped the demo",
		}, []string{"flow"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turan",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total brief submissions by outcome",
		}, []string{"flow", "outcome"}),
		submissionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "turan",
			Subsystem: "leads",
			Name:      "submission_latency_seconds",
			Help:      "Latency of lead intake calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "turan",
			Subsystem: "wizard",
			Name:      "live_sessions",
			Help:      "Wizard sessions held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stepsEntered, m.stops, m.submissions, m.submissionLatency, m.liveSessions)
	return m
}

func (m *Wizard) StepEntered(flow, step string) {
	if m == nil {
		return
	}
	m.stepsEntered.WithLabelValues(flow, step).Inc()
}

func (m *Wizard) Stopped(flow string) {
	if m == nil {
		return
	}
	m.stops.WithLabelValues(flow).Inc()
}

func (m *Wizard) Submitted(flow, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(flow, outcome).Inc()
	m.submissionLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *Wizard) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.liveSessions.Set(float64(n))
}
