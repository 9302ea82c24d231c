package metrics

import "github.com/prometheus/client_golang/prometheus"

// WidgetMetrics exposes counters for the public widget runtime.
type WidgetMetrics struct {
	submissionsTotal    *prometheus.CounterVec
	catalogFailures     *prometheus.CounterVec
	captchaDegradations *prometheus.CounterVec
}

func NewWidgetMetrics(reg prometheus.Registerer) *WidgetMetrics {
	m := &WidgetMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zenith",
			Subsystem: "widget",
			Name:      "submissions_total",
			Help:      "Total widget submissions by outcome",
		}, []string{"widget", "outcome"}),
		catalogFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zenith",
			Subsystem: "widget",
			Name:      "catalog_failures_total",
			Help:      "Total failed catalog loads",
		}, []string{"widget", "catalog"}),
		captchaDegradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zenith",
			Subsystem: "widget",
			Name:      "captcha_degradations_total",
			Help:      "Total submissions that proceeded without an anti-abuse token",
		}, []string{"widget"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.catalogFailures, m.captchaDegradations)
	return m
}

func (m *WidgetMetrics) ObserveSubmission(widget, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(widget, outcome).Inc()
}

func (m *WidgetMetrics) ObserveCatalogFailure(widget, catalog string) {
	if m == nil {
		return
	}
	m.catalogFailures.WithLabelValues(widget, catalog).Inc()
}

func (m *WidgetMetrics) ObserveCaptchaDegradation(widget string) {
	if m == nil {
		return
	}
	m.captchaDegradations.WithLabelValues(widget).Inc()
}
