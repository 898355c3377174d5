package teamslog

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSent        = "sent"
	resultFailed      = "failed"
	resultRenderError = "render_error"

	// otherLevelLabel is the level label of records whose level name is not
	// a known level.
	otherLevelLabel = "other"
)

// metrics holds the delivery collectors of a handler.
// A nil *metrics records nothing.
type metrics struct {
	notifications *prometheus.CounterVec
	duration      prometheus.Histogram
}

// newMetrics registers the collectors with reg. Registering the same
// collectors twice on one registry reuses the existing ones, so several
// handlers can share a registry.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamslog_notifications_total",
			Help: "Total number of log records processed by result.",
		}, []string{"style", "level", "result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "teamslog_delivery_duration_seconds",
			Help:    "Duration of webhook deliveries.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.notifications = registerOrReuse(reg, m.notifications).(*prometheus.CounterVec)
	m.duration = registerOrReuse(reg, m.duration).(prometheus.Histogram)

	return m
}

func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}

		// Conflicting descriptors: keep the collector unregistered.
		return c
	}

	return c
}

func (m *metrics) observe(style Style, levelName, result string, seconds float64) {
	if m == nil {
		return
	}

	m.notifications.WithLabelValues(string(style), levelLabel(levelName), result).Inc()

	if result != resultRenderError {
		m.duration.Observe(seconds)
	}
}

// levelLabel keeps the level label bounded to the known level names.
func levelLabel(levelName string) string {
	name := canonicalLevelName(levelName)
	if _, ok := levelMap[name]; !ok {
		return otherLevelLabel
	}

	return name
}
