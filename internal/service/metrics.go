package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"canvasboard/internal/domain"
)

// Metrics exposes workspace activity to Prometheus. It is an
// EventEmitter, so it can be fanned in next to any other listener.
type Metrics struct {
	registry *prometheus.Registry

	events   *prometheus.CounterVec
	saves    prometheus.Counter
	failures prometheus.Counter
	skips    prometheus.Counter
	items    prometheus.Gauge
	groups   prometheus.Gauge
	frames   prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "canvasboard",
			Name:      "events_total",
			Help:      "Workspace events by name.",
		}, []string{"event"}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "canvasboard",
			Name:      "snapshot_saves_total",
			Help:      "Snapshots written successfully.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "canvasboard",
			Name:      "snapshot_failures_total",
			Help:      "Snapshot writes that failed.",
		}),
		skips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "canvasboard",
			Name:      "backup_skips_total",
			Help:      "Backup runs skipped because the previous write was still running.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "canvasboard",
			Name:      "items",
			Help:      "Items in the workspace.",
		}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "canvasboard",
			Name:      "groups",
			Help:      "User groups in the workspace.",
		}),
		frames: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "canvasboard",
			Name:      "frame_seconds",
			Help:      "Time spent advancing one frame.",
			Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025},
		}),
	}
	m.registry.MustRegister(m.events, m.saves, m.failures, m.skips, m.items, m.groups, m.frames)
	return m
}

func (m *Metrics) Emit(event string, _ any) {
	m.events.WithLabelValues(event).Inc()
	switch event {
	case domain.EventSnapshotSaved:
		m.saves.Inc()
	case domain.EventSnapshotFailed:
		m.failures.Inc()
	case domain.EventBackupSkipped:
		m.skips.Inc()
	}
}

// ObserveWorkspace records the current entity counts.
func (m *Metrics) ObserveWorkspace(items, groups int) {
	m.items.Set(float64(items))
	m.groups.Set(float64(groups))
}

// ObserveFrame records the duration of one frame in seconds.
func (m *Metrics) ObserveFrame(seconds float64) {
	m.frames.Observe(seconds)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
