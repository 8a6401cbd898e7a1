package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serroba/link-lifecycle/internal/shortener"
)

// Metrics counts lifecycle activities on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	activities *prometheus.CounterVec
	clicks     prometheus.Counter
	purged     prometheus.Counter
}

// New creates the collectors and registers them with Go runtime collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		activities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "links",
			Name:      "activities_total",
			Help:      "Lifecycle activities by kind and level.",
		}, []string{"kind", "level"}),
		clicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "links",
			Name:      "clicks_total",
			Help:      "Clicks recorded on active links.",
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "links",
			Name:      "purged_total",
			Help:      "Expired links removed from the collection.",
		}),
	}

	registry.MustRegister(
		m.activities,
		m.clicks,
		m.purged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Observe records one activity. It matches shortener.Notify so it can sit in a fanout.
func (m *Metrics) Observe(activity *shortener.Activity) error {
	m.activities.WithLabelValues(activity.Kind, activity.Level).Inc()

	switch activity.Kind {
	case shortener.KindLinkResolved, shortener.KindClickRecorded:
		m.clicks.Inc()
	case shortener.KindLinksPurged:
		if removed, ok := activity.Data["removed"].(int); ok {
			m.purged.Add(float64(removed))
		}
	}

	return nil
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
