// Package metrics exposes the watcher's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Poll results recorded on karotz_polls_total.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics owns a private registry so tests and multiple watchers never collide.
type Metrics struct {
	registry  *prometheus.Registry
	polls     *prometheus.CounterVec
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	commands  *prometheus.CounterVec
}

// New creates the collectors and registers them along with the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "karotz_polls_total",
				Help: "Device polls by device and result.",
			},
			[]string{"device", "result"},
		),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "karotz_events_published_total",
				Help: "Events delivered to publishers by event type.",
			},
			[]string{"type"},
		),
		failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "karotz_events_failed_total",
				Help: "Events that at least one publisher failed to deliver, by event type.",
			},
			[]string{"type"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "karotz_commands_total",
				Help: "Remote commands issued through the HTTP API by command and result.",
			},
			[]string{"command", "result"},
		),
	}
	m.registry.MustRegister(
		m.polls,
		m.published,
		m.failed,
		m.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePoll counts one device poll.
func (m *Metrics) ObservePoll(device string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.polls.WithLabelValues(device, result).Inc()
}

// ObservePublished counts deliveries of one event; failed marks a partial or total failure.
func (m *Metrics) ObservePublished(eventType string, delivered int, failed bool) {
	if m == nil {
		return
	}
	if delivered > 0 {
		m.published.WithLabelValues(eventType).Add(float64(delivered))
	}
	if failed {
		m.failed.WithLabelValues(eventType).Inc()
	}
}

// ObserveCommand counts a remote command issued over the API.
func (m *Metrics) ObserveCommand(command string, ok bool, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !ok:
		result = "rejected"
	}
	m.commands.WithLabelValues(command, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
