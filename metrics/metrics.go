// Package metrics holds the Prometheus collectors for platform API traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups the network manager's instruments
type Collectors struct {
	Responses *prometheus.CounterVec
	Queued    prometheus.Counter
	Replayed  *prometheus.CounterVec
	Pending   prometheus.Gauge
	Events    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what tests use.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardctl",
				Subsystem: "network",
				Name:      "responses_total",
				Help:      "Platform API responses by classification.",
			},
			[]string{"code"},
		),
		Queued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cardctl",
				Subsystem: "network",
				Name:      "queued_requests_total",
				Help:      "Requests queued for replay after a connectivity or maintenance failure.",
			},
		),
		Replayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardctl",
				Subsystem: "network",
				Name:      "replayed_requests_total",
				Help:      "Queued requests replayed, by outcome.",
			},
			[]string{"outcome"},
		),
		Pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cardctl",
				Subsystem: "network",
				Name:      "pending_requests",
				Help:      "Requests currently waiting for replay.",
			},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardctl",
				Subsystem: "network",
				Name:      "events_total",
				Help:      "Broadcast network events by type.",
			},
			[]string{"event"},
		),
	}

	if reg != nil {
		reg.MustRegister(c.Responses, c.Queued, c.Replayed, c.Pending, c.Events)
	}
	return c
}

// Registry is the default registry used by the CLI
var Registry = prometheus.NewRegistry()
