package coordinator

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the coordinator's Prometheus instrumentation. A nil
// *Metrics is valid everywhere it is used (every call site checks for nil
// first), so tests can run without a registry.
type Metrics struct {
	StreamsOpened prometheus.Counter
	PlaysAccepted prometheus.Counter
	PlaysRejected prometheus.Counter
}

// NewMetrics registers the coordinator's counters against reg and returns
// the bundle. Call once per process.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		StreamsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blitzsrv",
			Subsystem: "coordinator",
			Name:      "streams_opened_total",
			Help:      "Total event streams opened across all sessions.",
		}),
		PlaysAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blitzsrv",
			Subsystem: "coordinator",
			Name:      "plays_accepted_total",
			Help:      "Total plays that passed rules validation.",
		}),
		PlaysRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blitzsrv",
			Subsystem: "coordinator",
			Name:      "plays_rejected_total",
			Help:      "Total plays rejected for violating a rule.",
		}),
	}
	reg.MustRegister(m.StreamsOpened, m.PlaysAccepted, m.PlaysRejected)
	return m
}
