package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProbeLatency tracks the latency of individual fact collections
	ProbeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "systune",
			Subsystem: "fact_prober",
			Name:      "probe_latency_seconds",
			Help:      "Time spent collecting one fact",
		},
		[]string{"fact"},
	)

	// ProbeErrors tracks fact collection errors by kind
	ProbeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "systune",
			Subsystem: "fact_prober",
			Name:      "probe_errors_total",
			Help:      "Number of fact collection errors",
		},
		[]string{"fact", "error_type"},
	)

	// ProbeTimeouts tracks sources abandoned at their deadline
	ProbeTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "systune",
			Subsystem: "fact_prober",
			Name:      "probe_timeouts_total",
			Help:      "Number of fact sources abandoned at their deadline",
		},
		[]string{"fact"},
	)

	// CacheLookups tracks snapshot cache hits, refreshes, and collapsed
	// concurrent refreshes
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "systune",
			Subsystem: "fact_prober",
			Name:      "cache_lookups_total",
			Help:      "Number of snapshot cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// ActionsExecuted tracks action executions by final status
	ActionsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "systune",
			Subsystem: "action_registry",
			Name:      "actions_total",
			Help:      "Number of action executions by status",
		},
		[]string{"action", "status"},
	)

	// SubStepFailures tracks individual sub-step failures
	SubStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "systune",
			Subsystem: "action_registry",
			Name:      "substep_failures_total",
			Help:      "Number of failed action sub-steps",
		},
		[]string{"action", "sub_step"},
	)
)

// MustRegister registers all metrics with the default Prometheus registry
func MustRegister() {
	prometheus.MustRegister(
		ProbeLatency,
		ProbeErrors,
		ProbeTimeouts,
		CacheLookups,
		ActionsExecuted,
		SubStepFailures,
	)
}
