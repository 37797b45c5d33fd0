// Package metrics exposes launcher instrumentation on the default
// Prometheus registerer. The module never serves /metrics itself; the
// embedding application decides whether and where to expose it.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LaunchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offload_launches_total",
			Help: "Total number of task launches.",
		},
		[]string{"mode", "delivery"},
	)

	TasksActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "offload_tasks_active",
			Help: "Number of currently live execution contexts.",
		},
		[]string{"mode"},
	)

	TaskFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offload_task_failures_total",
			Help: "Total number of worker failures confined to their execution context.",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(LaunchesTotal)
	prometheus.MustRegister(TasksActive)
	prometheus.MustRegister(TaskFailuresTotal)
}
