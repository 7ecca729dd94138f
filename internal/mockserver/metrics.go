package mockserver

import "github.com/prometheus/client_golang/prometheus"

var (
	readinessChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nbharness",
			Subsystem: "mockserver",
			Name:      "readiness_checks_total",
			Help:      "Total readiness probes served",
		},
		[]string{"status"},
	)

	repositoryActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nbharness",
			Subsystem: "mockserver",
			Name:      "repository_actions_total",
			Help:      "Total model load/unload requests served",
		},
		[]string{"action"},
	)

	loadedModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nbharness",
			Subsystem: "mockserver",
			Name:      "loaded_models",
			Help:      "Models currently marked loaded",
		},
	)
)

func init() {
	prometheus.MustRegister(readinessChecksTotal, repositoryActionsTotal, loadedModels)
}
