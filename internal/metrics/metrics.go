package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	backendSpawns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "spawns_total",
			Help:      "Number of backend spawn attempts.",
		},
	)
	backendSpawnFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "spawn_failures_total",
			Help:      "Number of backend spawn attempts that failed to start.",
		},
	)
	healthProbes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "health_probes_total",
			Help:      "Health probes by result.",
		}, []string{"result"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "state_transitions_total",
			Help:      "Status transitions between supervisor states.",
		}, []string{"from", "to"},
	)
	backendReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sidekick",
			Subsystem: "backend",
			Name:      "ready",
			Help:      "1 when the backend status is READY, else 0.",
		},
	)
	flowRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sidekick",
			Subsystem: "supervisor",
			Name:      "flow_runs_total",
			Help:      "Autostart/retry/kill flow invocations by trigger.",
		}, []string{"trigger"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{backendSpawns, backendSpawnFailures, healthProbes, stateTransitions, backendReady, flowRuns}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the
// DefaultGatherer. The caller wires the route.
func Handler() http.Handler { return promhttp.Handler() }

// Helpers below no-op until Register has been called.

func IncSpawn() {
	if regOK.Load() {
		backendSpawns.Inc()
	}
}

func IncSpawnFailure() {
	if regOK.Load() {
		backendSpawnFailures.Inc()
	}
}

func IncProbe(healthy bool) {
	if !regOK.Load() {
		return
	}
	if healthy {
		healthProbes.WithLabelValues("healthy").Inc()
	} else {
		healthProbes.WithLabelValues("unhealthy").Inc()
	}
}

func RecordTransition(from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(from, to).Inc()
	}
}

func SetReady(ready bool) {
	if !regOK.Load() {
		return
	}
	if ready {
		backendReady.Set(1)
	} else {
		backendReady.Set(0)
	}
}

func IncFlowRun(trigger string) {
	if regOK.Load() {
		flowRuns.WithLabelValues(trigger).Inc()
	}
}
