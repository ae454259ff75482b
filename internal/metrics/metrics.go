// Package metrics exposes the Prometheus collectors the scheduling and
// dispatch engine reports into.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine bundles the spinner and dispatcher collectors.
type Engine struct {
	// Number of triggers currently held by the active map.
	ActiveTriggers prometheus.Gauge
	// Delay between a trigger's scheduled tick and its dispatch submit.
	DispatchLag prometheus.Histogram
	// How long the spinner actually slept per tick.
	YieldDuration prometheus.Histogram
	// Delivery attempts performed, regardless of outcome.
	Attempts prometheus.Counter
	// Webhook jobs currently in flight.
	InflightRuns prometheus.Gauge
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     *Engine
)

// Default returns the engine metrics registered with the global
// registry. Created once so repeated construction in tests cannot
// panic on duplicate registration.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = MustNewEngine(prometheus.DefaultRegisterer)
	})
	return defaultEngine
}

// MustNewEngine builds and registers the collectors on reg. Pass a
// fresh prometheus.NewRegistry() in tests.
func MustNewEngine(reg prometheus.Registerer) *Engine {
	e := &Engine{
		ActiveTriggers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cronback",
			Subsystem: "spinner",
			Name:      "active_triggers_total",
			Help:      "Number of triggers currently tracked by the active map.",
		}),
		DispatchLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cronback",
			Subsystem: "spinner",
			Name:      "dispatch_lag_seconds",
			Help:      "Delay between a trigger's scheduled tick and dispatch submission.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}),
		YieldDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cronback",
			Subsystem: "spinner",
			Name:      "yield_duration_ms",
			Help:      "Observed spinner sleep per tick in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 75, 100, 250, 500},
		}),
		Attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cronback",
			Subsystem: "dispatcher",
			Name:      "attempts_total",
			Help:      "Delivery attempts performed, successful or not.",
		}),
		InflightRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cronback",
			Subsystem: "dispatcher",
			Name:      "inflight_runs_total",
			Help:      "Webhook jobs currently executing.",
		}),
	}

	reg.MustRegister(e.ActiveTriggers, e.DispatchLag, e.YieldDuration, e.Attempts, e.InflightRuns)
	return e
}
