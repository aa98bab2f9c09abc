// Package metrics exports loop and task metrics to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/comalice/superloop"
)

var (
	// Namespace and subsystems for all metrics.
	namespace     = "superloop"
	subsystemLoop = "loop"
	subsystemTask = "task"

	ticksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemLoop,
			Name:      "ticks_total",
			Help:      "Total number of loop passes",
		},
	)

	tickDuration = promauto.NewSummary(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystemLoop,
			Name:      "pass_duration_seconds",
			Help:      "Time taken by one pass over all tasks",
			Objectives: map[float64]float64{
				0.5:  0.01, // 50th percentile with 1% error
				0.99: 0.01, // 99th percentile with 1% error
			},
		},
	)

	timingViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemLoop,
			Name:      "timing_violations_total",
			Help:      "Passes that overran the budget or skipped ticks",
		},
	)

	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTask,
			Name:      "transitions_total",
			Help:      "State changes by task and target state",
		},
		[]string{"task", "to"},
	)

	currentState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemTask,
			Name:      "current_state",
			Help:      "Id of the state each task runs next",
		},
		[]string{"task"},
	)

	disabled = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemTask,
			Name:      "disabled",
			Help:      "1 when the task failed initialization and sits in its error state",
		},
		[]string{"task"},
	)
)

// Instruments implements realtime.Instruments.
type Instruments struct{}

func (Instruments) ObserveTick(d time.Duration) {
	ticksTotal.Inc()
	tickDuration.Observe(d.Seconds())
}

func (Instruments) TimingViolation() {
	timingViolations.Inc()
}

// Observer implements superloop.Observer.
type Observer struct{}

func (Observer) TaskTransition(task string, from, to superloop.StateID, tick uint64) {
	transitions.WithLabelValues(task, strconv.Itoa(int(to))).Inc()
	currentState.WithLabelValues(task).Set(float64(to))
	if to == superloop.StateError {
		disabled.WithLabelValues(task).Set(1)
	} else {
		disabled.WithLabelValues(task).Set(0)
	}
}

// SetupMetricsEndpoint starts an HTTP server exposing /metrics.
func SetupMetricsEndpoint(addr string, logger *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("metrics endpoint failed", "addr", addr, "error", err)
		}
	}()

	return server
}
