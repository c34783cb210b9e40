package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		flowTransitionsTotal,
		dispatchLatency,
	)
}

var (
	flowTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_flow_transitions_total",
			Help: "Terminal slot-filling flow transitions per command.",
		},
		[]string{"command", "outcome"}, // outcome: started|completed|abandoned|dispatch_failed
	)

	dispatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_dispatch_latency_ms",
			Help:    "Notification dispatch latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"kind", "success"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func FlowStarted(command string)        { flowTransitionsTotal.WithLabelValues(norm(command), "started").Inc() }
func FlowCompleted(command string)      { flowTransitionsTotal.WithLabelValues(norm(command), "completed").Inc() }
func FlowAbandoned(command string)      { flowTransitionsTotal.WithLabelValues(norm(command), "abandoned").Inc() }
func FlowDispatchFailed(command string) { flowTransitionsTotal.WithLabelValues(norm(command), "dispatch_failed").Inc() }

func ObserveDispatch(kind string, elapsed time.Duration, success bool) {
	dispatchLatency.WithLabelValues(norm(kind), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}
