// Package metrics holds the Prometheus collectors shared by the runners and
// tool-calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for tool runs and tool-calls.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeIgnored = "ignored"
)

var (
	toolRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lintbridge_tool_runs_total",
		Help: "External tool invocations by tool, mode and outcome",
	}, []string{"tool", "mode", "outcome"})

	toolRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lintbridge_tool_run_duration_seconds",
		Help:    "Duration of external tool invocations",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"tool", "mode"})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lintbridge_tool_calls_total",
		Help: "Tool-calls served by name and outcome",
	}, []string{"call", "outcome"})

	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lintbridge_tool_call_duration_seconds",
		Help:    "Duration of lint and fix tool-calls",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"call"})

	issuesReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lintbridge_issues_reported_total",
		Help: "Issues reported by lint tool-calls, by resolution class",
	}, []string{"class"})

	issuesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lintbridge_issues_resolved_total",
		Help: "Issues resolved by fix tool-calls, by tool",
	}, []string{"tool"})
)

// ObserveToolRun records one external tool invocation.
func ObserveToolRun(tool, mode, outcome string, d time.Duration) {
	toolRuns.WithLabelValues(tool, mode, outcome).Inc()
	toolRunDuration.WithLabelValues(tool, mode).Observe(d.Seconds())
}

// ObserveToolCall records one lint or fix tool-call.
func ObserveToolCall(call, outcome string, d time.Duration) {
	toolCalls.WithLabelValues(call, outcome).Inc()
	toolCallDuration.WithLabelValues(call).Observe(d.Seconds())
}

// AddIssues counts reported issues of one resolution class.
func AddIssues(class string, n int) {
	if n > 0 {
		issuesReported.WithLabelValues(class).Add(float64(n))
	}
}

// AddResolved counts issues a fix pass resolved. Negative deltas are not
// recorded since counters only go up.
func AddResolved(tool string, n int) {
	if n > 0 {
		issuesResolved.WithLabelValues(tool).Add(float64(n))
	}
}
