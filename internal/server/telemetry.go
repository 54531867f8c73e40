package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Telemetry records MCP tool metrics in its own Prometheus registry
type Telemetry struct {
	registry *prometheus.Registry

	toolCalls      *prometheus.CounterVec
	toolLatency    *prometheus.HistogramVec
	planRejections prometheus.Counter
	planCache      *prometheus.CounterVec
}

// NewTelemetry creates and registers the tool metrics
func NewTelemetry() *Telemetry {
	t := &Telemetry{registry: prometheus.NewRegistry()}

	t.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bodycode",
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)

	t.toolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bodycode",
			Subsystem: "mcp",
			Name:      "tool_latency_seconds",
			Help:      "MCP tool call latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"tool"},
	)

	t.planRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bodycode",
			Subsystem: "tracker",
			Name:      "plan_rejections_total",
			Help:      "Log writes rejected by the plan gate",
		},
	)

	t.planCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bodycode",
			Subsystem: "tracker",
			Name:      "habit_plan_lookups_total",
			Help:      "Daily habit plan lookups by cache result",
		},
		[]string{"result"},
	)

	t.registry.MustRegister(t.toolCalls, t.toolLatency, t.planRejections, t.planCache)
	return t
}

// ObserveToolCall records one tool invocation
func (t *Telemetry) ObserveToolCall(tool string, latency time.Duration, err error) {
	if t == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		var te *ToolError
		if errors.As(err, &te) {
			status = string(te.Code)
		}
	}
	t.toolCalls.WithLabelValues(tool, status).Inc()
	t.toolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// PlanRejected counts a log write refused by the plan gate
func (t *Telemetry) PlanRejected() {
	if t == nil {
		return
	}
	t.planRejections.Inc()
}

// HabitPlanLookup counts a daily plan served from cache or freshly selected
func (t *Telemetry) HabitPlanLookup(cached bool) {
	if t == nil {
		return
	}
	result := "miss"
	if cached {
		result = "hit"
	}
	t.planCache.WithLabelValues(result).Inc()
}

// Registry exposes the registry so other components can add collectors
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// Handler serves the registry in the Prometheus text format
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
