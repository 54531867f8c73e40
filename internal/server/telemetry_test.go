package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape renders the registry in the Prometheus text format
func scrape(t *testing.T, tel *Telemetry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestTelemetryToolCalls(t *testing.T) {
	t.Parallel()
	tel := NewTelemetry()

	tel.ObserveToolCall("get_today_habits", 2*time.Millisecond, nil)
	tel.ObserveToolCall("get_today_habits", 3*time.Millisecond, nil)
	tel.ObserveToolCall("log_daily_metrics", time.Millisecond, NewInvalidInputError("bad"))
	tel.ObserveToolCall("export_data", time.Millisecond, errors.New("boom"))

	body := scrape(t, tel)
	assert.Contains(t, body, `bodycode_mcp_tool_calls_total{status="ok",tool="get_today_habits"} 2`)
	assert.Contains(t, body, `bodycode_mcp_tool_calls_total{status="INVALID_INPUT",tool="log_daily_metrics"} 1`)
	assert.Contains(t, body, `bodycode_mcp_tool_calls_total{status="error",tool="export_data"} 1`)
	assert.Contains(t, body, `bodycode_mcp_tool_latency_seconds_count{tool="get_today_habits"} 2`)
}

func TestTelemetryTrackerCounters(t *testing.T) {
	t.Parallel()
	tel := NewTelemetry()

	tel.PlanRejected()
	tel.PlanRejected()
	tel.HabitPlanLookup(false)
	tel.HabitPlanLookup(true)
	tel.HabitPlanLookup(true)

	body := scrape(t, tel)
	assert.Contains(t, body, "bodycode_tracker_plan_rejections_total 2")
	assert.Contains(t, body, `bodycode_tracker_habit_plan_lookups_total{result="miss"} 1`)
	assert.Contains(t, body, `bodycode_tracker_habit_plan_lookups_total{result="hit"} 2`)
}

func TestTelemetryNilIsNoop(t *testing.T) {
	t.Parallel()
	var tel *Telemetry

	assert.NotPanics(t, func() {
		tel.ObserveToolCall("lookup_habit", time.Millisecond, nil)
		tel.PlanRejected()
		tel.HabitPlanLookup(true)
	})
}
