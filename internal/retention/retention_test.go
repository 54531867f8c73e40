package retention

import (
	"fmt"
	"testing"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logsFor(n int) []domain.DailyLog {
	logs := make([]domain.DailyLog, 0, n)
	for i := 0; i < n; i++ {
		logs = append(logs, domain.DailyLog{Date: fmt.Sprintf("2024-01-%02d", i+1)})
	}
	return logs
}

func TestTrackerAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		logs      int
		plan      domain.PlanTier
		canLog    bool
		remaining *int
	}{
		{name: "fresh free plan", logs: 0, plan: domain.PlanFree, canLog: true, remaining: domain.Ptr(7)},
		{name: "free plan mid trial", logs: 4, plan: domain.PlanFree, canLog: true, remaining: domain.Ptr(3)},
		{name: "free plan exhausted", logs: 7, plan: domain.PlanFree, canLog: false, remaining: domain.Ptr(0)},
		{name: "free plan over limit", logs: 9, plan: domain.PlanFree, canLog: false, remaining: domain.Ptr(0)},
		{name: "unknown plan is free", logs: 7, plan: "gold", canLog: false, remaining: domain.Ptr(0)},
		{name: "paid plan", logs: 40, plan: domain.PlanPaid, canLog: true, remaining: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := TrackerAccess(logsFor(tt.logs), tt.plan)
			assert.Equal(t, tt.canLog, a.CanLogToday)
			assert.Equal(t, tt.remaining, a.DaysRemaining)
			assert.Equal(t, tt.remaining == nil, a.Unlimited)
			assert.Equal(t, tt.logs, a.DaysUsed)
			assert.Equal(t, TrackedHabits, a.TrackedHabits)
			assert.NotEmpty(t, a.Message)
		})
	}

	assert.Equal(t, domain.PlanFree, TrackerAccess(nil, "gold").Plan)
}

func TestCheckWrite(t *testing.T) {
	t.Parallel()

	full := logsFor(7)

	d := CheckWrite(full, domain.PlanFree, "2024-01-08")
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Message, "Upgrade")

	d = CheckWrite(full, domain.PlanFree, "2024-01-03")
	assert.True(t, d.Allowed, "updating a logged date never counts against the plan")

	d = CheckWrite(full, domain.PlanPaid, "2024-01-08")
	assert.True(t, d.Allowed)

	d = CheckWrite(logsFor(2), domain.PlanFree, "2024-01-08")
	assert.True(t, d.Allowed)
	require.NotNil(t, d.Access.DaysRemaining)
	assert.Equal(t, 5, *d.Access.DaysRemaining)
}

func TestGenerateReminder(t *testing.T) {
	t.Parallel()

	logged := []domain.DailyLog{{Date: "2024-01-14"}}
	stressed := []domain.DailyLog{{Date: "2024-01-13", StressLevel: domain.StressHigh}}

	tests := []struct {
		name     string
		logs     []domain.DailyLog
		plan     domain.PlanTier
		wantType string
		wantMode string
		contains string
	}{
		{name: "free already logged", logs: logged, plan: domain.PlanFree, wantType: "done", wantMode: "basic", contains: "already checked in"},
		{name: "paid already logged", logs: logged, plan: domain.PlanPaid, wantType: "done", wantMode: "adaptive", contains: "already checked in"},
		{name: "free not logged", logs: stressed, plan: domain.PlanFree, wantType: "basic", wantMode: "basic", contains: "streak"},
		{name: "paid stressed", logs: stressed, plan: domain.PlanPaid, wantType: "adaptive", wantMode: "adaptive", contains: "emotions first"},
		{name: "paid calm", logs: nil, plan: domain.PlanPaid, wantType: "adaptive", wantMode: "adaptive", contains: "before 21:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := GenerateReminder(tt.logs, tt.plan, "2024-01-14")
			assert.Equal(t, tt.wantType, r.Type)
			assert.Equal(t, tt.wantMode, r.Mode)
			assert.Contains(t, r.Message, tt.contains)
		})
	}
}

func TestGenerateWeeklyInsight(t *testing.T) {
	t.Parallel()

	free := GenerateWeeklyInsight(logsFor(10), domain.PlanFree)
	assert.False(t, free.Available)

	empty := GenerateWeeklyInsight(nil, domain.PlanPaid)
	assert.True(t, empty.Available)
	assert.Contains(t, empty.Message, "Start filling in")

	// only the last seven days count; the first entry is outside the window
	logs := []domain.DailyLog{{Date: "2024-01-01", SleepHours: domain.Ptr(1.0), MealsLogged: domain.Ptr(true)}}
	for i := 2; i <= 8; i++ {
		l := domain.DailyLog{Date: fmt.Sprintf("2024-01-%02d", i), SleepHours: domain.Ptr(7.5)}
		if i <= 5 {
			l.MovementMinutes = domain.Ptr(20 + i)
			l.MealsLogged = domain.Ptr(true)
		}
		logs = append(logs, l)
	}

	got := GenerateWeeklyInsight(logs, domain.PlanPaid)
	assert.True(t, got.Available)
	assert.Contains(t, got.Message, "sleep 7.5 hours")
	assert.Contains(t, got.Message, "activity 24 minutes")
	assert.Contains(t, got.Message, "meals logged 57%")
}
