package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/bodytype"
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/joshdurbin/bodycode-mcp/internal/habits"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/internal/retention"
	"github.com/joshdurbin/bodycode-mcp/internal/store"
	"github.com/joshdurbin/bodycode-mcp/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTracker(t *testing.T) (*tracker.Service, *store.Memory, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC)}
	st := store.NewMemory()
	svc := tracker.New(st, bodytype.MustNew(bodytype.Options{Now: c.Now}), habits.NewSelector(habits.MustLoadCatalog(), 7), c.Now)
	return svc, st, c
}

func TestNewPlanPrecomputer(t *testing.T) {
	t.Parallel()

	p := NewPlanPrecomputer(nil, 15*time.Minute)
	if p.interval != 15*time.Minute {
		t.Errorf("expected interval 15m, got %v", p.interval)
	}
}

func TestPlanPrecomputerCachesTodaysPlan(t *testing.T) {
	t.Parallel()
	svc, st, _ := newTracker(t)
	ctx := context.Background()

	p := NewPlanPrecomputer(svc, time.Hour)
	p.precompute(ctx)

	var cached habits.Plan
	require.NoError(t, st.Get(ctx, store.HabitPlanKey("2024-01-20"), &cached))
	assert.Equal(t, "2024-01-20", cached.Date)
	assert.Equal(t, "2024-01-20", p.lastDate)

	plan, hit, err := svc.TodayPlan(ctx, "")
	require.NoError(t, err)
	assert.True(t, hit, "the tool call sees the precomputed plan")
	assert.Equal(t, cached.MainHabit, plan.MainHabit)
}

func TestPlanPrecomputerRunStops(t *testing.T) {
	t.Parallel()
	svc, st, _ := newTracker(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewPlanPrecomputer(svc, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		keys, err := st.Keys(context.Background(), store.HabitPlanPrefix)
		return err == nil && len(keys) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("precomputer did not stop")
	}
}

type sent struct {
	date     string
	reminder retention.Reminder
}

func collect(out *[]sent) Notifier {
	return func(_ context.Context, date string, r retention.Reminder) {
		*out = append(*out, sent{date: date, reminder: r})
	}
}

func TestReminderNotifierOncePerDay(t *testing.T) {
	t.Parallel()
	svc, _, c := newTracker(t)
	ctx := context.Background()

	var got []sent
	r := NewReminderNotifier(svc, time.Hour, collect(&got))

	r.check(ctx)
	r.check(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-20", got[0].date)
	assert.Equal(t, "basic", got[0].reminder.Type)

	c.now = c.now.AddDate(0, 0, 1)
	r.check(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-21", got[1].date)
}

func TestReminderNotifierSkipsCheckedInDays(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTracker(t)
	ctx := context.Background()

	res, err := svc.SaveLog(ctx, "", domain.DailyLog{SleepHours: domain.Ptr(7.0)})
	require.NoError(t, err)
	require.True(t, res.Success)

	var got []sent
	r := NewReminderNotifier(svc, time.Hour, collect(&got))
	r.check(ctx)
	assert.Empty(t, got)
	assert.Empty(t, r.notified)
}

func TestReminderNotifierAdaptiveOnPaidPlan(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTracker(t)
	ctx := context.Background()

	_, err := svc.SetPlan(ctx, domain.PlanPaid)
	require.NoError(t, err)
	res, err := svc.SaveLog(ctx, "2024-01-19", domain.DailyLog{StressLevel: domain.StressHigh})
	require.NoError(t, err)
	require.True(t, res.Success)

	var got []sent
	NewReminderNotifier(svc, time.Hour, collect(&got)).check(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "adaptive", got[0].reminder.Mode)
	assert.Contains(t, got[0].reminder.Message, "emotions")
}

func TestReminderNotifierRun(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTracker(t)

	notified := make(chan string, 1)
	r := NewReminderNotifier(svc, 5*time.Millisecond, func(_ context.Context, date string, _ retention.Reminder) {
		notified <- date
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case date := <-notified:
		assert.Equal(t, "2024-01-20", date)
	case <-time.After(time.Second):
		t.Fatal("no reminder sent")
	}

	cancel()
	<-done
}

type failingStats struct{}

func (failingStats) Stats(context.Context) (store.Stats, error) {
	return store.Stats{}, errors.New("disk unavailable")
}

func (failingStats) Keys(context.Context, string) ([]string, error) { return nil, nil }

// captureLogs swaps the global logger for the duration of a test. Tests that
// use it must not run in parallel.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logging.Logger
	logging.Logger = logging.New(&buf, logging.LevelNormal, logging.FormatJSON)
	t.Cleanup(func() { logging.Logger = prev })
	return &buf
}

func TestLogStoreStats(t *testing.T) {
	buf := captureLogs(t)
	ctx := context.Background()

	st := store.NewMemory()
	LogStoreStats(ctx, st)

	require.NoError(t, st.Set(ctx, store.KeyPlan, "free"))
	require.NoError(t, st.Set(ctx, store.HabitPlanKey("2024-01-20"), map[string]string{"date": "2024-01-20"}))
	LogStoreStats(ctx, st)

	LogStoreStats(ctx, failingStats{})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)

	var empty, full, failed map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &empty))
	require.NoError(t, json.Unmarshal(lines[1], &full))
	require.NoError(t, json.Unmarshal(lines[2], &failed))

	assert.Equal(t, "store statistics", empty["message"])
	assert.EqualValues(t, 0, empty["keys"])
	assert.EqualValues(t, 2, full["keys"])
	assert.EqualValues(t, 1, full["cached_plans"])
	assert.Equal(t, "warn", failed["level"])
}
