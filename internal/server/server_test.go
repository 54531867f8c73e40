package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/joshdurbin/bodycode-mcp/internal/bodytype"
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/joshdurbin/bodycode-mcp/internal/habits"
	"github.com/joshdurbin/bodycode-mcp/internal/retention"
	"github.com/joshdurbin/bodycode-mcp/internal/store"
	"github.com/joshdurbin/bodycode-mcp/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is Saturday 2024-01-20
var fixedNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *Telemetry) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	svc := tracker.New(
		store.NewMemory(),
		bodytype.MustNew(bodytype.Options{Now: clock}),
		habits.NewSelector(habits.MustLoadCatalog(), 42),
		clock,
	)
	tel := NewTelemetry()
	srv := New(svc, tel)
	srv.now = clock
	return srv, tel
}

func metabolicTraits() map[string]any {
	return map[string]any{
		"age":                     34,
		"gender":                  "female",
		"abdominal_fat":           "yes",
		"energy_drop_after_meal":  "yes",
		"sweet_cravings":          "high",
		"weight_gain_easy":        "yes",
		"weight_distribution":     "upper_body",
		"fasting_glucose_concern": "yes",
	}
}

func sampleWeek() []LogMetricsInput {
	entry := func(date string, sleep float64, energy domain.Energy, movement int, meals bool) LogMetricsInput {
		return LogMetricsInput{
			Date:            date,
			SleepHours:      domain.Ptr(sleep),
			EnergyLevel:     string(energy),
			MovementMinutes: domain.Ptr(movement),
			MealsLogged:     domain.Ptr(meals),
		}
	}
	return []LogMetricsInput{
		entry("2024-01-14", 7, domain.EnergyHigh, 25, true),
		entry("2024-01-15", 6.5, domain.EnergyMedium, 15, true),
		entry("2024-01-16", 8, domain.EnergyHigh, 40, true),
		entry("2024-01-17", 7.5, domain.EnergyHigh, 30, false),
		entry("2024-01-18", 6, domain.EnergyLow, 10, true),
		entry("2024-01-19", 7, domain.EnergyMedium, 20, true),
		entry("2024-01-20", 7.5, domain.EnergyHigh, 35, true),
	}
}

func logAll(t *testing.T, srv *Server, inputs []LogMetricsInput) {
	t.Helper()
	for _, in := range inputs {
		_, out, err := srv.logDailyMetrics(context.Background(), nil, in)
		require.NoError(t, err)
		require.True(t, out.Success, "log %s: %s", in.Date, out.Message)
	}
}

func requireToolError(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var te *ToolError
	require.True(t, errors.As(err, &te), "expected a ToolError, got %v", err)
	assert.Equal(t, code, te.Code)
}

func TestServerNew(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	require.NotNil(t, srv)
	assert.NotNil(t, srv.mcp)
	assert.NotNil(t, srv.tracker)
	assert.Same(t, srv.mcp, srv.MCPServer())
}

func TestClassifyBodyType(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name  string
		input ClassifyInput
		code  ErrorCode
	}{
		{name: "empty", input: ClassifyInput{}, code: ErrInvalidInput},
		{
			name: "both shapes",
			input: ClassifyInput{
				Traits:  map[string]any{"stress_level": "high"},
				Answers: map[string]string{"PT01": "A"},
			},
			code: ErrInvalidInput,
		},
		{
			name:  "unknown question",
			input: ClassifyInput{Answers: map[string]string{"Q99": "A"}},
			code:  ErrInvalidInput,
		},
		{
			name:  "well-formed id outside the bank",
			input: ClassifyInput{Answers: map[string]string{"PT01": "A", "ZZ99": "B"}},
			code:  ErrInvalidInput,
		},
		{
			name:  "ninth physical question",
			input: ClassifyInput{Answers: map[string]string{"PT09": "A"}},
			code:  ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := newTestServer(t)
			_, _, err := srv.classifyBodyType(ctx, nil, tt.input)
			requireToolError(t, err, tt.code)
		})
	}

	t.Run("traits", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)
		_, out, err := srv.classifyBodyType(ctx, nil, ClassifyInput{Traits: metabolicTraits()})
		require.NoError(t, err)
		assert.Equal(t, "traits", out.InputKind)
		assert.Equal(t, domain.TypeRed, out.Classification.PrimaryType)
		assert.Equal(t, 100, out.Classification.Confidence)
		require.NotEmpty(t, out.SuggestedActions)
		assert.Equal(t, "get_today_habits", out.SuggestedActions[0].Tool)
	})

	t.Run("quiz", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)
		_, out, err := srv.classifyBodyType(ctx, nil, ClassifyInput{Answers: map[string]string{
			"PT01": "A", "PT02": "A", "PT03": "A", "PR01": "A", "PS01": "B",
		}})
		require.NoError(t, err)
		assert.Equal(t, "quiz", out.InputKind)
		require.NotNil(t, out.Classification.Quiz)
		assert.NotEmpty(t, out.Classification.Quiz.Unanswered)
	})
}

func TestGetQuizQuestions(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	_, out, err := srv.getQuizQuestions(context.Background(), nil, QuizQuestionsInput{})
	require.NoError(t, err)
	assert.Equal(t, string(bodytype.ScoringWeightedShare), out.Scoring)
	assert.Len(t, out.Bank.Questions, 16)
	for _, q := range out.Bank.Questions {
		assert.True(t, bodytype.IsQuestionID(q.ID), q.ID)
	}
}

func TestLogDailyMetrics(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := srv.logDailyMetrics(ctx, nil, LogMetricsInput{
		SleepHours:   domain.Ptr(7.5),
		SleepQuality: "good",
		Notes:        "first",
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.Created)
	assert.Empty(t, out.Code)
	require.NotNil(t, out.Entry)
	assert.Equal(t, "2024-01-20", out.Entry.Date, "date defaults to today")
	assert.Equal(t, 1, out.CurrentStreak)
	assert.Equal(t, 1, out.Access.DaysUsed)

	_, out, err = srv.logDailyMetrics(ctx, nil, LogMetricsInput{MovementMinutes: domain.Ptr(0)})
	require.NoError(t, err)
	assert.False(t, out.Created)
	require.NotNil(t, out.Entry)
	assert.Equal(t, 7.5, *out.Entry.SleepHours, "untouched fields are kept")
	assert.Equal(t, domain.SleepGood, out.Entry.SleepQuality)
	require.NotNil(t, out.Entry.MovementMinutes)
	assert.Equal(t, 0, *out.Entry.MovementMinutes, "zero is a value")
	assert.Equal(t, "first", out.Entry.Notes)
}

func TestLogDailyMetricsValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name  string
		input LogMetricsInput
	}{
		{name: "sleep over 24", input: LogMetricsInput{SleepHours: domain.Ptr(25.0)}},
		{name: "negative sleep", input: LogMetricsInput{SleepHours: domain.Ptr(-1.0)}},
		{name: "negative water", input: LogMetricsInput{WaterIntakeLiters: domain.Ptr(-0.5)}},
		{name: "negative movement", input: LogMetricsInput{MovementMinutes: domain.Ptr(-10)}},
		{name: "negative habits", input: LogMetricsInput{HabitsCompleted: domain.Ptr(-1)}},
		{name: "bad date", input: LogMetricsInput{Date: "2024-13-01"}},
		{name: "date with time", input: LogMetricsInput{Date: "2024-01-20T10:00:00Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := newTestServer(t)
			_, _, err := srv.logDailyMetrics(ctx, nil, tt.input)
			requireToolError(t, err, ErrInvalidInput)
		})
	}
}

func TestLogDailyMetricsAcceptsUnknownEnums(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	_, out, err := srv.logDailyMetrics(context.Background(), nil, LogMetricsInput{EnergyLevel: "sky_high"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, domain.Energy("sky_high"), out.Entry.EnergyLevel)
}

func TestLogDailyMetricsPlanLimit(t *testing.T) {
	t.Parallel()
	srv, tel := newTestServer(t)
	ctx := context.Background()

	logAll(t, srv, sampleWeek())

	_, out, err := srv.logDailyMetrics(ctx, nil, LogMetricsInput{Date: "2024-01-21", SleepHours: domain.Ptr(8.0)})
	require.NoError(t, err, "a plan rejection is reported in the output")
	assert.False(t, out.Success)
	assert.Equal(t, ErrPlanLimit, out.Code)
	assert.Nil(t, out.Entry)
	assert.False(t, out.Access.CanLogToday)
	require.NotEmpty(t, out.SuggestedActions)
	assert.Equal(t, "get_plan_status", out.SuggestedActions[0].Tool)

	_, out, err = srv.logDailyMetrics(ctx, nil, LogMetricsInput{Date: "2024-01-20", Notes: "edited"})
	require.NoError(t, err)
	assert.True(t, out.Success, "existing dates can always be updated")
	assert.Equal(t, 7, out.CurrentStreak)

	assert.Contains(t, scrape(t, tel), "bodycode_tracker_plan_rejections_total 1")
}

func TestGetTodayHabits(t *testing.T) {
	t.Parallel()
	srv, tel := newTestServer(t)
	ctx := context.Background()

	_, first, err := srv.getTodayHabits(ctx, nil, TodayHabitsInput{})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "2024-01-20", first.Plan.Date)
	assert.Equal(t, domain.DefaultType, first.Plan.BodyType, "no classification yet")
	require.NotNil(t, first.Plan.MainHabit)
	assert.Equal(t, first.Plan.FocusCategory, first.Plan.MainHabit.Category)
	assert.Equal(t, "basic", first.Reminder.Type)

	_, second, err := srv.getTodayHabits(ctx, nil, TodayHabitsInput{Date: "2024-01-20"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	if diff := cmp.Diff(first.Plan, second.Plan); diff != "" {
		t.Errorf("cached plan changed (-first +second):\n%s", diff)
	}

	_, _, err = srv.getTodayHabits(ctx, nil, TodayHabitsInput{Date: "20-01-2024"})
	requireToolError(t, err, ErrInvalidInput)

	body := scrape(t, tel)
	assert.Contains(t, body, `bodycode_tracker_habit_plan_lookups_total{result="miss"} 1`)
	assert.Contains(t, body, `bodycode_tracker_habit_plan_lookups_total{result="hit"} 1`)
}

func TestLookupHabit(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := srv.lookupHabit(ctx, nil, LookupHabitInput{ID: "sleep_red_1"})
	require.NoError(t, err)
	assert.Equal(t, "sleep_red_1", out.Habit.ID)
	assert.Equal(t, habits.CategorySleep, out.Habit.Category)
	assert.Equal(t, domain.TypeRed, out.Habit.BodyType)

	_, _, err = srv.lookupHabit(ctx, nil, LookupHabitInput{ID: "no_such_habit"})
	requireToolError(t, err, ErrNotFound)

	_, _, err = srv.lookupHabit(ctx, nil, LookupHabitInput{})
	requireToolError(t, err, ErrInvalidInput)
}

func TestAnalysisTools(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, patterns, err := srv.analyzePatterns(ctx, nil, PatternsInput{})
	require.NoError(t, err)
	assert.False(t, patterns.Report.HasEnoughData)
	assert.Empty(t, patterns.Report.Patterns)
	require.NotEmpty(t, patterns.SuggestedActions)
	assert.Equal(t, "log_daily_metrics", patterns.SuggestedActions[0].Tool)

	_, daily, err := srv.getDailyInsight(ctx, nil, DailyInsightInput{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-20", daily.Date)
	assert.NotEmpty(t, daily.Insight.Title, "a day without a log still gets an insight")

	_, _, err = srv.classifyBodyType(ctx, nil, ClassifyInput{Traits: metabolicTraits()})
	require.NoError(t, err)
	logAll(t, srv, sampleWeek())

	_, weekly, err := srv.getWeeklySummary(ctx, nil, WeeklySummaryInput{})
	require.NoError(t, err)
	assert.Equal(t, 7, weekly.Summary.TotalDays)
	assert.Equal(t, 7.1, weekly.Summary.Stats.AvgSleep)
	assert.Equal(t, domain.TypeRed, weekly.Summary.BodyType)

	_, earlier, err := srv.getWeeklySummary(ctx, nil, WeeklySummaryInput{EndDate: "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, 3, earlier.Summary.TotalDays)

	_, patterns, err = srv.analyzePatterns(ctx, nil, PatternsInput{})
	require.NoError(t, err)
	assert.True(t, patterns.Report.HasEnoughData)
	assert.Equal(t, 7, patterns.Report.DaysAnalyzed)
	assert.LessOrEqual(t, len(patterns.Report.Patterns), 5)
}

func TestPlanTools(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, status, err := srv.getPlanStatus(ctx, nil, PlanStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, status.Access.Plan)
	assert.True(t, status.Access.CanLogToday)
	require.NotNil(t, status.Access.DaysRemaining)
	assert.Equal(t, 7, *status.Access.DaysRemaining)
	assert.False(t, status.WeeklyInsight.Available)
	assert.Equal(t, 0, status.CurrentStreak)
	assert.Empty(t, status.SuggestedActions)

	_, _, err = srv.setPlanTier(ctx, nil, SetPlanInput{Tier: "gold"})
	requireToolError(t, err, ErrInvalidInput)

	_, set, err := srv.setPlanTier(ctx, nil, SetPlanInput{Tier: " PAID "})
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPaid, set.Access.Plan)
	assert.True(t, set.Access.Unlimited)

	logAll(t, srv, sampleWeek())
	_, status, err = srv.getPlanStatus(ctx, nil, PlanStatusInput{})
	require.NoError(t, err)
	assert.True(t, status.WeeklyInsight.Available)
	assert.Equal(t, 7, status.CurrentStreak)
	assert.Equal(t, "done", status.Reminder.Type)
}

func TestExportData(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	ctx := context.Background()

	_, _, err := srv.classifyBodyType(ctx, nil, ClassifyInput{Traits: metabolicTraits()})
	require.NoError(t, err)
	logAll(t, srv, sampleWeek()[4:])

	_, out, err := srv.exportData(ctx, nil, ExportInput{})
	require.NoError(t, err)
	doc := out.Export
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "BodyCode", doc.AppName)
	assert.Equal(t, "1.0.0", doc.ExportVersion)
	assert.True(t, doc.ExportDate.Equal(fixedNow))
	assert.EqualValues(t, 34, doc.User.Age)
	require.NotNil(t, doc.BodyType)
	assert.Equal(t, domain.TypeRed, doc.BodyType.Primary)
	assert.Len(t, doc.HabitLogs, 3)
	assert.Equal(t, 3, doc.Statistics.CurrentStreak)
	assert.Equal(t, "2024-01-18", doc.Statistics.DateRange.Start)
}

func TestToToolError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{name: "passthrough", err: NewNotFoundError("habit"), code: ErrNotFound},
		{name: "invalid date", err: tracker.ErrInvalidDate, code: ErrInvalidInput},
		{name: "missing key", err: store.ErrNotFound, code: ErrNotFound},
		{name: "anything else", err: errors.New("disk full"), code: ErrStorageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.code, toToolError("op", tt.err).Code)
		})
	}
}

// connect runs the server over in-memory transports and returns a client session
func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	if out != nil && !res.IsError {
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		require.NoError(t, json.Unmarshal([]byte(text.Text), out))
	}
	return res
}

func TestMCPSession(t *testing.T) {
	t.Parallel()
	srv, tel := newTestServer(t)
	cs := connect(t, srv)
	ctx := context.Background()

	tools, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"classify_body_type", "get_quiz_questions", "log_daily_metrics", "get_today_habits",
		"lookup_habit", "get_daily_insight", "get_weekly_summary", "analyze_patterns",
		"get_plan_status", "set_plan_tier", "export_data",
	}, names)

	var classified ClassifyOutput
	res := callTool(t, cs, "classify_body_type", map[string]any{"traits": metabolicTraits()}, &classified)
	require.False(t, res.IsError)
	assert.Equal(t, domain.TypeRed, classified.Classification.PrimaryType)

	var logged LogMetricsOutput
	res = callTool(t, cs, "log_daily_metrics", map[string]any{"sleep_hours": 6.5, "meals_logged": false}, &logged)
	require.False(t, res.IsError)
	assert.True(t, logged.Success)
	require.NotNil(t, logged.Entry)
	assert.False(t, *logged.Entry.MealsLogged)

	var plan TodayHabitsOutput
	res = callTool(t, cs, "get_today_habits", map[string]any{}, &plan)
	require.False(t, res.IsError)
	assert.Equal(t, domain.TypeRed, plan.Plan.BodyType)
	assert.Equal(t, "done", plan.Reminder.Type)

	var status PlanStatusOutput
	res = callTool(t, cs, "get_plan_status", map[string]any{}, &status)
	require.False(t, res.IsError)
	assert.Equal(t, retention.TrackedHabits, status.Access.TrackedHabits)

	var exported ExportOutput
	res = callTool(t, cs, "export_data", map[string]any{}, &exported)
	require.False(t, res.IsError)
	assert.Len(t, exported.Export.HabitLogs, 1)

	res = callTool(t, cs, "lookup_habit", map[string]any{"id": "missing"}, nil)
	assert.True(t, res.IsError)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, string(ErrNotFound))

	body := scrape(t, tel)
	assert.Contains(t, body, `bodycode_mcp_tool_calls_total{status="ok",tool="classify_body_type"} 1`)
	assert.Contains(t, body, `bodycode_mcp_tool_calls_total{status="NOT_FOUND",tool="lookup_habit"} 1`)
}

func TestMCPResources(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	cs := connect(t, srv)
	ctx := context.Background()

	read := func(uri string) string {
		t.Helper()
		res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, "application/json", res.Contents[0].MIMEType)
		return res.Contents[0].Text
	}

	assert.Contains(t, read(classificationURI), "No classification yet")
	assert.JSONEq(t, "[]", read(logsURI))

	logAll(t, srv, sampleWeek()[5:])

	var logs []domain.DailyLog
	require.NoError(t, json.Unmarshal([]byte(read(logsURI)), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-01-19", logs[0].Date)

	var summary struct {
		TotalDays int `json:"total_days"`
	}
	require.NoError(t, json.Unmarshal([]byte(read(weekSummaryURI)), &summary))
	assert.Equal(t, 2, summary.TotalDays)

	var habit habits.Entry
	require.NoError(t, json.Unmarshal([]byte(read("bodycode://habits/sleep_red_1")), &habit))
	assert.Equal(t, "sleep_red_1", habit.ID)

	_, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "bodycode://habits/missing"})
	assert.Error(t, err)
}

func TestMCPPrompts(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	cs := connect(t, srv)
	ctx := context.Background()

	prompts, err := cs.ListPrompts(ctx, &mcp.ListPromptsParams{})
	require.NoError(t, err)
	assert.Len(t, prompts.Prompts, 3)

	tests := []struct {
		name string
		args map[string]string
		want string
	}{
		{name: "weekly_review", args: map[string]string{"end_date": "2024-01-14"}, want: `end_date="2024-01-14"`},
		{name: "weekly_review", want: `end_date="2024-01-20"`},
		{name: "daily_checkin", want: `date="2024-01-20"`},
		{name: "onboarding_quiz", want: "get_quiz_questions"},
		{name: "onboarding_quiz", args: map[string]string{"mode": "traits"}, want: "stress_level"},
	}

	for _, tt := range tests {
		res, err := cs.GetPrompt(ctx, &mcp.GetPromptParams{Name: tt.name, Arguments: tt.args})
		require.NoError(t, err, tt.name)
		require.Len(t, res.Messages, 1)
		text, ok := res.Messages[0].Content.(*mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, text.Text, tt.want, tt.name)
	}
}
