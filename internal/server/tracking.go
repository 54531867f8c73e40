package server

import (
	"context"
	"fmt"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/joshdurbin/bodycode-mcp/internal/habits"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/internal/retention"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTrackingTools registers the daily log and habit plan tools
func (s *Server) registerTrackingTools() {
	logging.Debug("Registering tool", "name", "log_daily_metrics")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "log_daily_metrics",
		Description: `Create or update the daily log for one date. Only the fields you send are changed; the rest of an existing entry is kept.

Use when:
- User reports how they slept, their energy, movement, stress, meals, water, sunlight, recovery or mood
- User corrects something logged earlier today

Parameters:
- date (string): Date in YYYY-MM-DD format. Default: today.
- sleep_hours (number), sleep_quality (poor|fair|good)
- energy_level (very_low|low|medium|high|very_high)
- movement_minutes (integer), movement_type (walking|running|yoga|strength|cycling|swimming|other)
- stress_level (low|medium|high), mood (low|neutral|good|great)
- meals_logged (boolean), water_intake_liters (number), sunlight_minutes (integer), recovery_minutes (integer)
- habits_completed (integer), notes (string)

The free plan allows 7 logged days. A new date beyond that returns success=false with code PLAN_LIMIT; updating an already logged date is always allowed.

Example: {"sleep_hours": 7.5, "sleep_quality": "good", "energy_level": "high", "movement_minutes": 30}`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Log Daily Metrics",
			ReadOnlyHint:    false,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "log_daily_metrics", s.logDailyMetrics))

	logging.Debug("Registering tool", "name", "get_today_habits")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_today_habits",
		Description: `Get the habit plan for a date: a main habit from the day's focus category, a secondary habit from another category, an optional risk warning and a focus message.

Use when:
- User asks "What should I do today?" or "What's my habit for today?"
- Starting a daily check-in

Parameters:
- date (string): Date in YYYY-MM-DD format. Default: today.

The plan is chosen once per date and then served unchanged for the rest of that day.

Returns: the plan, whether it came from cache, and today's check-in reminder.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Get Today's Habits",
			ReadOnlyHint:    false,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "get_today_habits", s.getTodayHabits))

	logging.Debug("Registering tool", "name", "lookup_habit")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "lookup_habit",
		Description: `Look up a habit from the catalog by its id.

Use when:
- User wants the full card (why, action, target, duration) for a habit seen in a plan

Parameters:
- id (string): Habit id, e.g. "sleep_red_1". Required.

Returns: the habit with its category and body type.`,
		Annotations: &mcp.ToolAnnotations{
			Title:           "Lookup Habit",
			ReadOnlyHint:    true,
			IdempotentHint:  true,
			OpenWorldHint:   ptr(false),
			DestructiveHint: ptr(false),
		},
	}, observed(s, "lookup_habit", s.lookupHabit))
}

// LogMetricsInput - partial daily log; absent fields are left unchanged
type LogMetricsInput struct {
	Date              string   `json:"date,omitempty" jsonschema:"Date of the log. Format: YYYY-MM-DD. Default: today."`
	SleepHours        *float64 `json:"sleep_hours,omitempty" jsonschema:"Hours slept last night, 0-24."`
	SleepQuality      string   `json:"sleep_quality,omitempty" jsonschema:"Sleep quality. Valid values: poor, fair, good."`
	EnergyLevel       string   `json:"energy_level,omitempty" jsonschema:"Energy level. Valid values: very_low, low, medium, high, very_high."`
	MovementMinutes   *int     `json:"movement_minutes,omitempty" jsonschema:"Minutes of movement today."`
	MovementType      string   `json:"movement_type,omitempty" jsonschema:"Kind of movement. Valid values: walking, running, yoga, strength, cycling, swimming, other."`
	StressLevel       string   `json:"stress_level,omitempty" jsonschema:"Stress level. Valid values: low, medium, high."`
	MealsLogged       *bool    `json:"meals_logged,omitempty" jsonschema:"Whether meals were tracked today."`
	WaterIntakeLiters *float64 `json:"water_intake_liters,omitempty" jsonschema:"Water intake in liters."`
	SunlightMinutes   *int     `json:"sunlight_minutes,omitempty" jsonschema:"Minutes of sunlight exposure."`
	RecoveryMinutes   *int     `json:"recovery_minutes,omitempty" jsonschema:"Minutes of deliberate recovery (breathing, stretching, rest)."`
	Mood              string   `json:"mood,omitempty" jsonschema:"Mood. Valid values: low, neutral, good, great."`
	HabitsCompleted   *int     `json:"habits_completed,omitempty" jsonschema:"Number of planned habits completed."`
	Notes             string   `json:"notes,omitempty" jsonschema:"Free-text notes."`
}

func (in LogMetricsInput) validate() error {
	if in.SleepHours != nil && (*in.SleepHours < 0 || *in.SleepHours > 24) {
		return NewInvalidInputErrorWithDetails("sleep_hours must be between 0 and 24", fmt.Sprint(*in.SleepHours))
	}
	if in.WaterIntakeLiters != nil && *in.WaterIntakeLiters < 0 {
		return NewInvalidInputError("water_intake_liters cannot be negative")
	}
	for name, v := range map[string]*int{
		"movement_minutes": in.MovementMinutes,
		"sunlight_minutes": in.SunlightMinutes,
		"recovery_minutes": in.RecoveryMinutes,
		"habits_completed": in.HabitsCompleted,
	} {
		if v != nil && *v < 0 {
			return NewInvalidInputError(name + " cannot be negative")
		}
	}
	return nil
}

func (in LogMetricsInput) patch() domain.DailyLog {
	return domain.DailyLog{
		SleepHours:        in.SleepHours,
		SleepQuality:      domain.SleepQuality(in.SleepQuality),
		EnergyLevel:       domain.Energy(in.EnergyLevel),
		MovementMinutes:   in.MovementMinutes,
		MovementType:      domain.MovementType(in.MovementType),
		StressLevel:       domain.Stress(in.StressLevel),
		MealsLogged:       in.MealsLogged,
		WaterIntakeLiters: in.WaterIntakeLiters,
		SunlightMinutes:   in.SunlightMinutes,
		RecoveryMinutes:   in.RecoveryMinutes,
		Mood:              domain.Mood(in.Mood),
		HabitsCompleted:   in.HabitsCompleted,
		Notes:             in.Notes,
	}
}

// LogMetricsOutput - result of a log write
type LogMetricsOutput struct {
	Success          bool              `json:"success"`
	Code             ErrorCode         `json:"code,omitempty"`
	Message          string            `json:"message"`
	Created          bool              `json:"created"`
	Entry            *domain.DailyLog  `json:"entry,omitempty"`
	Access           retention.Access  `json:"access"`
	CurrentStreak    int               `json:"current_streak"`
	SuggestedActions []SuggestedAction `json:"suggested_actions,omitempty"`
}

func (s *Server) logDailyMetrics(ctx context.Context, req *mcp.CallToolRequest, input LogMetricsInput) (*mcp.CallToolResult, LogMetricsOutput, error) {
	logging.Info("MCP tool call", "tool", "log_daily_metrics", "date", input.Date)

	if err := input.validate(); err != nil {
		return nil, LogMetricsOutput{}, err
	}

	res, err := s.tracker.SaveLog(ctx, input.Date, input.patch())
	if err != nil {
		logging.Error("log_daily_metrics failed", "error", err)
		return nil, LogMetricsOutput{}, toToolError("saving daily log", err)
	}

	output := LogMetricsOutput{
		Success: res.Success,
		Message: res.Message,
		Created: res.Created,
		Entry:   res.Entry,
		Access:  res.Access,
	}
	if !res.Success {
		s.telemetry.PlanRejected()
		logging.Info("Daily log rejected by plan", "date", input.Date, "plan", res.Access.Plan, "days_used", res.Access.DaysUsed)
		output.Code = ErrPlanLimit
		output.SuggestedActions = SuggestNextActions("plan_limit")
		return nil, output, nil
	}

	streak, err := s.tracker.Streak(ctx, s.tracker.Today())
	if err != nil {
		return nil, LogMetricsOutput{}, toToolError("computing streak", err)
	}
	output.CurrentStreak = streak
	output.SuggestedActions = SuggestNextActions("log")

	logging.Info("Daily log saved", "date", res.Entry.Date, "created", res.Created, "streak", streak)
	return nil, output, nil
}

// TodayHabitsInput - input for the daily plan
type TodayHabitsInput struct {
	Date string `json:"date,omitempty" jsonschema:"Date of the plan. Format: YYYY-MM-DD. Default: today."`
}

// TodayHabitsOutput - the plan for a date
type TodayHabitsOutput struct {
	Plan             habits.Plan        `json:"plan"`
	Cached           bool               `json:"cached"`
	Reminder         retention.Reminder `json:"reminder"`
	SuggestedActions []SuggestedAction  `json:"suggested_actions,omitempty"`
}

func (s *Server) getTodayHabits(ctx context.Context, req *mcp.CallToolRequest, input TodayHabitsInput) (*mcp.CallToolResult, TodayHabitsOutput, error) {
	logging.Info("MCP tool call", "tool", "get_today_habits", "date", input.Date)

	plan, cached, err := s.tracker.TodayPlan(ctx, input.Date)
	if err != nil {
		logging.Error("get_today_habits failed", "error", err)
		return nil, TodayHabitsOutput{}, toToolError("loading habit plan", err)
	}
	s.telemetry.HabitPlanLookup(cached)

	reminder, err := s.tracker.Reminder(ctx, plan.Date)
	if err != nil {
		return nil, TodayHabitsOutput{}, toToolError("building reminder", err)
	}

	return nil, TodayHabitsOutput{
		Plan:             plan,
		Cached:           cached,
		Reminder:         reminder,
		SuggestedActions: SuggestNextActions("habits"),
	}, nil
}

// LookupHabitInput - habit id
type LookupHabitInput struct {
	ID string `json:"id" jsonschema:"Habit id from a daily plan or the catalog, e.g. sleep_red_1. Required."`
}

// LookupHabitOutput - the catalog entry
type LookupHabitOutput struct {
	Habit habits.Entry `json:"habit"`
}

func (s *Server) lookupHabit(ctx context.Context, req *mcp.CallToolRequest, input LookupHabitInput) (*mcp.CallToolResult, LookupHabitOutput, error) {
	logging.Info("MCP tool call", "tool", "lookup_habit", "id", input.ID)

	if input.ID == "" {
		return nil, LookupHabitOutput{}, NewInvalidInputError("id is required")
	}
	entry, ok := s.tracker.Catalog().LookupHabitByID(input.ID)
	if !ok {
		return nil, LookupHabitOutput{}, NewNotFoundErrorWithID("habit", input.ID)
	}
	return nil, LookupHabitOutput{Habit: entry}, nil
}
