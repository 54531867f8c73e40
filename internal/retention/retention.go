// Package retention applies the subscription plan policy: how many days a
// plan may log, which reminder it gets and whether weekly insight is unlocked.
package retention

import (
	"fmt"
	"math"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

// FreeTrackerDays is the number of logged days the free plan allows
const FreeTrackerDays = 7

// TrackedHabits are the habit areas the tracker covers
var TrackedHabits = []string{"eating pattern", "sleep", "emotions", "physical activity"}

type planConfig struct {
	trackerDays   int // 0 is unlimited
	reminderMode  string
	weeklyInsight bool
}

var plans = map[domain.PlanTier]planConfig{
	domain.PlanFree: {trackerDays: FreeTrackerDays, reminderMode: "basic"},
	domain.PlanPaid: {reminderMode: "adaptive", weeklyInsight: true},
}

func configFor(plan domain.PlanTier) (domain.PlanTier, planConfig) {
	if cfg, ok := plans[plan]; ok {
		return plan, cfg
	}
	return domain.PlanFree, plans[domain.PlanFree]
}

// Access describes what the current plan allows. DaysRemaining is nil when
// the plan is unlimited.
type Access struct {
	CanLogToday   bool            `json:"can_log_today"`
	TrackedHabits []string        `json:"tracked_habits"`
	Plan          domain.PlanTier `json:"plan"`
	DaysUsed      int             `json:"days_used"`
	DaysRemaining *int            `json:"days_remaining,omitempty"`
	Unlimited     bool            `json:"unlimited"`
	Message       string          `json:"message"`
}

// TrackerAccess evaluates the plan against the logged days
func TrackerAccess(logs []domain.DailyLog, plan domain.PlanTier) Access {
	plan, cfg := configFor(plan)
	used := len(logs)

	if cfg.trackerDays == 0 {
		return Access{
			CanLogToday:   true,
			TrackedHabits: TrackedHabits,
			Plan:          plan,
			DaysUsed:      used,
			Unlimited:     true,
			Message:       "Paid plan active: unlimited habit tracking.",
		}
	}

	remaining := int(math.Max(0, float64(cfg.trackerDays-used)))
	a := Access{
		CanLogToday:   remaining > 0,
		TrackedHabits: TrackedHabits,
		Plan:          plan,
		DaysUsed:      used,
		DaysRemaining: &remaining,
	}
	if a.CanLogToday {
		a.Message = fmt.Sprintf("Free plan: %d days left on the habit tracker.", remaining)
	} else {
		a.Message = fmt.Sprintf("Your %d free days are used up. Upgrade to paid to keep tracking without limits.", cfg.trackerDays)
	}
	return a
}

// WriteDecision is the outcome of the plan gate for a log write
type WriteDecision struct {
	Allowed bool   `json:"success"`
	Message string `json:"message"`
	Access  Access `json:"access"`
}

// CheckWrite gates a log write for date. Updates to an already logged date
// are always allowed; only new dates count against the plan.
func CheckWrite(logs []domain.DailyLog, plan domain.PlanTier, date string) WriteDecision {
	access := TrackerAccess(logs, plan)
	for _, l := range logs {
		if l.Date == date {
			return WriteDecision{Allowed: true, Message: "Updated the log for " + date, Access: access}
		}
	}
	if !access.CanLogToday {
		return WriteDecision{Allowed: false, Message: access.Message, Access: access}
	}
	return WriteDecision{Allowed: true, Message: "Logged " + date, Access: access}
}

// Reminder is the check-in nudge for today
type Reminder struct {
	Type    string `json:"type"`
	Mode    string `json:"mode"`
	Message string `json:"message"`
}

// GenerateReminder builds today's reminder. logs should be ordered by date.
func GenerateReminder(logs []domain.DailyLog, plan domain.PlanTier, today string) Reminder {
	plan, cfg := configFor(plan)

	for _, l := range logs {
		if l.Date == today {
			return Reminder{
				Type:    "done",
				Mode:    cfg.reminderMode,
				Message: "Great job! You already checked in today.",
			}
		}
	}

	if plan == domain.PlanPaid {
		msg := "Adaptive reminder: keep your sleep rhythm and eating pattern going, then check in before 21:00."
		if len(logs) > 0 && logs[len(logs)-1].StressLevel == domain.StressHigh {
			msg = "Adaptive reminder: check in on your emotions first today, then add 10 minutes of light activity."
		}
		return Reminder{Type: "adaptive", Mode: "adaptive", Message: msg}
	}

	return Reminder{
		Type:    "basic",
		Mode:    "basic",
		Message: "Basic reminder: fill in today's habit tracker to keep your streak going.",
	}
}

// WeeklyInsight is the paid plan's weekly retention note
type WeeklyInsight struct {
	Available bool   `json:"available"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

// GenerateWeeklyInsight summarizes the last seven logs for paid plans
func GenerateWeeklyInsight(logs []domain.DailyLog, plan domain.PlanTier) WeeklyInsight {
	_, cfg := configFor(plan)
	if !cfg.weeklyInsight {
		return WeeklyInsight{
			Title:   "Weekly insight is available on the paid plan",
			Message: "Upgrade to see weekly insight and personal retention recommendations.",
		}
	}

	week := logs
	if len(week) > 7 {
		week = week[len(week)-7:]
	}
	if len(week) == 0 {
		return WeeklyInsight{
			Available: true,
			Title:     "Weekly Insight",
			Message:   "Start filling in the daily tracker to unlock your first weekly insight.",
		}
	}

	var sleep, movement float64
	var sleepDays, movementDays, mealDays int
	for _, l := range week {
		if l.SleepHours != nil {
			sleep += *l.SleepHours
			sleepDays++
		}
		if l.MovementMinutes != nil {
			movement += float64(*l.MovementMinutes)
			movementDays++
		}
		if l.MealsTracked() {
			mealDays++
		}
	}
	avgSleep := sleep / float64(max(sleepDays, 1))
	avgMovement := movement / float64(max(movementDays, 1))
	nutritionRate := int(math.Round(float64(mealDays) / float64(len(week)) * 100))

	return WeeklyInsight{
		Available: true,
		Title:     "Weekly Insight",
		Message: fmt.Sprintf(
			"Your weekly retention score: sleep %.1f hours, activity %d minutes, meals logged %d%%. Keep it consistent to come back daily and weekly.",
			avgSleep, int(math.Round(avgMovement)), nutritionRate,
		),
	}
}
