package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

// WeeklyStats aggregates a week of logs. Each average only counts the days
// that reported its metric.
type WeeklyStats struct {
	AvgSleep             float64 `json:"avg_sleep"`
	AvgMovement          int     `json:"avg_movement"`
	AvgEnergy            float64 `json:"avg_energy"`
	AvgHydration         float64 `json:"avg_hydration"`
	AvgSunlight          int     `json:"avg_sunlight"`
	AvgRecovery          int     `json:"avg_recovery"`
	AvgMood              float64 `json:"avg_mood"`
	SleepConsistency     int     `json:"sleep_consistency"`
	TotalHabitsCompleted int     `json:"total_habits_completed"`
	DaysLogged           int     `json:"days_logged"`
}

// WeeklyInsight is a pattern observed over the week
type WeeklyInsight struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Impact  string `json:"impact"`
}

// AreaToImprove is a below-target metric with a suggestion
type AreaToImprove struct {
	Area       string `json:"area"`
	Current    string `json:"current"`
	Target     string `json:"target"`
	Suggestion string `json:"suggestion"`
}

// DateRange spans the first and last logged dates
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// WeeklySummary is recomputed from logs on demand and never stored
type WeeklySummary struct {
	WeekNumber     int             `json:"week_number"`
	TotalDays      int             `json:"total_days"`
	DateRange      DateRange       `json:"date_range"`
	BodyType       domain.BodyType `json:"body_type"`
	Stats          WeeklyStats     `json:"stats"`
	Insights       []WeeklyInsight `json:"insights"`
	Wins           []string        `json:"wins"`
	AreasToImprove []AreaToImprove `json:"areas_to_improve"`
	NextWeekFocus  string          `json:"next_week_focus"`
}

// weekMetrics holds unrounded per-metric averages plus whether anything was reported
type weekMetrics struct {
	sleep, movement, hydration, sunlight, recovery, mood []float64

	consistency   int
	hasConsistent bool
}

func (m weekMetrics) has(values []float64) bool { return len(values) > 0 }

// BuildWeeklySummary aggregates logs, which should be ordered by date.
func BuildWeeklySummary(logs []domain.DailyLog, primary domain.BodyType) WeeklySummary {
	if primary == "" {
		primary = domain.DefaultType
	}

	m := weekMetrics{
		sleep:     collect(logs, sleepHours),
		movement:  collect(logs, movementMinutes),
		hydration: collect(logs, hydrationLiters),
		sunlight:  collect(logs, sunlightMinutes),
		recovery:  collect(logs, recoveryMinutes),
		mood:      collect(logs, moodScore),
	}
	m.consistency, m.hasConsistent = SleepConsistency(m.sleep)

	s := WeeklySummary{
		WeekNumber:     weekNumber(logs),
		TotalDays:      len(logs),
		BodyType:       primary,
		Stats:          weeklyStats(logs, m),
		Insights:       weeklyInsights(logs, m),
		Wins:           []string{},
		AreasToImprove: []AreaToImprove{},
		NextWeekFocus:  forType(nextWeekFocus, primary),
	}
	if len(logs) > 0 {
		s.DateRange = DateRange{Start: logs[0].Date, End: logs[len(logs)-1].Date}
	}

	st := s.Stats
	if m.hasConsistent && st.SleepConsistency >= 80 {
		s.Wins = append(s.Wins, "Sleep consistency excellent!")
	}
	if m.has(m.movement) && st.AvgMovement >= 30 {
		s.Wins = append(s.Wins, "Movement target consistently hit!")
	}
	if m.has(m.hydration) && st.AvgHydration >= 2 {
		s.Wins = append(s.Wins, "Hydration on point all week")
	}
	if m.has(m.sunlight) && st.AvgSunlight >= 15 {
		s.Wins = append(s.Wins, "Solid sunlight exposure")
	}
	if m.has(m.recovery) && st.AvgRecovery >= 5 {
		s.Wins = append(s.Wins, "Recovery minutes logged consistently")
	}
	if m.has(m.mood) && st.AvgMood >= 3 {
		s.Wins = append(s.Wins, "Mood trend is positive")
	}
	if len(logs) >= 6 {
		s.Wins = append(s.Wins, "Amazing tracking consistency!")
	}

	if m.hasConsistent && st.SleepConsistency < 60 {
		s.AreasToImprove = append(s.AreasToImprove, AreaToImprove{
			Area:       "Sleep Consistency",
			Current:    fmt.Sprintf("%d%%", st.SleepConsistency),
			Target:     "80%+",
			Suggestion: "Set a consistent bedtime and wake time",
		})
	}
	if m.has(m.movement) && st.AvgMovement < 20 {
		s.AreasToImprove = append(s.AreasToImprove, AreaToImprove{
			Area:       "Daily Movement",
			Current:    fmt.Sprintf("%d min", st.AvgMovement),
			Target:     "30+ min",
			Suggestion: "Start with 10 minute post-meal walks",
		})
	}
	if m.has(m.hydration) && st.AvgHydration < 1.5 {
		s.AreasToImprove = append(s.AreasToImprove, AreaToImprove{
			Area:       "Hydration",
			Current:    fmt.Sprintf("%g L", st.AvgHydration),
			Target:     "2+ L",
			Suggestion: "Add a reminder to drink water every 2-3 hours",
		})
	}
	if m.has(m.sunlight) && st.AvgSunlight < 10 {
		s.AreasToImprove = append(s.AreasToImprove, AreaToImprove{
			Area:       "Sunlight Exposure",
			Current:    fmt.Sprintf("%d min", st.AvgSunlight),
			Target:     "10-15 min",
			Suggestion: "Try a short morning walk before starting your day",
		})
	}
	return s
}

func weeklyStats(logs []domain.DailyLog, m weekMetrics) WeeklyStats {
	st := WeeklyStats{
		AvgSleep:         round1(Mean(m.sleep)),
		AvgMovement:      int(math.Round(Mean(m.movement))),
		AvgEnergy:        round1(Mean(collect(logs, energyScore))),
		AvgHydration:     round1(Mean(m.hydration)),
		AvgSunlight:      int(math.Round(Mean(m.sunlight))),
		AvgRecovery:      int(math.Round(Mean(m.recovery))),
		AvgMood:          round1(Mean(m.mood)),
		SleepConsistency: m.consistency,
		DaysLogged:       len(logs),
	}
	for _, l := range logs {
		if l.HabitsCompleted != nil {
			st.TotalHabitsCompleted += *l.HabitsCompleted
		}
	}
	return st
}

func weeklyInsights(logs []domain.DailyLog, m weekMetrics) []WeeklyInsight {
	out := []WeeklyInsight{}

	if m.hasConsistent && m.consistency < 70 {
		out = append(out, WeeklyInsight{
			Title:   "Sleep consistency can improve",
			Message: "Try to go to bed at the same time every day",
			Impact:  "High - sleep consistency directly affects metabolic and hormonal health",
		})
	}

	if len(logs) > 0 {
		meals := 0
		for _, l := range logs {
			if l.MealsTracked() {
				meals++
			}
		}
		if meals < 4 {
			out = append(out, WeeklyInsight{
				Title:   "Nutrition tracking is still minimal",
				Message: "Consistent logging helps identify patterns and triggers",
				Impact:  "Medium - awareness is the first step to change",
			})
		}
	}

	if m.has(m.movement) && Mean(m.movement) < 20 {
		out = append(out, WeeklyInsight{
			Title:   "Movement can be more consistent",
			Message: "Even 10-15 minutes of daily movement has significant benefits",
			Impact:  "High - movement is a key pillar for every body type",
		})
	}
	if m.has(m.hydration) && Mean(m.hydration) < 1.5 {
		out = append(out, WeeklyInsight{
			Title:   "Hydration is still low",
			Message: "Low hydration can affect energy and digestion",
			Impact:  "Medium - hydration supports metabolism and recovery",
		})
	}
	if m.has(m.sunlight) && Mean(m.sunlight) < 10 {
		out = append(out, WeeklyInsight{
			Title:   "Sunlight exposure is minimal",
			Message: "Morning sunlight helps your circadian rhythm and mood",
			Impact:  "Medium - light exposure improves sleep quality",
		})
	}
	if m.has(m.recovery) && Mean(m.recovery) < 3 {
		out = append(out, WeeklyInsight{
			Title:   "Recovery micro-breaks are lacking",
			Message: "5 minutes of breathwork can quickly reduce your stress response",
			Impact:  "Medium - recovery helps your nervous system",
		})
	}
	if m.has(m.mood) && Mean(m.mood) < 2 {
		out = append(out, WeeklyInsight{
			Title:   "Mood is trending down",
			Message: "Check the basic pillars: sleep, hydration and stress management",
			Impact:  "High - mood is an indicator of overall wellbeing",
		})
	}
	return out
}

// weekNumber is the ISO week of the last log's date, 0 when unknown
func weekNumber(logs []domain.DailyLog) int {
	if len(logs) == 0 {
		return 0
	}
	t, err := time.Parse(domain.DateLayout, logs[len(logs)-1].Date)
	if err != nil {
		return 0
	}
	_, week := t.ISOWeek()
	return week
}
