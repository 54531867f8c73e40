package domain

import (
	"time"
)

// DateLayout is the calendar-date key format used for logs and plan caches
const DateLayout = "2006-01-02"

// SleepQuality is the self-reported quality of last night's sleep
type SleepQuality string

const (
	SleepPoor SleepQuality = "poor"
	SleepFair SleepQuality = "fair"
	SleepGood SleepQuality = "good"
)

// Score maps sleep quality onto 1-3
func (q SleepQuality) Score() (float64, bool) {
	switch q {
	case SleepPoor:
		return 1, true
	case SleepFair:
		return 2, true
	case SleepGood:
		return 3, true
	}
	return 0, false
}

// Energy is an ordinal energy rating
type Energy string

const (
	EnergyVeryLow  Energy = "very_low"
	EnergyLow      Energy = "low"
	EnergyMedium   Energy = "medium"
	EnergyHigh     Energy = "high"
	EnergyVeryHigh Energy = "very_high"
)

// Score maps energy onto 1-5
func (e Energy) Score() (float64, bool) {
	switch e {
	case EnergyVeryLow:
		return 1, true
	case EnergyLow:
		return 2, true
	case EnergyMedium:
		return 3, true
	case EnergyHigh:
		return 4, true
	case EnergyVeryHigh:
		return 5, true
	}
	return 0, false
}

// IsLow reports low or very low energy
func (e Energy) IsLow() bool {
	return e == EnergyLow || e == EnergyVeryLow
}

// Stress is a three-step stress rating
type Stress string

const (
	StressLow    Stress = "low"
	StressMedium Stress = "medium"
	StressHigh   Stress = "high"
)

// Score maps stress onto 1-3
func (s Stress) Score() (float64, bool) {
	switch s {
	case StressLow:
		return 1, true
	case StressMedium:
		return 2, true
	case StressHigh:
		return 3, true
	}
	return 0, false
}

// Mood is an ordinal mood rating
type Mood string

const (
	MoodLow     Mood = "low"
	MoodNeutral Mood = "neutral"
	MoodGood    Mood = "good"
	MoodGreat   Mood = "great"
)

// Score maps mood onto 1-4; unmapped moods score 0 and should be skipped by callers.
func (m Mood) Score() (float64, bool) {
	switch m {
	case MoodLow:
		return 1, true
	case MoodNeutral:
		return 2, true
	case MoodGood:
		return 3, true
	case MoodGreat:
		return 4, true
	}
	return 0, false
}

// MovementType is the kind of movement logged
type MovementType string

const (
	MovementWalking  MovementType = "walking"
	MovementRunning  MovementType = "running"
	MovementYoga     MovementType = "yoga"
	MovementStrength MovementType = "strength"
	MovementCycling  MovementType = "cycling"
	MovementSwimming MovementType = "swimming"
	MovementOther    MovementType = "other"
)

// DailyLog is one self-reported entry per calendar date. Nil pointers and
// empty enums mean the metric was not reported.
type DailyLog struct {
	Date              string       `json:"date"`
	SleepHours        *float64     `json:"sleep_hours,omitempty"`
	SleepQuality      SleepQuality `json:"sleep_quality,omitempty"`
	EnergyLevel       Energy       `json:"energy_level,omitempty"`
	MovementMinutes   *int         `json:"movement_minutes,omitempty"`
	MovementType      MovementType `json:"movement_type,omitempty"`
	StressLevel       Stress       `json:"stress_level,omitempty"`
	MealsLogged       *bool        `json:"meals_logged,omitempty"`
	WaterIntakeLiters *float64     `json:"water_intake_liters,omitempty"`
	SunlightMinutes   *int         `json:"sunlight_minutes,omitempty"`
	RecoveryMinutes   *int         `json:"recovery_minutes,omitempty"`
	Mood              Mood         `json:"mood,omitempty"`
	HabitsCompleted   *int         `json:"habits_completed,omitempty"`
	Notes             string       `json:"notes,omitempty"`
	Timestamp         *time.Time   `json:"timestamp,omitempty"`
	UpdatedAt         *time.Time   `json:"updated_at,omitempty"`
}

// Merge returns l with every metric reported in patch overwritten.
// Date and timestamps are left to the caller.
func (l DailyLog) Merge(patch DailyLog) DailyLog {
	out := l
	if patch.SleepHours != nil {
		out.SleepHours = patch.SleepHours
	}
	if patch.SleepQuality != "" {
		out.SleepQuality = patch.SleepQuality
	}
	if patch.EnergyLevel != "" {
		out.EnergyLevel = patch.EnergyLevel
	}
	if patch.MovementMinutes != nil {
		out.MovementMinutes = patch.MovementMinutes
	}
	if patch.MovementType != "" {
		out.MovementType = patch.MovementType
	}
	if patch.StressLevel != "" {
		out.StressLevel = patch.StressLevel
	}
	if patch.MealsLogged != nil {
		out.MealsLogged = patch.MealsLogged
	}
	if patch.WaterIntakeLiters != nil {
		out.WaterIntakeLiters = patch.WaterIntakeLiters
	}
	if patch.SunlightMinutes != nil {
		out.SunlightMinutes = patch.SunlightMinutes
	}
	if patch.RecoveryMinutes != nil {
		out.RecoveryMinutes = patch.RecoveryMinutes
	}
	if patch.Mood != "" {
		out.Mood = patch.Mood
	}
	if patch.HabitsCompleted != nil {
		out.HabitsCompleted = patch.HabitsCompleted
	}
	if patch.Notes != "" {
		out.Notes = patch.Notes
	}
	return out
}

// Weekday returns the day of week of the log date; ok is false for malformed dates.
func (l DailyLog) Weekday() (time.Weekday, bool) {
	t, err := time.Parse(DateLayout, l.Date)
	if err != nil {
		return 0, false
	}
	return t.Weekday(), true
}

// MealsTracked reports whether meals were logged on this day
func (l DailyLog) MealsTracked() bool {
	return l.MealsLogged != nil && *l.MealsLogged
}
