package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

const (
	// MinPatternDays is the number of logged days needed before patterns are analyzed
	MinPatternDays = 7
	// minPairs is the number of days both metrics must be logged to correlate them
	minPairs = 5
	// correlationThreshold is the |r| a correlation must exceed to be reported
	correlationThreshold = 0.3
	maxPatterns          = 5

	mealsGapThreshold   = 0.5
	minMealTracked      = 5
	minMealUntracked    = 3
	weekendGapThreshold = 1.0
	minWeekdaySleep     = 3
	minWeekendSleep     = 2
)

// Trend is the direction of a detected pattern
type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNegative Trend = "negative"
)

// Pattern is a relationship detected between logged metrics
type Pattern struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Metrics     []string `json:"metrics"`
	Correlation *float64 `json:"correlation,omitempty"`
	Strength    int      `json:"strength"`
	Trend       Trend    `json:"trend"`
	Title       string   `json:"title"`
	Insight     string   `json:"insight"`
	SampleSize  int      `json:"sample_size"`
}

// PatternReport is the result of a pattern analysis. HasEnoughData is false
// below MinPatternDays, and then Patterns is always empty.
type PatternReport struct {
	HasEnoughData bool      `json:"has_enough_data"`
	DaysAnalyzed  int       `json:"days_analyzed"`
	Patterns      []Pattern `json:"patterns"`
	Message       string    `json:"message"`
}

type correlationPair struct {
	id       string
	x, y     string
	xs, ys   series
	title    string
	positive string
	negative string
}

var correlationPairs = []correlationPair{
	{
		id: "sleep_energy", x: "sleep_hours", y: "energy_level",
		xs: sleepHours, ys: energyScore,
		title:    "Sleep and energy",
		positive: "On days after more sleep your energy is higher. Protect your sleep window.",
		negative: "Longer sleep is not lifting your energy. Look at sleep quality and timing, not just hours.",
	},
	{
		id: "movement_energy", x: "movement_minutes", y: "energy_level",
		xs: movementMinutes, ys: energyScore,
		title:    "Movement and energy",
		positive: "More movement goes with more energy for you. Keep moving daily.",
		negative: "Heavier movement days leave you drained. Try gentler sessions or more recovery.",
	},
	{
		id: "stress_sleep_quality", x: "stress_level", y: "sleep_quality",
		xs: stressScore, ys: qualityScore,
		title:    "Stress and sleep quality",
		positive: "Your sleep quality holds up on stressful days.",
		negative: "High stress days are costing you sleep quality. A wind-down routine on stressful days is a priority.",
	},
	{
		id: "hydration_energy", x: "water_intake_liters", y: "energy_level",
		xs: hydrationLiters, ys: energyScore,
		title:    "Hydration and energy",
		positive: "Better hydrated days are higher energy days. Keep water within reach.",
		negative: "Energy dips on your higher water days. Check whether you are drinking to make up for fatigue.",
	},
	{
		id: "sunlight_mood", x: "sunlight_minutes", y: "mood",
		xs: sunlightMinutes, ys: moodScore,
		title:    "Sunlight and mood",
		positive: "More time in daylight goes with a better mood. Get outside early in the day.",
		negative: "Your mood is lower on high sunlight days. Look at what else those days have in common.",
	},
}

// AnalyzePatterns looks for correlations and simple comparisons across logs.
// Patterns are ordered by strength, strongest first, and capped at five.
func AnalyzePatterns(logs []domain.DailyLog) PatternReport {
	if len(logs) < MinPatternDays {
		return PatternReport{
			DaysAnalyzed: len(logs),
			Patterns:     []Pattern{},
			Message:      fmt.Sprintf("Log at least %d days to unlock pattern analysis (%d so far)", MinPatternDays, len(logs)),
		}
	}

	patterns := []Pattern{}
	for _, pair := range correlationPairs {
		if p, ok := correlate(logs, pair); ok {
			patterns = append(patterns, p)
		}
	}
	if p, ok := mealsEnergy(logs); ok {
		patterns = append(patterns, p)
	}
	if p, ok := weekendSleep(logs); ok {
		patterns = append(patterns, p)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Strength > patterns[j].Strength
	})
	if len(patterns) > maxPatterns {
		patterns = patterns[:maxPatterns]
	}

	msg := fmt.Sprintf("Found %d patterns across %d days", len(patterns), len(logs))
	if len(patterns) == 0 {
		msg = fmt.Sprintf("No strong patterns yet across %d days. Keep logging consistently.", len(logs))
	}
	return PatternReport{
		HasEnoughData: true,
		DaysAnalyzed:  len(logs),
		Patterns:      patterns,
		Message:       msg,
	}
}

func correlate(logs []domain.DailyLog, pair correlationPair) (Pattern, bool) {
	xs, ys := paired(logs, pair.xs, pair.ys)
	if len(xs) < minPairs {
		return Pattern{}, false
	}
	r := Pearson(xs, ys)
	if math.Abs(r) <= correlationThreshold {
		return Pattern{}, false
	}

	p := Pattern{
		ID:          pair.id,
		Kind:        "correlation",
		Metrics:     []string{pair.x, pair.y},
		Correlation: domain.Ptr(round2(r)),
		Strength:    int(math.Round(math.Abs(r) * 100)),
		Title:       pair.title,
		SampleSize:  len(xs),
	}
	if r > 0 {
		p.Trend, p.Insight = TrendPositive, pair.positive
	} else {
		p.Trend, p.Insight = TrendNegative, pair.negative
	}
	return p, true
}

// mealsEnergy compares average energy on days with and without logged meals
func mealsEnergy(logs []domain.DailyLog) (Pattern, bool) {
	var tracked, untracked []float64
	for _, l := range logs {
		e, ok := l.EnergyLevel.Score()
		if !ok {
			continue
		}
		if l.MealsTracked() {
			tracked = append(tracked, e)
		} else {
			untracked = append(untracked, e)
		}
	}
	if len(tracked) < minMealTracked || len(untracked) < minMealUntracked {
		return Pattern{}, false
	}

	gap := Mean(tracked) - Mean(untracked)
	if math.Abs(gap) <= mealsGapThreshold {
		return Pattern{}, false
	}

	p := Pattern{
		ID:         "meals_energy",
		Kind:       "comparison",
		Metrics:    []string{"meals_logged", "energy_level"},
		Strength:   int(math.Min(100, math.Round(math.Abs(gap)/4*100))),
		Title:      "Meal tracking and energy",
		SampleSize: len(tracked) + len(untracked),
	}
	if gap > 0 {
		p.Trend = TrendPositive
		p.Insight = fmt.Sprintf("Your energy averages %.1f points higher on days you log meals. Regular, tracked meals work for you.", gap)
	} else {
		p.Trend = TrendNegative
		p.Insight = fmt.Sprintf("Your energy averages %.1f points lower on days you log meals. Look at what those meals contain.", -gap)
	}
	return p, true
}

// weekendSleep compares average sleep on weekdays and weekends
func weekendSleep(logs []domain.DailyLog) (Pattern, bool) {
	var weekday, weekend []float64
	for _, l := range logs {
		if l.SleepHours == nil {
			continue
		}
		day, ok := l.Weekday()
		if !ok {
			continue
		}
		if day == time.Saturday || day == time.Sunday {
			weekend = append(weekend, *l.SleepHours)
		} else {
			weekday = append(weekday, *l.SleepHours)
		}
	}
	if len(weekday) < minWeekdaySleep || len(weekend) < minWeekendSleep {
		return Pattern{}, false
	}

	gap := Mean(weekend) - Mean(weekday)
	if math.Abs(gap) <= weekendGapThreshold {
		return Pattern{}, false
	}

	p := Pattern{
		ID:         "weekend_sleep",
		Kind:       "comparison",
		Metrics:    []string{"sleep_hours", "day_of_week"},
		Strength:   int(math.Min(100, math.Round(math.Abs(gap)*25))),
		Title:      "Weekend sleep shift",
		SampleSize: len(weekday) + len(weekend),
	}
	if gap > 0 {
		p.Trend = TrendPositive
		p.Insight = fmt.Sprintf("You sleep %.1f hours more on weekends, a sign of weekday sleep debt. Move weekday bedtime earlier.", gap)
	} else {
		p.Trend = TrendNegative
		p.Insight = fmt.Sprintf("You sleep %.1f hours less on weekends. Keep weekend wake times close to weekdays.", -gap)
	}
	return p, true
}
