package insights

import (
	"strings"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

// Priority ranks competing daily insights
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Insight is one actionable message about today's log
type Insight struct {
	Type     string   `json:"type"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Why      string   `json:"why"`
	Action   string   `json:"action"`
	Reminder string   `json:"reminder"`
	Priority Priority `json:"priority"`
	Factors  []string `json:"factors,omitempty"`
}

type analyzer func(domain.DailyLog, domain.BodyType) *Insight

// analyzers run in this order; it breaks priority ties.
var analyzers = []analyzer{
	analyzeSleep,
	analyzeNutrition,
	analyzeMovement,
	analyzeHydration,
	analyzeSunlight,
	analyzeRecovery,
	analyzeMood,
	analyzeEnergy,
}

// DailyInsight picks the highest-priority insight for today's log, falling
// back to the body type's default insight when nothing stands out.
func DailyInsight(log domain.DailyLog, primary domain.BodyType) Insight {
	var best *Insight
	for _, a := range analyzers {
		in := a(log, primary)
		if in == nil {
			continue
		}
		if best == nil || in.Priority.rank() > best.Priority.rank() {
			best = in
		}
	}
	if best != nil {
		return *best
	}
	return DefaultInsight(primary)
}

// DefaultInsight is the per-type insight shown when today's log says nothing notable
func DefaultInsight(primary domain.BodyType) Insight {
	t := forType(defaultTexts, primary)
	return Insight{
		Type:     "info",
		Category: "general",
		Title:    t.title,
		Why:      t.why,
		Action:   t.action,
		Reminder: t.reminder,
		Priority: PriorityMedium,
	}
}

func analyzeSleep(l domain.DailyLog, primary domain.BodyType) *Insight {
	if l.SleepHours == nil {
		return nil
	}
	hours := *l.SleepHours
	msg := forType(sleepTexts, primary)

	switch {
	case hours < 6 || l.SleepQuality == domain.SleepPoor:
		return &Insight{
			Type:     "alert",
			Category: "sleep",
			Title:    "Sleep Alert: Recovery Insufficient",
			Why:      msg.poor,
			Action:   "Aim to get to bed 30 minutes earlier tonight",
			Reminder: "Sleep is not optional - it's your body's repair time",
			Priority: PriorityHigh,
		}
	case hours >= 7 && l.SleepQuality == domain.SleepGood:
		return &Insight{
			Type:     "positive",
			Category: "sleep",
			Title:    "Great Sleep! Your body is in an optimal state",
			Why:      msg.good,
			Action:   "Keep this consistency and note what made last night work",
			Reminder: "Consistency is the key to sustainable health",
			Priority: PriorityLow,
		}
	}
	return nil
}

func analyzeNutrition(l domain.DailyLog, primary domain.BodyType) *Insight {
	if !l.MealsTracked() {
		return nil
	}
	t := forType(nutritionTexts, primary)
	return &Insight{
		Type:     "info",
		Category: "nutrition",
		Title:    t.title,
		Why:      t.why,
		Action:   t.action,
		Reminder: t.reminder,
		Priority: PriorityMedium,
	}
}

func analyzeMovement(l domain.DailyLog, primary domain.BodyType) *Insight {
	if l.MovementMinutes == nil {
		return nil
	}
	minutes := *l.MovementMinutes
	advice := forType(movementTexts, primary)

	switch {
	case minutes >= 20:
		return &Insight{
			Type:     "positive",
			Category: "movement",
			Title:    "Movement Goal Hit!",
			Why:      advice.good,
			Action:   "Notice how you feel - movement should energize, not drain",
			Reminder: "Progress is built one day at a time",
			Priority: PriorityLow,
		}
	case minutes < 10:
		return &Insight{
			Type:     "reminder",
			Category: "movement",
			Title:    "Movement Opportunity",
			Why:      advice.poor,
			Action:   "Find 10 minutes today for light movement",
			Reminder: "Something is always better than nothing",
			Priority: PriorityMedium,
		}
	}
	return nil
}

func analyzeHydration(l domain.DailyLog, _ domain.BodyType) *Insight {
	if l.WaterIntakeLiters == nil {
		return nil
	}
	if *l.WaterIntakeLiters < 1.5 {
		return &Insight{
			Type:     "reminder",
			Category: "hydration",
			Title:    "Hydration Reminder",
			Why:      "Hydration supports your energy, digestion and daily recovery",
			Action:   "Add 1-2 glasses of water over the next 2 hours",
			Reminder: "Small sips through the day are easier than a lot at once",
			Priority: PriorityMedium,
		}
	}
	return &Insight{
		Type:     "positive",
		Category: "hydration",
		Title:    "Hydration on track",
		Why:      "Good hydration supports metabolism and mood",
		Action:   "Keep a bottle close to maintain consistency",
		Reminder: "Hydration is a basic that packs a punch",
		Priority: PriorityLow,
	}
}

func analyzeSunlight(l domain.DailyLog, _ domain.BodyType) *Insight {
	if l.SunlightMinutes == nil {
		return nil
	}
	if *l.SunlightMinutes < 10 {
		return &Insight{
			Type:     "reminder",
			Category: "sunlight",
			Title:    "Sunlight Opportunity",
			Why:      "Morning light helps your circadian rhythm and mood",
			Action:   "Try a 10 minute easy walk outside",
			Reminder: "Natural light helps sleep quality tonight",
			Priority: PriorityMedium,
		}
	}
	return &Insight{
		Type:     "positive",
		Category: "sunlight",
		Title:    "Sunlight Hit",
		Why:      "Sunlight helps regulate hormones and energy",
		Action:   "Keep your daily sunlight window",
		Reminder: "Daily light exposure keeps your clock aligned",
		Priority: PriorityLow,
	}
}

func analyzeRecovery(l domain.DailyLog, _ domain.BodyType) *Insight {
	if l.RecoveryMinutes == nil {
		return nil
	}
	if *l.RecoveryMinutes < 5 {
		return &Insight{
			Type:     "reminder",
			Category: "recovery",
			Title:    "Recovery Boost",
			Why:      "A short breathwork session can lower stress and tension",
			Action:   "Try 5 minutes of box breathing this afternoon",
			Reminder: "Short recovery moments compound over time",
			Priority: PriorityMedium,
		}
	}
	return &Insight{
		Type:     "positive",
		Category: "recovery",
		Title:    "Recovery Time Logged",
		Why:      "A nervous system reset helps every body type",
		Action:   "Notice how your body feels after a recovery session",
		Reminder: "Consistency beats intensity",
		Priority: PriorityLow,
	}
}

func analyzeMood(l domain.DailyLog, _ domain.BodyType) *Insight {
	switch l.Mood {
	case domain.MoodLow:
		return &Insight{
			Type:     "alert",
			Category: "mood",
			Title:    "Mood Check-In",
			Why:      "Low mood is often tied to sleep, stress and hydration",
			Action:   "Cover the basics: eat enough, drink water, take a short walk",
			Reminder: "Low mood is data, not identity",
			Priority: PriorityHigh,
		}
	case domain.MoodGreat:
		return &Insight{
			Type:     "positive",
			Category: "mood",
			Title:    "Great Mood Detected",
			Why:      "A great mood signals your habits fit what your body needs",
			Action:   "Notice what made today feel light",
			Reminder: "Capture the pattern and repeat it",
			Priority: PriorityLow,
		}
	}
	return nil
}

func analyzeEnergy(l domain.DailyLog, _ domain.BodyType) *Insight {
	if !l.EnergyLevel.IsLow() {
		return nil
	}

	factors := []string{}
	if l.SleepHours != nil && *l.SleepHours < 7 {
		factors = append(factors, "Sleep insufficient")
	}
	if l.StressLevel == domain.StressHigh {
		factors = append(factors, "High stress load")
	}
	if l.MovementMinutes == nil || *l.MovementMinutes == 0 {
		factors = append(factors, "No movement today")
	}

	why := "No obvious cause in today's log"
	if len(factors) > 0 {
		why = "Possible factors: " + strings.Join(factors, ", ")
	}
	return &Insight{
		Type:     "alert",
		Category: "energy",
		Title:    "Low Energy Detected",
		Why:      why,
		Action:   "Prioritize recovery: hydrate, eat a light meal, take a short walk, sleep early",
		Reminder: "Low energy is a signal - listen and respond kindly",
		Priority: PriorityHigh,
		Factors:  factors,
	}
}
