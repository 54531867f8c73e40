package habits

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

const (
	// sleepConsistencyTarget is the consistency score below which a sleep warning is raised
	sleepConsistencyTarget = 70
	// minDaysLogged is the number of logged days below which a tracking reminder is raised
	minDaysLogged = 3
)

// Priority marks a planned habit as the day's main or secondary habit
type Priority string

const (
	PriorityMain      Priority = "main"
	PrioritySecondary Priority = "secondary"
)

// PlannedHabit is a habit scheduled into a daily plan
type PlannedHabit struct {
	Habit
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
}

// RiskHabit is a warning or reminder raised from recent progress
type RiskHabit struct {
	Type       string `json:"type"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Action     string `json:"action"`
}

// Plan is the habit plan for one calendar date
type Plan struct {
	Date           string          `json:"date"`
	BodyType       domain.BodyType `json:"body_type"`
	FocusCategory  Category        `json:"focus_category"`
	MainHabit      *PlannedHabit   `json:"main_habit,omitempty"`
	SecondaryHabit *PlannedHabit   `json:"secondary_habit,omitempty"`
	RiskHabit      *RiskHabit      `json:"risk_habit,omitempty"`
	FocusMessage   string          `json:"focus_message"`
}

// Progress summarizes recent logging. Nil fields are unknown and never raise a risk.
type Progress struct {
	SleepConsistency *int `json:"sleep_consistency,omitempty"`
	DaysLogged       *int `json:"days_logged,omitempty"`
}

// Selector picks daily plans from a catalog. Picks are random, so callers
// that need a stable plan for a date must cache the first one.
type Selector struct {
	catalog *Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a selector over c. A zero seed seeds from the clock.
func NewSelector(c *Catalog, seed uint64) *Selector {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Selector{
		catalog: c,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Catalog returns the catalog the selector draws from
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// SelectDailyHabits builds the plan for date. The main category rotates with
// dayIndex; the secondary habit always comes from a different category.
func (s *Selector) SelectDailyHabits(primary domain.BodyType, date string, dayIndex int, progress Progress) Plan {
	if primary == "" {
		primary = domain.DefaultType
	}

	idx := dayIndex % len(Categories)
	if idx < 0 {
		idx += len(Categories)
	}
	mainCat := Categories[idx]

	others := make([]Category, 0, len(Categories)-1)
	for _, c := range Categories {
		if c != mainCat {
			others = append(others, c)
		}
	}

	s.mu.Lock()
	first := s.pick(s.catalog.Pool(primary, mainCat))
	secondCat := others[s.rng.IntN(len(others))]
	second := s.pick(s.catalog.Pool(primary, secondCat))
	s.mu.Unlock()

	plan := Plan{
		Date:          date,
		BodyType:      primary,
		FocusCategory: mainCat,
		RiskHabit:     RiskFor(progress),
		FocusMessage:  s.catalog.FocusMessage(mainCat, primary),
	}
	if first != nil {
		plan.MainHabit = &PlannedHabit{Habit: *first, Category: mainCat, Priority: PriorityMain}
	}
	if second != nil {
		plan.SecondaryHabit = &PlannedHabit{Habit: *second, Category: secondCat, Priority: PrioritySecondary}
	}
	return plan
}

// pick must be called with mu held
func (s *Selector) pick(pool []Habit) *Habit {
	if len(pool) == 0 {
		return nil
	}
	h := pool[s.rng.IntN(len(pool))]
	return &h
}

// RiskFor returns the first risk raised by progress, or nil.
// Sleep consistency is checked before logging volume.
func RiskFor(p Progress) *RiskHabit {
	if p.SleepConsistency != nil && *p.SleepConsistency < sleepConsistencyTarget {
		return &RiskHabit{
			Type:       "warning",
			Category:   "sleep",
			Message:    "Your sleep consistency is below target",
			Suggestion: "Sleeping at the same time every day is critical for your body type",
			Action:     "Set an alarm for a wind-down routine tonight",
		}
	}
	if p.DaysLogged != nil && *p.DaysLogged < minDaysLogged {
		return &RiskHabit{
			Type:       "reminder",
			Category:   "tracking",
			Message:    "Tracking is still minimal",
			Suggestion: "Consistent tracking helps identify patterns",
			Action:     "Commit to logging your meals today",
		}
	}
	return nil
}
