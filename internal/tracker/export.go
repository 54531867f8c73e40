package tracker

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/joshdurbin/bodycode-mcp/internal/store"
)

const (
	exportVersion = "1.0.0"
	appName       = "BodyCode"
)

// ExportUser is the profile slice included in an export
type ExportUser struct {
	Age                 any        `json:"age,omitempty"`
	Gender              any        `json:"gender,omitempty"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
}

// ExportBodyType is the classification summary included in an export
type ExportBodyType struct {
	Primary       domain.BodyType `json:"primary"`
	Name          string          `json:"name,omitempty"`
	Description   string          `json:"description,omitempty"`
	Confidence    int             `json:"confidence"`
	Secondary     domain.BodyType `json:"secondary,omitempty"`
	SecondaryName string          `json:"secondary_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExportAverages are lifetime averages over the exported logs
type ExportAverages struct {
	AvgSleep              float64 `json:"avg_sleep"`
	AvgMovement           int     `json:"avg_movement"`
	NutritionTrackingRate int     `json:"nutrition_tracking_rate"`
}

// ExportDateRange spans the first and last logged dates
type ExportDateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ExportStatistics summarizes the exported history
type ExportStatistics struct {
	TotalDaysLogged int             `json:"total_days_logged"`
	CurrentStreak   int             `json:"current_streak"`
	DateRange       ExportDateRange `json:"date_range"`
	Averages        *ExportAverages `json:"averages,omitempty"`
}

// Export is the user-facing data export document
type Export struct {
	ID            string            `json:"export_id"`
	ExportDate    time.Time         `json:"export_date"`
	ExportVersion string            `json:"export_version"`
	AppName       string            `json:"app_name"`
	Plan          domain.PlanTier   `json:"plan"`
	User          ExportUser        `json:"user"`
	BodyType      *ExportBodyType   `json:"body_type,omitempty"`
	HabitLogs     []domain.DailyLog `json:"habit_logs"`
	Statistics    ExportStatistics  `json:"statistics"`
}

// Export assembles everything the user owns into one document
func (s *Service) Export(ctx context.Context, now time.Time) (Export, error) {
	logs, plan, err := s.logsAndPlan(ctx)
	if err != nil {
		return Export{}, err
	}

	doc := Export{
		ID:            uuid.NewString(),
		ExportDate:    now.UTC(),
		ExportVersion: exportVersion,
		AppName:       appName,
		Plan:          plan,
		HabitLogs:     logs,
		Statistics: ExportStatistics{
			TotalDaysLogged: len(logs),
			CurrentStreak:   streak(logs, now.Format(domain.DateLayout)),
			Averages:        exportAverages(logs),
		},
	}
	if len(logs) > 0 {
		doc.Statistics.DateRange = ExportDateRange{Start: logs[0].Date, End: logs[len(logs)-1].Date}
	}

	user, err := s.User(ctx)
	switch {
	case err == nil:
		doc.User = ExportUser{
			Age:                 user.Traits["age"],
			Gender:              user.Traits["gender"],
			OnboardingCompleted: user.OnboardingCompleted,
			CreatedAt:           &user.CreatedAt,
		}
	case !errors.Is(err, store.ErrNotFound):
		return Export{}, err
	}

	c, err := s.Classification(ctx)
	switch {
	case err == nil:
		bt := &ExportBodyType{
			Primary:    c.PrimaryType,
			Confidence: c.Confidence,
			Secondary:  c.SecondaryType,
			CreatedAt:  c.Timestamp,
		}
		if c.PrimaryInfo != nil {
			bt.Name = c.PrimaryInfo.Name
			bt.Description = c.PrimaryInfo.Description
		}
		if c.SecondaryInfo != nil {
			bt.SecondaryName = c.SecondaryInfo.Name
		}
		doc.BodyType = bt
	case !errors.Is(err, store.ErrNotFound):
		return Export{}, err
	}

	return doc, nil
}

// exportAverages is nil for an empty history
func exportAverages(logs []domain.DailyLog) *ExportAverages {
	if len(logs) == 0 {
		return nil
	}

	var sleep, movement float64
	var sleepDays, movementDays, mealDays int
	for _, l := range logs {
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

	avg := &ExportAverages{
		NutritionTrackingRate: int(math.Round(float64(mealDays) / float64(len(logs)) * 100)),
	}
	if sleepDays > 0 {
		avg.AvgSleep = math.Round(sleep/float64(sleepDays)*10) / 10
	}
	if movementDays > 0 {
		avg.AvgMovement = int(math.Round(movement / float64(movementDays)))
	}
	return avg
}
