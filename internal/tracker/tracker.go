// Package tracker ties the classification, habit and insight engines to a
// key-value store. It owns every read-modify-write on persisted state.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/bodytype"
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"github.com/joshdurbin/bodycode-mcp/internal/habits"
	"github.com/joshdurbin/bodycode-mcp/internal/insights"
	"github.com/joshdurbin/bodycode-mcp/internal/retention"
	"github.com/joshdurbin/bodycode-mcp/internal/store"
)

// ErrInvalidDate is returned for dates not in YYYY-MM-DD form
var ErrInvalidDate = errors.New("date must be formatted YYYY-MM-DD")

// progressWindow is how many recent logs feed the habit plan's progress
const progressWindow = 7

// User is the persisted onboarding profile
type User struct {
	Traits              domain.Traits  `json:"traits"`
	Variant             domain.Variant `json:"variant"`
	OnboardingCompleted bool           `json:"onboarding_completed"`
	CreatedAt           time.Time      `json:"created_at"`
}

// Service is the single writer over persisted state. A mutex serializes
// every read-modify-write so concurrent MCP sessions and workers cannot
// lose updates.
type Service struct {
	store    store.Store
	engine   *bodytype.Engine
	selector *habits.Selector
	now      func() time.Time

	mu sync.Mutex
}

// New creates a tracker. now defaults to time.Now.
func New(st store.Store, engine *bodytype.Engine, selector *habits.Selector, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    st,
		engine:   engine,
		selector: selector,
		now:      now,
	}
}

// Engine exposes the classification engine
func (s *Service) Engine() *bodytype.Engine {
	return s.engine
}

// Catalog exposes the habit catalog
func (s *Service) Catalog() *habits.Catalog {
	return s.selector.Catalog()
}

// Today is the current calendar date in the tracker's clock
func (s *Service) Today() string {
	return s.now().Format(domain.DateLayout)
}

// ParseDate validates a YYYY-MM-DD date; empty means today
func (s *Service) ParseDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return date, nil
}

// Onboard classifies a raw onboarding record of either shape and persists
// both the record and the resulting classification. A retake replaces the
// previous classification wholesale.
func (s *Service) Onboard(ctx context.Context, record map[string]any) (domain.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := bodytype.DetectInput(record)
	c := s.engine.Classify(in)

	user := User{
		Traits:              domain.Traits{},
		Variant:             c.Variant,
		OnboardingCompleted: true,
		CreatedAt:           s.now().UTC(),
	}
	var prev User
	err := s.store.Get(ctx, store.KeyUser, &prev)
	switch {
	case err == nil:
		if !prev.CreatedAt.IsZero() {
			user.CreatedAt = prev.CreatedAt
		}
		if prev.Traits != nil {
			user.Traits = prev.Traits
		}
	case !errors.Is(err, store.ErrNotFound):
		return domain.Classification{}, err
	}

	// a quiz retake keeps the earlier trait record (age, gender) for export
	if in.Kind == bodytype.KindQuiz {
		if err := s.store.Set(ctx, store.KeyQuizAnswers, in.Answers); err != nil {
			return domain.Classification{}, err
		}
	} else {
		user.Traits = in.Traits
	}

	if err := s.store.Set(ctx, store.KeyUser, user); err != nil {
		return domain.Classification{}, err
	}
	if err := s.store.Set(ctx, store.KeyBodyType, c); err != nil {
		return domain.Classification{}, err
	}
	return c, nil
}

// Classification returns the current classification or store.ErrNotFound
func (s *Service) Classification(ctx context.Context) (domain.Classification, error) {
	var c domain.Classification
	if err := s.store.Get(ctx, store.KeyBodyType, &c); err != nil {
		return domain.Classification{}, err
	}
	return c, nil
}

// User returns the onboarding profile or store.ErrNotFound
func (s *Service) User(ctx context.Context) (User, error) {
	var u User
	if err := s.store.Get(ctx, store.KeyUser, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// primaryType is the classified primary type, or the default before onboarding
func (s *Service) primaryType(ctx context.Context) (domain.BodyType, error) {
	c, err := s.Classification(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.DefaultType, nil
	}
	if err != nil {
		return "", err
	}
	if c.PrimaryType == "" {
		return domain.DefaultType, nil
	}
	return c.PrimaryType, nil
}

// Logs returns every log ordered by date
func (s *Service) Logs(ctx context.Context) ([]domain.DailyLog, error) {
	logs := []domain.DailyLog{}
	if err := s.store.Get(ctx, store.KeyHabitLogs, &logs); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	sortLogs(logs)
	return logs, nil
}

// Log returns the entry for date, or store.ErrNotFound
func (s *Service) Log(ctx context.Context, date string) (domain.DailyLog, error) {
	logs, err := s.Logs(ctx)
	if err != nil {
		return domain.DailyLog{}, err
	}
	if i := indexOf(logs, date); i >= 0 {
		return logs[i], nil
	}
	return domain.DailyLog{}, store.ErrNotFound
}

// Plan returns the stored plan tier, free when none is set
func (s *Service) Plan(ctx context.Context) (domain.PlanTier, error) {
	var raw string
	if err := s.store.Get(ctx, store.KeyPlan, &raw); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PlanFree, nil
		}
		return "", err
	}
	return domain.ParsePlanTier(raw), nil
}

// SetPlan stores the plan tier; unknown tiers are stored as free
func (s *Service) SetPlan(ctx context.Context, tier domain.PlanTier) (retention.Access, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier = domain.ParsePlanTier(string(tier))
	if err := s.store.Set(ctx, store.KeyPlan, string(tier)); err != nil {
		return retention.Access{}, err
	}
	logs, err := s.Logs(ctx)
	if err != nil {
		return retention.Access{}, err
	}
	return retention.TrackerAccess(logs, tier), nil
}

// SaveResult is the outcome of a log write. A plan-gate rejection has
// Success false and no Entry.
type SaveResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Created bool             `json:"created"`
	Entry   *domain.DailyLog `json:"entry,omitempty"`
	Access  retention.Access `json:"access"`
}

// SaveLog creates or merges the log for date. New dates pass through the
// plan gate; reported fields in patch overwrite, absent ones are kept.
func (s *Service) SaveLog(ctx context.Context, date string, patch domain.DailyLog) (SaveResult, error) {
	date, err := s.ParseDate(date)
	if err != nil {
		return SaveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.Logs(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	plan, err := s.Plan(ctx)
	if err != nil {
		return SaveResult{}, err
	}

	decision := retention.CheckWrite(logs, plan, date)
	if !decision.Allowed {
		return SaveResult{Success: false, Message: decision.Message, Access: decision.Access}, nil
	}

	now := s.now().UTC()
	var entry domain.DailyLog
	i := indexOf(logs, date)
	created := i < 0
	switch {
	case created && (len(logs) == 0 || logs[len(logs)-1].Date < date):
		// newest day: extend the stored list in place
		entry = domain.DailyLog{Date: date}.Merge(patch)
		entry.Timestamp = &now
		if err := s.store.Append(ctx, store.KeyHabitLogs, entry); err != nil {
			return SaveResult{}, err
		}
		logs = append(logs, entry)
	default:
		if created {
			entry = domain.DailyLog{Date: date}.Merge(patch)
			entry.Timestamp = &now
			logs = append(logs, entry)
		} else {
			entry = logs[i].Merge(patch)
			entry.UpdatedAt = &now
			logs[i] = entry
		}
		sortLogs(logs)
		if err := s.store.Set(ctx, store.KeyHabitLogs, logs); err != nil {
			return SaveResult{}, err
		}
	}

	return SaveResult{
		Success: true,
		Message: decision.Message,
		Created: created,
		Entry:   &entry,
		Access:  retention.TrackerAccess(logs, plan),
	}, nil
}

// TodayPlan returns the habit plan for date. The first call for a date
// selects and caches the plan; later calls serve the cached copy, so the
// random picks stay stable for the whole day. A cached plan built for a
// different body type than the current classification is replaced.
func (s *Service) TodayPlan(ctx context.Context, date string) (plan habits.Plan, cached bool, err error) {
	date, err = s.ParseDate(date)
	if err != nil {
		return habits.Plan{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	primary, err := s.primaryType(ctx)
	if err != nil {
		return habits.Plan{}, false, err
	}

	key := store.HabitPlanKey(date)
	err = s.store.Get(ctx, key, &plan)
	switch {
	case err == nil && plan.BodyType == primary:
		return plan, true, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return habits.Plan{}, false, err
	}

	logs, err := s.Logs(ctx)
	if err != nil {
		return habits.Plan{}, false, err
	}

	plan = s.selector.SelectDailyHabits(primary, date, len(logs), recentProgress(logs))
	if err := s.store.Set(ctx, key, plan); err != nil {
		return habits.Plan{}, false, err
	}
	return plan, false, nil
}

// recentProgress summarizes the last week of logs for the risk habit
func recentProgress(logs []domain.DailyLog) habits.Progress {
	recent := lastN(logs, progressWindow)

	var hours []float64
	for _, l := range recent {
		if l.SleepHours != nil {
			hours = append(hours, *l.SleepHours)
		}
	}

	p := habits.Progress{DaysLogged: domain.Ptr(len(recent))}
	if score, ok := insights.SleepConsistency(hours); ok {
		p.SleepConsistency = &score
	}
	return p
}

// DailyInsight runs the daily analyzers over the log for date. A date with
// no log yields the per-type default insight.
func (s *Service) DailyInsight(ctx context.Context, date string) (insights.Insight, error) {
	date, err := s.ParseDate(date)
	if err != nil {
		return insights.Insight{}, err
	}
	primary, err := s.primaryType(ctx)
	if err != nil {
		return insights.Insight{}, err
	}
	log, err := s.Log(ctx, date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return insights.Insight{}, err
	}
	return insights.DailyInsight(log, primary), nil
}

// WeeklySummary summarizes the seven days ending at endDate
func (s *Service) WeeklySummary(ctx context.Context, endDate string) (insights.WeeklySummary, error) {
	endDate, err := s.ParseDate(endDate)
	if err != nil {
		return insights.WeeklySummary{}, err
	}
	primary, err := s.primaryType(ctx)
	if err != nil {
		return insights.WeeklySummary{}, err
	}
	logs, err := s.Logs(ctx)
	if err != nil {
		return insights.WeeklySummary{}, err
	}
	return insights.BuildWeeklySummary(weekEnding(logs, endDate), primary), nil
}

// weekEnding keeps the logs dated within the seven days ending at end
func weekEnding(logs []domain.DailyLog, end string) []domain.DailyLog {
	endDay, _ := time.Parse(domain.DateLayout, end)
	start := endDay.AddDate(0, 0, -6).Format(domain.DateLayout)

	week := []domain.DailyLog{}
	for _, l := range logs {
		if l.Date >= start && l.Date <= end {
			week = append(week, l)
		}
	}
	return week
}

// Patterns runs the correlation detector over the full history
func (s *Service) Patterns(ctx context.Context) (insights.PatternReport, error) {
	logs, err := s.Logs(ctx)
	if err != nil {
		return insights.PatternReport{}, err
	}
	return insights.AnalyzePatterns(logs), nil
}

// Access reports what the current plan allows
func (s *Service) Access(ctx context.Context) (retention.Access, error) {
	logs, plan, err := s.logsAndPlan(ctx)
	if err != nil {
		return retention.Access{}, err
	}
	return retention.TrackerAccess(logs, plan), nil
}

// Reminder builds the check-in reminder for today
func (s *Service) Reminder(ctx context.Context, today string) (retention.Reminder, error) {
	today, err := s.ParseDate(today)
	if err != nil {
		return retention.Reminder{}, err
	}
	logs, plan, err := s.logsAndPlan(ctx)
	if err != nil {
		return retention.Reminder{}, err
	}
	return retention.GenerateReminder(logs, plan, today), nil
}

// RetentionInsight is the plan-gated weekly retention note
func (s *Service) RetentionInsight(ctx context.Context) (retention.WeeklyInsight, error) {
	logs, plan, err := s.logsAndPlan(ctx)
	if err != nil {
		return retention.WeeklyInsight{}, err
	}
	return retention.GenerateWeeklyInsight(logs, plan), nil
}

func (s *Service) logsAndPlan(ctx context.Context) ([]domain.DailyLog, domain.PlanTier, error) {
	logs, err := s.Logs(ctx)
	if err != nil {
		return nil, "", err
	}
	plan, err := s.Plan(ctx)
	if err != nil {
		return nil, "", err
	}
	return logs, plan, nil
}

// Streak counts consecutive logged days ending today. A streak that
// stopped yesterday is already broken.
func (s *Service) Streak(ctx context.Context, today string) (int, error) {
	today, err := s.ParseDate(today)
	if err != nil {
		return 0, err
	}
	logs, err := s.Logs(ctx)
	if err != nil {
		return 0, err
	}
	return streak(logs, today), nil
}

func streak(logs []domain.DailyLog, today string) int {
	day, err := time.Parse(domain.DateLayout, today)
	if err != nil {
		return 0
	}

	n := 0
	for i := len(logs) - 1; i >= 0; i-- {
		logDay, err := time.Parse(domain.DateLayout, logs[i].Date)
		if err != nil || logDay.After(day) {
			continue
		}
		if int(day.Sub(logDay).Hours()/24) != n {
			break
		}
		n++
	}
	return n
}

// Reset clears the profile, classification, logs and cached plans and
// returns how many cached plans were dropped. The plan tier survives a reset.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.DeletePrefix(ctx, store.HabitPlanPrefix)
	if err != nil {
		return 0, err
	}
	for _, key := range []string{store.KeyUser, store.KeyQuizAnswers, store.KeyBodyType, store.KeyHabitLogs} {
		if err := s.store.Delete(ctx, key); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func sortLogs(logs []domain.DailyLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date < logs[j].Date
	})
}

func indexOf(logs []domain.DailyLog, date string) int {
	for i, l := range logs {
		if l.Date == date {
			return i
		}
	}
	return -1
}

func lastN(logs []domain.DailyLog, n int) []domain.DailyLog {
	if len(logs) > n {
		return logs[len(logs)-n:]
	}
	return logs
}
