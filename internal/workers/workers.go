package workers

import (
	"context"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/habits"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/internal/retention"
	"github.com/joshdurbin/bodycode-mcp/internal/store"
)

// Tracker is the tracker surface the background workers drive
type Tracker interface {
	Today() string
	TodayPlan(ctx context.Context, date string) (habits.Plan, bool, error)
	Reminder(ctx context.Context, today string) (retention.Reminder, error)
}

// PlanPrecomputer makes sure today's habit plan exists before anyone asks for it.
// The first plan chosen for a date is cached, so precomputing only fixes it early.
type PlanPrecomputer struct {
	tracker  Tracker
	interval time.Duration
	lastDate string
}

// NewPlanPrecomputer creates a new plan precompute worker
func NewPlanPrecomputer(t Tracker, interval time.Duration) *PlanPrecomputer {
	return &PlanPrecomputer{
		tracker:  t,
		interval: interval,
	}
}

// Run starts the plan precompute worker
func (p *PlanPrecomputer) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Dur("interval", p.interval).Msg("plan precomputer started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial pass
	p.precompute(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("plan precomputer stopped")
			return
		case <-ticker.C:
			p.precompute(ctx)
		}
	}
}

func (p *PlanPrecomputer) precompute(ctx context.Context) {
	log := logging.Logger
	today := p.tracker.Today()

	plan, cached, err := p.tracker.TodayPlan(ctx, today)
	if err != nil {
		log.Error().Err(err).Str("date", today).Msg("failed to precompute habit plan")
		return
	}

	if cached && p.lastDate == today {
		log.Debug().Str("date", today).Msg("habit plan already cached")
		return
	}
	p.lastDate = today

	evt := log.Info().
		Str("date", plan.Date).
		Str("body_type", string(plan.BodyType)).
		Str("focus", string(plan.FocusCategory)).
		Bool("cached", cached).
		Bool("risk", plan.RiskHabit != nil)
	if plan.MainHabit != nil {
		evt = evt.Str("main_habit", plan.MainHabit.ID)
	}
	evt.Msg("habit plan ready")
}

// Notifier delivers a reminder somewhere a user will see it
type Notifier func(ctx context.Context, date string, r retention.Reminder)

// LogNotifier writes reminders to the log
func LogNotifier(_ context.Context, date string, r retention.Reminder) {
	logging.Logger.Info().
		Str("date", date).
		Str("type", r.Type).
		Str("mode", r.Mode).
		Msg(r.Message)
}

// ReminderNotifier nudges the user to check in once per day until they do
type ReminderNotifier struct {
	tracker  Tracker
	interval time.Duration
	notify   Notifier
	notified string
}

// NewReminderNotifier creates a reminder worker. A nil notify logs reminders.
func NewReminderNotifier(t Tracker, interval time.Duration, notify Notifier) *ReminderNotifier {
	if notify == nil {
		notify = LogNotifier
	}
	return &ReminderNotifier{
		tracker:  t,
		interval: interval,
		notify:   notify,
	}
}

// Run starts the reminder worker
func (r *ReminderNotifier) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Dur("interval", r.interval).Msg("reminder notifier started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reminder notifier stopped")
			return
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

func (r *ReminderNotifier) check(ctx context.Context) {
	log := logging.Logger
	today := r.tracker.Today()

	if r.notified == today {
		log.Debug().Str("date", today).Msg("reminder already sent today")
		return
	}

	reminder, err := r.tracker.Reminder(ctx, today)
	if err != nil {
		log.Error().Err(err).Msg("failed to build reminder")
		return
	}
	if reminder.Type == "done" {
		log.Debug().Str("date", today).Msg("already checked in, no reminder needed")
		return
	}

	r.notify(ctx, today, reminder)
	r.notified = today
}

// StatsSource reports what a store holds
type StatsSource interface {
	Stats(ctx context.Context) (store.Stats, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// LogStoreStats logs current store statistics
func LogStoreStats(ctx context.Context, src StatsSource) {
	log := logging.Logger

	stats, err := src.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read store stats")
		return
	}

	if stats.Keys == 0 {
		log.Info().Int64("keys", 0).Msg("store statistics")
		return
	}

	plans, err := src.Keys(ctx, store.HabitPlanPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count cached plans")
	}

	log.Info().
		Int64("keys", stats.Keys).
		Int64("bytes", stats.Bytes).
		Int("cached_plans", len(plans)).
		Msg("store statistics")
}
