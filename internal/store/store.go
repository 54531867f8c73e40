// Package store persists JSON values by logical key. The tracker reads and
// writes whole values through it, so the pure engines never touch storage.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has no value
var ErrNotFound = errors.New("store: key not found")

// Logical keys
const (
	KeyUser           = "bodycode_user"
	KeyBodyType       = "bodycode_body_type"
	KeyHabitLogs      = "bodycode_habit_logs"
	KeyPlan           = "bodycode_plan"
	HabitPlanPrefix   = "bodycode_habits_"
	quizAnswersSuffix = "_quiz"
)

// KeyQuizAnswers holds the raw quiz answer sheet of the last onboarding
const KeyQuizAnswers = KeyUser + quizAnswersSuffix

// HabitPlanKey is the cache key for one date's habit plan
func HabitPlanKey(date string) string {
	return HabitPlanPrefix + date
}

// Stats describes what a store holds
type Stats struct {
	Keys  int64 `json:"keys"`
	Bytes int64 `json:"bytes"`
}

// Store is a key-value capability over JSON-compatible values.
// Append treats the value under key as a JSON array.
type Store interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Append(ctx context.Context, key string, item any) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
}
