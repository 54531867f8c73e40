// Package bodytype classifies users into body type archetypes, either from an
// onboarding trait record (CEL rules) or from the 16-question quiz.
package bodytype

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/uuid"
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

const (
	// secondaryFloor is the minimum score a runner-up needs to count as secondary
	secondaryFloor = 20
	// secondaryRatio is the minimum runner-up score relative to the primary
	secondaryRatio = 0.6
)

// QuizScoring selects the quiz scoring formulation
type QuizScoring string

const (
	// ScoringWeightedShare normalizes each answered category to its share of the
	// 0.6/0.2/0.2 weights and apportions a 100-point distribution.
	ScoringWeightedShare QuizScoring = "weighted_share"
	// ScoringCategoryCount is the legacy formulation: every answer adds its
	// category's integer weight (3/2/1) to the chosen option.
	ScoringCategoryCount QuizScoring = "category_count"
)

// Options configures an Engine
type Options struct {
	Scoring QuizScoring
	Now     func() time.Time
}

// Engine holds the compiled rules, type catalog and question bank
type Engine struct {
	types   map[domain.BodyType]typeEntry
	rules   []rule
	bank    QuestionBank
	scoring QuizScoring
	now     func() time.Time
}

type rule struct {
	ruleEntry
	program cel.Program
}

// New loads the embedded catalogs and compiles every trait rule
func New(opts Options) (*Engine, error) {
	tf, err := loadTraits(traitsYAML)
	if err != nil {
		return nil, err
	}
	bank, err := loadQuestionBank(quizYAML)
	if err != nil {
		return nil, err
	}
	rules, err := compileRules(tf.Rules)
	if err != nil {
		return nil, err
	}

	scoring := opts.Scoring
	switch scoring {
	case "":
		scoring = ScoringWeightedShare
	case ScoringWeightedShare, ScoringCategoryCount:
	default:
		return nil, fmt.Errorf("unknown quiz scoring %q", scoring)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	types := make(map[domain.BodyType]typeEntry, len(tf.Types))
	for _, t := range tf.Types {
		types[t.ID] = t
	}

	return &Engine{
		types:   types,
		rules:   rules,
		bank:    bank,
		scoring: scoring,
		now:     now,
	}, nil
}

// MustNew is New for callers that treat a broken embedded catalog as fatal
func MustNew(opts Options) *Engine {
	e, err := New(opts)
	if err != nil {
		panic(err)
	}
	return e
}

// Questions returns the quiz question bank
func (e *Engine) Questions() QuestionBank {
	return e.bank
}

// Scoring returns the active quiz scoring formulation
func (e *Engine) Scoring() QuizScoring {
	return e.scoring
}

// TypeInfo returns display info for a trait-variant body type
func (e *Engine) TypeInfo(t domain.BodyType) (domain.TypeInfo, bool) {
	entry, ok := e.types[t]
	if !ok {
		return domain.TypeInfo{}, false
	}
	return entry.TypeInfo, true
}

func (e *Engine) newClassification(variant domain.Variant) domain.Classification {
	return domain.Classification{
		ID:             uuid.NewString(),
		Variant:        variant,
		TriggeredRules: []domain.TriggeredRule{},
		Timestamp:      e.now().UTC(),
	}
}

type ranked struct {
	Type  domain.BodyType
	Score float64
}

// rank orders scores descending; equal scores keep declaration order.
func rank(order []domain.BodyType, scores map[domain.BodyType]float64) []ranked {
	out := make([]ranked, 0, len(order))
	for _, t := range order {
		out = append(out, ranked{Type: t, Score: scores[t]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// significantSecondary applies the absolute floor and ratio-to-primary test
func significantSecondary(primary, second float64) bool {
	return second >= secondaryFloor && second >= primary*secondaryRatio
}

// confidence is the primary's rounded share of the total score, 0 when nothing scored.
func confidence(primary, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(primary/total*100)))
}

func sum(scores map[domain.BodyType]float64) float64 {
	var total float64
	for _, v := range scores {
		total += v
	}
	return total
}
