package bodytype

import (
	"regexp"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

// questionIDPattern matches quiz question ids: a two-letter category prefix and two digits.
var questionIDPattern = regexp.MustCompile(`^[A-Z]{2}\d{2}$`)

// InputKind tags the shape of a classifier input record
type InputKind int

const (
	KindTraits InputKind = iota
	KindQuiz
)

func (k InputKind) String() string {
	if k == KindQuiz {
		return "quiz"
	}
	return "traits"
}

// Input is a classifier input with its detected variant. Exactly one of
// Traits or Answers is meaningful, selected by Kind.
type Input struct {
	Kind    InputKind
	Traits  domain.Traits
	Answers domain.QuizAnswers
}

// IsQuestionID reports whether key looks like a quiz question id
func IsQuestionID(key string) bool {
	return questionIDPattern.MatchString(key)
}

// DetectInput tags a raw record: any question-id key makes it a quiz record.
// Non-string answers are dropped and show up as unanswered questions.
func DetectInput(record map[string]any) Input {
	for key := range record {
		if !IsQuestionID(key) {
			continue
		}
		answers := make(domain.QuizAnswers, len(record))
		for k, v := range record {
			if s, ok := v.(string); ok && IsQuestionID(k) {
				answers[k] = s
			}
		}
		return Input{Kind: KindQuiz, Answers: answers}
	}

	traits := make(domain.Traits, len(record))
	for k, v := range record {
		traits[k] = v
	}
	return Input{Kind: KindTraits, Traits: traits}
}

// Classify routes a tagged input to the matching classifier
func (e *Engine) Classify(in Input) domain.Classification {
	if in.Kind == KindQuiz {
		return e.ClassifyQuiz(in.Answers)
	}
	return e.ClassifyTraits(in.Traits)
}

// ClassifyRecord is the single entry point for raw onboarding records of either shape
func (e *Engine) ClassifyRecord(record map[string]any) domain.Classification {
	return e.Classify(DetectInput(record))
}
