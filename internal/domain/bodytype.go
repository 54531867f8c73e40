package domain

import "time"

// BodyType identifies a body type archetype
type BodyType string

const (
	TypeRed    BodyType = "red"
	TypeBlue   BodyType = "blue"
	TypeGreen  BodyType = "green"
	TypeYellow BodyType = "yellow"
	// TypeWhite only comes out of the quiz variant (option D, White Circle)
	TypeWhite BodyType = "white"
)

// DefaultType is used whenever a type is missing or has no catalog entry,
// including the zero-score outcome of the trait classifier.
const DefaultType = TypeRed

// CanonicalTypes is the declaration order used for tie-breaking.
var CanonicalTypes = []BodyType{TypeRed, TypeBlue, TypeGreen, TypeYellow}

// Variant records which classifier produced a classification
type Variant string

const (
	VariantTraits Variant = "traits"
	VariantQuiz   Variant = "quiz"
)

// Traits is a flat onboarding record: age, gender and categorical lifestyle answers.
type Traits map[string]any

// QuizAnswers maps question ids (PT01, PR02, ...) to an option code A-D
type QuizAnswers map[string]string

// TypeInfo describes a body type for display
type TypeInfo struct {
	ID              BodyType `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Characteristics []string `json:"characteristics,omitempty" yaml:"characteristics"`
}

// TriggeredRule is a scoring rule that fired during classification
type TriggeredRule struct {
	Name      string   `json:"name"`
	Type      BodyType `json:"type"`
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
}

// Reasoning explains a classification in plain language
type Reasoning struct {
	Summary          string   `json:"summary"`
	PrimaryFactors   []string `json:"primary_factors"`
	SecondaryFactors []string `json:"secondary_factors"`
	Explanation      string   `json:"explanation"`
}

// Classification is the persisted verdict of a classifier run. It is replaced
// wholesale on retake and never edited in place.
type Classification struct {
	ID             string               `json:"id"`
	Variant        Variant              `json:"variant"`
	PrimaryType    BodyType             `json:"primary_body_type"`
	PrimaryInfo    *TypeInfo            `json:"primary_info,omitempty"`
	SecondaryType  BodyType             `json:"secondary_body_type,omitempty"`
	SecondaryInfo  *TypeInfo            `json:"secondary_info,omitempty"`
	Confidence     int                  `json:"confidence_score"`
	Scores         map[BodyType]float64 `json:"scores"`
	TriggeredRules []TriggeredRule      `json:"triggered_rules"`
	Reasoning      Reasoning            `json:"reasoning"`
	Quiz           *QuizResult          `json:"quiz,omitempty"`
	Timestamp      time.Time            `json:"timestamp"`
}

// HasSecondary reports whether a secondary type passed the significance test
func (c Classification) HasSecondary() bool {
	return c.SecondaryType != ""
}

// QuizResult carries the quiz-specific scoring detail of a classification
type QuizResult struct {
	Version           string                   `json:"quiz_version"`
	Scoring           string                   `json:"scoring"`
	Answers           QuizAnswers              `json:"answers"`
	RawScore          map[BodyType]float64     `json:"raw_score"`
	WeightedScore     map[BodyType]float64     `json:"weighted_score"`
	Distribution      map[BodyType]int         `json:"distribution"`
	Dominance         Dominance                `json:"dominance"`
	CategoryBreakdown map[string]CategoryCount `json:"category_breakdown"`
	Unanswered        []string                 `json:"unanswered"`
	Labels            map[BodyType]string      `json:"labels"`
	Descriptions      map[BodyType]string      `json:"descriptions"`
}

// Dominance is read off the percentage distribution
type Dominance struct {
	DominantType  BodyType `json:"dominant_type"`
	SecondaryType BodyType `json:"secondary_type"`
	MultiDominant bool     `json:"multi_dominant"`
}

// CategoryCount tallies the answers given in one question category
type CategoryCount struct {
	Total  int              `json:"total"`
	ByType map[BodyType]int `json:"by_type"`
}
