package bodytype

import (
	_ "embed"
	"fmt"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed traits.yaml
var traitsYAML []byte

//go:embed quiz.yaml
var quizYAML []byte

type typeEntry struct {
	domain.TypeInfo `yaml:",inline"`
	Explanation     string `yaml:"explanation"`
}

type ruleEntry struct {
	Name      string          `yaml:"name"`
	Type      domain.BodyType `yaml:"type"`
	Points    float64         `yaml:"points"`
	When      string          `yaml:"when"`
	Reasoning string          `yaml:"reasoning"`
}

type traitsFile struct {
	Types []typeEntry `yaml:"types"`
	Rules []ruleEntry `yaml:"rules"`
}

// QuizOption is one answer symbol and the quiz body type it stands for
type QuizOption struct {
	Code        string          `json:"code" yaml:"code"`
	Type        domain.BodyType `json:"type" yaml:"type"`
	Label       string          `json:"label" yaml:"label"`
	Color       string          `json:"color" yaml:"color"`
	Shape       string          `json:"shape" yaml:"shape"`
	CoreTraits  string          `json:"core_traits" yaml:"core_traits"`
	Description string          `json:"description" yaml:"description"`
}

// QuizCategory groups questions under a shared weight
type QuizCategory struct {
	ID           string  `json:"id" yaml:"id"`
	Prefix       string  `json:"prefix" yaml:"prefix"`
	Weight       float64 `json:"weight" yaml:"weight"`
	LegacyWeight float64 `json:"legacy_weight" yaml:"legacy_weight"`
}

// Question is a single-answer quiz question
type Question struct {
	ID       string            `json:"id" yaml:"id"`
	Category string            `json:"category" yaml:"category"`
	Text     string            `json:"text" yaml:"text"`
	Options  map[string]string `json:"options" yaml:"options"`
}

// QuestionBank is the full quiz definition
type QuestionBank struct {
	Version    string         `json:"version" yaml:"version"`
	Options    []QuizOption   `json:"options" yaml:"options"`
	Categories []QuizCategory `json:"categories" yaml:"categories"`
	Questions  []Question     `json:"questions" yaml:"questions"`
}

// HasQuestion reports whether id names a question in the bank
func (b QuestionBank) HasQuestion(id string) bool {
	for _, q := range b.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (b QuestionBank) option(code string) (QuizOption, bool) {
	for _, o := range b.Options {
		if o.Code == code {
			return o, true
		}
	}
	return QuizOption{}, false
}

func (b QuestionBank) category(id string) (QuizCategory, bool) {
	for _, c := range b.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return QuizCategory{}, false
}

func (b QuestionBank) label(t domain.BodyType) string {
	for _, o := range b.Options {
		if o.Type == t {
			return o.Label
		}
	}
	return string(t)
}

func loadTraits(data []byte) (traitsFile, error) {
	var f traitsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing trait catalog: %w", err)
	}

	known := make(map[domain.BodyType]bool, len(f.Types))
	for _, t := range f.Types {
		known[t.ID] = true
	}
	for _, t := range domain.CanonicalTypes {
		if !known[t] {
			return f, fmt.Errorf("trait catalog missing body type %q", t)
		}
	}
	for _, r := range f.Rules {
		if !known[r.Type] {
			return f, fmt.Errorf("rule %q targets unknown body type %q", r.Name, r.Type)
		}
		if r.Points <= 0 {
			return f, fmt.Errorf("rule %q must award positive points", r.Name)
		}
	}
	return f, nil
}

func loadQuestionBank(data []byte) (QuestionBank, error) {
	var b QuestionBank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parsing question bank: %w", err)
	}

	if len(b.Options) != 4 {
		return b, fmt.Errorf("question bank needs exactly 4 options, got %d", len(b.Options))
	}
	seen := make(map[string]bool)
	for _, q := range b.Questions {
		if seen[q.ID] {
			return b, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if !questionIDPattern.MatchString(q.ID) {
			return b, fmt.Errorf("question id %q does not match %s", q.ID, questionIDPattern)
		}
		if _, ok := b.category(q.Category); !ok {
			return b, fmt.Errorf("question %q has unknown category %q", q.ID, q.Category)
		}
	}
	return b, nil
}
