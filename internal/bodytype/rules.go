package bodytype

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

func compileRules(entries []ruleEntry) ([]rule, error) {
	env, err := cel.NewEnv(
		cel.Variable("traits", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	rules := make([]rule, 0, len(entries))
	for _, entry := range entries {
		ast, issues := env.Compile(entry.When)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compiling rule %q: %w", entry.Name, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %q must evaluate to bool, got %s", entry.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("building program for rule %q: %w", entry.Name, err)
		}
		rules = append(rules, rule{ruleEntry: entry, program: prg})
	}
	return rules, nil
}

// fires evaluates the rule. Missing keys and type mismatches surface as CEL
// errors and simply mean the rule did not fire.
func (r rule) fires(traits domain.Traits) bool {
	out, _, err := r.program.Eval(map[string]any{
		"traits": map[string]any(traits),
	})
	if err != nil {
		return false
	}
	fired, ok := out.Value().(bool)
	return ok && fired
}

// ClassifyTraits scores a trait record against every rule
func (e *Engine) ClassifyTraits(traits domain.Traits) domain.Classification {
	if traits == nil {
		traits = domain.Traits{}
	}

	c := e.newClassification(domain.VariantTraits)
	scores := make(map[domain.BodyType]float64, len(domain.CanonicalTypes))
	for _, t := range domain.CanonicalTypes {
		scores[t] = 0
	}

	for _, r := range e.rules {
		if !r.fires(traits) {
			continue
		}
		scores[r.Type] += r.Points
		c.TriggeredRules = append(c.TriggeredRules, domain.TriggeredRule{
			Name:      r.Name,
			Type:      r.Type,
			Score:     r.Points,
			Reasoning: strings.TrimSpace(r.Reasoning),
		})
	}

	order := rank(domain.CanonicalTypes, scores)
	primary := order[0]
	if primary.Score == 0 {
		primary = ranked{Type: domain.DefaultType}
	}

	c.PrimaryType = primary.Type
	c.Scores = scores
	c.Confidence = confidence(primary.Score, sum(scores))

	if second := order[1]; significantSecondary(primary.Score, second.Score) {
		c.SecondaryType = second.Type
	}

	if info, ok := e.TypeInfo(c.PrimaryType); ok {
		c.PrimaryInfo = &info
	}
	if c.HasSecondary() {
		if info, ok := e.TypeInfo(c.SecondaryType); ok {
			c.SecondaryInfo = &info
		}
	}
	c.Reasoning = e.traitReasoning(c)
	return c
}

func (e *Engine) traitReasoning(c domain.Classification) domain.Reasoning {
	primaryName := e.typeName(c.PrimaryType)
	r := domain.Reasoning{
		Summary:          fmt.Sprintf("Based on your answers, you are identified as %s", primaryName),
		PrimaryFactors:   []string{},
		SecondaryFactors: []string{},
		Explanation:      strings.TrimSpace(e.types[c.PrimaryType].Explanation),
	}

	for _, tr := range c.TriggeredRules {
		switch {
		case tr.Type == c.PrimaryType:
			r.PrimaryFactors = append(r.PrimaryFactors, tr.Reasoning)
		case c.HasSecondary() && tr.Type == c.SecondaryType:
			r.SecondaryFactors = append(r.SecondaryFactors, tr.Reasoning)
		}
	}

	if c.HasSecondary() {
		r.Explanation += secondaryAddendum(e.typeName(c.SecondaryType))
	}
	return r
}

func (e *Engine) typeName(t domain.BodyType) string {
	if entry, ok := e.types[t]; ok {
		return entry.Name
	}
	return string(t)
}

func secondaryAddendum(name string) string {
	return fmt.Sprintf(" You also show characteristics of %s, so a holistic approach will work better.", name)
}
