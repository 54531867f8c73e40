package bodytype

import (
	"fmt"
	"strings"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

type quizTally struct {
	answers    domain.QuizAnswers
	counts     map[domain.BodyType]float64
	legacy     map[domain.BodyType]float64
	categories map[string]domain.CategoryCount
	unanswered []string
}

func (e *Engine) quizOrder() []domain.BodyType {
	order := make([]domain.BodyType, 0, len(e.bank.Options))
	for _, o := range e.bank.Options {
		order = append(order, o.Type)
	}
	return order
}

func (e *Engine) zeroScores() map[domain.BodyType]float64 {
	scores := make(map[domain.BodyType]float64, len(e.bank.Options))
	for _, o := range e.bank.Options {
		scores[o.Type] = 0
	}
	return scores
}

func (e *Engine) tally(answers domain.QuizAnswers) quizTally {
	t := quizTally{
		answers:    domain.QuizAnswers{},
		counts:     e.zeroScores(),
		legacy:     e.zeroScores(),
		categories: make(map[string]domain.CategoryCount, len(e.bank.Categories)),
		unanswered: []string{},
	}
	for _, c := range e.bank.Categories {
		byType := make(map[domain.BodyType]int, len(e.bank.Options))
		for _, o := range e.bank.Options {
			byType[o.Type] = 0
		}
		t.categories[c.ID] = domain.CategoryCount{ByType: byType}
	}

	for id, code := range answers {
		t.answers[id] = code
	}

	for _, q := range e.bank.Questions {
		opt, okOpt := e.bank.option(answers[q.ID])
		cat, okCat := e.bank.category(q.Category)
		if !okOpt || !okCat {
			t.unanswered = append(t.unanswered, q.ID)
			continue
		}
		t.counts[opt.Type]++
		t.legacy[opt.Type] += cat.LegacyWeight

		cc := t.categories[cat.ID]
		cc.Total++
		cc.ByType[opt.Type]++
		t.categories[cat.ID] = cc
	}
	return t
}

// ClassifyQuiz scores quiz answers with the engine's scoring formulation.
// Questions without a valid A-D answer are listed as unanswered.
func (e *Engine) ClassifyQuiz(answers domain.QuizAnswers) domain.Classification {
	t := e.tally(answers)
	if e.scoring == ScoringCategoryCount {
		return e.categoryCountResult(t)
	}
	return e.weightedShareResult(t)
}

func (e *Engine) weightedShareResult(t quizTally) domain.Classification {
	order := e.quizOrder()

	answeredWeight := 0.0
	for _, c := range e.bank.Categories {
		if t.categories[c.ID].Total > 0 {
			answeredWeight += c.Weight
		}
	}

	weighted := e.zeroScores()
	for _, c := range e.bank.Categories {
		cc := t.categories[c.ID]
		if cc.Total == 0 || answeredWeight == 0 {
			continue
		}
		share := c.Weight / answeredWeight
		for _, typ := range order {
			weighted[typ] += float64(cc.ByType[typ]) / float64(cc.Total) * share
		}
	}

	dist := Distribution(order, weighted)
	dom := DominanceOf(order, dist)
	total := sum(weighted)

	c := e.newClassification(domain.VariantQuiz)
	c.PrimaryType = dom.DominantType
	c.Scores = weighted
	c.Confidence = confidence(weighted[c.PrimaryType], total)
	if total > 0 && significantSecondary(float64(dist[dom.DominantType]), float64(dist[dom.SecondaryType])) {
		c.SecondaryType = dom.SecondaryType
	}
	c.Quiz = e.quizResult(t, ScoringWeightedShare, weighted, dist, dom)
	e.finishQuiz(&c)
	return c
}

func (e *Engine) categoryCountResult(t quizTally) domain.Classification {
	order := e.quizOrder()
	scores := t.legacy
	ranking := rank(order, scores)

	dist := Distribution(order, scores)
	dom := DominanceOf(order, dist)

	c := e.newClassification(domain.VariantQuiz)
	c.PrimaryType = ranking[0].Type
	c.Scores = scores
	c.Confidence = confidence(ranking[0].Score, sum(scores))
	if ranking[1].Score > 0 {
		c.SecondaryType = ranking[1].Type
	}
	c.Quiz = e.quizResult(t, ScoringCategoryCount, scores, dist, dom)
	e.finishQuiz(&c)
	return c
}

func (e *Engine) quizResult(t quizTally, scoring QuizScoring, weighted map[domain.BodyType]float64, dist map[domain.BodyType]int, dom domain.Dominance) *domain.QuizResult {
	labels := make(map[domain.BodyType]string, len(e.bank.Options))
	descriptions := make(map[domain.BodyType]string, len(e.bank.Options))
	for _, o := range e.bank.Options {
		labels[o.Type] = o.Label
		descriptions[o.Type] = strings.TrimSpace(o.Description)
	}
	return &domain.QuizResult{
		Version:           e.bank.Version,
		Scoring:           string(scoring),
		Answers:           t.answers,
		RawScore:          t.counts,
		WeightedScore:     weighted,
		Distribution:      dist,
		Dominance:         dom,
		CategoryBreakdown: t.categories,
		Unanswered:        t.unanswered,
		Labels:            labels,
		Descriptions:      descriptions,
	}
}

func (e *Engine) quizInfo(t domain.BodyType) *domain.TypeInfo {
	for _, o := range e.bank.Options {
		if o.Type == t {
			return &domain.TypeInfo{
				ID:              o.Type,
				Name:            o.Label,
				Description:     strings.TrimSpace(o.Description),
				Characteristics: splitTraits(o.CoreTraits),
			}
		}
	}
	return nil
}

func splitTraits(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) finishQuiz(c *domain.Classification) {
	c.PrimaryInfo = e.quizInfo(c.PrimaryType)
	if c.HasSecondary() {
		c.SecondaryInfo = e.quizInfo(c.SecondaryType)
	}

	primaryLabel := e.bank.label(c.PrimaryType)
	r := domain.Reasoning{
		Summary:          fmt.Sprintf("Based on your quiz answers, you are identified as %s", primaryLabel),
		PrimaryFactors:   e.categoryFactors(c.Quiz, c.PrimaryType),
		SecondaryFactors: []string{},
	}
	if c.PrimaryInfo != nil {
		r.Explanation = c.PrimaryInfo.Description
	}
	if c.HasSecondary() {
		r.SecondaryFactors = e.categoryFactors(c.Quiz, c.SecondaryType)
		r.Explanation += secondaryAddendum(e.bank.label(c.SecondaryType))
	}
	if c.Quiz.Dominance.MultiDominant && c.Confidence > 0 {
		r.Explanation += fmt.Sprintf(" Your top two types are within %d points, so read this as a mixed profile.", multiDominantGap)
	}
	c.Reasoning = r
}

func (e *Engine) categoryFactors(q *domain.QuizResult, t domain.BodyType) []string {
	factors := []string{}
	for _, cat := range e.bank.Categories {
		cc := q.CategoryBreakdown[cat.ID]
		if n := cc.ByType[t]; n > 0 {
			factors = append(factors, fmt.Sprintf("%d of %d %s answers point to %s", n, cc.Total, cat.ID, e.bank.label(t)))
		}
	}
	return factors
}
