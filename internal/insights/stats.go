// Package insights derives daily insights, weekly summaries and correlation
// patterns from logged days. Every function is pure and deterministic.
package insights

import (
	"math"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

// consistencyPenalty is the score lost per hour of mean absolute deviation
const consistencyPenalty = 20

// Pearson returns the linear correlation of two equal-length series.
// Series shorter than two points, or with zero variance, correlate at 0.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 || constant(xs[:n]) || constant(ys[:n]) {
		return 0
	}

	var sx, sy, sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
		syy += y * y
	}
	fn := float64(n)
	num := fn*sxy - sx*sy
	den := (fn*sxx - sx*sx) * (fn*syy - sy*sy)
	if den <= 0 {
		return 0
	}
	r := num / math.Sqrt(den)
	return math.Max(-1, math.Min(1, r))
}

// constant reports zero variance exactly; the sum formula leaves rounding
// residue for values such as 6.3.
func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Mean is the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// SleepConsistency scores sleep regularity as 100 - 20 * mean absolute deviation,
// floored at 0. ok is false when there is nothing to score.
func SleepConsistency(hours []float64) (score int, ok bool) {
	if len(hours) == 0 {
		return 0, false
	}
	avg := Mean(hours)
	var dev float64
	for _, h := range hours {
		dev += math.Abs(h - avg)
	}
	dev /= float64(len(hours))
	return int(math.Round(math.Max(0, 100-dev*consistencyPenalty))), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// series extracts the reported values of one metric, skipping days it was not logged
type series func(domain.DailyLog) (float64, bool)

func collect(logs []domain.DailyLog, metric series) []float64 {
	out := make([]float64, 0, len(logs))
	for _, l := range logs {
		if v, ok := metric(l); ok {
			out = append(out, v)
		}
	}
	return out
}

func sleepHours(l domain.DailyLog) (float64, bool) {
	if l.SleepHours == nil {
		return 0, false
	}
	return *l.SleepHours, true
}

func movementMinutes(l domain.DailyLog) (float64, bool) {
	return intMetric(l.MovementMinutes)
}

func sunlightMinutes(l domain.DailyLog) (float64, bool) {
	return intMetric(l.SunlightMinutes)
}

func recoveryMinutes(l domain.DailyLog) (float64, bool) {
	return intMetric(l.RecoveryMinutes)
}

func hydrationLiters(l domain.DailyLog) (float64, bool) {
	if l.WaterIntakeLiters == nil {
		return 0, false
	}
	return *l.WaterIntakeLiters, true
}

func energyScore(l domain.DailyLog) (float64, bool)  { return l.EnergyLevel.Score() }
func moodScore(l domain.DailyLog) (float64, bool)    { return l.Mood.Score() }
func stressScore(l domain.DailyLog) (float64, bool)  { return l.StressLevel.Score() }
func qualityScore(l domain.DailyLog) (float64, bool) { return l.SleepQuality.Score() }

func intMetric(v *int) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

// paired returns aligned x/y values for days where both metrics were logged
func paired(logs []domain.DailyLog, x, y series) (xs, ys []float64) {
	for _, l := range logs {
		xv, okX := x(l)
		yv, okY := y(l)
		if okX && okY {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys
}

// forType returns the entry for t, falling back to the default type's entry
func forType[T any](m map[domain.BodyType]T, t domain.BodyType) T {
	if v, ok := m[t]; ok {
		return v
	}
	return m[domain.DefaultType]
}
