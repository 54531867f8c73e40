package bodytype

import (
	"math"
	"sort"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
)

// multiDominantGap is the percentage-point gap below which the top two types
// are reported as a mixed profile.
const multiDominantGap = 10

// Distribution converts raw scores into whole percentages that always sum to
// 100 using the largest-remainder method. All-zero input yields an even split.
func Distribution(order []domain.BodyType, scores map[domain.BodyType]float64) map[domain.BodyType]int {
	out := make(map[domain.BodyType]int, len(order))
	if len(order) == 0 {
		return out
	}

	total := 0.0
	for _, t := range order {
		total += scores[t]
	}
	if total <= 0 {
		// Even split; any leftover points go to the earliest types.
		base := 100 / len(order)
		for i, t := range order {
			out[t] = base
			if i < 100%len(order) {
				out[t]++
			}
		}
		return out
	}

	type share struct {
		t    domain.BodyType
		frac float64
	}
	shares := make([]share, 0, len(order))
	assigned := 0
	for _, t := range order {
		exact := scores[t] / total * 100
		whole := math.Floor(exact)
		out[t] = int(whole)
		assigned += int(whole)
		shares = append(shares, share{t: t, frac: exact - whole})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].frac > shares[j].frac
	})
	for i := 0; i < 100-assigned; i++ {
		out[shares[i%len(shares)].t]++
	}
	return out
}

// DominanceOf ranks a distribution; ties keep declaration order.
func DominanceOf(order []domain.BodyType, dist map[domain.BodyType]int) domain.Dominance {
	scores := make(map[domain.BodyType]float64, len(dist))
	for t, v := range dist {
		scores[t] = float64(v)
	}
	ranking := rank(order, scores)
	if len(ranking) < 2 {
		return domain.Dominance{}
	}
	return domain.Dominance{
		DominantType:  ranking[0].Type,
		SecondaryType: ranking[1].Type,
		MultiDominant: ranking[0].Score-ranking[1].Score < multiDominantGap,
	}
}
