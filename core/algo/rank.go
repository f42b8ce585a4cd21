// Package algo has the Wilcoxon signed-rank test used to compare two runs.
package algo

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"github.com/huangsam/benchtrack/schema"
)

// RankedDifference is one non-zero paired difference and its tie-adjusted rank.
type RankedDifference struct {
	Diff float64 // baseline - current
	Abs  float64
	Sign int // -1 or +1
	Rank float64
}

// SignedRank returns the rank multiplied by the sign of the difference.
func (r RankedDifference) SignedRank() float64 {
	return r.Rank * float64(r.Sign)
}

// Significance is the outcome of a signed-rank test.
type Significance struct {
	N      int     // Pairs with a non-zero difference
	W      float64 // Sum of signed ranks
	Z      float64 // Only set when the normal approximation is used
	PValue float64 // Only set when the normal approximation is used
	Alpha  float64 // Tightest significance level crossed, 0 if none
}

// Significant reports whether any significance level was crossed.
func (s Significance) Significant() bool {
	return s.Alpha > 0
}

// criticalValue pairs a critical value of W with its significance level.
type criticalValue struct {
	limit float64
	alpha float64
}

// exactTable holds the critical values for n = 5..9, ordered by increasing limit.
// Fewer than five pairs can never reach significance.
var exactTable = map[int][]criticalValue{
	5: {{15, 0.05}},
	6: {{17, 0.05}, {21, 0.025}},
	7: {{22, 0.05}, {25, 0.025}, {28, 0.01}},
	8: {{26, 0.05}, {30, 0.025}, {34, 0.01}, {36, 0.005}},
	9: {{29, 0.05}, {35, 0.025}, {39, 0.01}, {43, 0.005}},
}

// zThresholds is ordered from the tightest level to the loosest.
var zThresholds = []criticalValue{
	{3.291, 0.0005},
	{2.576, 0.005},
	{2.326, 0.01},
	{1.960, 0.025},
	{1.645, 0.05},
}

// exactLimit is the smallest n that uses the normal approximation.
const exactLimit = 10

// RankDifferences pairs the samples by index, drops zero differences and ranks the rest
// by absolute difference. Tied values share the average of the ranks they occupy.
// The result is sorted by absolute difference.
func RankDifferences(baseline, current []float64) ([]RankedDifference, error) {
	if len(baseline) != len(current) {
		return nil, &schema.UnpairedSamplesError{Baseline: len(baseline), Current: len(current)}
	}

	rows := make([]RankedDifference, 0, len(baseline))
	for i := range baseline {
		d := baseline[i] - current[i]
		if d == 0 {
			continue
		}
		sign := 1
		if d < 0 {
			sign = -1
		}
		rows = append(rows, RankedDifference{Diff: d, Abs: math.Abs(d), Sign: sign})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Abs < rows[j].Abs
	})

	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Abs == rows[start].Abs {
			end++
		}
		// Ranks start+1 through end, averaged.
		rank := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			rows[k].Rank = rank
		}
		start = end
	}

	return rows, nil
}

// SignedRankTest runs a two-sided Wilcoxon signed-rank test over paired samples.
// Samples of different lengths return a *schema.UnpairedSamplesError.
func SignedRankTest(baseline, current []float64) (Significance, error) {
	rows, err := RankDifferences(baseline, current)
	if err != nil {
		return Significance{}, err
	}

	var w float64
	for _, r := range rows {
		w += r.SignedRank()
	}
	result := Significance{N: len(rows), W: w}

	if result.N < exactLimit {
		absW := math.Abs(w)
		for _, cv := range exactTable[result.N] {
			if absW > cv.limit {
				result.Alpha = cv.alpha
			}
		}
		return result, nil
	}

	n := float64(result.N)
	sd := math.Sqrt(n * (n + 1) * (2*n + 1) / 6)
	z := math.Abs((w - 0.5) / sd)
	result.Z = z
	result.PValue = 2 * (1 - stats.StdNormal.CDF(z))
	for _, th := range zThresholds {
		if z > th.limit {
			result.Alpha = th.alpha
			break
		}
	}
	return result, nil
}

// IsSignificant reports whether current differs significantly from baseline.
func IsSignificant(baseline, current []float64) (bool, error) {
	sig, err := SignedRankTest(baseline, current)
	if err != nil {
		return false, err
	}
	return sig.Significant(), nil
}
