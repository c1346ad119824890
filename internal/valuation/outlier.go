package valuation

import (
	"math"
	"slices"

	"github.com/sells-group/resale-cli/internal/model"
)

// Outlier thresholds relative to the median and the population spread.
const (
	upperMedianFactor = 2.0
	lowerMedianFactor = 0.4
	stdDevFactor      = 2.5
	minOutlierSample  = 3
)

// RemoveOutliers drops statistically aberrant prices in a single pass.
// Lists shorter than three are returned unchanged, and a pass that would
// reject every price returns the input instead.
func RemoveOutliers(prices []float64) []float64 {
	keep := outlierMask(prices)
	if keep == nil {
		return prices
	}
	out := make([]float64, 0, len(prices))
	for i, p := range prices {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// FilterCandidates drops candidates without a positive price, then applies
// the outlier pass to the remaining prices. removed counts only the
// statistical rejections.
func FilterCandidates(cands []model.ScoredCandidate) (kept []model.ScoredCandidate, removed int) {
	priced := make([]model.ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		if c.Price > 0 {
			priced = append(priced, c)
		}
	}

	keep := outlierMask(model.Prices(priced))
	if keep == nil {
		return priced, 0
	}
	kept = make([]model.ScoredCandidate, 0, len(priced))
	for i, c := range priced {
		if keep[i] {
			kept = append(kept, c)
		}
	}
	return kept, len(priced) - len(kept)
}

// PositivePrices returns the prices greater than zero, in input order.
func PositivePrices(prices []float64) []float64 {
	out := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 {
			out = append(out, p)
		}
	}
	return out
}

// outlierMask reports which prices survive. A nil mask means keep all.
func outlierMask(prices []float64) []bool {
	n := len(prices)
	if n < minOutlierSample {
		return nil
	}

	sorted := slices.Clone(prices)
	slices.Sort(sorted)
	median := sorted[n/2]

	mean := sum(prices) / float64(n)
	var variance float64
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	stdDev := math.Sqrt(variance / float64(n))

	upper := median * upperMedianFactor
	lower := median * lowerMedianFactor
	spread := mean + stdDevFactor*stdDev

	keep := make([]bool, n)
	survivors := 0
	for i, p := range prices {
		if p > upper || p < lower || p > spread {
			continue
		}
		keep[i] = true
		survivors++
	}
	if survivors == 0 {
		return nil
	}
	return keep
}

func sum(prices []float64) float64 {
	var total float64
	for _, p := range prices {
		total += p
	}
	return total
}
