package valuation

import (
	"slices"
	"time"

	"github.com/sells-group/resale-cli/internal/config"
	"github.com/sells-group/resale-cli/internal/model"
)

// Engine aggregates market prices into a margin verdict.
type Engine struct {
	topN int
	fees FeeSchedule
	now  func() time.Time
}

// New creates an Engine from the valuation config section.
func New(cfg config.ValuationConfig) *Engine {
	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Engine{
		topN: topN,
		fees: FeesFromConfig(cfg.Fees),
		now:  time.Now,
	}
}

// DefaultTopN is the number of prices and listings kept in a result.
const DefaultTopN = 5

// Default returns an Engine with the standard fee schedule.
func Default() *Engine {
	return &Engine{topN: DefaultTopN, fees: DefaultFees(), now: time.Now}
}

// Fees returns the engine's fee schedule.
func (e *Engine) Fees() FeeSchedule { return e.fees }

// PriceAnalysis summarizes the prices of matched candidates against the
// source price. Candidates without a positive price are ignored.
func (e *Engine) PriceAnalysis(sourcePrice float64, matched []model.ScoredCandidate) (*model.ValuationResult, error) {
	prices := PositivePrices(model.Prices(matched))
	if len(prices) == 0 {
		return nil, model.Errorf(model.ErrNoValidPrices, "valuation: %d matched listings", len(matched))
	}
	slices.Sort(prices)
	slices.Reverse(prices)

	avg := sum(prices) / float64(len(prices))
	margin := avg - sourcePrice
	var pct float64
	if sourcePrice > 0 {
		pct = margin / sourcePrice * 100
	}

	res := &model.ValuationResult{
		SourcePrice:    sourcePrice,
		TopPrices:      head(prices, e.topN),
		AvgMarketPrice: avg,
		MedianPrice:    Median(prices),
		MinPrice:       prices[len(prices)-1],
		MaxPrice:       prices[0],
		Margin:         margin,
		MarginPct:      pct,
		Recommendation: model.RecommendationFor(pct),
		TotalMatches:   len(matched),
		Matches:        head(matched, e.topN),
		ComputedAt:     e.now().UTC(),
	}
	res.Fees, res.NetMargin = e.feesFor(sourcePrice, avg)
	return res, nil
}

// Appraise runs the outlier pass over matched candidates and then the price
// analysis on the survivors.
func (e *Engine) Appraise(sourcePrice float64, matched []model.ScoredCandidate) (*model.ValuationResult, error) {
	kept, removed := FilterCandidates(matched)
	res, err := e.PriceAnalysis(sourcePrice, kept)
	if err != nil {
		return nil, err
	}
	res.TotalMatches = len(matched)
	res.OutliersRemoved = removed
	return res, nil
}

// feesFor returns the buyer cost of the source price and the margin left
// after paying it. Both are zero when the source price is unknown.
func (e *Engine) feesFor(sourcePrice, avg float64) (*model.FeeBreakdown, float64) {
	if sourcePrice <= 0 {
		return nil, 0
	}
	fb, err := e.fees.Calculate(sourcePrice)
	if err != nil {
		return nil, 0
	}
	return &fb, avg - fb.Total
}

// Median returns the middle value, averaging the two middles for even counts.
func Median(prices []float64) float64 {
	n := len(prices)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(prices)
	slices.Sort(sorted)
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return slices.Clone(s)
	}
	return slices.Clone(s[:n])
}
