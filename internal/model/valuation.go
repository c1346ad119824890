package model

import "time"

// Recommendation is the qualitative verdict derived from the margin percentage.
type Recommendation string

const (
	RecommendationExcellent   Recommendation = "excellent"
	RecommendationGood        Recommendation = "good"
	RecommendationFair        Recommendation = "fair"
	RecommendationLow         Recommendation = "low"
	RecommendationAboveMarket Recommendation = "above-market"
)

// RecommendationFor maps a margin percentage to its tier.
func RecommendationFor(marginPct float64) Recommendation {
	switch {
	case marginPct >= 20:
		return RecommendationExcellent
	case marginPct >= 10:
		return RecommendationGood
	case marginPct >= 5:
		return RecommendationFair
	case marginPct >= 0:
		return RecommendationLow
	default:
		return RecommendationAboveMarket
	}
}

// Label returns the display text shown to buyers.
func (r Recommendation) Label() string {
	switch r {
	case RecommendationExcellent:
		return "Excellente affaire"
	case RecommendationGood:
		return "Bonne opportunité"
	case RecommendationFair:
		return "Marge correcte"
	case RecommendationLow:
		return "Faible marge"
	case RecommendationAboveMarket:
		return "Prix au-dessus du marché"
	}
	return string(r)
}

// FeeBreakdown is the buyer-side cost of acquiring a vehicle at auction.
type FeeBreakdown struct {
	Price        float64 `json:"price"`
	Commission   float64 `json:"commission"`
	FixedFee     float64 `json:"fixed_fee"`
	PlatformFee  float64 `json:"platform_fee"`
	Total        float64 `json:"total"`
	FloorApplied bool    `json:"floor_applied"` // Commission floor used instead of the percentage.
}

// ValuationResult is the outcome of pricing a source vehicle against one marketplace.
type ValuationResult struct {
	Site            Site              `json:"site,omitempty"`
	SourcePrice     float64           `json:"source_price"`
	TopPrices       []float64         `json:"top_prices"`
	AvgMarketPrice  float64           `json:"avg_market_price"`
	MedianPrice     float64           `json:"median_price"`
	MinPrice        float64           `json:"min_price"`
	MaxPrice        float64           `json:"max_price"`
	Margin          float64           `json:"margin"`
	MarginPct       float64           `json:"margin_pct"`
	Recommendation  Recommendation    `json:"recommendation"`
	TotalMatches    int               `json:"total_matches"`
	OutliersRemoved int               `json:"outliers_removed"`
	Matches         []ScoredCandidate `json:"matches"`
	Fees            *FeeBreakdown     `json:"fees,omitempty"`
	NetMargin       float64           `json:"net_margin"`
	ComputedAt      time.Time         `json:"computed_at"`
}

// MarginResult is the outcome of the dual narrow/broad search estimate.
type MarginResult struct {
	SourcePrice    float64       `json:"source_price"`
	SelectedPrices []float64     `json:"selected_prices"`
	AvgMarketPrice float64       `json:"avg_market_price"`
	Margin         float64       `json:"margin"`
	MinPrice       float64       `json:"min_price"`
	MaxPrice       float64       `json:"max_price"`
	TotalAds       int           `json:"total_ads"`
	NarrowPrices   []float64     `json:"narrow_prices"`
	BroadPrices    []float64     `json:"broad_prices"`
	Fees           *FeeBreakdown `json:"fees,omitempty"`
	NetMargin      float64       `json:"net_margin"`
	ComputedAt     time.Time     `json:"computed_at"`
}
