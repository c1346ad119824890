package model

import "strings"

// Site identifies a marketplace that candidate listings are scraped from.
type Site string

const (
	// SiteLeboncoin is the primary classifieds marketplace (siteA).
	SiteLeboncoin Site = "leboncoin"
	// SiteLacentrale is the dealer-oriented marketplace (siteB).
	SiteLacentrale Site = "lacentrale"
)

// Sites lists every supported marketplace in search priority order.
var Sites = []Site{SiteLeboncoin, SiteLacentrale}

// ParseSite resolves a site identifier. "a"/"sitea" and "b"/"siteb" are
// accepted as aliases.
func ParseSite(s string) (Site, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leboncoin", "lbc", "a", "sitea":
		return SiteLeboncoin, nil
	case "lacentrale", "lc", "b", "siteb":
		return SiteLacentrale, nil
	}
	return "", Errorf(ErrUnknownSource, "unknown site %q", s)
}

// CandidateListing is one scraped market ad. Zero Mileage or Year means the
// field was not found on the ad.
type CandidateListing struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Mileage  int     `json:"mileage,omitempty"`
	Year     int     `json:"year,omitempty"`
	URL      string  `json:"url,omitempty"`
	Site     Site    `json:"site"`
	Strategy string  `json:"strategy,omitempty"` // Parse strategy that produced the listing.
}

// Usable reports whether the listing can feed matching: a title and a positive price.
func (c CandidateListing) Usable() bool {
	return strings.TrimSpace(c.Title) != "" && c.Price > 0
}

// ScoredCandidate is a candidate that passed the hard filters, with its score
// and 1-based rank among survivors.
type ScoredCandidate struct {
	CandidateListing
	Score      int            `json:"score"`
	Rank       int            `json:"rank"`
	Components map[string]int `json:"components,omitempty"`
}

// Prices returns the price of every candidate, in order.
func Prices(cands []ScoredCandidate) []float64 {
	out := make([]float64, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Price)
	}
	return out
}
