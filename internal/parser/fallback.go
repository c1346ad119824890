package parser

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/sells-group/resale-cli/internal/model"
)

// maxFallbackPairs bounds the positional price/title pairing.
const maxFallbackPairs = 20

var priceKeyRe = regexp.MustCompile(`"price":\s*(\d+)`)

// fallback pairs "price" occurrences with title occurrences by position. It
// is the lowest-confidence strategy and only runs when the others found nothing.
func (p profile) fallback(raw string) []model.CandidateListing {
	titleRe := regexp.MustCompile(`"` + regexp.QuoteMeta(p.FallbackTitleKey) + `":\s*"([^"]+)"`)
	prices := priceKeyRe.FindAllStringSubmatch(raw, -1)
	titles := titleRe.FindAllStringSubmatch(raw, -1)

	n := min(len(prices), len(titles), maxFallbackPairs)
	var out []model.CandidateListing
	for i := 0; i < n; i++ {
		price, _ := strconv.ParseFloat(prices[i][1], 64)
		l := model.CandidateListing{
			Title:    titles[i][1],
			Price:    price,
			URL:      p.FallbackURL,
			Site:     p.Site,
			Strategy: StrategyRegex,
		}
		if l.Usable() {
			out = append(out, l)
		}
	}
	return out
}

// scanPrices returns every positive "price" value in raw, highest first.
func scanPrices(raw string) []float64 {
	var out []float64
	for _, m := range priceKeyRe.FindAllStringSubmatch(raw, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			out = append(out, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}
