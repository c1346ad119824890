package valuation

import (
	"slices"

	"github.com/sells-group/resale-cli/internal/model"
)

// MarginFromDualSearch estimates the market price from a narrow and a broad
// search. Each list is outlier-filtered and sorted ascending; the cheapest
// narrow prices are preferred and the broad list only pads up to topN.
func (e *Engine) MarginFromDualSearch(src model.SourceVehicle, narrow, broad []float64) (*model.MarginResult, error) {
	a := RemoveOutliers(PositivePrices(narrow))
	b := RemoveOutliers(PositivePrices(broad))
	slices.Sort(a)
	slices.Sort(b)

	selected := head(a, e.topN)
	if need := e.topN - len(selected); need > 0 {
		selected = append(selected, head(b, need)...)
		slices.Sort(selected)
	}
	if len(selected) == 0 {
		return nil, model.Errorf(model.ErrNoPricesFound, "valuation: %d narrow, %d broad prices", len(narrow), len(broad))
	}

	avg := sum(selected) / float64(len(selected))
	all := append(slices.Clone(a), b...)

	res := &model.MarginResult{
		SourcePrice:    src.ListedPrice,
		SelectedPrices: selected,
		AvgMarketPrice: avg,
		Margin:         avg - src.ListedPrice,
		MinPrice:       slices.Min(all),
		MaxPrice:       slices.Max(all),
		TotalAds:       len(a) + len(b),
		NarrowPrices:   a,
		BroadPrices:    b,
		ComputedAt:     e.now().UTC(),
	}
	res.Fees, res.NetMargin = e.feesFor(src.ListedPrice, avg)
	return res, nil
}
