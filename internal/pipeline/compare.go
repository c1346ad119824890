package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/cache"
	"github.com/sells-group/resale-cli/internal/model"
)

// Compare prices v against one marketplace. Results are cached per site,
// brand, model, year and mileage bucket.
func (p *Pipeline) Compare(ctx context.Context, v model.SourceVehicle, site model.Site) (*model.ValuationResult, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(
		zap.String("site", string(site)),
		zap.String("brand", v.Brand),
		zap.String("model", v.Model),
	)
	start := time.Now()

	key := cache.Key(site, v)
	var cached model.ValuationResult
	if p.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	searchURL, err := p.search.CompareURL(site, v)
	if err != nil {
		return nil, err
	}

	body, err := p.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch %s", site)
	}

	listings, err := p.parser.Parse(body, site)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse %s", site)
	}

	matched, err := p.matcher.MatchAndScore(v, listings)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, model.Errorf(model.ErrNoMatchesFound, "pipeline: none of %d %s listings matched", len(listings), site)
	}

	res, err := p.engine.Appraise(v.ListedPrice, matched)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: appraise %s", site)
	}
	res.Site = site

	log.Info("pipeline: compare complete",
		zap.Int("listings", len(listings)),
		zap.Int("matched", len(matched)),
		zap.Int("outliers_removed", res.OutliersRemoved),
		zap.Float64("avg_market_price", res.AvgMarketPrice),
		zap.String("recommendation", string(res.Recommendation)),
		zap.Duration("elapsed", time.Since(start)),
	)

	p.save(ctx, key, res)
	return res, nil
}
