package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/resale-cli/internal/cache"
	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/search"
)

// leg is one search of the dual margin estimate.
type leg struct {
	name   string
	url    string
	prices []float64
	err    error
}

// Margin estimates the resale margin of v from a narrow and a broad leboncoin
// search run in parallel. A failed leg contributes no prices; the call fails
// with the fetch error only when both legs fail.
func (p *Pipeline) Margin(ctx context.Context, v model.SourceVehicle) (*model.MarginResult, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("brand", v.Brand), zap.String("model", v.Model))
	start := time.Now()

	key := cache.MarginKey(v)
	var cached model.MarginResult
	if p.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	legs := []*leg{
		{name: "narrow", url: p.search.NarrowURL(v)},
		{name: "broad", url: p.search.BroadURL(v, search.BroadStrategy)},
	}

	var g errgroup.Group
	for _, l := range legs {
		g.Go(func() error {
			l.prices, l.err = p.prices(ctx, l.url)
			if l.err != nil {
				log.Warn("pipeline: margin leg failed",
					zap.String("leg", l.name),
					zap.String("url", l.url),
					zap.Error(l.err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	narrow, broad := legs[0], legs[1]
	if narrow.err != nil && broad.err != nil {
		return nil, eris.Wrap(errors.Join(narrow.err, broad.err), "pipeline: margin searches")
	}

	res, err := p.engine.MarginFromDualSearch(v, narrow.prices, broad.prices)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: margin")
	}

	log.Info("pipeline: margin complete",
		zap.Int("narrow_prices", len(narrow.prices)),
		zap.Int("broad_prices", len(broad.prices)),
		zap.Float64("avg_market_price", res.AvgMarketPrice),
		zap.Float64("margin", res.Margin),
		zap.Duration("elapsed", time.Since(start)),
	)

	p.save(ctx, key, res)
	return res, nil
}

func (p *Pipeline) prices(ctx context.Context, searchURL string) ([]float64, error) {
	body, err := p.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	return p.parser.ParsePrices(body, model.SiteLeboncoin)
}
