// Package pipeline runs a valuation end to end: cache lookup, search URL,
// fetch, parse, match and price analysis.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/cache"
	"github.com/sells-group/resale-cli/internal/config"
	"github.com/sells-group/resale-cli/internal/fetcher"
	"github.com/sells-group/resale-cli/internal/matcher"
	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/parser"
	"github.com/sells-group/resale-cli/internal/search"
	"github.com/sells-group/resale-cli/internal/valuation"
)

// Pipeline wires the valuation collaborators together.
type Pipeline struct {
	fetcher fetcher.Fetcher
	search  *search.Builder
	parser  *parser.Parser
	matcher *matcher.Matcher
	engine  *valuation.Engine
	cache   *cache.Gateway // nil disables caching
}

// New creates a Pipeline from explicit collaborators. gw may be nil.
func New(f fetcher.Fetcher, sb *search.Builder, p *parser.Parser, m *matcher.Matcher, e *valuation.Engine, gw *cache.Gateway) *Pipeline {
	return &Pipeline{fetcher: f, search: sb, parser: p, matcher: m, engine: e, cache: gw}
}

// FromConfig builds a Pipeline from configuration. st may be nil, which
// disables caching along with cfg.Cache.Disabled.
func FromConfig(cfg *config.Config, f fetcher.Fetcher, st cache.Store) (*Pipeline, error) {
	m, err := matcher.New(cfg.Matcher)
	if err != nil {
		return nil, err
	}

	var gw *cache.Gateway
	if st != nil && !cfg.Cache.Disabled {
		gw = cache.NewGateway(st, time.Duration(cfg.Cache.TTLHours)*time.Hour)
	}

	p := parser.New(map[model.Site]string{
		model.SiteLeboncoin:  cfg.Sites.Leboncoin.BaseURL,
		model.SiteLacentrale: cfg.Sites.Lacentrale.BaseURL,
	})
	return New(f, search.New(cfg.Sites, cfg.Matcher.GenericWords), p, m, valuation.New(cfg.Valuation), gw), nil
}

// Engine exposes the valuation engine, for the fee calculator.
func (p *Pipeline) Engine() *valuation.Engine { return p.engine }

func (p *Pipeline) lookup(ctx context.Context, key string, dst any) bool {
	if p.cache == nil {
		return false
	}
	hit, err := p.cache.Lookup(ctx, key, dst)
	if err != nil {
		// A broken cache degrades to recomputation.
		zap.L().Warn("pipeline: cache lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if hit {
		zap.L().Info("pipeline: cache hit", zap.String("key", key))
	}
	return hit
}

func (p *Pipeline) save(ctx context.Context, key string, v any) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Save(ctx, key, v); err != nil {
		zap.L().Warn("pipeline: cache save failed", zap.String("key", key), zap.Error(err))
	}
}
