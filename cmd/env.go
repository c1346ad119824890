package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-cli/internal/fetcher"
	"github.com/sells-group/resale-cli/internal/pipeline"
	"github.com/sells-group/resale-cli/internal/store"
)

// appEnv holds the store, fetcher and pipeline needed by the compare, margin
// and serve commands.
type appEnv struct {
	Store    store.Store // nil when caching is disabled
	Fetcher  *fetcher.HTTPFetcher
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the config for mode and builds the pipeline. Callers
// should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &appEnv{Fetcher: fetcher.NewHTTPFetcher(fetcher.OptionsFromConfig(cfg.Fetch))}
	if !cfg.Cache.Disabled {
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		env.Store = st
	}

	p, err := pipeline.FromConfig(cfg, env.Fetcher, env.Store)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "build pipeline")
	}
	env.Pipeline = p
	return env, nil
}
