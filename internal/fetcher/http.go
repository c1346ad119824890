package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/resale-cli/internal/config"
	"github.com/sells-group/resale-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent         string
	AcceptLanguage    string
	Timeout           time.Duration
	MaxBodyBytes      int64
	RequestsPerSecond float64
	Burst             int
	Policy            resilience.Policy
	Breakers          *resilience.Breakers
}

// OptionsFromConfig maps the fetch section onto HTTPOptions.
func OptionsFromConfig(cfg config.FetchConfig) HTTPOptions {
	return HTTPOptions{
		UserAgent:         cfg.UserAgent,
		AcceptLanguage:    cfg.AcceptLanguage,
		Timeout:           time.Duration(cfg.TimeoutSecs) * time.Second,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Policy:            resilience.PolicyFromConfig(cfg),
		Breakers:          resilience.NewBreakers(resilience.BreakerConfigFrom(cfg)),
	}
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.maxRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
	zap.L().Warn("fetcher: reducing rate after 429",
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements Fetcher with per-host rate limiting, bounded retry
// and circuit breaking.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = "fr-FR,fr;q=0.9"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Breakers == nil {
		opts.Breakers = resilience.NewBreakers(resilience.BreakerConfig{})
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		MaxConnsPerHost:     8,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*AdaptiveLimiter),
	}
}

func (f *HTTPFetcher) limiterFor(host string) *AdaptiveLimiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		limit := rate.Inf
		if f.opts.RequestsPerSecond > 0 {
			limit = rate.Limit(f.opts.RequestsPerSecond)
		}
		lim = NewAdaptiveLimiter(limit, f.opts.Burst)
		f.limiters[host] = lim
	}
	return lim
}

// Fetch downloads rawURL and returns its body. Every failure is a
// *FetchError, possibly wrapped in a resilience.TransientError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: eris.Wrap(err, "fetcher: parse url")}
	}
	if u.Host == "" {
		return nil, &FetchError{URL: rawURL, Err: eris.New("fetcher: url has no host")}
	}

	breaker := f.opts.Breakers.For(u.Host)
	if err := breaker.Allow(); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	limiter := f.limiterFor(u.Host)
	policy := f.opts.Policy
	policy.OnRetry = resilience.LogRetry(u.Host)

	start := time.Now()
	body, err := resilience.Retry(ctx, policy, func(ctx context.Context) ([]byte, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}
		return f.do(ctx, rawURL, limiter)
	})
	breaker.Record(breakerOutcome(err))

	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{URL: rawURL, Err: err}
		}
		zap.L().Warn("fetcher: fetch failed",
			zap.String("host", u.Host),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Debug("fetcher: fetched",
		zap.String("host", u.Host),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL string, limiter *AdaptiveLimiter) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: eris.Wrap(err, "fetcher: create request")}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.opts.AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, resilience.NewTransientError(&FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}, 0)
	}

	if block := DetectBlock(resp.StatusCode, resp.Header, body); block != BlockNone {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Block: block}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		limiter.OnRateLimit()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fe := &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
		if resilience.IsTransientStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(fe, resp.StatusCode)
		}
		return nil, fe
	}

	limiter.OnSuccess()
	return body, nil
}

// breakerOutcome keeps permanent client errors such as 404 from opening a
// host's breaker.
func breakerOutcome(err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Block != BlockNone {
		return err
	}
	if resilience.IsTransient(err) {
		return err
	}
	return nil
}
