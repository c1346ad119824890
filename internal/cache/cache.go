// Package cache derives valuation cache keys and enforces entry expiry on top
// of a plain key-value Store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/model"
)

// DefaultTTL is how long a cached valuation stays fresh.
const DefaultTTL = 24 * time.Hour

// mileageBucket groups mileages so nearby odometers share a key.
const mileageBucket = 10000

// Entry is a stored value and the time it was written.
type Entry struct {
	Value    []byte
	StoredAt time.Time
}

// Store is the key-value backend. Get returns nil, nil on a miss. Stores do
// not expire entries on their own.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key derives the cache key for a vehicle priced against a site.
func Key(site model.Site, v model.SourceVehicle) string {
	brand := strings.ToUpper(strings.TrimSpace(v.Brand))
	mdl := strings.ToUpper(strings.TrimSpace(v.Model))
	return fmt.Sprintf("cache_%s_%s_%s_%d_%d", site, brand, mdl, v.Year, v.Mileage/mileageBucket)
}

// MarginKey derives the cache key for a dual-search margin estimate.
func MarginKey(v model.SourceVehicle) string {
	return Key("margin", v)
}

// Gateway reads and writes JSON values through a Store, treating entries
// older than the TTL as absent.
type Gateway struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewGateway wraps store. A non-positive ttl uses DefaultTTL.
func NewGateway(store Store, ttl time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gateway{store: store, ttl: ttl, now: time.Now}
}

// TTL returns the freshness window.
func (g *Gateway) TTL() time.Duration { return g.ttl }

// Lookup decodes the entry under key into dst. It reports false on a miss or
// when the entry has expired; expired entries are deleted.
func (g *Gateway) Lookup(ctx context.Context, key string, dst any) (bool, error) {
	entry, err := g.store.Get(ctx, key)
	if err != nil {
		return false, eris.Wrapf(err, "cache: get %s", key)
	}
	if entry == nil {
		return false, nil
	}

	if g.now().Sub(entry.StoredAt) >= g.ttl {
		if err := g.store.Delete(ctx, key); err != nil {
			zap.L().Warn("cache: evict expired entry failed", zap.String("key", key), zap.Error(err))
		}
		return false, nil
	}

	if err := json.Unmarshal(entry.Value, dst); err != nil {
		zap.L().Warn("cache: dropping undecodable entry", zap.String("key", key), zap.Error(err))
		_ = g.store.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// Save encodes v and writes it under key.
func (g *Gateway) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cache: marshal %s", key)
	}
	if err := g.store.Set(ctx, key, data); err != nil {
		return eris.Wrapf(err, "cache: set %s", key)
	}
	return nil
}
