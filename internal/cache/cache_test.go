package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resale-cli/internal/model"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestGateway(ttl time.Duration) (*Gateway, *Memory, *clock) {
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	mem := NewMemory()
	mem.now = c.now
	g := NewGateway(mem, ttl)
	g.now = c.now
	return g, mem, c
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		site model.Site
		v    model.SourceVehicle
		want string
	}{
		{
			name: "bucketed mileage",
			site: model.SiteLeboncoin,
			v:    model.SourceVehicle{Brand: "Renault", Model: "Clio", Year: 2020, Mileage: 34999},
			want: "cache_leboncoin_RENAULT_CLIO_2020_3",
		},
		{
			name: "same bucket same key",
			site: model.SiteLeboncoin,
			v:    model.SourceVehicle{Brand: "RENAULT", Model: "CLIO", Year: 2020, Mileage: 30000},
			want: "cache_leboncoin_RENAULT_CLIO_2020_3",
		},
		{
			name: "site distinguishes",
			site: model.SiteLacentrale,
			v:    model.SourceVehicle{Brand: "peugeot", Model: " 308 ", Year: 2018, Mileage: 9000},
			want: "cache_lacentrale_PEUGEOT_308_2018_0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Key(tt.site, tt.v))
		})
	}
}

func TestMarginKey(t *testing.T) {
	t.Parallel()
	v := model.SourceVehicle{Brand: "Dacia", Model: "Sandero", Year: 2021, Mileage: 41000}
	assert.Equal(t, "cache_margin_DACIA_SANDERO_2021_4", MarginKey(v))
}

func TestGateway_SaveLookup(t *testing.T) {
	t.Parallel()
	g, _, _ := newTestGateway(time.Hour)
	ctx := context.Background()

	in := model.ValuationResult{SourcePrice: 10000, AvgMarketPrice: 12000, Recommendation: model.RecommendationExcellent}
	require.NoError(t, g.Save(ctx, "k", in))

	var out model.ValuationResult
	hit, err := g.Lookup(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in.AvgMarketPrice, out.AvgMarketPrice)
	assert.Equal(t, in.Recommendation, out.Recommendation)
}

func TestGateway_Miss(t *testing.T) {
	t.Parallel()
	g, _, _ := newTestGateway(time.Hour)

	var out model.ValuationResult
	hit, err := g.Lookup(context.Background(), "absent", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGateway_ExpiredEntryIsEvicted(t *testing.T) {
	t.Parallel()
	g, mem, c := newTestGateway(24 * time.Hour)
	ctx := context.Background()

	require.NoError(t, g.Save(ctx, "k", map[string]int{"a": 1}))

	c.t = c.t.Add(23 * time.Hour)
	var out map[string]int
	hit, err := g.Lookup(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)

	c.t = c.t.Add(time.Hour)
	hit, err = g.Lookup(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, mem.Len())
}

func TestGateway_UndecodableEntryDropped(t *testing.T) {
	t.Parallel()
	g, mem, _ := newTestGateway(time.Hour)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "k", []byte("{not json")))

	var out model.ValuationResult
	hit, err := g.Lookup(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, mem.Len())
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (*Entry, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error { return f.err }
func (f failingStore) Delete(context.Context, string) error { return f.err }

func TestGateway_StoreErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("disk full")
	g := NewGateway(failingStore{err: boom}, 0)
	assert.Equal(t, DefaultTTL, g.TTL())

	var out model.ValuationResult
	_, err := g.Lookup(context.Background(), "k", &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	err = g.Save(context.Background(), "k", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache: set k")
}

func TestGateway_MarshalError(t *testing.T) {
	t.Parallel()
	g, _, _ := newTestGateway(time.Hour)

	err := g.Save(context.Background(), "k", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache: marshal k")
}

func TestMemory_PurgeExpired(t *testing.T) {
	t.Parallel()
	_, mem, c := newTestGateway(time.Hour)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "old", []byte("1")))
	c.t = c.t.Add(2 * time.Hour)
	require.NoError(t, mem.Set(ctx, "new", []byte("2")))

	n, err := mem.PurgeExpired(ctx, c.t.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, err := mem.Get(ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, []byte("2"), e.Value)

	e, err = mem.Get(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.NoError(t, mem.Close())
}
