package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resale-cli/internal/cache"
	"github.com/sells-group/resale-cli/internal/fetcher"
	"github.com/sells-group/resale-cli/internal/model"
)

var clioTrim = model.SourceVehicle{
	Brand:       "RENAULT",
	Model:       "CLIO",
	Trim:        "CLIO V BLUE DCI 100 BUSINESS",
	FuelType:    "GO",
	Year:        2021,
	Mileage:     40000,
	ListedPrice: 10000,
}

var (
	narrowURL = urlWith("text=RENAULT+CLIO+V+BLUE+DCI+100+BUSINESS", "mileage=20000-60000", "regdate=2019-2023", "fuel=2")
	broadURL  = mock.MatchedBy(func(u string) bool { return strings.HasSuffix(u, "text=RENAULT+CLIO+V+BLUE") })
)

func pricesPage(prices ...int) []byte {
	ads := make([]string, 0, len(prices))
	for i, p := range prices {
		ads = append(ads, fmt.Sprintf(`{"subject":"Renault Clio %d","price":[%d]}`, i, p))
	}
	return []byte(`{"ads":[` + strings.Join(ads, ",") + `]}`)
}

func TestMargin_NarrowSuffices(t *testing.T) {
	t.Parallel()
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, narrowURL).Return(pricesPage(12000, 13000, 14000, 15000, 16000, 17000), nil).Once()
	f.On("Fetch", mock.Anything, broadURL).Return(pricesPage(9000), nil).Once()

	res, err := newTestPipeline(t, f, nil).Margin(context.Background(), clioTrim)
	require.NoError(t, err)

	assert.Equal(t, []float64{12000, 13000, 14000, 15000, 16000}, res.SelectedPrices)
	assert.InDelta(t, 14000, res.AvgMarketPrice, 1e-9)
	assert.InDelta(t, 4000, res.Margin, 1e-9)
	assert.InDelta(t, 9000, res.MinPrice, 1e-9)
	assert.InDelta(t, 17000, res.MaxPrice, 1e-9)
	assert.Equal(t, 7, res.TotalAds)
	assert.Equal(t, []float64{9000}, res.BroadPrices)
	require.NotNil(t, res.Fees)
	f.AssertExpectations(t)
}

func TestMargin_OneLegFails(t *testing.T) {
	t.Parallel()
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, narrowURL).Return(nil, &fetcher.FetchError{URL: "narrow", StatusCode: 403, Block: fetcher.BlockDataDome}).Once()
	f.On("Fetch", mock.Anything, broadURL).Return(pricesPage(11000, 12000, 13000), nil).Once()

	res, err := newTestPipeline(t, f, nil).Margin(context.Background(), clioTrim)
	require.NoError(t, err)
	assert.Equal(t, []float64{11000, 12000, 13000}, res.SelectedPrices)
	assert.Empty(t, res.NarrowPrices)
	assert.InDelta(t, 12000, res.AvgMarketPrice, 1e-9)
	assert.Equal(t, 3, res.TotalAds)
}

func TestMargin_BothLegsFail(t *testing.T) {
	t.Parallel()
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(nil, &fetcher.FetchError{URL: "u", StatusCode: 503})

	_, err := newTestPipeline(t, f, nil).Margin(context.Background(), clioTrim)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrFetchFailed))
	f.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestMargin_NoPrices(t *testing.T) {
	t.Parallel()
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return([]byte("<html><body>Aucune annonce</body></html>"), nil)

	_, err := newTestPipeline(t, f, nil).Margin(context.Background(), clioTrim)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNoPricesFound))
	assert.Equal(t, "no_prices_found", model.ErrorKind(err))
}

func TestMargin_PriceScanFallback(t *testing.T) {
	t.Parallel()
	// No parsable listing, only bare price fields.
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, narrowURL).Return([]byte(`<script>var s = {"price": 15500, "x": {"price": 14500}}</script>`), nil).Once()
	f.On("Fetch", mock.Anything, broadURL).Return(pricesPage(), nil).Once()

	res, err := newTestPipeline(t, f, nil).Margin(context.Background(), clioTrim)
	require.NoError(t, err)
	assert.Equal(t, []float64{14500, 15500}, res.SelectedPrices)
	assert.InDelta(t, 15000, res.AvgMarketPrice, 1e-9)
}

func TestMargin_Cached(t *testing.T) {
	t.Parallel()
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, narrowURL).Return(pricesPage(12000, 13000), nil).Once()
	f.On("Fetch", mock.Anything, broadURL).Return(pricesPage(14000), nil).Once()

	mem := cache.NewMemory()
	p := newTestPipeline(t, f, mem)

	first, err := p.Margin(context.Background(), clioTrim)
	require.NoError(t, err)
	second, err := p.Margin(context.Background(), clioTrim)
	require.NoError(t, err)

	assert.Equal(t, first.SelectedPrices, second.SelectedPrices)
	f.AssertNumberOfCalls(t, "Fetch", 2)

	entry, err := mem.Get(context.Background(), cache.MarginKey(clioTrim))
	require.NoError(t, err)
	require.NotNil(t, entry)
}

func TestMargin_IncompleteInput(t *testing.T) {
	t.Parallel()
	f := &mockFetcher{}
	_, err := newTestPipeline(t, f, nil).Margin(context.Background(), model.SourceVehicle{Model: "CLIO"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrIncompleteInput))
	f.AssertNumberOfCalls(t, "Fetch", 0)
}
