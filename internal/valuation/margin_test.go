package valuation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resale-cli/internal/model"
)

func source(price float64) model.SourceVehicle {
	return model.SourceVehicle{Brand: "PEUGEOT", Model: "308", Year: 2019, Mileage: 60000, ListedPrice: price}
}

func TestMarginFromDualSearch_NarrowListSuffices(t *testing.T) {
	t.Parallel()

	res, err := newEngine().MarginFromDualSearch(source(10000),
		[]float64{17000, 12000, 16000, 13000, 15000, 14000},
		[]float64{9000},
	)
	require.NoError(t, err)

	assert.Equal(t, []float64{12000, 13000, 14000, 15000, 16000}, res.SelectedPrices)
	assert.Equal(t, 14000.0, res.AvgMarketPrice)
	assert.Equal(t, 4000.0, res.Margin)
	assert.Equal(t, 9000.0, res.MinPrice)
	assert.Equal(t, 17000.0, res.MaxPrice)
	assert.Equal(t, 7, res.TotalAds)
	assert.Len(t, res.NarrowPrices, 6)
	assert.Equal(t, []float64{9000}, res.BroadPrices)
	assert.Equal(t, fixedNow, res.ComputedAt)

	require.NotNil(t, res.Fees)
	assert.Equal(t, 14000.0-11620.0, res.NetMargin)
}

func TestMarginFromDualSearch_PadsFromBroad(t *testing.T) {
	t.Parallel()

	res, err := newEngine().MarginFromDualSearch(source(10000),
		[]float64{15000, 14000, 0},
		[]float64{20000, 9000, 10000, 11000},
	)
	require.NoError(t, err)

	assert.Equal(t, []float64{9000, 10000, 11000, 14000, 15000}, res.SelectedPrices)
	assert.Equal(t, 11800.0, res.AvgMarketPrice)
	assert.Equal(t, 20000.0, res.MaxPrice)
	assert.Equal(t, 6, res.TotalAds)
}

func TestMarginFromDualSearch_BroadOnly(t *testing.T) {
	t.Parallel()

	res, err := newEngine().MarginFromDualSearch(source(8000), nil, []float64{9000})
	require.NoError(t, err)
	assert.Equal(t, []float64{9000}, res.SelectedPrices)
	assert.Equal(t, 1000.0, res.Margin)
	assert.Empty(t, res.NarrowPrices)
}

func TestMarginFromDualSearch_OutliersRemovedPerList(t *testing.T) {
	t.Parallel()

	res, err := newEngine().MarginFromDualSearch(source(10000),
		[]float64{10000, 11000, 12000, 100000},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{10000, 11000, 12000}, res.SelectedPrices)
	assert.Equal(t, 12000.0, res.MaxPrice)
	assert.Equal(t, 3, res.TotalAds)
}

func TestMarginFromDualSearch_NoPrices(t *testing.T) {
	t.Parallel()

	_, err := newEngine().MarginFromDualSearch(source(10000), []float64{0}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNoPricesFound))
}
