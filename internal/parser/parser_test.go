package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resale-cli/internal/model"
)

const nextDataPage = `<html><head><title>Clio</title></head><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"searchData":{"ads":[
{"subject":"Renault Clio V dCi 85","price":[12500],"url":"/ad/voitures/1","attributes":[{"key":"mileage","value":"45000"},{"key":"regdate","value":"2020"}]},
{"subject":"Renault Clio IV","price":9800,"url":"https://www.leboncoin.fr/ad/voitures/2","body":"Très bon état, 85 000 km, 2017"},
{"subject":"Sans prix","price":[0]},
{"title":"","price":[5000]}
]}}}}</script></body></html>`

func TestParse_LeboncoinNextData(t *testing.T) {
	t.Parallel()

	got, err := Parse([]byte(nextDataPage), model.SiteLeboncoin)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.CandidateListing{
		Title:    "Renault Clio V dCi 85",
		Price:    12500,
		Mileage:  45000,
		Year:     2020,
		URL:      "https://www.leboncoin.fr/ad/voitures/1",
		Site:     model.SiteLeboncoin,
		Strategy: StrategyStructured,
	}, got[0])

	assert.Equal(t, 9800.0, got[1].Price)
	assert.Equal(t, 85000, got[1].Mileage)
	assert.Equal(t, 2017, got[1].Year)
	assert.Equal(t, "https://www.leboncoin.fr/ad/voitures/2", got[1].URL)
}

func TestParse_LeboncoinPathPriority(t *testing.T) {
	t.Parallel()

	page := `<html><body><script id="__NEXT_DATA__">{"props":{"pageProps":{"searchData":{"ads":[]},"ads":[{"subject":"Peugeot 208","price":[11000]}]},"initialState":{"ads":[{"subject":"Ignored","price":[1]}]}}}</script></body></html>`
	got, err := Parse([]byte(page), model.SiteLeboncoin)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Peugeot 208", got[0].Title)
}

func TestParse_RawJSON(t *testing.T) {
	t.Parallel()

	got, err := Parse([]byte(`{"listings":[{"subject":"Peugeot 308","price":15000}]}`), model.SiteLeboncoin)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 15000.0, got[0].Price)

	got, err = Parse([]byte(`[{"name":"Peugeot 308 GT","offers":{"price":"18 900 €"}}]`), model.SiteLacentrale)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Peugeot 308 GT", got[0].Title)
	assert.Equal(t, 18900.0, got[0].Price)
	assert.Equal(t, model.SiteLacentrale, got[0].Site)
}

func TestParse_LacentraleJSONLD(t *testing.T) {
	t.Parallel()

	page := `<html><head>
<script type="application/ld+json">{"@type":"Organization","name":"La Centrale"}</script>
<script type="application/ld+json">{"@type":"ItemList","itemListElement":[{"item":{"name":"Peugeot 308 1.5 BlueHDi","offers":{"price":16900},"mileageFromOdometer":{"value":52000},"vehicleModelDate":"2019","url":"/auto-occasion-annonce-1.html"}}]}</script>
</head><body></body></html>`

	got, err := Parse([]byte(page), model.SiteLacentrale)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.CandidateListing{
		Title:    "Peugeot 308 1.5 BlueHDi",
		Price:    16900,
		Mileage:  52000,
		Year:     2019,
		URL:      "https://www.lacentrale.fr/auto-occasion-annonce-1.html",
		Site:     model.SiteLacentrale,
		Strategy: StrategyStructured,
	}, got[0])
}

func TestParse_LacentraleMarkupFirstSelectorWins(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="searchCard"><a href="/auto-occasion-annonce-2.html"><h3 class="vehicleTitle">Peugeot 308 GT Line</h3>
<span class="priceValue">21 490 €</span><div class="mileage">31 000 km</div><div class="year">2021</div></a></div>
<div class="searchCard"><h3>No price here</h3></div>
<article><h3>Ignored article</h3><span class="price">1 000 €</span></article>
</body></html>`

	got, err := Parse([]byte(page), model.SiteLacentrale)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Peugeot 308 GT Line", got[0].Title)
	assert.Equal(t, 21490.0, got[0].Price)
	assert.Equal(t, 31000, got[0].Mileage)
	assert.Equal(t, 2021, got[0].Year)
	assert.Equal(t, "https://www.lacentrale.fr/auto-occasion-annonce-2.html", got[0].URL)
	assert.Equal(t, StrategyMarkup, got[0].Strategy)
}

func TestParse_LeboncoinCardsUseLooseText(t *testing.T) {
	t.Parallel()

	page := `<html><body><div data-qa-id="aditem_container"><a href="/ad/voitures/9">
<p data-qa-id="aditem_title">Renault Zoe</p><span data-qa-id="aditem_price">7 990 €</span><p>2019 · 40 000 km</p></a></div></body></html>`

	p := New(map[model.Site]string{model.SiteLeboncoin: "http://localhost:9999"})
	got, err := p.Parse([]byte(page), model.SiteLeboncoin)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7990.0, got[0].Price)
	assert.Equal(t, 40000, got[0].Mileage)
	assert.Equal(t, 2019, got[0].Year)
	assert.Equal(t, "http://localhost:9999/ad/voitures/9", got[0].URL)
}

func TestParse_RegexFallback(t *testing.T) {
	t.Parallel()

	page := `<html><script>window.data = {"a":{"subject":"Clio 1","price": 8000},"b":{"subject":"Clio 2","price": 9000}}</script></html>`
	got, err := Parse([]byte(page), model.SiteLeboncoin)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Clio 2", got[1].Title)
	assert.Equal(t, 9000.0, got[1].Price)
	assert.Equal(t, StrategyRegex, got[0].Strategy)
	assert.Equal(t, "https://www.leboncoin.fr/voitures", got[0].URL)
}

func TestParse_RegexFallbackBounded(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<html><script>var x = [")
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&b, `{"subject":"Ad %d","price": %d},`, i, i*1000)
	}
	b.WriteString("]</script></html>")

	got, err := Parse([]byte(b.String()), model.SiteLeboncoin)
	require.NoError(t, err)
	assert.Len(t, got, maxFallbackPairs)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("<html><body>rien</body></html>"), model.SiteLeboncoin)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNoListingsFound))

	_, err = Parse(nil, model.SiteLacentrale)
	assert.True(t, errors.Is(err, model.ErrNoListingsFound))

	_, err = Parse([]byte("{}"), model.Site("autoscout"))
	assert.True(t, errors.Is(err, model.ErrUnknownSource))
}

func TestParsePrices(t *testing.T) {
	t.Parallel()

	prices, err := ParsePrices([]byte(nextDataPage), model.SiteLeboncoin)
	require.NoError(t, err)
	assert.Equal(t, []float64{12500, 9800}, prices)

	prices, err = ParsePrices([]byte(`{"items":[{"price": 100},{"price": 0},{"price": 300}]}`), model.SiteLeboncoin)
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 100}, prices)

	prices, err = ParsePrices([]byte("<html></html>"), model.SiteLacentrale)
	require.NoError(t, err)
	assert.Empty(t, prices)

	_, err = ParsePrices(nil, model.Site("x"))
	assert.True(t, errors.Is(err, model.ErrUnknownSource))
}
