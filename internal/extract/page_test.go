package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resale-cli/internal/model"
)

const detailPage = `<html><body>
<h1>CITROEN JUMPER FOURGON 30 L2H2 BLUEHDI 130</h1>
<table>
<tr><td>Kilométrage</td><td>85 000 km</td></tr>
<tr><td>Mise en circulation</td><td>15/03/2019</td></tr>
<tr><td>Énergie</td><td>GO</td></tr>
<tr><td>Boîte de vitesse</td><td>MANUELLE</td></tr>
<tr><td>Type</td><td>UTILITAIRES</td></tr>
<tr><td>Carrosserie</td><td>CTTE</td></tr>
<tr><td>Numéro de série</td><td>VF7YAAMFC12345678</td></tr>
</table>
<p>Enchère courante : 12 500 €</p>
<p>Mise à prix : 9 000 €</p>
</body></html>`

func TestParseSourcePage(t *testing.T) {
	t.Parallel()

	p, err := ParseSourcePage([]byte(detailPage), "https://auction.example/voiture-occasion/42")
	require.NoError(t, err)

	v := p.Vehicle
	assert.Equal(t, "CITROEN", v.Brand)
	assert.Equal(t, "JUMPER FOURGON", v.Model)
	assert.Equal(t, "30 L2H2 BLUEHDI 130", v.Trim)
	assert.Equal(t, 85000, v.Mileage)
	assert.Equal(t, 2019, v.Year)
	assert.Equal(t, model.FuelDiesel, v.FuelType)
	assert.Equal(t, model.TransmissionManual, v.Transmission)
	assert.Equal(t, 12500.0, v.ListedPrice)
	assert.Equal(t, "https://auction.example/voiture-occasion/42", v.URL)

	assert.Equal(t, "2019-03-15", p.Registration)
	assert.Equal(t, "UTILITAIRES", p.VehicleType)
	assert.Equal(t, "CTTE", p.BodyType)
	assert.Equal(t, "VF7YAAMFC12345678", p.VIN)
	assert.Equal(t, "BLUEHDI 130", p.Attributes.EngineCode)
	assert.Equal(t, 130, p.Attributes.Horsepower)
	require.NoError(t, v.Validate())
}

func TestParseSourcePage_PriceFallbacks(t *testing.T) {
	t.Parallel()

	starting := `<html><body><h1>RENAULT CLIO</h1><p>Mise à prix : 4 800 €</p></body></html>`
	p, err := ParseSourcePage([]byte(starting), "")
	require.NoError(t, err)
	assert.Equal(t, 4800.0, p.Vehicle.ListedPrice)

	table := `<html><body><h1>RENAULT CLIO</h1><table><tr><th>Prix de réserve</th><td>6 100 €</td></tr></table></body></html>`
	p, err = ParseSourcePage([]byte(table), "")
	require.NoError(t, err)
	assert.Equal(t, 6100.0, p.Vehicle.ListedPrice)
	assert.Equal(t, model.FuelUnknown, p.Vehicle.FuelType)
}

func TestParseSourcePage_TableOverridesHeading(t *testing.T) {
	t.Parallel()

	html := `<html><body><h1>Lot 17</h1><table>
<tr><td>Marque</td><td>PEUGEOT</td></tr>
<tr><td>Modèle</td><td>PARTNER</td></tr>
<tr><td>Finition</td><td>PREMIUM PACK</td></tr>
</table><p>Kilométrage total 120 500 KM</p></body></html>`
	p, err := ParseSourcePage([]byte(html), "")
	require.NoError(t, err)
	assert.Equal(t, "PEUGEOT", p.Vehicle.Brand)
	assert.Equal(t, "PARTNER", p.Vehicle.Model)
	assert.Equal(t, "PREMIUM PACK", p.Vehicle.Trim)
	assert.Equal(t, 120500, p.Vehicle.Mileage)
}

func TestParseSourceCards(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<div class="lot-card"><h3>RENAULT CLIO V 1.0 TCE 90 ZEN</h3><span class="lot-price">8 900 €</span>
<p>2020 - 32 000 km - Essence - Manuelle</p><a href="/voiture-occasion/123">Voir</a></div>
<div class="lot-card"><h3>Lot sans marque</h3></div>
</body></html>`

	cards, err := ParseSourceCards([]byte(html), "https://auction.example")
	require.NoError(t, err)
	require.Len(t, cards, 1)

	v := cards[0].Vehicle
	assert.Equal(t, "RENAULT", v.Brand)
	assert.Equal(t, "CLIO V", v.Model)
	assert.Equal(t, "1.0 TCE 90 ZEN", v.Trim)
	assert.Equal(t, 8900.0, v.ListedPrice)
	assert.Equal(t, 2020, v.Year)
	assert.Equal(t, 32000, v.Mileage)
	assert.Equal(t, model.FuelPetrol, v.FuelType)
	assert.Equal(t, model.TransmissionManual, v.Transmission)
	assert.Equal(t, "https://auction.example/voiture-occasion/123", v.URL)
	assert.Equal(t, "ZEN", cards[0].Attributes.Trim)
}

func TestParseSourceCards_NoCards(t *testing.T) {
	t.Parallel()

	cards, err := ParseSourceCards([]byte(`<html><body><p>rien</p></body></html>`), "")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestParseCardText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want CardAttributes
	}{
		{
			name: "full card",
			text: "Renault Clio 2019 - 45 000 km - Diesel - Manuelle",
			want: CardAttributes{Mileage: 45000, Year: 2019, FuelType: model.FuelDiesel, Transmission: model.TransmissionManual},
		},
		{
			name: "registration phrase wins",
			text: "1ère mise en circulation : 2017, vue 2020",
			want: CardAttributes{Year: 2017, FuelType: model.FuelUnknown, Transmission: model.TransmissionUnknown},
		},
		{
			name: "hybrid before petrol",
			text: "Toyota Yaris hybride essence automatique",
			want: CardAttributes{FuelType: model.FuelHybrid, Transmission: model.TransmissionAutomatic},
		},
		{
			name: "empty",
			text: "",
			want: CardAttributes{FuelType: model.FuelUnknown, Transmission: model.TransmissionUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseCardText(tt.text))
		})
	}
}

func TestFirstInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"12 500 €", 12500},
		{"85\u00a0000 km", 85000},
		{"45\u202f000\tkm", 45000},
		{"Prix : 9000", 9000},
		{"sans prix", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstInt(tt.in), tt.in)
	}
}

func TestTextFromSelectors(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><span class="empty"> </span><span class="price"> 8 900 € </span><span class="alt">7 000 €</span></div>`))
	require.NoError(t, err)

	assert.Equal(t, "8 900 €", TextFromSelectors(doc.Selection, ".missing", ".empty", ".price", ".alt"))
	assert.Empty(t, TextFromSelectors(doc.Selection, ".missing"))
	assert.Empty(t, TextFromSelectors(doc.Selection))
}
