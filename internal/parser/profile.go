package parser

import (
	"github.com/tidwall/gjson"

	"github.com/sells-group/resale-cli/internal/model"
)

// locator finds the ads array inside one structured block. ok is false when
// the path is absent or empty.
type locator func(block gjson.Result) (ads []gjson.Result, ok bool)

// itemMapper turns one structured ad into a listing.
type itemMapper func(ad gjson.Result, baseURL string) model.CandidateListing

// fieldSelectors lists selectors per field; the first one with text wins.
type fieldSelectors struct {
	Title   []string
	Price   []string
	Mileage []string
	Year    []string
}

// profile describes how one marketplace embeds its listings.
type profile struct {
	Site    model.Site
	BaseURL string

	// Scripts holds selectors of script tags carrying structured blocks.
	Scripts  []string
	Locators []locator
	Map      itemMapper

	// Cards are tried one at a time; the first that matches any element wins.
	Cards  []string
	Fields fieldSelectors

	// FallbackTitleKey is the JSON key paired with "price" by the regex scan.
	FallbackTitleKey string
	FallbackURL      string
}

func path(p string) locator {
	return func(block gjson.Result) ([]gjson.Result, bool) {
		r := block.Get(p)
		if !r.IsArray() {
			return nil, false
		}
		ads := r.Array()
		return ads, len(ads) > 0
	}
}

// bareArray accepts a block that is itself the ads array.
func bareArray(block gjson.Result) ([]gjson.Result, bool) {
	if !block.IsArray() {
		return nil, false
	}
	ads := block.Array()
	return ads, len(ads) > 0
}

var profiles = map[model.Site]profile{
	model.SiteLeboncoin: {
		Site:    model.SiteLeboncoin,
		BaseURL: "https://www.leboncoin.fr",
		Scripts: []string{"script#__NEXT_DATA__"},
		Locators: []locator{
			path("props.pageProps.searchData.ads"),
			path("props.pageProps.ads"),
			path("props.initialState.ads"),
			path("ads"),
			path("listings"),
			bareArray,
		},
		Map:   mapLeboncoinAd,
		Cards: []string{`[data-qa-id="aditem_container"]`, `article[data-test-id="ad"]`, `a[data-test-id="ad"]`},
		Fields: fieldSelectors{
			Title: []string{`[data-qa-id="aditem_title"]`, `[data-test-id="adcard-title"]`, "p[title]", "h2"},
			Price: []string{`[data-qa-id="aditem_price"]`, `[data-test-id="price"]`, `[class*="price"]`},
		},
		FallbackTitleKey: "subject",
		FallbackURL:      "https://www.leboncoin.fr/voitures",
	},
	model.SiteLacentrale: {
		Site:    model.SiteLacentrale,
		BaseURL: "https://www.lacentrale.fr",
		Scripts: []string{`script[type="application/ld+json"]`},
		Locators: []locator{
			path("itemListElement.#.item"),
			path("listings"),
			path("hits"),
			bareArray,
		},
		Map:   mapLacentraleItem,
		Cards: []string{".searchCard", `[class*="vehicleCard"]`, "article", ".adLineContainer"},
		Fields: fieldSelectors{
			Title:   []string{".vehicleTitle", "h3", ".ad-title", `[class*="title"]`},
			Price:   []string{".priceValue", ".price", `[class*="price"]`},
			Mileage: []string{".mileage", `[class*="mileage"]`},
			Year:    []string{".year", `[class*="year"]`},
		},
		FallbackTitleKey: "title",
		FallbackURL:      "https://www.lacentrale.fr/listing",
	},
}

// BaseURL returns the marketplace root used to absolutize ad links.
func BaseURL(site model.Site) string {
	return profiles[site].BaseURL
}
