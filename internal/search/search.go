// Package search builds marketplace search URLs for a source vehicle.
package search

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/resale-cli/internal/config"
	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/normalize"
)

// Search filter windows around the source vehicle.
const (
	leboncoinYearTolerance  = 2
	leboncoinKmTolerance    = 30000
	lacentraleYearTolerance = 1
	lacentraleKmTolerance   = 20000
	narrowYearTolerance     = 2
	narrowKmTolerance       = 20000
	narrowTrimWords         = 10
	broadTrimWords          = 3
	categoryCars            = "2"
)

// ModelType selects which part of the vehicle name goes into a free-text query.
type ModelType string

const (
	ModelTrimThreeWords ModelType = "finitionThreeWords"
	ModelFull           ModelType = "full"
	ModelTwoWords       ModelType = "twoWords"
	ModelSimplified     ModelType = "simplified"
	ModelBrandOnly      ModelType = "brandOnly"
)

// Strategy describes a free-text search. A zero tolerance leaves that filter off.
type Strategy struct {
	ModelType     ModelType
	KmTolerance   int
	YearTolerance int
}

// BroadStrategy is the second leg of the margin estimate.
var BroadStrategy = Strategy{ModelType: ModelTrimThreeWords, KmTolerance: 20000, YearTolerance: 2}

// Builder builds search URLs against configurable site roots.
type Builder struct {
	leboncoin  string
	lacentrale string
	generic    map[string]bool
}

// New creates a Builder. genericWords are dropped from model names before the
// brand/model filter is built.
func New(sites config.SitesConfig, genericWords []string) *Builder {
	generic := make(map[string]bool, len(genericWords))
	for _, w := range genericWords {
		generic[normalize.Text(w)] = true
	}
	return &Builder{
		leboncoin:  strings.TrimRight(sites.Leboncoin.BaseURL, "/"),
		lacentrale: strings.TrimRight(sites.Lacentrale.BaseURL, "/"),
		generic:    generic,
	}
}

// CompareURL returns the structured listing search for site.
func (b *Builder) CompareURL(site model.Site, v model.SourceVehicle) (string, error) {
	switch site {
	case model.SiteLeboncoin:
		return b.leboncoinURL(v), nil
	case model.SiteLacentrale:
		return b.lacentraleURL(v), nil
	default:
		return "", model.Errorf(model.ErrUnknownSource, "search: site %q", site)
	}
}

func (b *Builder) leboncoinURL(v model.SourceVehicle) string {
	q := url.Values{}
	q.Set("category", categoryCars)

	brand := strings.ToUpper(strings.TrimSpace(v.Brand))
	if brand != "" {
		q.Set("u_car_brand", brand)
		if short := b.firstModelWord(v.Model); short != "" {
			q.Set("u_car_model", brand+"_"+capitalize(short))
		}
	}
	setVehicleFilters(q, v, leboncoinYearTolerance, leboncoinKmTolerance, CompareFuelCode)
	return b.leboncoin + "/recherche?" + q.Encode()
}

func (b *Builder) lacentraleURL(v model.SourceVehicle) string {
	q := url.Values{}
	q.Set("makesModelsCommercialNames", strings.TrimSpace(v.Brand)+":"+strings.TrimSpace(v.Model))
	if v.Mileage > 0 {
		q.Set("mileageMin", strconv.Itoa(max(0, v.Mileage-lacentraleKmTolerance)))
		q.Set("mileageMax", strconv.Itoa(v.Mileage+lacentraleKmTolerance))
	}
	if v.Year > 0 {
		q.Set("yearMin", strconv.Itoa(v.Year-lacentraleYearTolerance))
		q.Set("yearMax", strconv.Itoa(v.Year+lacentraleYearTolerance))
	}
	return b.lacentrale + "/listing?" + q.Encode()
}

// NarrowURL is the first margin leg: brand plus up to ten trim words.
func (b *Builder) NarrowURL(v model.SourceVehicle) string {
	q := url.Values{}
	q.Set("category", categoryCars)

	if brand := strings.TrimSpace(v.Brand); brand != "" {
		text := brand
		switch {
		case strings.TrimSpace(v.Trim) != "":
			text += " " + firstWords(v.Trim, narrowTrimWords)
		case strings.TrimSpace(v.Model) != "":
			text += " " + strings.TrimSpace(v.Model)
		}
		q.Set("text", text)
	}
	setVehicleFilters(q, v, narrowYearTolerance, narrowKmTolerance, FuelCode)
	return b.leboncoin + "/recherche?" + q.Encode()
}

// BroadURL builds a free-text leboncoin search following s.
func (b *Builder) BroadURL(v model.SourceVehicle, s Strategy) string {
	q := url.Values{}
	q.Set("category", categoryCars)

	if brand := strings.TrimSpace(v.Brand); brand != "" {
		q.Set("text", queryText(brand, v, s.ModelType))
	}
	setVehicleFilters(q, v, s.YearTolerance, s.KmTolerance, FuelCode)
	return b.leboncoin + "/recherche?" + q.Encode()
}

func queryText(brand string, v model.SourceVehicle, mt ModelType) string {
	if mt == ModelTrimThreeWords && strings.TrimSpace(v.Trim) != "" {
		return brand + " " + firstWords(v.Trim, broadTrimWords)
	}
	mdl := strings.TrimSpace(v.Model)
	if mdl == "" {
		return brand
	}
	switch mt {
	case ModelFull:
		return brand + " " + mdl
	case ModelTwoWords:
		return brand + " " + firstWords(mdl, 2)
	case ModelSimplified:
		return brand + " " + firstWords(mdl, 1)
	}
	return brand
}

// setVehicleFilters adds the year window, mileage window, fuel and gearbox.
func setVehicleFilters(q url.Values, v model.SourceVehicle, yearTol, kmTol int, fuelCode func(model.FuelType) string) {
	if yearTol > 0 && v.Year > 0 {
		q.Set("regdate", strconv.Itoa(v.Year-yearTol)+"-"+strconv.Itoa(v.Year+yearTol))
	}
	if kmTol > 0 && v.Mileage > 0 {
		q.Set("mileage", strconv.Itoa(max(0, v.Mileage-kmTol))+"-"+strconv.Itoa(v.Mileage+kmTol))
	}
	if code := fuelCode(v.Fuel()); code != "" {
		q.Set("fuel", code)
	}
	if code := GearboxCode(v.Gearbox()); code != "" {
		q.Set("gearbox", code)
	}
}

// firstModelWord drops generic body-style words and returns the first word left.
func (b *Builder) firstModelWord(modelName string) string {
	for _, w := range strings.Fields(modelName) {
		if !b.generic[normalize.Text(w)] {
			return w
		}
	}
	return ""
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + strings.ToLower(s[size:])
}
