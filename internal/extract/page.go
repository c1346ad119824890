package extract

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/normalize"
)

// SourcePage is a vehicle read from an auction detail page or list card.
type SourcePage struct {
	Vehicle      model.SourceVehicle `json:"vehicle"`
	Registration string              `json:"registration,omitempty"` // yyyy-mm-dd
	VIN          string              `json:"vin,omitempty"`
	VehicleType  string              `json:"vehicle_type,omitempty"`
	BodyType     string              `json:"body_type,omitempty"`
	EngineSize   string              `json:"engine_size,omitempty"`
	CO2          string              `json:"co2,omitempty"`
	Attributes   Attributes          `json:"attributes"`
}

// CardAttributes are the loose fields found in list-card text.
type CardAttributes struct {
	Mileage      int
	Year         int
	FuelType     model.FuelType
	Transmission model.Transmission
}

var (
	titleSelectors     = []string{"h1", ".vehicle-title", `[class*="titre"]`}
	cardSelectors      = []string{`article[class*="vehicle"]`, `div[class*="vehicle-card"]`, `div[class*="lot"]`, `a[href*="/voiture-occasion/"]`, "[data-vehicle]", ".vehicle-item", ".lot-item"}
	cardTitleSelectors = []string{"h2", "h3", "h4", ".title", `[class*="title"]`}
	cardPriceSelectors = []string{`[class*="price"]`, ".prix", `[class*="montant"]`}

	currentBidRe   = regexp.MustCompile(`ENCHERE\s+COURANTE\s*:\s*([\d ]+)\s*€`)
	startingBidRe  = regexp.MustCompile(`MISE\s+A\s+PRIX\s*:\s*([\d ]+)\s*€`)
	energyRe       = regexp.MustCompile(`ENERGIE\s*:\s*([A-Z]+)`)
	registrationRe = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	mileageRe      = regexp.MustCompile(`(\d{1,3}(?:[ .]\d{3})+|\d+)\s?KM\b`)
	registeredRe   = regexp.MustCompile(`(?:1ERE MISE|MISE EN CIRCULATION)\D*?(\d{4})`)
	yearRe         = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	euroRe         = regexp.MustCompile(`(\d[\d ]*)\s*€`)
	firstIntRe     = regexp.MustCompile(`\d+`)
	automaticRe    = regexp.MustCompile(`\b(AUTOMATIQUE|BVA|EAT\d|EDC|DSG)\b`)
	manualRe       = regexp.MustCompile(`\b(MANUELLE|BVM)\b`)
)

// ParseCardText reads mileage, year, fuel and gearbox from loose card text.
func ParseCardText(text string) CardAttributes {
	folded := fold(text)
	var c CardAttributes
	if m := mileageRe.FindStringSubmatch(folded); m != nil {
		c.Mileage = digitsOf(m[1])
	}
	if m := registeredRe.FindStringSubmatch(folded); m != nil {
		if y, _ := strconv.Atoi(m[1]); model.PlausibleYear(y) {
			c.Year = y
		}
	}
	if c.Year == 0 {
		for _, m := range yearRe.FindAllString(folded, -1) {
			if y, _ := strconv.Atoi(m); model.PlausibleYear(y) {
				c.Year = y
				break
			}
		}
	}
	c.FuelType = model.FuelUnknown
	for _, fw := range fuelWords {
		if fw.re.MatchString(folded) {
			c.FuelType = fw.fuel
			break
		}
	}
	switch {
	case automaticRe.MatchString(folded):
		c.Transmission = model.TransmissionAutomatic
	case manualRe.MatchString(folded):
		c.Transmission = model.TransmissionManual
	default:
		c.Transmission = model.TransmissionUnknown
	}
	return c
}

// ParseSourcePage reads the vehicle on an auction detail page. Brand and model
// come from the heading and are overridden by the characteristics table.
func ParseSourcePage(html []byte, pageURL string) (*SourcePage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse source page")
	}

	p := &SourcePage{Vehicle: model.SourceVehicle{URL: pageURL}}
	v := &p.Vehicle
	title := TextFromSelectors(doc.Selection, titleSelectors...)
	if split, ok := SplitBrandModel(title); ok {
		v.Brand, v.Model, v.Trim = split.Brand, split.Model, split.Remainder
	}

	var energy, gearbox string
	var tablePrice float64
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := normalize.Text(cells.Eq(0).Text())
		value := strings.TrimSpace(spaceReplacer.Replace(cells.Eq(1).Text()))
		switch {
		case strings.Contains(label, "marque"):
			v.Brand = value
		case strings.Contains(label, "modele"):
			v.Model = value
		case strings.Contains(label, "finition"):
			v.Trim = value
		case strings.Contains(label, "kilometrage"):
			v.Mileage = FirstInt(value)
		case strings.Contains(label, "mise en circulation"):
			if m := registrationRe.FindStringSubmatch(value); m != nil {
				v.Year, _ = strconv.Atoi(m[3])
				p.Registration = m[3] + "-" + m[2] + "-" + m[1]
			}
		case strings.Contains(label, "energie"):
			energy = value
		case strings.Contains(label, "numero de serie"), strings.Contains(label, "immatriculation"):
			p.VIN = value
		case strings.Contains(label, "boite de vitesse"):
			gearbox = value
		case label == "type":
			p.VehicleType = value
		case strings.Contains(label, "carrosserie"):
			p.BodyType = value
		case strings.Contains(label, "cylindree"):
			p.EngineSize = value
		case strings.Contains(label, "co2"):
			p.CO2 = value
		case strings.Contains(label, "prix"):
			if tablePrice == 0 {
				tablePrice = float64(FirstInt(value))
			}
		}
	})

	pageText := fold(doc.Find("body").Text())
	switch {
	case currentBidRe.MatchString(pageText):
		v.ListedPrice = float64(digitsOf(currentBidRe.FindStringSubmatch(pageText)[1]))
	case startingBidRe.MatchString(pageText):
		v.ListedPrice = float64(digitsOf(startingBidRe.FindStringSubmatch(pageText)[1]))
	default:
		v.ListedPrice = tablePrice
	}
	if v.Mileage == 0 {
		if m := mileageRe.FindStringSubmatch(pageText); m != nil {
			v.Mileage = digitsOf(m[1])
		}
	}
	if energy == "" {
		if m := energyRe.FindStringSubmatch(pageText); m != nil {
			energy = m[1]
		}
	}
	v.FuelType = model.ParseFuelType(energy)
	v.Transmission = model.ParseTransmission(gearbox)

	text := title
	if !strings.Contains(title, v.Trim) {
		text = strings.TrimSpace(title + " " + v.Trim)
	}
	p.Attributes = ExtractAttributes(text, v.Model)
	if !v.FuelType.Known() {
		v.FuelType = p.Attributes.FuelType
	}
	if v.Transmission == model.TransmissionUnknown || v.Transmission == "" {
		v.Transmission = p.Attributes.Transmission
	}
	return p, nil
}

// ParseSourceCards reads every vehicle card on an auction list page. The first
// card selector that matches anything wins.
func ParseSourceCards(html []byte, baseURL string) ([]SourcePage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse source cards")
	}

	var cards *goquery.Selection
	for _, sel := range cardSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return nil, nil
	}

	var out []SourcePage
	cards.Each(func(_ int, card *goquery.Selection) {
		text := card.Text()
		title := TextFromSelectors(card, cardTitleSelectors...)
		split, ok := SplitBrandModel(title)
		if !ok {
			return
		}
		attrs := ParseCardText(text)
		p := SourcePage{Vehicle: model.SourceVehicle{
			Brand:        split.Brand,
			Model:        split.Model,
			Trim:         split.Remainder,
			FuelType:     attrs.FuelType,
			Transmission: attrs.Transmission,
			Year:         attrs.Year,
			Mileage:      attrs.Mileage,
			ListedPrice:  cardPrice(card, text),
			URL:          cardLink(card, baseURL),
		}}
		p.Attributes = ExtractAttributes(title, split.Model)
		out = append(out, p)
	})
	return out, nil
}

// Extract builds a source vehicle from free text. The vehicle trim is the full
// finition after the model; the recognised trim name is only in Attributes.
// It fails with ErrIncompleteInput when no brand and model can be read.
func Extract(text string) (model.SourceVehicle, Attributes, error) {
	a := ExtractAttributes(text, "")
	if a.Brand == "" || a.Model == "" {
		return model.SourceVehicle{}, a, model.Errorf(model.ErrIncompleteInput, "no brand and model in %q", text)
	}
	return model.SourceVehicle{
		Brand:        a.Brand,
		Model:        a.Model,
		Trim:         a.Remainder,
		FuelType:     a.FuelType,
		Transmission: a.Transmission,
		Year:         a.Year,
		Mileage:      a.Mileage,
	}, a, nil
}

func cardPrice(card *goquery.Selection, text string) float64 {
	if priceText := TextFromSelectors(card, cardPriceSelectors...); priceText != "" {
		if n := FirstInt(priceText); n > 0 {
			return float64(n)
		}
	}
	// Largest euro amount on the card is usually the headline price.
	var best int
	for _, m := range euroRe.FindAllStringSubmatch(fold(text), -1) {
		if n := digitsOf(m[1]); n > best {
			best = n
		}
	}
	return float64(best)
}

func cardLink(card *goquery.Selection, baseURL string) string {
	href, ok := card.Attr("href")
	if !ok {
		href, ok = card.Find(`a[href*="/voiture-occasion/"]`).First().Attr("href")
	}
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
}

// TextFromSelectors returns the trimmed text of the first selector that
// matches with content under sel.
func TextFromSelectors(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(sel.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// FirstInt strips whitespace, so "12 500 €" reads as 12500, and returns the
// first digit run, or 0.
func FirstInt(s string) int {
	s = strings.Join(strings.Fields(spaceReplacer.Replace(s)), "")
	m := firstIntRe.FindString(s)
	n, _ := strconv.Atoi(m)
	return n
}

// digitsOf concatenates every digit in s.
func digitsOf(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, _ := strconv.Atoi(b.String())
	return n
}
