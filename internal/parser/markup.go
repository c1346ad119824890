package parser

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/resale-cli/internal/extract"
	"github.com/sells-group/resale-cli/internal/model"
)

// markup parses the cards of the first card selector that matches any
// element. Results from different selectors are never merged.
func (p profile) markup(doc *goquery.Document, baseURL string) []model.CandidateListing {
	for _, sel := range p.Cards {
		cards := doc.Find(sel)
		if cards.Length() == 0 {
			continue
		}
		var out []model.CandidateListing
		cards.Each(func(_ int, card *goquery.Selection) {
			l := p.card(card, baseURL)
			if l.Usable() {
				out = append(out, l)
			}
		})
		return out
	}
	return nil
}

func (p profile) card(card *goquery.Selection, baseURL string) model.CandidateListing {
	l := model.CandidateListing{
		Title:    extract.TextFromSelectors(card, p.Fields.Title...),
		Site:     p.Site,
		Strategy: StrategyMarkup,
	}
	if price := extract.TextFromSelectors(card, p.Fields.Price...); price != "" {
		l.Price = float64(extract.FirstInt(price))
	}
	if km := extract.TextFromSelectors(card, p.Fields.Mileage...); km != "" {
		l.Mileage = extract.FirstInt(km)
	}
	if y := extract.TextFromSelectors(card, p.Fields.Year...); y != "" {
		if m := bodyYear.FindString(y); m != "" {
			if year, _ := strconv.Atoi(m); model.PlausibleYear(year) {
				l.Year = year
			}
		}
	}
	if l.Mileage == 0 || l.Year == 0 {
		loose := extract.ParseCardText(card.Text())
		if l.Mileage == 0 {
			l.Mileage = loose.Mileage
		}
		if l.Year == 0 {
			l.Year = loose.Year
		}
	}

	href, ok := card.Attr("href")
	if !ok {
		href, ok = card.Find("a").First().Attr("href")
	}
	if ok && href != "" {
		l.URL = absolute(baseURL, href)
	}
	return l
}
