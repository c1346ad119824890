package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sells-group/resale-cli/internal/extract"
	"github.com/sells-group/resale-cli/internal/model"
)

var (
	kmValueRe = regexp.MustCompile(`(?i)\d+\s*km`)
	bodyKmRe  = regexp.MustCompile(`(?i)(\d+\s*\d+)\s*km`)
	bodyYear  = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	digitRun  = regexp.MustCompile(`\d+`)
)

// structured returns the usable listings of the first locator that finds a
// non-empty ads array in any block.
func (p profile) structured(blocks []gjson.Result, baseURL string) []model.CandidateListing {
	for _, block := range blocks {
		for _, locate := range p.Locators {
			ads, ok := locate(block)
			if !ok {
				continue
			}
			var out []model.CandidateListing
			for _, ad := range ads {
				l := p.Map(ad, baseURL)
				l.Site = p.Site
				l.Strategy = StrategyStructured
				if l.Usable() {
					out = append(out, l)
				}
			}
			return out
		}
	}
	return nil
}

func mapLeboncoinAd(ad gjson.Result, baseURL string) model.CandidateListing {
	l := model.CandidateListing{
		Title:   firstString(ad, "subject", "title"),
		Price:   priceOf(ad.Get("price")),
		Mileage: leboncoinMileage(ad),
		Year:    leboncoinYear(ad),
	}
	if u := ad.Get("url").String(); u != "" {
		l.URL = absolute(baseURL, u)
	}
	return l
}

func leboncoinMileage(ad gjson.Result) int {
	for _, attr := range ad.Get("attributes").Array() {
		key := attr.Get("key").String()
		value := attr.Get("value").String()
		if key == "mileage" || key == "kilometrage" {
			return extract.FirstInt(value)
		}
		if attr.Get("value").Type == gjson.String && kmValueRe.MatchString(value) {
			return extract.FirstInt(value)
		}
	}
	if m := bodyKmRe.FindString(ad.Get("body").String()); m != "" {
		return extract.FirstInt(m)
	}
	return 0
}

func leboncoinYear(ad gjson.Result) int {
	for _, attr := range ad.Get("attributes").Array() {
		switch attr.Get("key").String() {
		case "regdate", "year", "annee":
			if y := leadingInt(attr.Get("value").String()); model.PlausibleYear(y) {
				return y
			}
		}
	}
	text := ad.Get("body").String() + " " + ad.Get("subject").String()
	if m := bodyYear.FindString(text); m != "" {
		if y, _ := strconv.Atoi(m); model.PlausibleYear(y) {
			return y
		}
	}
	return 0
}

func mapLacentraleItem(item gjson.Result, baseURL string) model.CandidateListing {
	l := model.CandidateListing{
		Title: firstString(item, "name", "title"),
		Price: priceOf(firstExisting(item, "offers.price", "price")),
	}
	l.Mileage = int(priceOf(firstExisting(item, "mileageFromOdometer.value", "mileage")))
	if y := leadingInt(firstString(item, "vehicleModelDate", "productionDate", "year")); model.PlausibleYear(y) {
		l.Year = y
	}
	if u := firstString(item, "url", "link"); u != "" {
		l.URL = absolute(baseURL, u)
	}
	return l
}

// priceOf reads a numeric field that may be a number, a numeric string such as
// "12 500 €" or an array whose first element is the price.
func priceOf(r gjson.Result) float64 {
	if r.IsArray() {
		arr := r.Array()
		if len(arr) == 0 {
			return 0
		}
		r = arr[0]
	}
	switch r.Type {
	case gjson.Number:
		return r.Float()
	case gjson.String:
		return float64(extract.FirstInt(r.String()))
	}
	return 0
}

func firstString(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(r.Get(k).String()); s != "" {
			return s
		}
	}
	return ""
}

func firstExisting(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// leadingInt parses the leading digit run of s, e.g. "2019-05" -> 2019.
func leadingInt(s string) int {
	n, _ := strconv.Atoi(digitRun.FindString(strings.TrimSpace(s)))
	return n
}

func absolute(baseURL, u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(u, "/")
}
