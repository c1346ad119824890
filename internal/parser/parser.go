// Package parser converts scraped marketplace payloads into candidate listings.
package parser

import (
	"bytes"
	"errors"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/model"
)

// Strategy names recorded on each listing.
const (
	StrategyStructured = "structured"
	StrategyMarkup     = "markup"
	StrategyRegex      = "regex"
)

// Parser parses payloads for the supported marketplaces.
type Parser struct {
	baseURLs map[model.Site]string
}

// New creates a Parser. baseURLs overrides the default marketplace roots used
// to absolutize ad links; nil keeps the defaults.
func New(baseURLs map[model.Site]string) *Parser {
	return &Parser{baseURLs: baseURLs}
}

var defaultParser = New(nil)

// Parse converts payload using the default marketplace roots.
func Parse(payload []byte, site model.Site) ([]model.CandidateListing, error) {
	return defaultParser.Parse(payload, site)
}

// ParsePrices returns listing prices using the default marketplace roots.
func ParsePrices(payload []byte, site model.Site) ([]float64, error) {
	return defaultParser.ParsePrices(payload, site)
}

// Parse converts an HTML page or a raw JSON payload into listings. Strategies
// run in order: embedded structured data, card markup, then a positional regex
// scan. Only listings with a title and a positive price are kept. It fails with
// ErrNoListingsFound when every strategy comes up empty.
func (p *Parser) Parse(payload []byte, site model.Site) ([]model.CandidateListing, error) {
	prof, ok := profiles[site]
	if !ok {
		return nil, model.Errorf(model.ErrUnknownSource, "parser: unknown site %q", site)
	}
	baseURL := p.baseURL(prof)
	log := zap.L().With(zap.String("site", string(site)), zap.Int("payload_bytes", len(payload)))

	var doc *goquery.Document
	var blocks []gjson.Result
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && gjson.ValidBytes(trimmed) {
		blocks = append(blocks, gjson.ParseBytes(trimmed))
	} else if d, err := goquery.NewDocumentFromReader(bytes.NewReader(payload)); err == nil {
		doc = d
		blocks = scriptBlocks(doc, prof.Scripts)
	}

	if out := prof.structured(blocks, baseURL); len(out) > 0 {
		log.Debug("parser: structured data", zap.Int("listings", len(out)))
		return out, nil
	}
	if doc != nil {
		if out := prof.markup(doc, baseURL); len(out) > 0 {
			log.Debug("parser: card markup", zap.Int("listings", len(out)))
			return out, nil
		}
	}
	if out := prof.fallback(string(payload)); len(out) > 0 {
		log.Warn("parser: regex fallback", zap.Int("listings", len(out)))
		return out, nil
	}
	return nil, model.Errorf(model.ErrNoListingsFound, "parser: no listings on %s page", site)
}

// ParsePrices returns the positive prices on a results page, highest first.
// When no listing can be parsed it scans every "price" value in the payload.
// An empty result is not an error.
func (p *Parser) ParsePrices(payload []byte, site model.Site) ([]float64, error) {
	listings, err := p.Parse(payload, site)
	if err != nil {
		if errors.Is(err, model.ErrNoListingsFound) {
			return scanPrices(string(payload)), nil
		}
		return nil, err
	}
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Price > 0 {
			prices = append(prices, l.Price)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	return prices, nil
}

func (p *Parser) baseURL(prof profile) string {
	if u, ok := p.baseURLs[prof.Site]; ok && u != "" {
		return u
	}
	return prof.BaseURL
}

func scriptBlocks(doc *goquery.Document, selectors []string) []gjson.Result {
	var out []gjson.Result
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			raw := bytes.TrimSpace([]byte(s.Text()))
			if gjson.ValidBytes(raw) {
				out = append(out, gjson.ParseBytes(raw))
			}
		})
	}
	return out
}
