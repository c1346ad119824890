// Package matcher scores scraped listings against a source vehicle.
package matcher

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/config"
	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/normalize"
)

// Score component names recorded on each ScoredCandidate.
const (
	ComponentBase        = "base"
	ComponentFuel        = "fuel"
	ComponentYear        = "year"
	ComponentMileage     = "mileage"
	ComponentFuelLiteral = "fuel_literal"
)

// fuelKeywords holds normalized synonyms per fuel family, matched as
// substrings of the normalized title so glued codes like "dci90" count.
// Keywords of shortWordLen letters or fewer must be whole words.
var fuelKeywords = map[model.FuelType][]string{
	model.FuelDiesel:   {"diesel", "dci", "hdi", "bluehdi", "tdi", "crdi", "cdti", "tdci", "multijet"},
	model.FuelPetrol:   {"essence", "tce", "tsi", "vti", "puretech", "tfsi", "ecoboost"},
	model.FuelHybrid:   {"hybrid", "hybride", "etech", "hsd"},
	model.FuelElectric: {"electric", "electrique", "ev"},
	model.FuelLPG:      {"gpl", "lpg", "bifuel"},
}

const shortWordLen = 2

func hasFuelKeyword(title, kw string) bool {
	if len(kw) <= shortWordLen {
		return normalize.ContainsWord(title, kw)
	}
	return strings.Contains(title, kw)
}

// Matcher scores candidates with a fixed rule set.
type Matcher struct {
	cfg     config.MatcherConfig
	generic map[string]bool
}

// New validates cfg and returns a Matcher.
func New(cfg config.MatcherConfig) (*Matcher, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	generic := make(map[string]bool, len(cfg.GenericWords))
	for _, w := range cfg.GenericWords {
		generic[normalize.Text(w)] = true
	}
	return &Matcher{cfg: cfg, generic: generic}, nil
}

// Query is a source vehicle prepared for matching.
type Query struct {
	Source    model.SourceVehicle
	Brand     string
	Model     string // normalized, generic words removed
	ModelWord string // text a title must contain
}

// Prepare normalizes the source vehicle. It fails with ErrIncompleteInput when
// brand or model is missing.
func (m *Matcher) Prepare(src model.SourceVehicle) (Query, error) {
	if err := src.Validate(); err != nil {
		return Query{}, eris.Wrap(err, "matcher: source vehicle")
	}
	q := Query{Source: src, Brand: normalize.Text(src.Brand), Model: m.CleanModel(src.Model)}
	q.ModelWord = mainWord(q.Model)
	if q.ModelWord == "" {
		// Model made only of generic words: fall back to the full name.
		q.ModelWord = mainWord(normalize.Text(src.Model))
	}
	return q, nil
}

// CleanModel normalizes a model name and drops generic body-style words.
func (m *Matcher) CleanModel(modelName string) string {
	var kept []string
	for _, tok := range strings.Fields(normalize.Text(modelName)) {
		if !m.generic[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// mainWord returns the first token longer than two characters, or the whole
// text when there is none.
func mainWord(s string) string {
	for _, tok := range strings.Fields(s) {
		if len(tok) > 2 {
			return tok
		}
	}
	return s
}

// Score rates one candidate. ok is false when the candidate is hard rejected
// for missing the brand or the main model word.
func (m *Matcher) Score(q Query, c model.CandidateListing) (score int, components map[string]int, ok bool) {
	title := normalize.Text(c.Title)
	if !strings.Contains(title, q.Brand) || !strings.Contains(title, q.ModelWord) {
		return 0, nil, false
	}

	components = map[string]int{ComponentBase: m.cfg.BaseScore}
	src := q.Source
	fuel := src.Fuel()

	if fuel.Known() {
		components[ComponentFuel] = m.cfg.FuelMismatch
		for _, kw := range fuelKeywords[fuel] {
			if hasFuelKeyword(title, kw) {
				components[ComponentFuel] = m.cfg.FuelMatch
				break
			}
		}
	}

	if src.Year > 0 && c.Year > 0 {
		switch abs(src.Year - c.Year) {
		case 0:
			components[ComponentYear] = m.cfg.YearExact
		case 1:
			components[ComponentYear] = m.cfg.YearOff1
		case 2:
			components[ComponentYear] = m.cfg.YearOff2
		}
	}

	if src.Mileage > 0 && c.Mileage > 0 {
		switch d := abs(src.Mileage - c.Mileage); {
		case d <= m.cfg.MileageNearKm:
			components[ComponentMileage] = m.cfg.MileageNear
		case d <= m.cfg.MileageMidKm:
			components[ComponentMileage] = m.cfg.MileageMid
		case d <= m.cfg.MileageFarKm:
			components[ComponentMileage] = m.cfg.MileageFar
		}
	}

	// Stacks with the synonym check above.
	if fuel.Known() && strings.Contains(title, fuel.Label()) {
		components[ComponentFuelLiteral] = m.cfg.FuelLiteralBonus
	}

	for _, p := range components {
		score += p
	}
	return score, components, true
}

// MatchAndScore scores every candidate, drops hard rejects and those under the
// minimum score, and returns survivors best first. Equal scores keep input
// order. Ranks start at 1.
func (m *Matcher) MatchAndScore(src model.SourceVehicle, candidates []model.CandidateListing) ([]model.ScoredCandidate, error) {
	q, err := m.Prepare(src)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("brand", q.Brand), zap.String("model_word", q.ModelWord))

	var rejected int
	out := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score, components, ok := m.Score(q, c)
		if !ok {
			rejected++
			continue
		}
		log.Debug("matcher: scored candidate",
			zap.String("title", c.Title),
			zap.Int("score", score),
			zap.Any("components", components),
		)
		if score < m.cfg.MinScore {
			continue
		}
		out = append(out, model.ScoredCandidate{CandidateListing: c, Score: score, Components: components})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].Rank = i + 1
	}

	log.Info("matcher: scored candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("rejected", rejected),
		zap.Int("matched", len(out)),
	)
	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
