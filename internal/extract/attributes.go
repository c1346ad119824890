// Package extract recovers structured vehicle attributes from free text and
// from auction pages.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/normalize"
)

const (
	minHorsepower = 45
	maxHorsepower = 1000
)

// Attributes are the fields recovered from a title or description. Zero values
// mean the field was not found.
type Attributes struct {
	Brand        string             `json:"brand,omitempty"`
	Model        string             `json:"model,omitempty"`
	Remainder    string             `json:"remainder,omitempty"`
	Trim         string             `json:"trim,omitempty"`
	EngineCode   string             `json:"engine_code,omitempty"`
	Horsepower   int                `json:"horsepower,omitempty"`
	FuelType     model.FuelType     `json:"fuel_type,omitempty"`
	Transmission model.Transmission `json:"transmission,omitempty"`
	Year         int                `json:"year,omitempty"`
	Mileage      int                `json:"mileage,omitempty"`
}

var (
	chRe     = regexp.MustCompile(`\b(\d{2,4})\s?CH\b`)
	cvRe     = regexp.MustCompile(`\b(\d{2,4})\s?CV\b`)
	numberRe = regexp.MustCompile(`\d+`)
	groupRe  = regexp.MustCompile(`^\d{3}\b`)
)

// Units that disqualify a bare number from being read as an output figure.
var nonPowerUnits = []string{"KW", "KM", "€", "EUR", "CC", "CM3", "G/KM", "KG"}

// ExtractAttributes parses text into structured fields. knownModel, when set,
// is used to reject trims and numbers that belong to the model name itself;
// otherwise the model found by the brand split is used.
func ExtractAttributes(text, knownModel string) Attributes {
	var a Attributes
	if split, ok := SplitBrandModel(text); ok {
		a.Brand = split.Brand
		a.Model = split.Model
		a.Remainder = split.Remainder
	}
	if knownModel == "" {
		knownModel = a.Model
	}

	folded := fold(text)
	a.Trim = Trim(text, knownModel)
	code, designator, power := engineCode(folded)
	a.EngineCode = code
	a.Horsepower = horsepower(folded, power, knownModel)

	card := ParseCardText(text)
	a.FuelType = card.FuelType
	if !a.FuelType.Known() {
		if f, ok := engineFuel[designator]; ok {
			a.FuelType = f
		}
	}
	a.Transmission = card.Transmission
	a.Year = card.Year
	a.Mileage = card.Mileage
	return a
}

// Trim returns the first trim name, longest first, that occurs as whole words
// in text but not in knownModel.
func Trim(text, knownModel string) string {
	nt := normalize.Text(text)
	nm := normalize.Text(knownModel)
	for _, t := range trims {
		if normalize.ContainsWord(nt, t.norm) && !normalize.ContainsWord(nm, t.norm) {
			return t.Name
		}
	}
	return ""
}

// EngineCode returns the first powertrain designator found in text, e.g.
// "BLUEHDI 130" or "320D".
func EngineCode(text string) string {
	code, _, _ := engineCode(fold(text))
	return code
}

// Horsepower returns the output figure found in text, or 0.
func Horsepower(text, knownModel string) int {
	folded := fold(text)
	_, _, power := engineCode(folded)
	return horsepower(folded, power, knownModel)
}

// engineCode returns the formatted code, the bare designator and the figure
// that follows it, if any.
func engineCode(folded string) (code, designator, power string) {
	for _, p := range enginePatterns {
		m := p.re.FindStringSubmatch(folded)
		if m == nil {
			continue
		}
		designator = m[1]
		code = designator
		if p.Power && len(m) > 2 && m[2] != "" {
			power = m[2]
			code = designator + " " + power
		}
		return code, designator, power
	}
	return "", "", ""
}

func horsepower(folded, enginePower, knownModel string) int {
	for _, re := range []*regexp.Regexp{chRe, cvRe} {
		for _, m := range re.FindAllStringSubmatch(folded, -1) {
			if n := atoiPower(m[1]); n > 0 {
				return n
			}
		}
	}
	if n := atoiPower(enginePower); n > 0 {
		return n
	}
	return standalonePower(folded, modelTokens(knownModel))
}

// standalonePower returns the first bare number in range that is not a model
// token and is not followed by a non-power unit or a thousands group.
func standalonePower(folded string, skip map[string]bool) int {
	for _, loc := range numberRe.FindAllStringIndex(folded, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && joined(folded[start-1]) {
			continue
		}
		if end < len(folded) && joined(folded[end]) {
			continue
		}
		digits := folded[start:end]
		if skip[digits] {
			continue
		}
		rest := strings.TrimLeft(folded[end:], " ")
		if groupRe.MatchString(rest) || hasUnit(rest) {
			continue
		}
		if n := atoiPower(digits); n > 0 {
			return n
		}
	}
	return 0
}

func hasUnit(rest string) bool {
	for _, u := range nonPowerUnits {
		if strings.HasPrefix(rest, u) {
			return true
		}
	}
	return false
}

// joined reports whether b glues a digit run to a neighbouring token.
func joined(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '.', b == ',', b == '-', b == '/':
		return true
	}
	return false
}

func atoiPower(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minHorsepower || n > maxHorsepower {
		return 0
	}
	return n
}

func modelTokens(knownModel string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(fold(knownModel)) {
		out[tok] = true
	}
	return out
}

var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\t", " ", "\n", " ", "\r", " ")

// fold replaces exotic spaces and returns uppercase unaccented text.
func fold(s string) string {
	return normalize.Fold(spaceReplacer.Replace(s))
}
