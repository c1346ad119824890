package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/resale-cli/internal/normalize"
)

// Split is the result of splitting a title on the brand dictionary.
type Split struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Remainder string `json:"remainder,omitempty"`
}

// tokenRunRe is the leading word run of a title token; punctuation after it
// ends the model.
var tokenRunRe = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}-]*`)

// token is one title field with its leading word run.
type token struct {
	field  string
	run    string
	folded string
}

func (t token) cut() bool { return len(t.run) < len(t.field) }

// whole reports whether the token is its run plus at most closing punctuation,
// so "Estate," qualifies and "1.5" does not.
func (t token) whole() bool {
	return t.run != "" && strings.Trim(t.field[len(t.run):], ",;:.!?)") == ""
}

// SplitBrandModel finds the first dictionary brand in title. The model is the
// next one or two word runs, stopping at punctuation; the rest of the title is
// the trim remainder. A brand that is not followed by a usable model token is
// skipped in favour of the next dictionary entry. ok is false when no brand
// matches.
func SplitBrandModel(title string) (Split, bool) {
	fields := strings.Fields(spaceReplacer.Replace(title))
	tokens := make([]token, len(fields))
	runs := make([]string, len(fields))
	for i, f := range fields {
		run := tokenRunRe.FindString(f)
		tokens[i] = token{field: f, run: run, folded: normalize.Fold(run)}
		runs[i] = tokens[i].folded
	}

	for _, b := range brands {
		for _, form := range append([]string{b.Name}, b.Aliases...) {
			at := indexTokens(runs, strings.Fields(form))
			if at < 0 {
				continue
			}
			rest := at + len(strings.Fields(form))
			n := modelLength(tokens[rest:])
			if n == 0 {
				continue
			}
			words := make([]string, n)
			for i := range n {
				words[i] = tokens[rest+i].run
			}
			last := tokens[rest+n-1]
			tail := append([]string{last.field[len(last.run):]}, fields[rest+n:]...)
			return Split{
				Brand:     b.Name,
				Model:     strings.Join(words, " "),
				Remainder: strings.TrimLeft(strings.Join(tail, " "), " ,.;:/|()-"),
			}, true
		}
	}
	return Split{}, false
}

// modelLength returns how many leading tokens form the model: zero when the
// first token has no word run, one when punctuation follows it, two when the
// second one also has a run and is not an engine designator or trim name.
func modelLength(tokens []token) int {
	if len(tokens) == 0 || tokens[0].run == "" {
		return 0
	}
	if tokens[0].cut() || len(tokens) < 2 || !tokens[1].whole() {
		return 1
	}
	second := tokens[1].folded
	if _, ok := engineFuel[second]; ok {
		return 1
	}
	if isTrim(second) {
		return 1
	}
	return 2
}

func isTrim(word string) bool {
	n := normalize.Text(word)
	for _, t := range trims {
		if t.norm == n {
			return true
		}
	}
	return false
}

func indexTokens(haystack, needle []string) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, n := range needle {
			if haystack[i+j] != n {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
