package model

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Error kinds surfaced by the valuation pipeline. Callers test with errors.Is.
var (
	ErrIncompleteInput = eris.New("incomplete input")
	ErrUnknownSource   = eris.New("unknown source")
	ErrFetchFailed     = eris.New("fetch failed")
	ErrNoListingsFound = eris.New("no listings found")
	ErrNoMatchesFound  = eris.New("no matches found")
	ErrNoValidPrices   = eris.New("no valid prices")
	ErrNoPricesFound   = eris.New("no prices found")
)

var kinds = []struct {
	err     error
	code    string
	message string
}{
	{ErrIncompleteInput, "incomplete_input", "Marque et modèle requis pour lancer la recherche."},
	{ErrUnknownSource, "unknown_source", "Site de recherche non reconnu."},
	{ErrFetchFailed, "fetch_failed", "Impossible de contacter le site de recherche, réessayez plus tard."},
	{ErrNoListingsFound, "no_listings_found", "Aucune annonce trouvée sur le site de recherche."},
	{ErrNoMatchesFound, "no_matches_found", "Aucune annonce similaire trouvée, élargissez les critères."},
	{ErrNoValidPrices, "no_valid_prices", "Aucun prix exploitable parmi les annonces similaires."},
	{ErrNoPricesFound, "no_prices_found", "Aucun prix trouvé."},
}

// Errorf wraps kind with a formatted detail message.
func Errorf(kind error, format string, args ...any) error {
	return eris.Wrapf(kind, format, args...)
}

// ErrorKind returns the stable code of the first error kind err matches, or
// "internal" when it matches none.
func ErrorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return "internal"
}

// UserMessage returns the human-readable message for err's kind.
func UserMessage(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.message
		}
	}
	return "Erreur inattendue lors de l'analyse."
}
