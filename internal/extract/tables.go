package extract

import (
	"regexp"
	"sort"

	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/normalize"
)

// brand is a dictionary entry. Aliases are alternative spellings that resolve
// to Name, e.g. "MERCEDES-BENZ".
type brand struct {
	Name    string
	Aliases []string
}

// brands is checked in order; the first entry found in a title wins.
var brands = []brand{
	{Name: "RENAULT"},
	{Name: "PEUGEOT"},
	{Name: "CITROEN"},
	{Name: "VOLKSWAGEN", Aliases: []string{"VW"}},
	{Name: "BMW"},
	{Name: "MERCEDES", Aliases: []string{"MERCEDES-BENZ"}},
	{Name: "AUDI"},
	{Name: "TOYOTA"},
	{Name: "NISSAN"},
	{Name: "FORD"},
	{Name: "OPEL"},
	{Name: "FIAT"},
	{Name: "SEAT"},
	{Name: "SKODA"},
	{Name: "HYUNDAI"},
	{Name: "KIA"},
	{Name: "MAZDA"},
	{Name: "HONDA"},
	{Name: "VOLVO"},
	{Name: "LAND ROVER", Aliases: []string{"LAND-ROVER"}},
	{Name: "JAGUAR"},
	{Name: "PORSCHE"},
	{Name: "TESLA"},
	{Name: "DACIA"},
	{Name: "ALFA ROMEO", Aliases: []string{"ALFA-ROMEO"}},
	{Name: "JEEP"},
	{Name: "MINI"},
	{Name: "SMART"},
	{Name: "DS"},
	{Name: "MG"},
}

// Brands returns the brand dictionary names in match order.
func Brands() []string {
	out := make([]string, len(brands))
	for i, b := range brands {
		out[i] = b.Name
	}
	return out
}

var trimNames = []string{
	"GT LINE", "GT", "GTI", "RS LINE", "RS", "ST-LINE", "ST", "R-LINE", "S LINE",
	"M SPORT", "AMG LINE", "AVANTGARDE", "INTENS", "ZEN", "LIFE", "LIFE PLUS", "BUSINESS",
	"LIMITED", "EXPERIENCE", "EVOLUTION", "TECHNO", "ICONIC", "ESPRIT ALPINE", "INITIALE PARIS",
	"ALLURE", "ACTIVE", "ACTIVE BUSINESS", "ACCESS", "STYLE", "FELINE", "SHINE", "SHINE PACK",
	"FEEL", "FEEL PACK", "LIVE", "EXCLUSIVE", "C-SERIES", "HIGHLINE", "CONFORTLINE", "TRENDLINE",
	"CARAT", "TITANIUM", "VIGNALE", "TREND", "ELEGANCE", "DESIGN", "PREMIUM", "LOUNGE", "POP",
	"AMBIENTE", "ESSENTIAL", "PRESTIGE", "ULTIMATE", "N-CONNECTA", "TEKNA", "ACENTA", "VISIA",
	"STEPWAY", "COMFORT", "CONFORT", "DYNAMIC", "EXECUTIVE", "LUXURY", "SPORT", "URBAN",
}

// trim is a trim table entry with its normalized matching form.
type trim struct {
	Name string
	norm string
}

// trims holds trimNames sorted longest normalized form first, so "GT LINE" is
// tried before "GT".
var trims = func() []trim {
	out := make([]trim, 0, len(trimNames))
	for _, n := range trimNames {
		out = append(out, trim{Name: n, norm: normalize.Text(n)})
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].norm) > len(out[j].norm) })
	return out
}()

// enginePattern matches a powertrain designator in folded (uppercase,
// unaccented) text. When Power is set, group 2 holds the output figure that
// follows the designator.
type enginePattern struct {
	Family string
	re     *regexp.Regexp
	Power  bool
}

// enginePatterns is tried in order; brand families first, generic
// displacement patterns last.
var enginePatterns = []enginePattern{
	{Family: "psa", re: regexp.MustCompile(`\b(BLUEHDI|E-HDI|HDI|PURETECH|E-THP|THP|VTI)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "renault", re: regexp.MustCompile(`\b(ENERGY DCI|ENERGY TCE|BLUE DCI|DCI|TCE|SCE|E-TECH)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "vag", re: regexp.MustCompile(`\b(TFSI|TSI|TDI|FSI|E-HYBRID)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "ford", re: regexp.MustCompile(`\b(ECOBOOST|ECOBLUE|TDCI)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "fiat", re: regexp.MustCompile(`\b(MULTIJET|MULTIAIR|JTDM|JTD)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "opel", re: regexp.MustCompile(`\b(CDTI|ECOTEC)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "hyundai-kia", re: regexp.MustCompile(`\b(CRDI|T-GDI|GDI)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "toyota", re: regexp.MustCompile(`\b(D-4D|VVT-I|HSD)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "bmw-mercedes", re: regexp.MustCompile(`\b(\d{3}(?:CDI|D|I|E))\b`)},
	{Family: "mercedes", re: regexp.MustCompile(`\b(CDI|BLUETEC)(?:\s?(\d{2,3}))?\b`), Power: true},
	{Family: "displacement", re: regexp.MustCompile(`\b(\d[.,]\d)\s?L\b`)},
	{Family: "displacement", re: regexp.MustCompile(`\b(\d[.,]\d)(?:\s?(?:16V|8V|V6|V8))?\b`)},
}

// engineFuel maps designators that imply an energy family.
var engineFuel = map[string]model.FuelType{
	"BLUEHDI":    model.FuelDiesel,
	"E-HDI":      model.FuelDiesel,
	"HDI":        model.FuelDiesel,
	"PURETECH":   model.FuelPetrol,
	"THP":        model.FuelPetrol,
	"E-THP":      model.FuelPetrol,
	"VTI":        model.FuelPetrol,
	"DCI":        model.FuelDiesel,
	"BLUE DCI":   model.FuelDiesel,
	"ENERGY DCI": model.FuelDiesel,
	"TCE":        model.FuelPetrol,
	"ENERGY TCE": model.FuelPetrol,
	"SCE":        model.FuelPetrol,
	"E-TECH":     model.FuelHybrid,
	"TDI":        model.FuelDiesel,
	"TSI":        model.FuelPetrol,
	"TFSI":       model.FuelPetrol,
	"FSI":        model.FuelPetrol,
	"E-HYBRID":   model.FuelHybrid,
	"ECOBOOST":   model.FuelPetrol,
	"ECOBLUE":    model.FuelDiesel,
	"TDCI":       model.FuelDiesel,
	"MULTIJET":   model.FuelDiesel,
	"MULTIAIR":   model.FuelPetrol,
	"JTD":        model.FuelDiesel,
	"JTDM":       model.FuelDiesel,
	"CDTI":       model.FuelDiesel,
	"CRDI":       model.FuelDiesel,
	"T-GDI":      model.FuelPetrol,
	"GDI":        model.FuelPetrol,
	"D-4D":       model.FuelDiesel,
	"VVT-I":      model.FuelPetrol,
	"HSD":        model.FuelHybrid,
	"CDI":        model.FuelDiesel,
	"BLUETEC":    model.FuelDiesel,
}

// fuelWords is checked in order; hybrid and LPG come before the base fuels
// they are usually paired with in titles.
var fuelWords = []struct {
	re   *regexp.Regexp
	fuel model.FuelType
}{
	{regexp.MustCompile(`\b(HYBRIDE|HYBRID|EH)\b`), model.FuelHybrid},
	{regexp.MustCompile(`\b(ELECTRIQUE|ELECTRIC)\b`), model.FuelElectric},
	{regexp.MustCompile(`\b(GPL|LPG|BICARBURATION)\b`), model.FuelLPG},
	{regexp.MustCompile(`\b(DIESEL|GAZOLE|GASOIL)\b`), model.FuelDiesel},
	{regexp.MustCompile(`\b(ESSENCE|PETROL)\b`), model.FuelPetrol},
}
