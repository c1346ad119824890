package search

import "github.com/sells-group/resale-cli/internal/model"

var fuelCodes = map[model.FuelType]string{
	model.FuelPetrol:   "1",
	model.FuelDiesel:   "2",
	model.FuelLPG:      "3",
	model.FuelElectric: "4",
	model.FuelHybrid:   "6",
}

// The structured compare search files hybrids under 5; the free-text margin
// searches use 6.
const compareHybridCode = "5"

// FuelCode returns the leboncoin fuel filter value used by the margin
// searches, or "" when unknown.
func FuelCode(f model.FuelType) string {
	return fuelCodes[f]
}

// CompareFuelCode returns the fuel filter value for the structured compare
// search.
func CompareFuelCode(f model.FuelType) string {
	if f == model.FuelHybrid {
		return compareHybridCode
	}
	return fuelCodes[f]
}

// GearboxCode returns the leboncoin gearbox filter value, or "" when unknown.
func GearboxCode(t model.Transmission) string {
	switch t {
	case model.TransmissionManual:
		return "1"
	case model.TransmissionAutomatic:
		return "2"
	}
	return ""
}
