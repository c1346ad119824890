package model

import (
	"strings"
	"time"
)

// FuelType is the energy family of a vehicle.
type FuelType string

const (
	FuelUnknown  FuelType = "unknown"
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
	FuelLPG      FuelType = "lpg"
)

// Known reports whether the fuel type carries a usable value.
func (f FuelType) Known() bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid, FuelLPG:
		return true
	}
	return false
}

// Label returns the word marketplaces use for the fuel type in ad titles.
func (f FuelType) Label() string {
	switch f {
	case FuelPetrol:
		return "essence"
	case FuelDiesel:
		return "diesel"
	case FuelElectric:
		return "electrique"
	case FuelHybrid:
		return "hybride"
	case FuelLPG:
		return "gpl"
	}
	return ""
}

var fuelAliases = map[string]FuelType{
	"GO":         FuelDiesel,
	"DIESEL":     FuelDiesel,
	"GAZOLE":     FuelDiesel,
	"GASOIL":     FuelDiesel,
	"ES":         FuelPetrol,
	"ESSENCE":    FuelPetrol,
	"PETROL":     FuelPetrol,
	"SP":         FuelPetrol,
	"EH":         FuelHybrid,
	"HYBRIDE":    FuelHybrid,
	"HYBRID":     FuelHybrid,
	"ELECTRIQUE": FuelElectric,
	"ÉLECTRIQUE": FuelElectric,
	"ELECTRIC":   FuelElectric,
	"EL":         FuelElectric,
	"GPL":        FuelLPG,
	"LPG":        FuelLPG,
}

// ParseFuelType maps auction codes and common words to a FuelType.
// Unrecognized values yield FuelUnknown.
func ParseFuelType(s string) FuelType {
	key := strings.ToUpper(strings.TrimSpace(s))
	if key == "" {
		return FuelUnknown
	}
	if f, ok := fuelAliases[key]; ok {
		return f
	}
	switch FuelType(strings.ToLower(key)) {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid, FuelLPG:
		return FuelType(strings.ToLower(key))
	}
	return FuelUnknown
}

// Transmission is the gearbox family of a vehicle.
type Transmission string

const (
	TransmissionUnknown   Transmission = "unknown"
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// ParseTransmission maps gearbox labels to a Transmission.
func ParseTransmission(s string) Transmission {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MANUELLE", "MANUAL", "MECANIQUE", "MÉCANIQUE", "BVM":
		return TransmissionManual
	case "AUTOMATIQUE", "AUTOMATIC", "AUTO", "SEMI-AUTOMATIQUE", "SEMI AUTOMATIQUE", "SEMI", "BVA":
		return TransmissionAutomatic
	}
	return TransmissionUnknown
}

// SourceVehicle is the vehicle being priced. Zero numeric fields mean unknown.
type SourceVehicle struct {
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Trim         string       `json:"trim,omitempty"`
	FuelType     FuelType     `json:"fuel_type,omitempty"`
	Transmission Transmission `json:"transmission,omitempty"`
	Year         int          `json:"year,omitempty"`
	Mileage      int          `json:"mileage,omitempty"`
	ListedPrice  float64      `json:"listed_price,omitempty"`
	URL          string       `json:"url,omitempty"`
}

// Validate checks the preconditions for matching: brand and model are required,
// numeric fields must be non-negative and the year plausible when set.
func (v SourceVehicle) Validate() error {
	if strings.TrimSpace(v.Brand) == "" {
		return Errorf(ErrIncompleteInput, "brand is required")
	}
	if strings.TrimSpace(v.Model) == "" {
		return Errorf(ErrIncompleteInput, "model is required")
	}
	if v.Mileage < 0 {
		return Errorf(ErrIncompleteInput, "mileage must be non-negative, got %d", v.Mileage)
	}
	if v.ListedPrice < 0 {
		return Errorf(ErrIncompleteInput, "listed price must be non-negative, got %.0f", v.ListedPrice)
	}
	if v.Year != 0 && !PlausibleYear(v.Year) {
		return Errorf(ErrIncompleteInput, "implausible year %d", v.Year)
	}
	return nil
}

// Fuel returns the normalized fuel type, accepting auction codes such as GO.
func (v SourceVehicle) Fuel() FuelType {
	return ParseFuelType(string(v.FuelType))
}

// Gearbox returns the normalized transmission.
func (v SourceVehicle) Gearbox() Transmission {
	return ParseTransmission(string(v.Transmission))
}

// PlausibleYear reports whether y falls in 1900..currentYear+1.
func PlausibleYear(y int) bool {
	return y >= 1900 && y <= time.Now().Year()+1
}
