package matcher

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-cli/internal/config"
)

// DefaultConfig returns the standard scoring rules. A perfect candidate scores
// 40 + 10 + 30 + 20 + 10 = 110; 60 is needed to survive.
func DefaultConfig() config.MatcherConfig {
	return config.MatcherConfig{
		MinScore:         60,
		BaseScore:        40,
		FuelMatch:        10,
		FuelMismatch:     -10,
		FuelLiteralBonus: 10,
		YearExact:        30,
		YearOff1:         20,
		YearOff2:         10,
		MileageNear:      20,
		MileageMid:       15,
		MileageFar:       10,
		MileageNearKm:    10_000,
		MileageMidKm:     20_000,
		MileageFarKm:     30_000,
		GenericWords:     []string{"fourgon", "societe", "utilitaire", "van", "chassis", "cabine"},
	}
}

// MaxScore returns the highest score a candidate can reach under c.
func MaxScore(c config.MatcherConfig) int {
	return c.BaseScore + c.FuelMatch + c.FuelLiteralBonus +
		max(c.YearExact, c.YearOff1, c.YearOff2) +
		max(c.MileageNear, c.MileageMid, c.MileageFar)
}

// ValidateConfig checks that a MatcherConfig is internally consistent.
func ValidateConfig(c config.MatcherConfig) error {
	var errs []string

	points := map[string]int{
		"base_score":         c.BaseScore,
		"fuel_match":         c.FuelMatch,
		"fuel_literal_bonus": c.FuelLiteralBonus,
		"year_exact":         c.YearExact,
		"year_off1":          c.YearOff1,
		"year_off2":          c.YearOff2,
		"mileage_near":       c.MileageNear,
		"mileage_mid":        c.MileageMid,
		"mileage_far":        c.MileageFar,
	}
	for name, p := range points {
		if p < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	if c.FuelMismatch > 0 {
		errs = append(errs, "fuel_mismatch must be <= 0")
	}
	if c.MinScore < 0 {
		errs = append(errs, "min_score must be >= 0")
	}
	if c.MinScore > MaxScore(c) {
		errs = append(errs, fmt.Sprintf("min_score %d exceeds reachable maximum %d", c.MinScore, MaxScore(c)))
	}
	if c.MileageNearKm <= 0 || c.MileageNearKm > c.MileageMidKm || c.MileageMidKm > c.MileageFarKm {
		errs = append(errs, "mileage bands must satisfy 0 < near_km <= mid_km <= far_km")
	}

	if len(errs) > 0 {
		return eris.Errorf("matcher: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
