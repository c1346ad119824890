package valuation

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-cli/internal/config"
	"github.com/sells-group/resale-cli/internal/model"
)

// ErrInvalidPrice is returned when a fee is requested for a non-numeric price.
var ErrInvalidPrice = eris.New("valuation: price must be a finite number")

// FeeSchedule is the auction buyer fee schedule.
type FeeSchedule struct {
	Rate     float64
	Floor    float64
	Fixed    float64
	Platform float64
}

// DefaultFees returns the standard auction fee schedule.
func DefaultFees() FeeSchedule {
	return FeeSchedule{Rate: 0.144, Floor: 360, Fixed: 140, Platform: 40}
}

// FeesFromConfig converts the configured fee section.
func FeesFromConfig(c config.FeeConfig) FeeSchedule {
	return FeeSchedule{
		Rate:     c.CommissionRate,
		Floor:    c.CommissionFloor,
		Fixed:    c.FixedFee,
		Platform: c.PlatformFee,
	}
}

// Calculate computes the buyer cost of a hammer price. The commission is
// the larger of the percentage and the floor.
func (f FeeSchedule) Calculate(price float64) (model.FeeBreakdown, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return model.FeeBreakdown{}, eris.Wrapf(ErrInvalidPrice, "got %v", price)
	}

	commission := price * f.Rate
	floorApplied := commission < f.Floor
	if floorApplied {
		commission = f.Floor
	}

	return model.FeeBreakdown{
		Price:        price,
		Commission:   commission,
		FixedFee:     f.Fixed,
		PlatformFee:  f.Platform,
		Total:        price + commission + f.Fixed + f.Platform,
		FloorApplied: floorApplied,
	}, nil
}

// CalculateFees applies the default schedule.
func CalculateFees(price float64) (model.FeeBreakdown, error) {
	return DefaultFees().Calculate(price)
}
