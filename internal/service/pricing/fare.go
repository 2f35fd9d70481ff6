package pricing

import (
	"math"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

// RoundUpTo50 rounds up to the next multiple of 50: 237 -> 250, 250 -> 250.
func RoundUpTo50(x float64) float64 {
	return math.Ceil(x/50) * 50
}

// Fare prices a ride with the class tariffs before any peak multiplier.
func Fare(vc models.VehicleClass, distanceKm, minutes float64) float64 {
	return RoundUpTo50(vc.BasePrice + vc.BasePricePerKm*distanceKm + vc.BasePriceMin*minutes)
}

// Split divides a fare into the platform commission and the driver payout.
// tarifaBase is the commission in percent.
func Split(fare, tarifaBase float64) (commission, payout float64, err error) {
	rate := tarifaBase / 100
	if fare <= 0 || rate < 0 || rate > 1 {
		return 0, 0, types.ErrInvalidFare
	}
	commission = fare * rate
	return commission, fare - commission, nil
}
