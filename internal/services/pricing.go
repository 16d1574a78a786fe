package services

import (
	"fmt"
	"math"

	"travelbook_app/internal/models"
)

// UnitPrice derives the chargeable per-person price for a package: the
// offer price when it is set, positive and strictly below the list price,
// otherwise the list price. An offer equal to or above the list price is
// treated as stale data and ignored.
func UnitPrice(pkg *models.TourPackage) (float64, error) {
	if pkg.Price <= 0 {
		return 0, fmt.Errorf("%w: package price must be positive", ErrValidation)
	}
	if pkg.OfferPrice != nil && *pkg.OfferPrice > 0 && *pkg.OfferPrice < pkg.Price {
		return *pkg.OfferPrice, nil
	}
	return pkg.Price, nil
}

// Total computes unitPrice * numberOfPeople rounded half-up to two decimal
// places. The result is what gets snapshotted onto the booking.
func Total(unitPrice float64, numberOfPeople int) (float64, error) {
	if unitPrice <= 0 {
		return 0, fmt.Errorf("%w: unit price must be positive", ErrValidation)
	}
	if numberOfPeople < 1 {
		return 0, fmt.Errorf("%w: number of people must be at least 1", ErrValidation)
	}
	return roundCurrency(unitPrice * float64(numberOfPeople)), nil
}

// roundCurrency rounds half-up to 2 fractional digits
func roundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
