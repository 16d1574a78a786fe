package models

import (
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// TourPackage is a bookable travel package for a destination
type TourPackage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	DestinationID uint   `gorm:"index" json:"destination_id"`
	Name          string `gorm:"type:varchar(255)" json:"name"`
	Description   string `gorm:"type:text" json:"description"`

	// Price per person. OfferPrice is only honored when set, positive and
	// strictly below Price; the selection lives in the pricing calculator.
	Price      float64  `gorm:"type:decimal(15,2)" json:"price"`
	OfferPrice *float64 `gorm:"type:decimal(15,2)" json:"offer_price"`

	DurationDays int  `json:"duration_days"`
	IsActive     bool `gorm:"default:true" json:"is_active"`

	// DepartureRule is an RFC 5545 RRULE string describing the departure
	// schedule. Nil means the package departs on any date.
	DepartureRule *string `gorm:"type:text" json:"departure_rule"`

	Inclusions string `gorm:"type:text" json:"inclusions"`

	// Relationships
	Destination Destination    `gorm:"foreignKey:DestinationID" json:"destination,omitempty"`
	Itinerary   []ItineraryDay `gorm:"foreignKey:PackageID" json:"itinerary,omitempty"`
	Bookings    []Booking      `gorm:"foreignKey:PackageID" json:"bookings,omitempty"`
}

// ItineraryDay is one day of a package itinerary, ordered by DayNumber
type ItineraryDay struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PackageID   uint   `gorm:"index" json:"package_id"`
	DayNumber   int    `json:"day_number"`
	Title       string `gorm:"type:varchar(255)" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

// NextDeparture calculates the next departure date for the package
func (p TourPackage) NextDeparture() time.Time {
	if p.DepartureRule == nil || *p.DepartureRule == "" {
		return time.Now()
	}

	rule, err := rrule.StrToRRule(*p.DepartureRule)
	if err == nil {
		next := rule.After(time.Now().Add(-24*time.Hour), true)
		if !next.IsZero() {
			return next
		}
	}
	// Fallback if parsing fails or the rule has no future occurrence
	return time.Time{}
}

// IsBookableOn reports whether the package departs on the given calendar
// date. Packages without a departure rule are bookable on any date.
func (p TourPackage) IsBookableOn(date time.Time) bool {
	if p.DepartureRule == nil || *p.DepartureRule == "" {
		return true
	}

	rule, err := rrule.StrToRRule(*p.DepartureRule)
	if err != nil {
		return true
	}

	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	next := rule.After(dayStart.Add(-time.Second), true)
	if next.IsZero() {
		return false
	}
	ny, nm, nd := next.Date()
	return ny == y && nm == m && nd == d
}
