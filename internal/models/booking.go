package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus is the reservation axis of a booking's state
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether the value is a known booking status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment axis of a booking's state
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Valid reports whether the value is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// Booking represents one reservation of a package by a user.
//
// UnitPrice and TotalPrice are snapshotted from the package at creation and
// never recomputed afterwards; later price edits on the package do not touch
// existing bookings.
type Booking struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Reference is the customer-facing booking identifier
	Reference string `gorm:"type:varchar(64);uniqueIndex" json:"reference"`

	UserID    uint `gorm:"index" json:"user_id"`
	PackageID uint `gorm:"index" json:"package_id"`

	// BookingDate is a calendar date; the time component is always midnight
	BookingDate    time.Time `json:"booking_date"`
	NumberOfPeople int       `json:"number_of_people"`

	UnitPrice  float64 `gorm:"type:decimal(15,2)" json:"unit_price"`
	TotalPrice float64 `gorm:"type:decimal(15,2)" json:"total_price"`

	Status        BookingStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"payment_status"`

	// PaymentSessionID is the gateway order id of the latest checkout
	// attempt. A retried initiation overwrites it; the stale session simply
	// expires unused on the gateway side.
	PaymentSessionID *string    `gorm:"type:varchar(100);index" json:"payment_session_id"`
	TransactionID    *string    `gorm:"type:varchar(100)" json:"transaction_id"`
	PaidAt           *time.Time `json:"paid_at"`

	SpecialRequests *string `gorm:"type:text" json:"special_requests"`

	// Relationships
	User    User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Package TourPackage `gorm:"foreignKey:PackageID" json:"package,omitempty"`
}
