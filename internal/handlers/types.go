package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// CreateBookingRequest is the customer booking submission
type CreateBookingRequest struct {
	PackageID       uint   `json:"package_id"`
	BookingDate     string `json:"booking_date"` // YYYY-MM-DD
	NumberOfPeople  int    `json:"number_of_people"`
	SpecialRequests string `json:"special_requests"`
}

// UpdateBookingStatusRequest is the admin override payload. Omitted fields
// are left untouched.
type UpdateBookingStatusRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
}

// ContactRequest is the public contact form submission
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// PreferenceRequest toggles a user's notification e-mails
type PreferenceRequest struct {
	BookingConfirmation *bool `json:"booking_confirmation"`
	PaymentReminder     *bool `json:"payment_reminder"`
}

// StatusResponse is the generic success envelope
type StatusResponse struct {
	Status string `json:"status"`
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

func getUintFromContext(c echo.Context, key string) uint {
	val := c.Get(key)
	if val == nil {
		return 0
	}
	uintVal, ok := val.(uint)
	if !ok {
		return 0
	}
	return uintVal
}

func parseUintParam(c echo.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(val), true
}
