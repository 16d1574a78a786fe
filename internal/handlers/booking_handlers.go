package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"travelbook_app/internal/middleware"
	"travelbook_app/internal/services"
)

// BookingHandler handles the customer-facing booking endpoints
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking creates a booking for the authenticated user
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return fmt.Errorf("%w: booking_date must be YYYY-MM-DD", services.ErrValidation)
	}

	booking, err := h.bookingService.CreateBooking(c.Request().Context(), services.CreateBookingInput{
		UserID:          getUintFromContext(c, middleware.ContextUserID),
		PackageID:       req.PackageID,
		BookingDate:     bookingDate,
		NumberOfPeople:  req.NumberOfPeople,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, booking)
}

// ListMyBookings returns the authenticated user's bookings
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID := getUintFromContext(c, middleware.ContextUserID)
	bookings, err := h.bookingService.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// GetBooking returns one booking to its owner or an admin
func (h *BookingHandler) GetBooking(c echo.Context) error {
	bookingID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingService.GetBooking(c.Request().Context(), bookingID, getUintFromContext(c, middleware.ContextUserID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

// GetInvoice returns the invoice snapshot for a paid booking
func (h *BookingHandler) GetInvoice(c echo.Context) error {
	bookingID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	invoice, err := h.bookingService.Invoice(c.Request().Context(), bookingID, getUintFromContext(c, middleware.ContextUserID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}
