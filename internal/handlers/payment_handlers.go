package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"travelbook_app/internal/middleware"
	"travelbook_app/internal/models"
	"travelbook_app/internal/services"
)

// webhookDedupeTTL bounds how long a processed notification key lives.
// Midtrans retries a notification for at most 24 hours.
const webhookDedupeTTL = 25 * time.Hour

// PaymentHandler handles checkout initiation, the browser return
// callbacks and the server-to-server webhook
type PaymentHandler struct {
	db             *gorm.DB
	cache          *services.RedisCache
	bookingService *services.BookingService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(db *gorm.DB, cache *services.RedisCache, bookingService *services.BookingService) *PaymentHandler {
	return &PaymentHandler{db: db, cache: cache, bookingService: bookingService}
}

// InitiatePayment opens (or resumes) a checkout session for a booking
func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	bookingID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	forceNew := c.QueryParam("force_new") == "true"

	result, err := h.bookingService.InitiatePayment(
		c.Request().Context(), bookingID, getUintFromContext(c, middleware.ContextUserID), forceNew)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// PaymentSuccess is where the gateway sends the customer's browser after a
// finished checkout. The session is always re-verified server side before
// any state moves.
func (h *PaymentHandler) PaymentSuccess(c echo.Context) error {
	sessionID := c.QueryParam("order_id")
	bookingIDStr := c.QueryParam("booking_id")
	if sessionID == "" || bookingIDStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id and booking_id are required")
	}
	bookingID, err := strconv.ParseUint(bookingIDStr, 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingService.ConfirmPaymentFromCallback(c.Request().Context(), sessionID, uint(bookingID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, booking)
}

// PaymentCancel is where the gateway sends the customer's browser after an
// abandoned checkout
func (h *PaymentHandler) PaymentCancel(c echo.Context) error {
	bookingIDStr := c.QueryParam("booking_id")
	bookingID, err := strconv.ParseUint(bookingIDStr, 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingService.CancelPayment(c.Request().Context(), uint(bookingID), models.AuditSourceCallback)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, booking)
}

// webhookNotification is the subset of the gateway notification we route on
type webhookNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// Webhook receives server-to-server payment notifications. Every payload is
// archived before processing, duplicates are dropped via a Redis marker,
// and the status is always re-verified with the gateway rather than trusted
// from the payload.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	var notif webhookNotification
	if err := json.Unmarshal(body, &notif); err != nil || notif.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification payload")
	}

	// Archive first; the raw payload is kept even when processing fails
	history := models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayMidtrans,
		OrderID:        notif.OrderID,
		Metadata:       body,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&history).Error; err != nil {
		log.Printf("webhook archive for order %s failed: %v", notif.OrderID, err)
	}

	dedupeKey := fmt.Sprintf("webhook:%s:%s", notif.OrderID, notif.TransactionStatus)
	fresh, err := h.cache.SetNX(c.Request().Context(), dedupeKey, true, webhookDedupeTTL)
	if err != nil {
		log.Printf("webhook dedupe check for order %s failed: %v", notif.OrderID, err)
	} else if !fresh {
		// Retry of a notification we already handled
		return c.JSON(http.StatusOK, StatusResponse{Status: "duplicate"})
	}

	bookingID, ok := bookingIDFromOrderID(notif.OrderID)
	if !ok {
		// Not an order id we issued; acknowledge so the gateway stops
		// retrying
		return c.JSON(http.StatusOK, StatusResponse{Status: "ignored"})
	}

	ctx := c.Request().Context()
	switch notif.TransactionStatus {
	case "settlement":
		_, err = h.bookingService.ConfirmPaymentFromCallback(ctx, notif.OrderID, bookingID)
	case "capture":
		if notif.FraudStatus == "accept" {
			_, err = h.bookingService.ConfirmPaymentFromCallback(ctx, notif.OrderID, bookingID)
		}
	case "expire", "cancel":
		_, err = h.bookingService.CancelPayment(ctx, bookingID, models.AuditSourceWebhook)
	case "deny", "failure":
		_, err = h.bookingService.MarkPaymentFailed(ctx, bookingID)
	default:
		// pending and friends carry no transition
	}
	if err != nil {
		// Release the marker so the gateway's retry gets another attempt
		_ = h.cache.Delete(ctx, dedupeKey)
		return err
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// bookingIDFromOrderID extracts the booking id from an order id of the form
// booking-{id}-{timestamp}
func bookingIDFromOrderID(orderID string) (uint, bool) {
	parts := strings.Split(orderID, "-")
	if len(parts) != 3 || parts[0] != "booking" {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
