package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"travelbook_app/internal/middleware"
	"travelbook_app/internal/models"
)

type UserPreferenceHandler struct {
	DB *gorm.DB
}

func NewUserPreferenceHandler(db *gorm.DB) *UserPreferenceHandler {
	return &UserPreferenceHandler{DB: db}
}

// GetUserPreference returns the caller's notification preferences,
// defaulting to everything enabled when no row exists yet
func (h *UserPreferenceHandler) GetUserPreference(c echo.Context) error {
	userID := getUintFromContext(c, middleware.ContextUserID)

	var pref models.UserNotifPreference
	err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pref = models.UserNotifPreference{
				UserID:              userID,
				BookingConfirmation: true,
				PaymentReminder:     true,
			}
		} else {
			return echo.NewHTTPError(http.StatusInternalServerError, "error fetching preference")
		}
	}

	return c.JSON(http.StatusOK, pref)
}

// UpdateUserPreference upserts the caller's notification preferences
func (h *UserPreferenceHandler) UpdateUserPreference(c echo.Context) error {
	userID := getUintFromContext(c, middleware.ContextUserID)

	var req PreferenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	// Upsert preference
	var pref models.UserNotifPreference
	err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pref = models.UserNotifPreference{
				UserID:              userID,
				BookingConfirmation: true,
				PaymentReminder:     true,
			}
		} else {
			return echo.NewHTTPError(http.StatusInternalServerError, "database error")
		}
	}

	if req.BookingConfirmation != nil {
		pref.BookingConfirmation = *req.BookingConfirmation
	}
	if req.PaymentReminder != nil {
		pref.PaymentReminder = *req.PaymentReminder
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&pref).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save preference")
	}

	return c.JSON(http.StatusOK, pref)
}
