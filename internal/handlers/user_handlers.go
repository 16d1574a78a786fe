package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"travelbook_app/internal/models"
	"travelbook_app/internal/services"
)

type UserHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewUserHandler(db *gorm.DB, cache *services.RedisCache) *UserHandler {
	return &UserHandler{db: db, cache: cache}
}

// ListUsers returns all registered users (admin)
func (h *UserHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.db.WithContext(c.Request().Context()).Order("name ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users")
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns one user with their bookings (admin)
func (h *UserHandler) GetUser(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	err := h.db.WithContext(c.Request().Context()).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUserRole promotes or demotes a user (admin)
func (h *UserHandler) UpdateUserRole(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		UserType string `json:"user_type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	userType := models.UserType(req.UserType)
	if userType != models.UserTypeAdmin && userType != models.UserTypeMember {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown user type")
	}

	res := h.db.WithContext(c.Request().Context()).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("user_type", userType)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "updated"})
}
