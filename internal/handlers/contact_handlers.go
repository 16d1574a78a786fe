package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// ContactHandler handles the public contact form and its admin inbox
type ContactHandler struct {
	db *gorm.DB
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(db *gorm.DB) *ContactHandler {
	return &ContactHandler{db: db}
}

// SubmitMessage stores a contact form submission
func (h *ContactHandler) SubmitMessage(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and message are required")
	}
	if !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email address")
	}

	message := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&message).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store message")
	}

	return c.JSON(http.StatusCreated, message)
}

// ListMessages returns contact messages for the admin inbox, unread first
func (h *ContactHandler) ListMessages(c echo.Context) error {
	query := h.db.WithContext(c.Request().Context()).Model(&models.ContactMessage{})
	if c.QueryParam("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var messages []models.ContactMessage
	if err := query.Order("is_read ASC, created_at DESC").Find(&messages).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch messages")
	}

	return c.JSON(http.StatusOK, messages)
}

// MarkMessageRead flags a contact message as handled
func (h *ContactHandler) MarkMessageRead(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}

	res := h.db.WithContext(c.Request().Context()).
		Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update message")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "message not found")
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "read"})
}
