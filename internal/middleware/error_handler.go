package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"travelbook_app/internal/services"
)

// ErrorResponse is the JSON error envelope every failure path renders
type ErrorResponse struct {
	Error string `json:"error"`
}

// CustomErrorHandler maps service errors onto HTTP status codes. Security
// violations deliberately render the same generic body as a plain
// forbidden so a probing caller learns nothing about what exists.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	case errors.Is(err, services.ErrValidation):
		code = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrPaymentNotCompleted):
		code = http.StatusPaymentRequired
		message = err.Error()
	case errors.Is(err, services.ErrSecurityViolation):
		code = http.StatusForbidden
		message = "forbidden"
	case errors.Is(err, services.ErrUnauthorized):
		code = http.StatusForbidden
		message = "forbidden"
	case errors.Is(err, services.ErrNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrInvalidState):
		code = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrPaymentGateway):
		code = http.StatusBadGateway
		message = "payment gateway error"
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	var renderErr error
	if c.Request().Method == http.MethodHead {
		renderErr = c.NoContent(code)
	} else {
		renderErr = c.JSON(code, ErrorResponse{Error: message})
	}
	if renderErr != nil {
		c.Logger().Error(renderErr)
	}
}
