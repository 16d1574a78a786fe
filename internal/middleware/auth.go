package middleware

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"travelbook_app/internal/models"
	"travelbook_app/internal/repository"
)

// Context keys set by RequireAuth
const (
	ContextUserID    = "userID"
	ContextUserUID   = "userUID"
	ContextUserEmail = "userEmail"
	ContextUserName  = "userName"
	ContextUserType  = "userType"
)

// RequireAuth returns a middleware that verifies Firebase session cookies
// and resolves the caller to a local user row, provisioning one on first
// login
func RequireAuth(authClient *auth.Client, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Check if Firebase is initialized
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "authentication not configured")
			}

			// Get the session cookie
			cookie, err := c.Cookie("session")
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			// Verify the session cookie
			decodedToken, err := authClient.VerifySessionCookie(c.Request().Context(), cookie.Value)
			if err != nil {
				// Invalid session, clear the cookie so the client re-logs
				clearCookie := &http.Cookie{
					Name:     "session",
					Value:    "",
					MaxAge:   -1,
					HttpOnly: true,
					Path:     "/",
				}
				c.SetCookie(clearCookie)
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}

			email, _ := decodedToken.Claims["email"].(string)
			name, _ := decodedToken.Claims["name"].(string)

			user, err := users.GetOrCreateByFirebaseUID(c.Request().Context(), decodedToken.UID, email, name)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "could not resolve user")
			}

			// Set user info in context for downstream handlers
			c.Set(ContextUserID, user.ID)
			c.Set(ContextUserUID, user.FirebaseUID)
			c.Set(ContextUserEmail, user.Email)
			c.Set(ContextUserName, user.Name)
			c.Set(ContextUserType, user.UserType)

			return next(c)
		}
	}
}

// RequireAdmin builds on RequireAuth and rejects non-admin callers. The
// booking service re-checks privilege on its own; this just keeps the admin
// route group closed at the edge.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType, ok := c.Get(ContextUserType).(models.UserType)
			if !ok || userType != models.UserTypeAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin privilege required")
			}
			return next(c)
		}
	}
}
