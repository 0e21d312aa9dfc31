package middleware // reusable HTTP middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daybook-app/daybook/internal/repository"
)

// CookieName is the cookie carrying the opaque session token.
const CookieName = "auth_token"

// UserContextKey is the echo context key under which the authenticated
// user is stored for downstream handlers.
const UserContextKey = "user"

// SessionAuth returns middleware that resolves the session cookie to a
// user and stores it in the request context. A missing or unknown token is
// "not authenticated", not an error: the client is redirected to the login
// page. Tokens have no expiry; they are valid until logout or until a new
// login overwrites them.
func SessionAuth(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusFound, "/login")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByToken(ctx, cookie.Value)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.Redirect(http.StatusFound, "/login")
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}
			c.Set(UserContextKey, u)
			return next(c)
		}
	}
}
