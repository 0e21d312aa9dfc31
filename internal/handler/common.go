package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daybook-app/daybook/internal/middleware"
	"github.com/daybook-app/daybook/internal/model"
)

// currentUser returns the authenticated user placed in the context by the
// session middleware. Handlers behind the middleware can rely on it being
// present; a nil return means a route was wired without the middleware.
func currentUser(c echo.Context) *model.User {
	u, _ := c.Get(middleware.UserContextKey).(*model.User)
	return u
}

// reqCtx bounds a database call to the request with a 5 second timeout.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// setSessionCookie attaches the session token to the response as an
// HttpOnly cookie with no expiry: the token is valid until revoked.
func setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// isAJAX reports whether the request was made with an XMLHttpRequest-style
// client that expects JSON instead of a redirect.
func isAJAX(c echo.Context) bool {
	return c.Request().Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// tagNames flattens attached tags to their names for JSON responses and
// the export document. Returns an empty slice, not nil, so JSON encodes
// [] rather than null.
func tagNames(tags []model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
