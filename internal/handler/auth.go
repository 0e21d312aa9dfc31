package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/queue"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/internal/utils"
)

// AuthHandler bundles dependencies for registration, the passcode flow,
// login and logout.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Events *queue.Publisher
	Log    *zap.Logger
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, events *queue.Publisher, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Events: events, Log: log}
}

// Register creates an unverified account and starts the passcode flow.
// A duplicate email is rejected with a user-visible message; on success
// the client is redirected to the verification page.
func (h *AuthHandler) Register(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, email, password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if err := h.issueOTP(c, uid, email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue passcode failed"})
	}
	return c.Redirect(http.StatusFound, "/verify-otp?email="+url.QueryEscape(email))
}

// Login verifies credentials. A verified account receives a fresh session
// token (invalidating any previous session); an unverified account gets a
// newly issued passcode and is sent to the verification page instead.
func (h *AuthHandler) Login(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	}

	if !u.IsVerified {
		if err := h.issueOTP(c, u.ID, u.Email); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue passcode failed"})
		}
		return c.Redirect(http.StatusFound, "/verify-otp?email="+url.QueryEscape(u.Email))
	}

	token := utils.NewSessionToken()
	if err := h.Users.SetToken(ctx, u.ID, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	setSessionCookie(c, token)
	return c.Redirect(http.StatusFound, "/")
}

// ShowVerifyOTP renders the verification step for clients that fetched it
// directly. The JSON body mirrors what the form page displays.
func (h *AuthHandler) ShowVerifyOTP(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "enter the 6-digit code sent to your email",
		"email":   c.QueryParam("email"),
	})
}

// VerifyOTP checks the submitted passcode. The code must match exactly and
// still be inside its validity window; either failure leaves the stored
// passcode in place. Success verifies the account, clears the passcode and
// logs the user straight in.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	code := strings.TrimSpace(c.FormValue("otp"))
	if email == "" || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.OTPCode == nil || u.OTPExpiresAt == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no passcode pending"})
	}

	pending := utils.OTP{Code: *u.OTPCode, ExpiresAt: *u.OTPExpiresAt}
	if !pending.Matches(code) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid OTP"})
	}
	if pending.Expired(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "OTP Expired"})
	}

	if err := h.Users.MarkVerified(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	// Verification doubles as login.
	token := utils.NewSessionToken()
	if err := h.Users.SetToken(ctx, u.ID, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	setSessionCookie(c, token)
	return c.Redirect(http.StatusFound, "/")
}

// Logout revokes the current session and expires the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	u := currentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ClearToken(ctx, u.ID); err != nil {
		h.Log.Warn("logout: clear token failed", zap.Error(err), zap.Uint64("user_id", u.ID))
	}
	clearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/login")
}

// issueOTP stores a fresh passcode (overwriting any prior one) and hands
// the email off to the queue. Delivery problems are logged and swallowed
// so the user flow continues regardless of provider outages.
func (h *AuthHandler) issueOTP(c echo.Context, userID uint64, email string) error {
	otp, err := utils.NewOTP(time.Duration(h.Cfg.OTPTTLMin) * time.Minute)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetOTP(ctx, userID, otp.Code, otp.ExpiresAt); err != nil {
		return err
	}
	if err := h.Events.PublishOTPEmail(ctx, queue.OTPEmailEvent{
		Recipient: email,
		Code:      otp.Code,
		ExpiresAt: otp.ExpiresAt.Format(time.RFC3339),
		IssuedAt:  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		h.Log.Warn("otp email dispatch failed, continuing", zap.Error(err), zap.String("email", email))
	}
	return nil
}
