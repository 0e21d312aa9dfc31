package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/internal/utils"
)

// ProfileHandler covers the account page: avatar upload, password change
// and display-name updates.
type ProfileHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   *zap.Logger
}

func NewProfileHandler(cfg config.Config, users *repository.UserRepo, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Users: users, Log: log}
}

// Show returns the current user's account details.
func (h *ProfileHandler) Show(c echo.Context) error {
	u := currentUser(c)
	return c.JSON(http.StatusOK, echo.Map{
		"email":       u.Email,
		"name":        u.Name,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt,
	})
}

// Update handles the profile form: an optional avatar upload and an
// optional password change. The avatar is stored under a fixed per-user
// name, so a new upload overwrites the old one.
func (h *ProfileHandler) Update(c echo.Context) error {
	u := currentUser(c)

	if file, err := c.FormFile("avatar"); err == nil && file.Filename != "" {
		if err := h.saveAvatar(u.ID, file); err != nil {
			h.Log.Warn("avatar upload failed", zap.Error(err), zap.Uint64("user_id", u.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "avatar upload failed"})
		}
	}

	newPassword := c.FormValue("new_password")
	currentPassword := c.FormValue("current_password")
	if newPassword != "" && currentPassword != "" {
		if !utils.VerifyPassword(u.PasswordHash, currentPassword) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Incorrect current password"})
		}
		ctx, cancel := reqCtx(c)
		defer cancel()
		if err := h.Users.UpdatePassword(ctx, u.ID, newPassword, h.Cfg.BcryptCost); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password update failed"})
		}
	}
	return c.Redirect(http.StatusFound, "/profile")
}

// UpdateName sets the display name from a JSON body. Mirrors the AJAX
// endpoint shape: {"success": true} or a 400 with success false.
func (h *ProfileHandler) UpdateName(c echo.Context) error {
	u := currentUser(c)

	var req struct {
		Name *string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateName(ctx, u.ID, strings.TrimSpace(*req.Name)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// saveAvatar writes the upload to AvatarDir/user_<id>.jpg. Concurrent
// uploads for the same user race on the same path; last write wins.
func (h *ProfileHandler) saveAvatar(userID uint64, file *multipart.FileHeader) error {
	if err := os.MkdirAll(h.Cfg.AvatarDir, 0o755); err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(h.Cfg.AvatarDir, fmt.Sprintf("user_%d.jpg", userID)))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
