package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/internal/service"
	"github.com/daybook-app/daybook/internal/utils"
)

const defaultNoteColor = "card-blue"

// NoteHandler bundles dependencies for note endpoints, including the share
// toggle and its render-cache invalidation.
type NoteHandler struct {
	Cfg   config.Config
	Notes *repository.NoteRepo
	Cache *service.RenderCache
	Log   *zap.Logger
}

func NewNoteHandler(cfg config.Config, notes *repository.NoteRepo, cache *service.RenderCache, log *zap.Logger) *NoteHandler {
	return &NoteHandler{Cfg: cfg, Notes: notes, Cache: cache, Log: log}
}

type notePart struct {
	ID            uint64   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Color         string   `json:"color"`
	ImageFilename *string  `json:"image_filename"`
	IsPublic      bool     `json:"is_public"`
	PublicID      *string  `json:"public_id"`
	CreatedAt     string   `json:"created_at"`
	Tags          []string `json:"tags"`
}

func toNotePart(n *model.Note) notePart {
	return notePart{
		ID:            n.ID,
		Title:         n.Title,
		Content:       n.Content,
		Color:         n.Color,
		ImageFilename: n.ImageFilename,
		IsPublic:      n.IsPublic,
		PublicID:      n.PublicID,
		CreatedAt:     n.CreatedAt.Format(time.RFC3339),
		Tags:          tagNames(n.Tags),
	}
}

// List returns the user's notes, newest first.
func (h *NoteHandler) List(c echo.Context) error {
	u := currentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	notes, err := h.Notes.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list notes failed"})
	}
	parts := make([]notePart, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, toNotePart(n))
	}
	return c.JSON(http.StatusOK, echo.Map{"notes": parts})
}

// Add creates a note from the submitted multipart form. At least one of
// title, content or an image is required; an entirely empty submission is
// silently dropped and redirected, matching the form flow.
func (h *NoteHandler) Add(c echo.Context) error {
	u := currentUser(c)
	title := c.FormValue("title")
	content := c.FormValue("content")
	color := c.FormValue("color")
	if color == "" {
		color = defaultNoteColor
	}

	var imageFilename *string
	if file, err := c.FormFile("image"); err == nil && file.Filename != "" {
		name, err := h.saveUpload(file)
		if err != nil {
			h.Log.Warn("note image upload failed", zap.Error(err), zap.Uint64("user_id", u.ID))
		} else if name != "" {
			imageFilename = &name
		}
	}

	if title == "" && content == "" && imageFilename == nil {
		return c.Redirect(http.StatusFound, "/notes")
	}

	n := &model.Note{
		UserID:        u.ID,
		Title:         title,
		Content:       content,
		Color:         color,
		ImageFilename: imageFilename,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notes.Create(ctx, n, c.FormValue("tags")); err != nil {
		h.Log.Error("create note failed", zap.Error(err), zap.Uint64("user_id", u.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create note failed"})
	}
	return c.Redirect(http.StatusFound, "/notes")
}

// Update replaces a note's title, content and color. The tag set is only
// replaced when the form carried a tags field at all; an absent field
// leaves attachments untouched.
func (h *NoteHandler) Update(c echo.Context) error {
	u := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var tagString *string
	if params, err := c.FormParams(); err == nil {
		if vals, ok := params["tags"]; ok && len(vals) > 0 {
			tagString = &vals[0]
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err = h.Notes.Update(ctx, id, u.ID,
		c.FormValue("title"), c.FormValue("content"), c.FormValue("color"), tagString)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.Redirect(http.StatusFound, "/notes")
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update note failed"})
	}
	h.invalidateShared(c, id)
	return c.Redirect(http.StatusFound, "/notes")
}

// Delete removes a note; a non-owner caller is redirected with the record
// untouched and an unknown id is a 404. The public identifier is read
// before the row disappears so a shared note's cached page can be dropped
// along with it.
func (h *NoteHandler) Delete(c echo.Context) error {
	u := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pid, _ := h.Notes.PublicIDOf(ctx, id)

	switch err := h.Notes.Delete(ctx, id, u.ID); {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.Redirect(http.StatusFound, "/notes")
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete note failed"})
	}
	if pid != nil {
		h.Cache.Invalidate(ctx, *pid)
	}
	return c.Redirect(http.StatusFound, "/notes")
}

// ToggleShare flips a note's public visibility. The first share assigns
// the stable public identifier. AJAX callers get a JSON result; form posts
// are redirected back to the notes page.
func (h *NoteHandler) ToggleShare(c echo.Context) error {
	u := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Notes.ToggleShare(ctx, id, u.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.String(http.StatusForbidden, "Unauthorized")
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "share toggle failed"})
	}

	if n.PublicID != nil {
		h.Cache.Invalidate(ctx, *n.PublicID)
	}

	if isAJAX(c) {
		return c.JSON(http.StatusOK, echo.Map{
			"success":   true,
			"is_public": n.IsPublic,
			"public_id": n.PublicID,
		})
	}
	return c.Redirect(http.StatusFound, "/notes")
}

// invalidateShared drops the cached public page after a content update so
// viewers never see a stale rendering.
func (h *NoteHandler) invalidateShared(c echo.Context, id uint64) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	pid, err := h.Notes.PublicIDOf(ctx, id)
	if err != nil || pid == nil {
		return
	}
	h.Cache.Invalidate(ctx, *pid)
}

func (h *NoteHandler) saveUpload(file *multipart.FileHeader) (string, error) {
	name := utils.SanitizeFilename(file.Filename)
	if name == "" {
		return "", nil
	}
	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(h.Cfg.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}
