package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/markup"
	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/internal/service"
)

// sharedPage is the minimal standalone page served for a public note. The
// body HTML has already been through the sanitizer, so it is injected as-is.
var sharedPage = template.Must(template.New("shared").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article class="shared-note {{.Color}}">
<h1>{{.Title}}</h1>
{{.Body}}
</article>
</body>
</html>
`))

// SharedHandler serves the public read-only view of shared notes.
type SharedHandler struct {
	Notes *repository.NoteRepo
	Cache *service.RenderCache
	Log   *zap.Logger
}

func NewSharedHandler(notes *repository.NoteRepo, cache *service.RenderCache, log *zap.Logger) *SharedHandler {
	return &SharedHandler{Notes: notes, Cache: cache, Log: log}
}

// Show renders a shared note by public identifier. Only currently-public
// notes resolve; an unshared note's retained identifier is a 404. Rendered
// pages are cached in Redis and invalidated on share toggles and updates.
func (h *SharedHandler) Show(c echo.Context) error {
	publicID := c.Param("publicID")

	ctx, cancel := reqCtx(c)
	defer cancel()

	if page := h.Cache.Get(ctx, publicID); page != "" {
		return c.HTML(http.StatusOK, page)
	}

	n, err := h.Notes.GetSharedByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.String(http.StatusNotFound, "note not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load note failed"})
	}

	page, err := renderSharedPage(n)
	if err != nil {
		h.Log.Error("render shared note failed", zap.Error(err), zap.String("public_id", publicID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render failed"})
	}
	h.Cache.Set(ctx, publicID, page)
	return c.HTML(http.StatusOK, page)
}

func renderSharedPage(n *model.Note) (string, error) {
	body, err := markup.Render(n.Content)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = sharedPage.Execute(&buf, struct {
		Title string
		Color string
		Body  template.HTML
	}{Title: n.Title, Color: n.Color, Body: template.HTML(body)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
