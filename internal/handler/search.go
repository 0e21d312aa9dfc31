package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daybook-app/daybook/internal/repository"
)

// SearchHandler serves the cross-resource free-text search.
type SearchHandler struct {
	Todos *repository.TodoRepo
	Notes *repository.NoteRepo
}

func NewSearchHandler(todos *repository.TodoRepo, notes *repository.NoteRepo) *SearchHandler {
	return &SearchHandler{Todos: todos, Notes: notes}
}

// Search matches the query case-insensitively against todo titles and note
// titles/contents, filtered by ?type= (all, todo or note). An empty query
// yields empty results, not everything.
func (h *SearchHandler) Search(c echo.Context) error {
	u := currentUser(c)
	q := c.QueryParam("q")
	kind := c.QueryParam("type")
	if kind == "" {
		kind = "all"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	todoParts := make([]todoPart, 0)
	noteParts := make([]notePart, 0)

	if q != "" && (kind == "all" || kind == "todo") {
		todos, err := h.Todos.SearchByTitle(ctx, u.ID, q)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
		}
		for _, t := range todos {
			todoParts = append(todoParts, toTodoPart(t))
		}
	}
	if q != "" && (kind == "all" || kind == "note") {
		notes, err := h.Notes.Search(ctx, u.ID, q)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
		}
		for _, n := range notes {
			noteParts = append(noteParts, toNotePart(n))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"query": q,
		"todos": todoParts,
		"notes": noteParts,
	})
}
