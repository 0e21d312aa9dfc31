package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/repository"
)

// TodoHandler bundles dependencies for todo list endpoints.
type TodoHandler struct {
	Todos *repository.TodoRepo
	Log   *zap.Logger
}

func NewTodoHandler(todos *repository.TodoRepo, log *zap.Logger) *TodoHandler {
	return &TodoHandler{Todos: todos, Log: log}
}

type todoPart struct {
	ID         uint64   `json:"id"`
	Title      string   `json:"title"`
	IsComplete bool     `json:"is_complete"`
	CreatedAt  string   `json:"created_at"`
	DueDate    *string  `json:"due_date"`
	Tags       []string `json:"tags"`
}

func toTodoPart(t *model.Todo) todoPart {
	p := todoPart{
		ID:         t.ID,
		Title:      t.Title,
		IsComplete: t.IsComplete,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
		Tags:       tagNames(t.Tags),
	}
	if t.DueDate != nil {
		d := t.DueDate.Format("2006-01-02")
		p.DueDate = &d
	}
	return p
}

// Index lists the user's todos ordered by due date, then creation time.
func (h *TodoHandler) Index(c echo.Context) error {
	u := currentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	todos, err := h.Todos.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list todos failed"})
	}
	parts := make([]todoPart, 0, len(todos))
	for _, t := range todos {
		parts = append(parts, toTodoPart(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"todos": parts})
}

// Add creates a todo from the submitted form. A blank title is silently
// dropped and an unparseable due date is ignored, matching the form flow:
// the client is redirected back to the list either way.
func (h *TodoHandler) Add(c echo.Context) error {
	u := currentUser(c)
	title := c.FormValue("title")
	if title == "" {
		return c.Redirect(http.StatusFound, "/")
	}

	var dueDate *time.Time
	if s := c.FormValue("due_date"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			dueDate = &d
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Todos.Create(ctx, u.ID, title, dueDate, c.FormValue("tags")); err != nil {
		h.Log.Error("create todo failed", zap.Error(err), zap.Uint64("user_id", u.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create todo failed"})
	}
	return c.Redirect(http.StatusFound, "/")
}

// Update toggles a todo's completion flag. A non-owner caller is redirected
// with the record untouched; an unknown id is a 404.
func (h *TodoHandler) Update(c echo.Context) error {
	return h.mutate(c, h.Todos.ToggleComplete)
}

// Delete removes a todo, with the same ownership semantics as Update.
func (h *TodoHandler) Delete(c echo.Context) error {
	return h.mutate(c, h.Todos.Delete)
}

func (h *TodoHandler) mutate(c echo.Context, op func(ctx context.Context, id, ownerID uint64) error) error {
	u := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	switch err := op(ctx, id, u.ID); {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "todo not found"})
	case errors.Is(err, repository.ErrForbidden):
		// Silent no-op: a non-owner sees the same redirect as success.
		return c.Redirect(http.StatusFound, "/")
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update todo failed"})
	}
	return c.Redirect(http.StatusFound, "/")
}
