package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/repository"
)

// ExportHandler serializes a user's data to a downloadable JSON document.
type ExportHandler struct {
	Todos *repository.TodoRepo
	Notes *repository.NoteRepo
}

func NewExportHandler(todos *repository.TodoRepo, notes *repository.NoteRepo) *ExportHandler {
	return &ExportHandler{Todos: todos, Notes: notes}
}

// The export document deliberately omits internal identifiers and
// credentials: only user-visible fields appear.
type exportTodo struct {
	Title      string   `json:"title"`
	IsComplete bool     `json:"is_complete"`
	CreatedAt  string   `json:"created_at"`
	DueDate    *string  `json:"due_date"`
	Tags       []string `json:"tags"`
}

type exportNote struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Color     string   `json:"color"`
	CreatedAt string   `json:"created_at"`
	Tags      []string `json:"tags"`
	IsPublic  bool     `json:"is_public"`
}

type exportDoc struct {
	Todos []exportTodo `json:"todos"`
	Notes []exportNote `json:"notes"`
}

// buildExport assembles the document for a user's todos and notes.
// Timestamps are ISO-8601.
func buildExport(todos []*model.Todo, notes []*model.Note) exportDoc {
	doc := exportDoc{Todos: make([]exportTodo, 0, len(todos)), Notes: make([]exportNote, 0, len(notes))}
	for _, t := range todos {
		et := exportTodo{
			Title:      t.Title,
			IsComplete: t.IsComplete,
			CreatedAt:  t.CreatedAt.Format(time.RFC3339),
			Tags:       tagNames(t.Tags),
		}
		if t.DueDate != nil {
			d := t.DueDate.Format(time.RFC3339)
			et.DueDate = &d
		}
		doc.Todos = append(doc.Todos, et)
	}
	for _, n := range notes {
		doc.Notes = append(doc.Notes, exportNote{
			Title:     n.Title,
			Content:   n.Content,
			Color:     n.Color,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
			Tags:      tagNames(n.Tags),
			IsPublic:  n.IsPublic,
		})
	}
	return doc
}

// Export streams the user's data as an attachment named backup.json.
func (h *ExportHandler) Export(c echo.Context) error {
	u := currentUser(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	todos, err := h.Todos.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	notes, err := h.Notes.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	body, err := json.MarshalIndent(buildExport(todos, notes), "", "  ")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename=backup.json`)
	return c.Blob(http.StatusOK, "application/json", body)
}
