package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/internal/service"
)

func newSharedHandler(t *testing.T) (*SharedHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tags := repository.NewTagRepo(db)
	notes := repository.NewNoteRepo(db, tags)
	return NewSharedHandler(notes, service.NewRenderCache(nil), zap.NewNop()), mock
}

func getShared(e *echo.Echo, publicID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/shared/"+publicID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("publicID")
	c.SetParamValues(publicID)
	return c, rec
}

func TestSharedShowRendersMarkdown(t *testing.T) {
	h, mock := newSharedHandler(t)
	e := echo.New()

	now := time.Now().UTC()
	pid := "pub-1"
	mock.ExpectQuery(`SELECT .+ FROM notes WHERE public_id=\? AND is_public=TRUE LIMIT 1`).
		WithArgs("pub-1").
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 7, "Ideas", "# Heading\n\nSome *notes*.", nil, "card-blue", true, pid, now))
	mock.ExpectQuery(`SELECT nt.note_id, t.id, t.user_id, t.name FROM note_tags nt`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"note_id", "id", "user_id", "name"}))

	c, rec := getShared(e, "pub-1")
	require.NoError(t, h.Show(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Ideas</h1>")
	assert.Contains(t, body, "Heading</h1>")
	assert.Contains(t, body, "<em>notes</em>")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSharedShowUnknownOrUnsharedIs404(t *testing.T) {
	h, mock := newSharedHandler(t)
	e := echo.New()

	// An unshared note keeps its public_id, but the lookup filters on
	// is_public, so the row never comes back.
	mock.ExpectQuery(`SELECT .+ FROM notes WHERE public_id=\? AND is_public=TRUE LIMIT 1`).
		WithArgs("pub-gone").
		WillReturnRows(sqlmock.NewRows(noteCols))

	c, rec := getShared(e, "pub-gone")
	require.NoError(t, h.Show(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "note not found", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderSharedPageSanitizes(t *testing.T) {
	n := &model.Note{
		Title:   "With script",
		Color:   "card-red",
		Content: "hello\n\n<script>alert(1)</script>\n\n<img src=\"x.png\" onerror=\"alert(2)\">",
	}

	page, err := renderSharedPage(n)
	require.NoError(t, err)

	assert.Contains(t, page, "hello")
	assert.Contains(t, page, `<img src="x.png"`)
	assert.NotContains(t, page, "<script>")
	assert.NotContains(t, page, "onerror")
	assert.NotContains(t, page, "alert(1)")
}
