package handler

import (
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/repository"
	"github.com/daybook-app/daybook/internal/service"
)

var noteCols = []string{
	"id", "user_id", "title", "content", "image_filename",
	"color", "is_public", "public_id", "created_at",
}

func newNoteHandler(t *testing.T) (*NoteHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tags := repository.NewTagRepo(db)
	notes := repository.NewNoteRepo(db, tags)
	return NewNoteHandler(config.Config{}, notes, service.NewRenderCache(nil), zap.NewNop()), mock
}

func TestNoteAddEmptySubmissionIsNoop(t *testing.T) {
	h, mock := newNoteHandler(t)
	e := echo.New()

	c, rec := postForm(e, "/notes/add", url.Values{"title": {""}, "content": {""}})
	asUser(c, 7)
	require.NoError(t, h.Add(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notes", rec.Header().Get("Location"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteShareToggleAJAX(t *testing.T) {
	h, mock := newNoteHandler(t)
	e := echo.New()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM notes WHERE id=\? LIMIT 1`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 7, "Ideas", "text", nil, "card-blue", false, nil, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET is_public=?, public_id=? WHERE id=?")).
		WithArgs(true, sqlmock.AnyArg(), uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := postForm(e, "/note/share/12", nil)
	c.Request().Header.Set("X-Requested-With", "XMLHttpRequest")
	c.SetParamNames("id")
	c.SetParamValues("12")
	asUser(c, 7)
	require.NoError(t, h.ToggleShare(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"success":true`)
	assert.Contains(t, body, `"is_public":true`)
	assert.Contains(t, body, `"public_id":"`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteShareToggleFormRedirects(t *testing.T) {
	h, mock := newNoteHandler(t)
	e := echo.New()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM notes WHERE id=\? LIMIT 1`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 7, "Ideas", "text", nil, "card-blue", true, "pub-1", now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET is_public=?, public_id=? WHERE id=?")).
		WithArgs(false, "pub-1", uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := postForm(e, "/note/share/12", nil)
	c.SetParamNames("id")
	c.SetParamValues("12")
	asUser(c, 7)
	require.NoError(t, h.ToggleShare(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notes", rec.Header().Get("Location"))
}

func TestNoteShareToggleNonOwner(t *testing.T) {
	h, mock := newNoteHandler(t)
	e := echo.New()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM notes WHERE id=\? LIMIT 1`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 99, "Ideas", "text", nil, "card-blue", false, nil, now))

	c, rec := postForm(e, "/note/share/12", nil)
	c.SetParamNames("id")
	c.SetParamValues("12")
	asUser(c, 7)
	require.NoError(t, h.ToggleShare(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet(), "record unchanged for non-owner")
}

func TestNoteDeleteDropsSharedPage(t *testing.T) {
	h, mock := newNoteHandler(t)
	e := echo.New()

	// The public id must be read while the row still exists; expectations
	// are ordered, so a delete that skips the lookup fails here.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT public_id FROM notes WHERE id=? LIMIT 1")).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow("pub-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM notes WHERE id=? LIMIT 1")).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id=?")).
		WithArgs(uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := postForm(e, "/notes/delete/12", nil)
	c.SetParamNames("id")
	c.SetParamValues("12")
	asUser(c, 7)
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notes", rec.Header().Get("Location"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
