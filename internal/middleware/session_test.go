package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/repository"
)

var userCols = []string{
	"id", "email", "password_hash", "name", "auth_token",
	"is_verified", "otp_code", "otp_expires_at", "created_at", "updated_at",
}

func probe(captured **model.User) echo.HandlerFunc {
	return func(c echo.Context) error {
		*captured, _ = c.Get(UserContextKey).(*model.User)
		return c.String(http.StatusOK, "ok")
	}
}

func TestSessionAuthRedirectsWithoutCookie(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *model.User
	h := SessionAuth(repository.NewUserRepo(db))(probe(&got))
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Nil(t, got)
}

func TestSessionAuthRedirectsOnUnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE auth_token=").
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows(userCols))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *model.User
	h := SessionAuth(repository.NewUserRepo(db))(probe(&got))
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Nil(t, got)
}

func TestSessionAuthResolvesUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM users WHERE auth_token=").
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(7, "a@x.com", "hash", nil, "tok-1", true, nil, nil, now, now))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *model.User
	h := SessionAuth(repository.NewUserRepo(db))(probe(&got))
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, "a@x.com", got.Email)
}
