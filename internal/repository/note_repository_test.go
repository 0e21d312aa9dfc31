package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybook-app/daybook/internal/model"
)

var noteCols = []string{
	"id", "user_id", "title", "content", "image_filename",
	"color", "is_public", "public_id", "created_at",
}

func newNoteRepo(t *testing.T) (*NoteRepo, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	return NewNoteRepo(db, NewTagRepo(db)), mock
}

const noteByIDQ = `SELECT .+ FROM notes WHERE id=\? LIMIT 1`

func TestNoteCreateCommitsWithTags(t *testing.T) {
	repo, mock := newNoteRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO notes (user_id, title, content, image_filename, color) VALUES (?,?,?,?,?)")).
		WithArgs(uint64(7), "Ideas", "some text", nil, "card-blue").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(tagLookupQ).WithArgs(uint64(7), "work").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO note_tags (note_id, tag_id) VALUES (?,?)")).
		WithArgs(uint64(12), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	stored := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM notes WHERE id=?")).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(stored))
	mock.ExpectCommit()

	n := &model.Note{UserID: 7, Title: "Ideas", Content: "some text", Color: "card-blue"}
	require.NoError(t, repo.Create(context.Background(), n, "work"))
	assert.Equal(t, uint64(12), n.ID)
	assert.Equal(t, stored, n.CreatedAt, "timestamp comes from the stored row")
	require.Len(t, n.Tags, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleShareAssignsPublicIDOnce(t *testing.T) {
	repo, mock := newNoteRepo(t)
	now := time.Now().UTC()

	// First share: no public id yet, one gets generated.
	mock.ExpectQuery(noteByIDQ).WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 7, "Ideas", "text", nil, "card-blue", false, nil, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET is_public=?, public_id=? WHERE id=?")).
		WithArgs(true, sqlmock.AnyArg(), uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.ToggleShare(context.Background(), 12, 7)
	require.NoError(t, err)
	assert.True(t, n.IsPublic)
	require.NotNil(t, n.PublicID)
	pid := *n.PublicID
	assert.Len(t, pid, 36)

	// Unshare: flag drops, identifier is retained.
	mock.ExpectQuery(noteByIDQ).WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 7, "Ideas", "text", nil, "card-blue", true, pid, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET is_public=?, public_id=? WHERE id=?")).
		WithArgs(false, pid, uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err = repo.ToggleShare(context.Background(), 12, 7)
	require.NoError(t, err)
	assert.False(t, n.IsPublic)
	require.NotNil(t, n.PublicID)
	assert.Equal(t, pid, *n.PublicID)

	// Re-share: the original identifier comes back, not a fresh one.
	mock.ExpectQuery(noteByIDQ).WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 7, "Ideas", "text", nil, "card-blue", false, pid, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET is_public=?, public_id=? WHERE id=?")).
		WithArgs(true, pid, uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err = repo.ToggleShare(context.Background(), 12, 7)
	require.NoError(t, err)
	assert.True(t, n.IsPublic)
	assert.Equal(t, pid, *n.PublicID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleShareRejectsNonOwner(t *testing.T) {
	repo, mock := newNoteRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(noteByIDQ).WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(noteCols).
			AddRow(12, 99, "Ideas", "text", nil, "card-blue", false, nil, now))

	_, err := repo.ToggleShare(context.Background(), 12, 7)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSharedByPublicIDOnlyWhilePublic(t *testing.T) {
	repo, mock := newNoteRepo(t)

	// The query itself carries the is_public predicate, so a retained
	// identifier on an unshared note yields no rows.
	mock.ExpectQuery(regexp.QuoteMeta("WHERE public_id=? AND is_public=TRUE")).
		WithArgs("gone-id").
		WillReturnRows(sqlmock.NewRows(noteCols))

	_, err := repo.GetSharedByPublicID(context.Background(), "gone-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteUpdateReplacesTagsWhenProvided(t *testing.T) {
	repo, mock := newNoteRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM notes WHERE id=? LIMIT 1")).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET title=?, content=?, color=? WHERE id=?")).
		WithArgs("new title", "new text", "card-red", uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM note_tags WHERE note_id=?")).
		WithArgs(uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(tagLookupQ).WithArgs(uint64(7), "fresh").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO note_tags (note_id, tag_id) VALUES (?,?)")).
		WithArgs(uint64(12), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tagCSV := "fresh"
	err := repo.Update(context.Background(), 12, 7, "new title", "new text", "card-red", &tagCSV)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteUpdateLeavesTagsWhenAbsent(t *testing.T) {
	repo, mock := newNoteRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM notes WHERE id=? LIMIT 1")).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notes SET title=?, content=?, color=? WHERE id=?")).
		WithArgs("t", "c", "card-blue", uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), 12, 7, "t", "c", "card-blue", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
