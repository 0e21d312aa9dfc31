package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/utils"
)

const noteColumns = "id, user_id, title, content, image_filename, color, is_public, public_id, created_at"

// NoteRepo encapsulates all queries against the notes table and its tag
// join table.
type NoteRepo struct {
	DB   *sql.DB
	Tags *TagRepo
}

func NewNoteRepo(db *sql.DB, tags *TagRepo) *NoteRepo { return &NoteRepo{DB: db, Tags: tags} }

// Create inserts a note and attaches the tags named in tagString, all in
// one transaction. On success n.ID, n.CreatedAt and n.Tags are populated.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note, tagString string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO notes (user_id, title, content, image_filename, color) VALUES (?,?,?,?,?)",
		n.UserID, n.Title, n.Content, n.ImageFilename, n.Color)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)

	tags, err := r.Tags.Resolve(ctx, tx, n.UserID, tagString)
	if err != nil {
		return err
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO note_tags (note_id, tag_id) VALUES (?,?)", n.ID, t.ID); err != nil {
			return err
		}
	}

	// created_at comes from the database, not the application clock.
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM notes WHERE id=?", n.ID).Scan(&n.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	n.Tags = tags
	return nil
}

// ListByOwner returns all of a user's notes, newest first, with tags
// attached.
func (r *NoteRepo) ListByOwner(ctx context.Context, userID uint64) ([]*model.Note, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, notes)
}

// Search returns the user's notes whose title or content contains q,
// case-insensitively. An empty query returns no rows.
func (r *NoteRepo) Search(ctx context.Context, userID uint64, q string) ([]*model.Note, error) {
	if q == "" {
		return nil, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+noteColumns+` FROM notes
		 WHERE user_id=? AND (LOWER(title) LIKE LOWER(CONCAT('%', ?, '%'))
		   OR LOWER(content) LIKE LOWER(CONCAT('%', ?, '%')))`,
		userID, q, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, notes)
}

// Update replaces title, content and color. When tagString is non-nil the
// tag set is replaced as well; a nil tagString leaves attachments alone.
// Ownership is verified against the stored row first.
func (r *NoteRepo) Update(ctx context.Context, id, ownerID uint64, title, content, color string, tagString *string) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE notes SET title=?, content=?, color=? WHERE id=?",
		title, content, color, id); err != nil {
		return err
	}
	if tagString != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id=?", id); err != nil {
			return err
		}
		tags, err := r.Tags.Resolve(ctx, tx, ownerID, *tagString)
		if err != nil {
			return err
		}
		for _, t := range tags {
			if _, err := tx.ExecContext(ctx,
				"INSERT IGNORE INTO note_tags (note_id, tag_id) VALUES (?,?)", id, t.ID); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Delete removes a note; join rows cascade. Ownership is verified first.
func (r *NoteRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM notes WHERE id=?", id)
	return err
}

// ToggleShare flips the public flag. The first time a note becomes public
// it is assigned a fresh public identifier; the identifier is kept on
// unshare and reused on any later re-share, so a note's public URL is
// stable for its lifetime. Returns the updated note.
func (r *NoteRepo) ToggleShare(ctx context.Context, id, ownerID uint64) (*model.Note, error) {
	n, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != ownerID {
		return nil, ErrForbidden
	}

	n.IsPublic = !n.IsPublic
	if n.IsPublic && n.PublicID == nil {
		pid := utils.NewPublicID()
		n.PublicID = &pid
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE notes SET is_public=?, public_id=? WHERE id=?",
		n.IsPublic, n.PublicID, id); err != nil {
		return nil, err
	}
	return n, nil
}

// GetSharedByPublicID returns the note with the given public identifier,
// but only while it is currently shared. An unshared note's retained
// identifier resolves to ErrNotFound.
func (r *NoteRepo) GetSharedByPublicID(ctx context.Context, publicID string) (*model.Note, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE public_id=? AND is_public=TRUE LIMIT 1", publicID)
	n, err := scanNote(row)
	if err != nil {
		return nil, err
	}
	tagsByID, err := r.Tags.ForNotes(ctx, []uint64{n.ID})
	if err != nil {
		return nil, err
	}
	n.Tags = tagsByID[n.ID]
	return n, nil
}

// PublicIDOf returns the note's public identifier, or nil when none has
// been assigned yet. Unknown ids map to ErrNotFound.
func (r *NoteRepo) PublicIDOf(ctx context.Context, id uint64) (*string, error) {
	var pid sql.NullString
	err := r.DB.QueryRowContext(ctx, "SELECT public_id FROM notes WHERE id=? LIMIT 1", id).Scan(&pid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !pid.Valid {
		return nil, nil
	}
	return &pid.String, nil
}

func (r *NoteRepo) getByID(ctx context.Context, id uint64) (*model.Note, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id=? LIMIT 1", id)
	return scanNote(row)
}

func (r *NoteRepo) checkOwner(ctx context.Context, id, ownerID uint64) error {
	var uid uint64
	err := r.DB.QueryRowContext(ctx, "SELECT user_id FROM notes WHERE id=? LIMIT 1", id).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if uid != ownerID {
		return ErrForbidden
	}
	return nil
}

func (r *NoteRepo) attachTags(ctx context.Context, notes []*model.Note) ([]*model.Note, error) {
	ids := make([]uint64, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	tagsByID, err := r.Tags.ForNotes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		n.Tags = tagsByID[n.ID]
	}
	return notes, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanNoteFields(s rowScanner) (*model.Note, error) {
	n := new(model.Note)
	var title, content, image, publicID sql.NullString
	if err := s.Scan(&n.ID, &n.UserID, &title, &content, &image,
		&n.Color, &n.IsPublic, &publicID, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Title = title.String
	n.Content = content.String
	if image.Valid {
		n.ImageFilename = &image.String
	}
	if publicID.Valid {
		n.PublicID = &publicID.String
	}
	return n, nil
}

func scanNote(row *sql.Row) (*model.Note, error) {
	n, err := scanNoteFields(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

func scanNotes(rows *sql.Rows) ([]*model.Note, error) {
	var out []*model.Note
	for rows.Next() {
		n, err := scanNoteFields(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
