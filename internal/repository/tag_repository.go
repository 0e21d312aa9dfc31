package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/daybook-app/daybook/internal/model"
)

// TagRepo resolves tag names to owned tag rows and loads tag attachments
// for todos and notes.
type TagRepo struct{ DB *sql.DB }

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{DB: db} }

// SplitTagString parses a comma-separated tag field: split on commas, trim
// whitespace, drop empties. Order and case are preserved; a string that
// names the same tag twice yields the name twice.
func SplitTagString(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Resolve maps a comma-separated tag string to tag rows owned by userID,
// creating any that do not exist yet. The lookup is case-sensitive (BINARY
// comparison), so differently-cased submissions of the same word produce
// distinct tags. Runs inside the caller's transaction so a resource and its
// tags commit as a unit.
func (r *TagRepo) Resolve(ctx context.Context, tx *sql.Tx, userID uint64, tagString string) ([]model.Tag, error) {
	var tags []model.Tag
	for _, name := range SplitTagString(tagString) {
		var id uint64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM tags WHERE user_id=? AND BINARY name=? LIMIT 1",
			userID, name).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			res, err := tx.ExecContext(ctx,
				"INSERT INTO tags (user_id, name) VALUES (?,?)", userID, name)
			if err != nil {
				return nil, err
			}
			newID, err := res.LastInsertId()
			if err != nil {
				return nil, err
			}
			id = uint64(newID)
		case err != nil:
			return nil, err
		}
		tags = append(tags, model.Tag{ID: id, UserID: userID, Name: name})
	}
	return tags, nil
}

// ForTodos returns the tags attached to each of the given todos, keyed by
// todo id. An empty id list returns an empty map without touching the DB.
func (r *TagRepo) ForTodos(ctx context.Context, todoIDs []uint64) (map[uint64][]model.Tag, error) {
	return r.forResources(ctx, "SELECT tt.todo_id, t.id, t.user_id, t.name FROM todo_tags tt JOIN tags t ON t.id = tt.tag_id WHERE tt.todo_id IN", todoIDs)
}

// ForNotes returns the tags attached to each of the given notes, keyed by
// note id.
func (r *TagRepo) ForNotes(ctx context.Context, noteIDs []uint64) (map[uint64][]model.Tag, error) {
	return r.forResources(ctx, "SELECT nt.note_id, t.id, t.user_id, t.name FROM note_tags nt JOIN tags t ON t.id = nt.tag_id WHERE nt.note_id IN", noteIDs)
}

func (r *TagRepo) forResources(ctx context.Context, queryPrefix string, ids []uint64) (map[uint64][]model.Tag, error) {
	out := make(map[uint64][]model.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat(",?", len(ids))[1:]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx, queryPrefix+" ("+placeholders+") ORDER BY t.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resourceID uint64
		var t model.Tag
		if err := rows.Scan(&resourceID, &t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		out[resourceID] = append(out[resourceID], t)
	}
	return out, rows.Err()
}
