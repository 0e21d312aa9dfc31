package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/daybook-app/daybook/internal/model"
)

// TodoRepo encapsulates all queries against the todos table and its tag
// join table. Mutations re-fetch the row and verify ownership before
// touching anything.
type TodoRepo struct {
	DB   *sql.DB
	Tags *TagRepo
}

func NewTodoRepo(db *sql.DB, tags *TagRepo) *TodoRepo { return &TodoRepo{DB: db, Tags: tags} }

// Create inserts a todo and attaches the tags named in tagString. Insert
// and tag attachment commit in a single transaction.
func (r *TodoRepo) Create(ctx context.Context, userID uint64, title string, dueDate *time.Time, tagString string) (*model.Todo, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO todos (user_id, title, due_date) VALUES (?,?,?)",
		userID, title, dueDate)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	tags, err := r.Tags.Resolve(ctx, tx, userID, tagString)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO todo_tags (todo_id, tag_id) VALUES (?,?)", id, t.ID); err != nil {
			return nil, err
		}
	}

	// created_at comes from the database, not the application clock.
	var createdAt time.Time
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM todos WHERE id=?", id).Scan(&createdAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &model.Todo{
		ID:        uint64(id),
		UserID:    userID,
		Title:     title,
		DueDate:   dueDate,
		CreatedAt: createdAt,
		Tags:      tags,
	}, nil
}

// ListByOwner returns all of a user's todos ordered by due date ascending
// (NULL due dates first, matching how the store sorts them) then creation
// time descending, with tags attached.
func (r *TodoRepo) ListByOwner(ctx context.Context, userID uint64) ([]*model.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, title, is_complete, created_at, due_date
		 FROM todos WHERE user_id=? ORDER BY due_date ASC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos, err := scanTodos(rows)
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, todos)
}

// SearchByTitle returns the user's todos whose title contains q,
// case-insensitively. An empty query returns no rows.
func (r *TodoRepo) SearchByTitle(ctx context.Context, userID uint64, q string) ([]*model.Todo, error) {
	if q == "" {
		return nil, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, title, is_complete, created_at, due_date
		 FROM todos WHERE user_id=? AND LOWER(title) LIKE LOWER(CONCAT('%', ?, '%'))`,
		userID, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos, err := scanTodos(rows)
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, todos)
}

// ToggleComplete flips the completion flag. The row is re-fetched first:
// an unknown id returns ErrNotFound and an ownership mismatch returns
// ErrForbidden with the record unchanged.
func (r *TodoRepo) ToggleComplete(ctx context.Context, id, ownerID uint64) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE todos SET is_complete = NOT is_complete WHERE id=?", id)
	return err
}

// Delete removes a todo; join rows cascade. Ownership is verified first.
func (r *TodoRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM todos WHERE id=?", id)
	return err
}

func (r *TodoRepo) checkOwner(ctx context.Context, id, ownerID uint64) error {
	var uid uint64
	err := r.DB.QueryRowContext(ctx, "SELECT user_id FROM todos WHERE id=? LIMIT 1", id).Scan(&uid)
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

func (r *TodoRepo) attachTags(ctx context.Context, todos []*model.Todo) ([]*model.Todo, error) {
	ids := make([]uint64, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	tagsByID, err := r.Tags.ForTodos(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range todos {
		t.Tags = tagsByID[t.ID]
	}
	return todos, nil
}

func scanTodos(rows *sql.Rows) ([]*model.Todo, error) {
	var out []*model.Todo
	for rows.Next() {
		t := new(model.Todo)
		var due sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.IsComplete, &t.CreatedAt, &due); err != nil {
			return nil, err
		}
		if due.Valid {
			d := due.Time
			t.DueDate = &d
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
