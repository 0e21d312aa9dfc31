package model

import "time"

// Todo is a single task on a user's list. The due date is optional; listing
// orders by due date ascending, then creation time descending. There is no
// update-in-place for title or due date: the only mutations are the
// completion toggle and deletion.
type Todo struct {
	ID         uint64
	UserID     uint64
	Title      string
	IsComplete bool
	CreatedAt  time.Time
	DueDate    *time.Time
	Tags       []Tag
}
