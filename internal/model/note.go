package model

import "time"

// Note is a free-text note with an optional image and a color class used by
// the frontend cards. A note can be shared publicly: the first share assigns
// a PublicID which is never cleared or reassigned, so toggling sharing off
// and on again keeps the same public URL. ImageFilename is the sanitized
// name of an uploaded file under the configured upload directory.
type Note struct {
	ID            uint64
	UserID        uint64
	Title         string
	Content       string
	ImageFilename *string
	Color         string
	IsPublic      bool
	PublicID      *string
	CreatedAt     time.Time
	Tags          []Tag
}
