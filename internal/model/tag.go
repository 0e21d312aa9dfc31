package model

// Tag is a free-text label owned by a single user and attached to todos and
// notes through join tables. Names are matched case-sensitively on lookup,
// so "Work" and "work" are distinct tags. Tags are created lazily the first
// time a name is referenced and are never deleted.
type Tag struct {
	ID     uint64
	UserID uint64
	Name   string
}
