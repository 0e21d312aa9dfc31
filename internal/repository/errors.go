// Package repository contains data access logic separated from HTTP
// handlers. The sentinel errors below let handlers distinguish failure
// scenarios: ErrNotFound maps to HTTP 404, ErrForbidden to 403 (or a
// silent no-op redirect on form flows), and ErrEmailExists to a
// user-visible duplicate-registration message.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned on registration with an already-used email.
var ErrEmailExists = errors.New("email already exists")
