package model

import "time"

// User represents an application account as stored in the `users` table.
// Accounts are created unverified; a one-time passcode sent by email moves
// them to verified. The session token is an opaque value stored directly on
// the row: issuing a new one invalidates any previous session.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Name         – optional display name.
//	AuthToken    – current session token (nil when logged out).
//	IsVerified   – whether the passcode flow has completed.
//	OTPCode      – pending one-time passcode (nil when none issued).
//	OTPExpiresAt – expiry of the pending passcode.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Name         *string
	AuthToken    *string
	IsVerified   bool
	OTPCode      *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
