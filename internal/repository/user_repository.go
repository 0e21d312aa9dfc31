package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/daybook-app/daybook/internal/model"
	"github.com/daybook-app/daybook/internal/utils"
)

const userColumns = "id,email,password_hash,name,auth_token,is_verified,otp_code,otp_expires_at,created_at,updated_at"

// UserRepo encapsulates all queries against the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an unverified user and returns its ID. The email is
// normalized to lower case before insert; a duplicate maps the MySQL 1062
// violation to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?,?)",
		email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByToken fetches the user whose current session token matches exactly.
// This is the session validation lookup: ErrNotFound here means "not
// authenticated", not a server failure.
func (r *UserRepo) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE auth_token=? LIMIT 1", token)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var (
		u      model.User
		name   sql.NullString
		token  sql.NullString
		otp    sql.NullString
		otpExp sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &name, &token,
		&u.IsVerified, &otp, &otpExp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	if token.Valid {
		u.AuthToken = &token.String
	}
	if otp.Valid {
		u.OTPCode = &otp.String
	}
	if otpExp.Valid {
		t := otpExp.Time
		u.OTPExpiresAt = &t
	}
	return &u, nil
}

// SetToken stores a fresh session token, overwriting any previous one. The
// old session becomes invalid at that moment.
func (r *UserRepo) SetToken(ctx context.Context, id uint64, token string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET auth_token=? WHERE id=?", token, id)
	return err
}

// ClearToken revokes the user's current session.
func (r *UserRepo) ClearToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET auth_token=NULL WHERE id=?", id)
	return err
}

// SetOTP stores a pending passcode and its expiry, replacing any earlier
// passcode entirely.
func (r *UserRepo) SetOTP(ctx context.Context, id uint64, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET otp_code=?, otp_expires_at=? WHERE id=?",
		code, expiresAt, id)
	return err
}

// MarkVerified completes the passcode flow: the account becomes verified
// and the pending passcode fields are cleared.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_verified=TRUE, otp_code=NULL, otp_expires_at=NULL WHERE id=?", id)
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateName sets the display name.
func (r *UserRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET name=? WHERE id=?", name, id)
	return err
}
