package database

import (
	"context"
	"database/sql"
	"time"
)

// schema contains the DDL for all application tables. Statements use
// IF NOT EXISTS so startup is idempotent, mirroring how the service is
// deployed: the first boot against an empty database creates everything.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email          VARCHAR(120) NOT NULL UNIQUE,
		password_hash  VARCHAR(128) NOT NULL,
		name           VARCHAR(120) NULL,
		auth_token     VARCHAR(36) NULL UNIQUE,
		is_verified    BOOLEAN NOT NULL DEFAULT FALSE,
		otp_code       VARCHAR(6) NULL,
		otp_expires_at DATETIME NULL,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tags (
		id      BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		name    VARCHAR(50) NOT NULL,
		CONSTRAINT fk_tags_user FOREIGN KEY (user_id) REFERENCES users(id),
		INDEX idx_tags_user_name (user_id, name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS todos (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id     BIGINT UNSIGNED NOT NULL,
		title       VARCHAR(100) NOT NULL,
		is_complete BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		due_date    DATETIME NULL,
		CONSTRAINT fk_todos_user FOREIGN KEY (user_id) REFERENCES users(id),
		INDEX idx_todos_user_created (user_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notes (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		title          VARCHAR(200) NULL,
		content        TEXT NULL,
		image_filename VARCHAR(255) NULL,
		color          VARCHAR(20) NOT NULL DEFAULT 'card-blue',
		is_public      BOOLEAN NOT NULL DEFAULT FALSE,
		public_id      VARCHAR(36) NULL UNIQUE,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_notes_user FOREIGN KEY (user_id) REFERENCES users(id),
		INDEX idx_notes_user_created (user_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS todo_tags (
		todo_id BIGINT UNSIGNED NOT NULL,
		tag_id  BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (todo_id, tag_id),
		CONSTRAINT fk_todo_tags_todo FOREIGN KEY (todo_id) REFERENCES todos(id) ON DELETE CASCADE,
		CONSTRAINT fk_todo_tags_tag FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS note_tags (
		note_id BIGINT UNSIGNED NOT NULL,
		tag_id  BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (note_id, tag_id),
		CONSTRAINT fk_note_tags_note FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE,
		CONSTRAINT fk_note_tags_tag FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables. Safe to call on every startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
