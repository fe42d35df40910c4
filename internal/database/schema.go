package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cargarn1/MovieFan/internal/logging"
)

// migrations are idempotent and run in order on every start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(50)  NOT NULL UNIQUE,
		email         VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id            BIGINT UNSIGNED PRIMARY KEY,
		favorite_genres    VARCHAR(500) NOT NULL DEFAULT '',
		favorite_directors VARCHAR(500) NOT NULL DEFAULT '',
		favorite_actors    VARCHAR(500) NOT NULL DEFAULT '',
		min_rating         TINYINT UNSIGNED NOT NULL DEFAULT 0,
		preferred_decades  VARCHAR(100) NOT NULL DEFAULT '',
		created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_prefs_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title          VARCHAR(200) NOT NULL,
		year           INT NULL,
		genre          VARCHAR(200) NOT NULL DEFAULT '',
		director       VARCHAR(200) NOT NULL DEFAULT '',
		cast_list      VARCHAR(500) NOT NULL DEFAULT '',
		plot           TEXT NULL,
		imdb_rating    VARCHAR(10) NOT NULL DEFAULT '',
		average_rating VARCHAR(10) NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_movies_title (title)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(200) NOT NULL,
		description TEXT NULL,
		movie_id    BIGINT UNSIGNED NOT NULL,
		creator_id  BIGINT UNSIGNED NOT NULL,
		is_private  BOOLEAN NOT NULL DEFAULT FALSE,
		max_members INT NOT NULL DEFAULT 50,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_rooms_movie (movie_id),
		CONSTRAINT fk_rooms_movie FOREIGN KEY (movie_id) REFERENCES movies(id),
		CONSTRAINT fk_rooms_creator FOREIGN KEY (creator_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS room_members (
		room_id   BIGINT UNSIGNED NOT NULL,
		user_id   BIGINT UNSIGNED NOT NULL,
		joined_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (room_id, user_id),
		INDEX idx_room_members_user (user_id),
		CONSTRAINT fk_members_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
		CONSTRAINT fk_members_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	// pending_invitee is NULL once an invitation leaves the pending state, so
	// the unique key only constrains pending rows.
	`CREATE TABLE IF NOT EXISTS invitations (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		room_id         BIGINT UNSIGNED NOT NULL,
		inviter_id      BIGINT UNSIGNED NOT NULL,
		invitee_id      BIGINT UNSIGNED NOT NULL,
		status          VARCHAR(20) NOT NULL DEFAULT 'pending',
		message         TEXT NULL,
		pending_invitee BIGINT UNSIGNED AS (IF(status = 'pending', invitee_id, NULL)) STORED,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_invitations_pending (room_id, pending_invitee),
		INDEX idx_invitations_invitee (invitee_id, status),
		CONSTRAINT fk_invitations_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
	)`,
}

// Migrate applies the schema.  Every statement is safe to re-run.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	logging.Info().Int("statements", len(migrations)).Msg("database migrations completed")
	return nil
}
