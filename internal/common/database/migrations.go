// internal/common/database/migrations.go
// Idempotent schema bootstrap for the discovery tables

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Migrations is the ordered list of statements RunMigrations executes.
var Migrations = []string{
	// Profiles are owned by the profile service; discovery only reads them.
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		display_name VARCHAR(100) NOT NULL DEFAULT '',
		age INTEGER,
		gender VARCHAR(32),
		bio TEXT,
		fitness_level VARCHAR(32),
		primary_goal VARCHAR(100),
		interests TEXT[] NOT NULL DEFAULT '{}',
		workout_times TEXT[] NOT NULL DEFAULT '{}',
		location_name VARCHAR(255),
		location_lat DOUBLE PRECISION,
		location_lng DOUBLE PRECISION,
		is_snoozed BOOLEAN NOT NULL DEFAULT FALSE,
		is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS likes (
		id BIGSERIAL PRIMARY KEY,
		from_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		to_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		is_super BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT unique_like_edge UNIQUE (from_user_id, to_user_id)
	)`,

	// user1_id < user2_id so the unique constraint covers both orderings
	`CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY,
		user1_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user2_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		last_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT unique_match_pair UNIQUE (user1_id, user2_id),
		CONSTRAINT ordered_match_pair CHECK (user1_id < user2_id)
	)`,

	`CREATE TABLE IF NOT EXISTS blocks (
		id BIGSERIAL PRIMARY KEY,
		blocker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		blocked_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT unique_block UNIQUE (blocker_id, blocked_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_signals (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		prompt_count INTEGER NOT NULL DEFAULT 0,
		response_count INTEGER NOT NULL DEFAULT 0,
		positive_matches INTEGER NOT NULL DEFAULT 0,
		negative_flags INTEGER NOT NULL DEFAULT 0,
		last_boost_at TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_eligible ON users(id) WHERE is_snoozed = FALSE AND is_hidden = FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_likes_to_user ON likes(to_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches(user2_id)`,
	`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id)`,
}

// RunMigrations executes every statement in Migrations in order
func RunMigrations(ctx context.Context, db *sqlx.DB, log zerolog.Logger) error {
	for i, migration := range Migrations {
		log.Debug().Msgf("   - Running migration %d/%d...", i+1, len(Migrations))
		if _, err := db.ExecContext(ctx, migration); err != nil {
			// Concurrent bootstraps can race on index creation
			if strings.Contains(err.Error(), "already exists") {
				log.Debug().Msgf("   - Migration %d skipped (already exists)", i+1)
				continue
			}
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
