package db

import (
	"context"
	"fmt"
	"mindease/pkg/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.Config) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logrus.Info("connected to PostgreSQL")
	return db, nil
}

// Migrate creates the tables the service needs if they are missing.
// The (user_id, badge_name) unique constraint on user_achievements is what
// keeps concurrent evaluation passes from awarding a badge twice.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logrus.Info("database schema is up to date")
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
	content    TEXT NOT NULL,
	platform   TEXT NOT NULL DEFAULT 'web',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_user_created ON chat_messages(user_id, created_at);

CREATE TABLE IF NOT EXISTS mood_entries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	mood_level INTEGER NOT NULL CHECK (mood_level BETWEEN 1 AND 5),
	mood_type  TEXT NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_mood_entries_user ON mood_entries(user_id, created_at);

CREATE TABLE IF NOT EXISTS journal_entries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	mood       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_user ON journal_entries(user_id, created_at);

CREATE TABLE IF NOT EXISTS gratitude_entries (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_gratitude_entries_user ON gratitude_entries(user_id, created_at);

CREATE TABLE IF NOT EXISTS user_streaks (
	user_id            TEXT PRIMARY KEY,
	current_streak     INTEGER NOT NULL DEFAULT 0,
	longest_streak     INTEGER NOT NULL DEFAULT 0,
	last_activity_date DATE NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (longest_streak >= current_streak)
);

CREATE TABLE IF NOT EXISTS user_achievements (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	badge_name TEXT NOT NULL,
	earned_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, badge_name)
);
`
