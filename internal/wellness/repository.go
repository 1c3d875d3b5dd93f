package wellness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertMood(ctx context.Context, userID string, level int, moodType, notes string) (*MoodEntry, error) {
	query := `
		INSERT INTO mood_entries (id, user_id, mood_level, mood_type, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, mood_level, mood_type, notes, created_at
	`
	var entry MoodEntry
	if err := r.db.GetContext(ctx, &entry, query, uuid.NewString(), userID, level, moodType, notes); err != nil {
		return nil, fmt.Errorf("failed to insert mood entry for user %s: %w", userID, err)
	}
	return &entry, nil
}

func (r *Repository) ListMoods(ctx context.Context, userID string, limit int) ([]MoodEntry, error) {
	query := `
		SELECT id, user_id, mood_level, mood_type, notes, created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	entries := []MoodEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list mood entries for user %s: %w", userID, err)
	}
	return entries, nil
}

func (r *Repository) InsertJournal(ctx context.Context, userID, title, content, mood string) (*JournalEntry, error) {
	query := `
		INSERT INTO journal_entries (id, user_id, title, content, mood, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, title, content, mood, created_at
	`
	var entry JournalEntry
	if err := r.db.GetContext(ctx, &entry, query, uuid.NewString(), userID, title, content, mood); err != nil {
		return nil, fmt.Errorf("failed to insert journal entry for user %s: %w", userID, err)
	}
	return &entry, nil
}

func (r *Repository) ListJournal(ctx context.Context, userID string, limit int) ([]JournalEntry, error) {
	query := `
		SELECT id, user_id, title, content, mood, created_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	entries := []JournalEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list journal entries for user %s: %w", userID, err)
	}
	return entries, nil
}

func (r *Repository) InsertGratitude(ctx context.Context, userID, content string) (*GratitudeEntry, error) {
	query := `
		INSERT INTO gratitude_entries (id, user_id, content, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, user_id, content, created_at
	`
	var entry GratitudeEntry
	if err := r.db.GetContext(ctx, &entry, query, uuid.NewString(), userID, content); err != nil {
		return nil, fmt.Errorf("failed to insert gratitude entry for user %s: %w", userID, err)
	}
	return &entry, nil
}

func (r *Repository) ListGratitude(ctx context.Context, userID string, limit int) ([]GratitudeEntry, error) {
	query := `
		SELECT id, user_id, content, created_at
		FROM gratitude_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	entries := []GratitudeEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list gratitude entries for user %s: %w", userID, err)
	}
	return entries, nil
}

func (r *Repository) CountMoods(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM mood_entries WHERE user_id = $1", userID)
}

func (r *Repository) CountJournal(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM journal_entries WHERE user_id = $1", userID)
}

func (r *Repository) CountGratitude(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM gratitude_entries WHERE user_id = $1", userID)
}

func (r *Repository) count(ctx context.Context, query, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("count query failed for user %s: %w", userID, err)
	}
	return n, nil
}

// GetStreak returns nil when the user has no recorded activity yet.
func (r *Repository) GetStreak(ctx context.Context, userID string) (*Streak, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_activity_date
		FROM user_streaks
		WHERE user_id = $1
	`
	var streak Streak
	err := r.db.GetContext(ctx, &streak, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load streak for user %s: %w", userID, err)
	}
	return &streak, nil
}

// TouchStreak records activity on day today. The row is locked for the
// read-modify-write so two entries logged at once cannot both extend it.
func (r *Repository) TouchStreak(ctx context.Context, userID string, today time.Time) (*Streak, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin streak update: %w", err)
	}
	defer tx.Rollback()

	var prev Streak
	var current *Streak
	err = tx.GetContext(ctx, &prev, `
		SELECT user_id, current_streak, longest_streak, last_activity_date
		FROM user_streaks
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to load streak for user %s: %w", userID, err)
	default:
		current = &prev
	}

	next := NextStreak(current, userID, today)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_streaks (user_id, current_streak, longest_streak, last_activity_date, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_activity_date = EXCLUDED.last_activity_date,
			updated_at = NOW()
	`, next.UserID, next.CurrentStreak, next.LongestStreak, next.LastActivityDate)
	if err != nil {
		return nil, fmt.Errorf("failed to save streak for user %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit streak update: %w", err)
	}
	return &next, nil
}
