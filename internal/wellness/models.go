package wellness

import "time"

type MoodEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	MoodLevel int       `db:"mood_level" json:"mood_level"`
	MoodType  string    `db:"mood_type" json:"mood_type"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type JournalEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Mood      string    `db:"mood" json:"mood,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type GratitudeEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Streak struct {
	UserID           string    `db:"user_id" json:"user_id"`
	CurrentStreak    int       `db:"current_streak" json:"current_streak"`
	LongestStreak    int       `db:"longest_streak" json:"longest_streak"`
	LastActivityDate time.Time `db:"last_activity_date" json:"last_activity_date"`
}

// MoodTypes are the labels the mood tracker offers.
var MoodTypes = []string{"happy", "calm", "content", "neutral", "anxious", "sad", "stressed", "angry", "tired"}
