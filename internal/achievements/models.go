package achievements

import "time"

type EarnedAchievement struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	BadgeName string    `db:"badge_name" json:"badge_name"`
	EarnedAt  time.Time `db:"earned_at" json:"earned_at"`
}

// BadgeStatus is a catalog entry annotated with the user's progress.
type BadgeStatus struct {
	Name        string     `json:"badge_name"`
	Description string     `json:"description"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}
