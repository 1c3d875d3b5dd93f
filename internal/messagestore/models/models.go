package models

import (
	"time"
)

const (
	PlatformWeb      = "web"
	PlatformTelegram = "telegram"
)

// ChatMessage is one turn of a companion conversation. Messages are
// append-only and never updated after creation.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id,omitempty"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	Platform  string    `db:"platform" json:"platform,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
