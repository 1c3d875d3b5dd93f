package messagestore

import (
	"context"
	"fmt"
	"mindease/internal/messagestore/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) InsertMessage(ctx context.Context, userID, role, content, platform string) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (id, user_id, role, content, platform, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, role, content, platform, created_at
	`

	var msg models.ChatMessage
	err := r.db.GetContext(ctx, &msg, query, uuid.NewString(), userID, role, content, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}

	return &msg, nil
}

// GetRecentMessages returns the newest limit messages of a user, oldest first.
func (r *Repository) GetRecentMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, user_id, role, content, platform, created_at
		FROM (
			SELECT id, user_id, role, content, platform, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`

	var messages []models.ChatMessage
	err := r.db.SelectContext(ctx, &messages, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	logrus.Debugf("loaded %d chat messages for user %s", len(messages), userID)
	return messages, nil
}

func (r *Repository) CountMessages(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chat_messages WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return count, nil
}
