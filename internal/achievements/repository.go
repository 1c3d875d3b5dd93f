package achievements

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrAlreadyEarned = errors.New("badge already earned")

const uniqueViolation = pq.ErrorCode("23505")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListEarned(ctx context.Context, userID string) ([]EarnedAchievement, error) {
	query := `
		SELECT id, user_id, badge_name, earned_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY earned_at ASC, id ASC
	`
	var earned []EarnedAchievement
	if err := r.db.SelectContext(ctx, &earned, query, userID); err != nil {
		return nil, fmt.Errorf("failed to load achievements of user %s: %w", userID, err)
	}
	return earned, nil
}

// Insert records a badge for a user. The (user_id, badge_name) unique
// constraint turns a duplicate into ErrAlreadyEarned.
func (r *Repository) Insert(ctx context.Context, userID, badgeName string) (*EarnedAchievement, error) {
	query := `
		INSERT INTO user_achievements (user_id, badge_name, earned_at)
		VALUES ($1, $2, NOW())
		RETURNING id, user_id, badge_name, earned_at
	`
	var earned EarnedAchievement
	err := r.db.GetContext(ctx, &earned, query, userID, badgeName)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrAlreadyEarned
		}
		return nil, fmt.Errorf("failed to insert achievement %q for user %s: %w", badgeName, userID, err)
	}
	return &earned, nil
}
