package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const profileColumns = "id, email, display_name, password_hash, created_at, updated_at"

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, email, displayName, passwordHash string) (*UserProfile, error) {
	query := `
		INSERT INTO user_profiles (id, email, display_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + profileColumns

	var user UserProfile
	err := r.db.GetContext(ctx, &user, query, uuid.NewString(), email, displayName, passwordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}
	return &user, nil
}

// GetUserByEmail returns nil, nil when no profile has that email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE email = $1`
	var user UserProfile
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile by email: %w", err)
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`
	var user UserProfile
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile %s: %w", id, err)
	}
	return &user, nil
}

func (r *Repository) UpdateDisplayName(ctx context.Context, id, displayName string) (*UserProfile, error) {
	query := `
		UPDATE user_profiles
		SET display_name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	var user UserProfile
	err := r.db.GetContext(ctx, &user, query, id, displayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user profile %s: %w", id, err)
	}
	return &user, nil
}
