package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"mindease/internal/auth"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmptyDisplayName   = errors.New("display name cannot be empty")
)

const minPasswordLength = 6

type Store interface {
	CreateUser(ctx context.Context, email, displayName, passwordHash string) (*UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (*UserProfile, error)
	GetUserByID(ctx context.Context, id string) (*UserProfile, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) (*UserProfile, error)
}

type Service struct {
	repo Store
}

func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

func (s *Service) RegisterUser(ctx context.Context, email, password, displayName string) (*UserProfile, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logrus.Errorf("failed to check existing user %s: %v", email, err)
		return nil, fmt.Errorf("internal error while checking user")
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		logrus.Errorf("failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error while hashing password")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	user, err := s.repo.CreateUser(ctx, email, displayName, hashedPassword)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, err
		}
		logrus.Errorf("failed to create user %s: %v", email, err)
		return nil, fmt.Errorf("internal error while creating user")
	}
	logrus.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*UserProfile, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		logrus.Errorf("failed to load user %s for sign in: %v", email, err)
		return nil, fmt.Errorf("internal error during authentication")
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*UserProfile, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logrus.Errorf("failed to load user %s: %v", id, err)
		return nil, fmt.Errorf("internal server error")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) UpdateDisplayName(ctx context.Context, id, displayName string) (*UserProfile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}
	user, err := s.repo.UpdateDisplayName(ctx, id, displayName)
	if err != nil {
		logrus.Errorf("failed to update user %s: %v", id, err)
		return nil, fmt.Errorf("internal server error")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
