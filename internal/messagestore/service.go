package messagestore

import (
	"context"
	"mindease/internal/messagestore/models"

	"github.com/sirupsen/logrus"
)

// HistoryLimit is how many persisted messages a chat session loads.
const HistoryLimit = 50

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) StoreMessage(ctx context.Context, userID, role, content, platform string) (*models.ChatMessage, error) {
	logrus.Debugf("storing %s message for user %s", role, userID)
	return s.repo.InsertMessage(ctx, userID, role, content, platform)
}

func (s *Service) GetMessageHistory(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	return s.repo.GetRecentMessages(ctx, userID, limit)
}

func (s *Service) CountMessages(ctx context.Context, userID string) (int, error) {
	return s.repo.CountMessages(ctx, userID)
}
