package wellness

import (
	"context"
	"fmt"

	"mindease/internal/achievements"

	"golang.org/x/sync/errgroup"
)

type StatsSource interface {
	CountMoods(ctx context.Context, userID string) (int, error)
	CountJournal(ctx context.Context, userID string) (int, error)
	CountGratitude(ctx context.Context, userID string) (int, error)
	GetStreak(ctx context.Context, userID string) (*Streak, error)
}

type ChatCounter interface {
	CountMessages(ctx context.Context, userID string) (int, error)
}

type StatsService struct {
	source StatsSource
	chats  ChatCounter
}

func NewStatsService(source StatsSource, chats ChatCounter) *StatsService {
	return &StatsService{source: source, chats: chats}
}

// Collect runs the five lookups concurrently and returns once all of them
// have finished. Any failure fails the whole snapshot.
func (s *StatsService) Collect(ctx context.Context, userID string) (achievements.Stats, error) {
	var (
		stats  achievements.Stats
		streak *Streak
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.source.CountMoods(gctx, userID)
		stats.MoodLogs = n
		return err
	})
	g.Go(func() error {
		n, err := s.source.CountJournal(gctx, userID)
		stats.JournalEntries = n
		return err
	})
	g.Go(func() error {
		n, err := s.source.CountGratitude(gctx, userID)
		stats.GratitudeEntries = n
		return err
	})
	g.Go(func() error {
		st, err := s.source.GetStreak(gctx, userID)
		streak = st
		return err
	})
	g.Go(func() error {
		if s.chats == nil {
			return nil
		}
		n, err := s.chats.CountMessages(gctx, userID)
		stats.ChatMessages = n
		return err
	})
	if err := g.Wait(); err != nil {
		return achievements.Stats{}, fmt.Errorf("collect stats for user %s: %w", userID, err)
	}

	if streak != nil {
		stats.CurrentStreak = streak.CurrentStreak
		stats.LongestStreak = streak.LongestStreak
	}
	return stats, nil
}
