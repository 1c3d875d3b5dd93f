package wellness

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"mindease/internal/achievements"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidMood = errors.New("mood level must be between 1 and 5")
	ErrEmptyEntry  = errors.New("entry content cannot be empty")
)

const (
	DefaultListLimit = 30
	// MoodAverageWindow is how many recent mood entries the average covers.
	MoodAverageWindow = 30
)

// Summary is what the stats endpoint reports.
type Summary struct {
	achievements.Stats
	AvgMood *float64 `json:"avg_mood"`
}

type EntryStore interface {
	StatsSource
	InsertMood(ctx context.Context, userID string, level int, moodType, notes string) (*MoodEntry, error)
	InsertJournal(ctx context.Context, userID, title, content, mood string) (*JournalEntry, error)
	InsertGratitude(ctx context.Context, userID, content string) (*GratitudeEntry, error)
	ListMoods(ctx context.Context, userID string, limit int) ([]MoodEntry, error)
	ListJournal(ctx context.Context, userID string, limit int) ([]JournalEntry, error)
	ListGratitude(ctx context.Context, userID string, limit int) ([]GratitudeEntry, error)
	TouchStreak(ctx context.Context, userID string, today time.Time) (*Streak, error)
}

type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID string, stats achievements.Stats) ([]achievements.Badge, error)
}

// Tracker records wellness entries and, after each successful write, runs the
// streak update and an achievement pass.
type Tracker struct {
	store     EntryStore
	stats     *StatsService
	evaluator BadgeEvaluator
	now       func() time.Time
}

func NewTracker(store EntryStore, stats *StatsService, evaluator BadgeEvaluator) *Tracker {
	return &Tracker{
		store:     store,
		stats:     stats,
		evaluator: evaluator,
		now:       time.Now,
	}
}

func (t *Tracker) RecordMood(ctx context.Context, userID string, level int, moodType, notes string) (*MoodEntry, []achievements.Badge, error) {
	if level < 1 || level > 5 {
		return nil, nil, ErrInvalidMood
	}
	moodType = strings.ToLower(strings.TrimSpace(moodType))
	if moodType == "" {
		moodType = "neutral"
	}
	entry, err := t.store.InsertMood(ctx, userID, level, moodType, strings.TrimSpace(notes))
	if err != nil {
		return nil, nil, err
	}
	return entry, t.afterEntry(ctx, userID), nil
}

func (t *Tracker) RecordJournal(ctx context.Context, userID, title, content, mood string) (*JournalEntry, []achievements.Badge, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, ErrEmptyEntry
	}
	entry, err := t.store.InsertJournal(ctx, userID, strings.TrimSpace(title), content, strings.TrimSpace(mood))
	if err != nil {
		return nil, nil, err
	}
	return entry, t.afterEntry(ctx, userID), nil
}

func (t *Tracker) RecordGratitude(ctx context.Context, userID, content string) (*GratitudeEntry, []achievements.Badge, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, ErrEmptyEntry
	}
	entry, err := t.store.InsertGratitude(ctx, userID, content)
	if err != nil {
		return nil, nil, err
	}
	return entry, t.afterEntry(ctx, userID), nil
}

// CheckAchievements runs an evaluation pass without recording anything, used
// after chat turns.
func (t *Tracker) CheckAchievements(ctx context.Context, userID string) []achievements.Badge {
	return t.evaluate(ctx, userID)
}

// Summary adds the average of recent mood levels to the activity stats.
// AvgMood is nil when no mood has been logged.
func (t *Tracker) Summary(ctx context.Context, userID string) (Summary, error) {
	stats, err := t.stats.Collect(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	recent, err := t.store.ListMoods(ctx, userID, MoodAverageWindow)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Stats: stats, AvgMood: AverageMood(recent)}, nil
}

// AverageMood returns the mean mood level rounded to one decimal.
func AverageMood(entries []MoodEntry) *float64 {
	if len(entries) == 0 {
		return nil
	}
	sum := 0
	for _, e := range entries {
		sum += e.MoodLevel
	}
	avg := math.Round(float64(sum)/float64(len(entries))*10) / 10
	return &avg
}

func (t *Tracker) Moods(ctx context.Context, userID string, limit int) ([]MoodEntry, error) {
	return t.store.ListMoods(ctx, userID, clampLimit(limit))
}

func (t *Tracker) Journal(ctx context.Context, userID string, limit int) ([]JournalEntry, error) {
	return t.store.ListJournal(ctx, userID, clampLimit(limit))
}

func (t *Tracker) Gratitude(ctx context.Context, userID string, limit int) ([]GratitudeEntry, error) {
	return t.store.ListGratitude(ctx, userID, clampLimit(limit))
}

func (t *Tracker) afterEntry(ctx context.Context, userID string) []achievements.Badge {
	if _, err := t.store.TouchStreak(ctx, userID, t.now()); err != nil {
		logrus.WithField("user_id", userID).Errorf("streak update failed: %v", err)
	}
	return t.evaluate(ctx, userID)
}

func (t *Tracker) evaluate(ctx context.Context, userID string) []achievements.Badge {
	stats, err := t.stats.Collect(ctx, userID)
	if err != nil {
		logrus.WithField("user_id", userID).Errorf("skipping achievement check: %v", err)
		return nil
	}
	unlocked, err := t.evaluator.Evaluate(ctx, userID, stats)
	if err != nil {
		logrus.WithField("user_id", userID).Errorf("achievement check failed: %v", err)
		return nil
	}
	return unlocked
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return DefaultListLimit
	}
	return limit
}
