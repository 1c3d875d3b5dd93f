package wellness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// barrierSource blocks every lookup until all five have started, so Collect
// only finishes if the lookups run concurrently.
type barrierSource struct {
	wg      *sync.WaitGroup
	streak  *Streak
	failOn  string
	release chan struct{}
}

func newBarrierSource(n int) *barrierSource {
	wg := &sync.WaitGroup{}
	wg.Add(n)
	b := &barrierSource{wg: wg, release: make(chan struct{})}
	go func() {
		wg.Wait()
		close(b.release)
	}()
	return b
}

func (b *barrierSource) arrive(ctx context.Context, name string) error {
	b.wg.Done()
	select {
	case <-b.release:
	case <-time.After(2 * time.Second):
		return errors.New("lookups did not run concurrently")
	}
	if name == b.failOn {
		return errors.New(name + " failed")
	}
	return nil
}

func (b *barrierSource) CountMoods(ctx context.Context, userID string) (int, error) {
	return 12, b.arrive(ctx, "moods")
}

func (b *barrierSource) CountJournal(ctx context.Context, userID string) (int, error) {
	return 3, b.arrive(ctx, "journal")
}

func (b *barrierSource) CountGratitude(ctx context.Context, userID string) (int, error) {
	return 5, b.arrive(ctx, "gratitude")
}

func (b *barrierSource) GetStreak(ctx context.Context, userID string) (*Streak, error) {
	return b.streak, b.arrive(ctx, "streak")
}

func (b *barrierSource) CountMessages(ctx context.Context, userID string) (int, error) {
	return 8, b.arrive(ctx, "chat")
}

func TestStatsService_CollectJoinsConcurrentLookups(t *testing.T) {
	src := newBarrierSource(5)
	src.streak = &Streak{CurrentStreak: 2, LongestStreak: 7}

	stats, err := NewStatsService(src, src).Collect(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.MoodLogs)
	assert.Equal(t, 3, stats.JournalEntries)
	assert.Equal(t, 5, stats.GratitudeEntries)
	assert.Equal(t, 8, stats.ChatMessages)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 7, stats.LongestStreak)
}

func TestStatsService_MissingStreakIsZero(t *testing.T) {
	src := newBarrierSource(5)

	stats, err := NewStatsService(src, src).Collect(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.CurrentStreak)
	assert.Zero(t, stats.LongestStreak)
}

func TestStatsService_AnyFailureFailsSnapshot(t *testing.T) {
	src := newBarrierSource(5)
	src.failOn = "chat"

	_, err := NewStatsService(src, src).Collect(context.Background(), "u1")
	assert.ErrorContains(t, err, "chat failed")
}
