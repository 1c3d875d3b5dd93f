package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// bump returns copies of s with one field raised by delta. Raising the
// current streak raises the longest streak with it so the pair stays valid.
func bump(s Stats, delta int) []Stats {
	mood, journal, gratitude, chat, longest, current := s, s, s, s, s, s
	mood.MoodLogs += delta
	journal.JournalEntries += delta
	gratitude.GratitudeEntries += delta
	chat.ChatMessages += delta
	longest.LongestStreak += delta
	current.CurrentStreak += delta
	if current.LongestStreak < current.CurrentStreak {
		current.LongestStreak = current.CurrentStreak
	}
	return []Stats{mood, journal, gratitude, chat, longest, current}
}

func TestCatalog_ChecksAreMonotone(t *testing.T) {
	bases := []Stats{
		{},
		{MoodLogs: 1},
		{MoodLogs: 6, CurrentStreak: 6, LongestStreak: 6},
		{MoodLogs: 49, JournalEntries: 9, GratitudeEntries: 19, ChatMessages: 1, CurrentStreak: 29, LongestStreak: 29},
		{MoodLogs: 33, JournalEntries: 33, GratitudeEntries: 33, ChatMessages: 49, CurrentStreak: 2, LongestStreak: 40},
		{MoodLogs: 100, JournalEntries: 50, GratitudeEntries: 20, ChatMessages: 50, CurrentStreak: 30, LongestStreak: 30},
	}

	for _, a := range bases {
		for _, delta := range []int{1, 5, 100} {
			for _, b := range bump(a, delta) {
				for _, badge := range Catalog() {
					if badge.Check(a) {
						assert.True(t, badge.Check(b), "%s earned at %+v but not at %+v", badge.Name, a, b)
					}
				}
			}
		}
	}
}

func TestCatalog_Thresholds(t *testing.T) {
	byName := map[string]Badge{}
	for _, b := range Catalog() {
		byName[b.Name] = b
	}

	assert.False(t, byName["Conversation Starter"].Check(Stats{ChatMessages: 1}))
	assert.True(t, byName["Conversation Starter"].Check(Stats{ChatMessages: 2}))
	assert.False(t, byName["Wellness Warrior"].Check(Stats{MoodLogs: 50, JournalEntries: 30, GratitudeEntries: 19}))
	assert.True(t, byName["Wellness Warrior"].Check(Stats{MoodLogs: 50, JournalEntries: 30, GratitudeEntries: 20}))
	assert.False(t, byName["Mindful Explorer"].Check(Stats{MoodLogs: 1, JournalEntries: 1, GratitudeEntries: 1, ChatMessages: 1}))
	assert.True(t, byName["Dedicated User"].Check(Stats{CurrentStreak: 0, LongestStreak: 30}))
}
