package wellness

import "time"

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak applies one day of activity to prev (nil when none exists).
// Activity the day after the last one extends the streak, repeated activity
// on the same day leaves it alone, and any gap restarts it at 1.
func NextStreak(prev *Streak, userID string, today time.Time) Streak {
	today = Day(today)
	if prev == nil {
		return Streak{UserID: userID, CurrentStreak: 1, LongestStreak: 1, LastActivityDate: today}
	}

	next := *prev
	last := Day(prev.LastActivityDate)
	switch {
	case last.Equal(today):
		return next
	case last.AddDate(0, 0, 1).Equal(today):
		next.CurrentStreak++
	case last.After(today):
		// Clock moved backwards; keep the stored streak.
		return next
	default:
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.LastActivityDate = today
	return next
}
