package achievements

// Stats is the activity snapshot badges are judged against. It is computed
// fresh for every evaluation and never stored.
type Stats struct {
	MoodLogs         int `json:"mood_logs"`
	JournalEntries   int `json:"journal_entries"`
	GratitudeEntries int `json:"gratitude_entries"`
	CurrentStreak    int `json:"current_streak"`
	LongestStreak    int `json:"longest_streak"`
	ChatMessages     int `json:"chat_messages"`
}

// Badge is a catalog entry. Check must be monotone: more activity can never
// turn a true result false.
type Badge struct {
	Name        string           `json:"badge_name"`
	Description string           `json:"description"`
	Check       func(Stats) bool `json:"-"`
}

var catalog = []Badge{
	{"First Step", "Log your first mood", func(s Stats) bool { return s.MoodLogs >= 1 }},
	{"Consistent Tracker", "Log your mood 7 days in a row", func(s Stats) bool { return s.CurrentStreak >= 7 }},
	{"Dedicated User", "Maintain a 30-day streak", func(s Stats) bool { return s.LongestStreak >= 30 }},
	{"Mood Master", "Log 50 mood entries", func(s Stats) bool { return s.MoodLogs >= 50 }},
	{"Reflection Rookie", "Write your first journal entry", func(s Stats) bool { return s.JournalEntries >= 1 }},
	{"Thoughtful Writer", "Write 10 journal entries", func(s Stats) bool { return s.JournalEntries >= 10 }},
	{"Prolific Journalist", "Write 50 journal entries", func(s Stats) bool { return s.JournalEntries >= 50 }},
	{"Grateful Heart", "Share your first gratitude", func(s Stats) bool { return s.GratitudeEntries >= 1 }},
	{"Gratitude Guru", "Share 20 gratitudes", func(s Stats) bool { return s.GratitudeEntries >= 20 }},
	{"Conversation Starter", "Have your first AI chat", func(s Stats) bool { return s.ChatMessages >= 2 }},
	{"Active Communicator", "Send 50 chat messages", func(s Stats) bool { return s.ChatMessages >= 50 }},
	{"Century Club", "Log 100 mood entries", func(s Stats) bool { return s.MoodLogs >= 100 }},
	{"Wellness Warrior", "Complete 100 total activities", func(s Stats) bool {
		return s.MoodLogs+s.JournalEntries+s.GratitudeEntries >= 100
	}},
	{"Mindful Explorer", "Use all features at least once", func(s Stats) bool {
		return s.MoodLogs >= 1 && s.JournalEntries >= 1 && s.GratitudeEntries >= 1 && s.ChatMessages >= 2
	}},
}

// Catalog returns the badges in declaration order.
func Catalog() []Badge {
	return append([]Badge(nil), catalog...)
}
