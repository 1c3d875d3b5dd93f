package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"mindease/internal/achievements"
	"mindease/internal/auth"
	"mindease/internal/companion"
	"mindease/internal/users"
	"mindease/internal/wellness"

	"github.com/go-chi/chi/v5"
)

type UserService interface {
	RegisterUser(ctx context.Context, email, password, displayName string) (*users.UserProfile, error)
	Authenticate(ctx context.Context, email, password string) (*users.UserProfile, error)
	GetProfile(ctx context.Context, id string) (*users.UserProfile, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) (*users.UserProfile, error)
}

type Tracker interface {
	RecordMood(ctx context.Context, userID string, level int, moodType, notes string) (*wellness.MoodEntry, []achievements.Badge, error)
	RecordJournal(ctx context.Context, userID, title, content, mood string) (*wellness.JournalEntry, []achievements.Badge, error)
	RecordGratitude(ctx context.Context, userID, content string) (*wellness.GratitudeEntry, []achievements.Badge, error)
	Moods(ctx context.Context, userID string, limit int) ([]wellness.MoodEntry, error)
	Journal(ctx context.Context, userID string, limit int) ([]wellness.JournalEntry, error)
	Gratitude(ctx context.Context, userID string, limit int) ([]wellness.GratitudeEntry, error)
	Summary(ctx context.Context, userID string) (wellness.Summary, error)
	CheckAchievements(ctx context.Context, userID string) []achievements.Badge
}

type BadgeLister interface {
	Status(ctx context.Context, userID string) ([]achievements.BadgeStatus, error)
}

type Handler struct {
	userService UserService
	auth        *auth.Authenticator
	chats       *companion.Sessions
	tracker     Tracker
	badges      BadgeLister
	jwtKey      string
	jwtTTL      time.Duration
}

func NewHandler(
	userService UserService,
	authenticator *auth.Authenticator,
	chats *companion.Sessions,
	tracker Tracker,
	badges BadgeLister,
	jwtKey string,
	jwtTTL time.Duration,
) *Handler {
	return &Handler{
		userService: userService,
		auth:        authenticator,
		chats:       chats,
		tracker:     tracker,
		badges:      badges,
		jwtKey:      jwtKey,
		jwtTTL:      jwtTTL,
	}
}

// Routes mounts every API endpoint under /api.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.SignUp)
		r.Post("/auth/signin", h.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Optional)
			r.Post("/chat", h.Chat)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Required)
			r.Post("/auth/signout", h.SignOut)
			r.Get("/auth/session", h.CurrentSession)
			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.UpdateProfile)

			r.Get("/chat/history", h.ChatHistory)

			r.Post("/mood", h.CreateMood)
			r.Get("/mood", h.ListMoods)
			r.Post("/journal", h.CreateJournal)
			r.Get("/journal", h.ListJournal)
			r.Post("/gratitude", h.CreateGratitude)
			r.Get("/gratitude", h.ListGratitude)

			r.Get("/stats", h.GetStats)
			r.Get("/achievements", h.ListAchievements)
		})
	})
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}

// userID is only called behind auth.Required.
func userID(r *http.Request) string {
	id, _ := auth.GetUserIDFromContext(r.Context())
	return id
}
