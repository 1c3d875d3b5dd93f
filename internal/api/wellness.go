package api

import (
	"errors"
	"net/http"

	"mindease/internal/achievements"
	"mindease/internal/wellness"

	"github.com/sirupsen/logrus"
)

type MoodRequest struct {
	MoodLevel int    `json:"mood_level"`
	MoodType  string `json:"mood_type"`
	Notes     string `json:"notes"`
}

type JournalRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood"`
}

type GratitudeRequest struct {
	Content string `json:"content"`
}

type EntryResponse struct {
	Entry           interface{}          `json:"entry"`
	NewAchievements []achievements.Badge `json:"new_achievements"`
}

func entryCreated(w http.ResponseWriter, entry interface{}, unlocked []achievements.Badge) {
	if unlocked == nil {
		unlocked = []achievements.Badge{}
	}
	JSON(w, http.StatusCreated, EntryResponse{Entry: entry, NewAchievements: unlocked})
}

func entryError(w http.ResponseWriter, kind string, err error) {
	if errors.Is(err, wellness.ErrInvalidMood) || errors.Is(err, wellness.ErrEmptyEntry) {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	logrus.Errorf("failed to save %s entry: %v", kind, err)
	Error(w, http.StatusInternalServerError, "failed to save "+kind+" entry")
}

func (h *Handler) CreateMood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !decode(w, r, &req) {
		return
	}
	entry, unlocked, err := h.tracker.RecordMood(r.Context(), userID(r), req.MoodLevel, req.MoodType, req.Notes)
	if err != nil {
		entryError(w, "mood", err)
		return
	}
	entryCreated(w, entry, unlocked)
}

func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tracker.Moods(r.Context(), userID(r), limitParam(r))
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load mood entries")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var req JournalRequest
	if !decode(w, r, &req) {
		return
	}
	entry, unlocked, err := h.tracker.RecordJournal(r.Context(), userID(r), req.Title, req.Content, req.Mood)
	if err != nil {
		entryError(w, "journal", err)
		return
	}
	entryCreated(w, entry, unlocked)
}

func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tracker.Journal(r.Context(), userID(r), limitParam(r))
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load journal entries")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *Handler) CreateGratitude(w http.ResponseWriter, r *http.Request) {
	var req GratitudeRequest
	if !decode(w, r, &req) {
		return
	}
	entry, unlocked, err := h.tracker.RecordGratitude(r.Context(), userID(r), req.Content)
	if err != nil {
		entryError(w, "gratitude", err)
		return
	}
	entryCreated(w, entry, unlocked)
}

func (h *Handler) ListGratitude(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tracker.Gratitude(r.Context(), userID(r), limitParam(r))
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load gratitude entries")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tracker.Summary(r.Context(), userID(r))
	if err != nil {
		logrus.Errorf("stats failed: %v", err)
		Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	JSON(w, http.StatusOK, stats)
}

func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	status, err := h.badges.Status(r.Context(), userID(r))
	if err != nil {
		logrus.Errorf("achievements failed: %v", err)
		Error(w, http.StatusInternalServerError, "failed to load achievements")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"achievements": status})
}
