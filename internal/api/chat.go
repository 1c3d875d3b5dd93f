package api

import (
	"errors"
	"net/http"

	"mindease/internal/achievements"
	"mindease/internal/auth"
	"mindease/internal/companion"
	"mindease/internal/messagestore/models"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	SessionID        string               `json:"session_id,omitempty"`
	UserMessage      models.ChatMessage   `json:"user_message"`
	AssistantMessage models.ChatMessage   `json:"assistant_message"`
	NewAchievements  []achievements.Badge `json:"new_achievements,omitempty"`
}

func chatKeyForUser(userID string) string {
	return "user:" + userID
}

// Chat answers one message. Signed-in users get a persisted conversation;
// anonymous visitors are keyed by session_id, which is minted on first use.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decode(w, r, &req) {
		return
	}

	userID, signedIn := auth.GetUserIDFromContext(r.Context())
	var key, sessionID string
	if signedIn {
		key = chatKeyForUser(userID)
	} else {
		sessionID = req.SessionID
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()
		}
		key = "anon:" + sessionID
	}

	session := h.chats.Get(r.Context(), key, userID)
	userMsg, assistantMsg, err := session.Send(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, companion.ErrEmptyInput) {
			Error(w, http.StatusBadRequest, "message cannot be empty")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	resp := ChatResponse{SessionID: sessionID, UserMessage: userMsg, AssistantMessage: assistantMsg}
	if signedIn {
		resp.NewAchievements = h.tracker.CheckAchievements(r.Context(), userID)
	}
	JSON(w, http.StatusOK, resp)
}

func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	session := h.chats.Get(r.Context(), chatKeyForUser(id), id)
	JSON(w, http.StatusOK, map[string]interface{}{"messages": session.History()})
}
