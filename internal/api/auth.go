package api

import (
	"errors"
	"net/http"
	"time"

	"mindease/internal/auth"
	"mindease/internal/users"

	"github.com/sirupsen/logrus"
)

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      *users.UserProfile `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userService.RegisterUser(r.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, users.ErrUserAlreadyExists):
		Error(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, users.ErrInvalidEmail), errors.Is(err, users.ErrWeakPassword):
		Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logrus.Errorf("sign up failed: %v", err)
		Error(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	h.issueSession(w, http.StatusCreated, user)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		logrus.Errorf("sign in failed: %v", err)
		Error(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	h.issueSession(w, http.StatusOK, user)
}

func (h *Handler) issueSession(w http.ResponseWriter, status int, user *users.UserProfile) {
	token, claims, err := auth.GenerateJWTToken(user.ID, h.jwtKey, h.jwtTTL)
	if err != nil {
		logrus.Errorf("failed to issue token for user %s: %v", user.ID, err)
		Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	JSON(w, status, SessionResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	h.auth.Revoke(claims)
	h.chats.Drop(chatKeyForUser(claims.Subject))
	JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	user, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"user":       user,
		"expires_at": claims.ExpiresAt.Time,
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if user, ok := h.loadProfile(w, r); ok {
		JSON(w, http.StatusOK, user)
	}
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.userService.UpdateDisplayName(r.Context(), userID(r), req.DisplayName)
	switch {
	case errors.Is(err, users.ErrEmptyDisplayName):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrUserNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case err != nil:
		Error(w, http.StatusInternalServerError, "failed to update profile")
	default:
		JSON(w, http.StatusOK, user)
	}
}

func (h *Handler) loadProfile(w http.ResponseWriter, r *http.Request) (*users.UserProfile, bool) {
	user, err := h.userService.GetProfile(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			Error(w, http.StatusNotFound, err.Error())
		} else {
			Error(w, http.StatusInternalServerError, "failed to load profile")
		}
		return nil, false
	}
	return user, true
}
