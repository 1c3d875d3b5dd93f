package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

type Authenticator struct {
	signingKey string
	revoked    *RevocationList
}

func NewAuthenticator(signingKey string, revoked *RevocationList) *Authenticator {
	if revoked == nil {
		revoked = NewRevocationList()
	}
	return &Authenticator{signingKey: signingKey, revoked: revoked}
}

// Verify validates a bearer token from r and checks it against the
// revocation list.
func (a *Authenticator) Verify(r *http.Request) (*Claims, error) {
	tokenString, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := ValidateJWTToken(tokenString, a.signingKey)
	if err != nil {
		return nil, err
	}
	if a.revoked.IsRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (a *Authenticator) Revoke(claims *Claims) {
	a.revoked.Revoke(claims)
}

// Required rejects requests without a valid token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Verify(r)
		if err != nil {
			logrus.Debugf("rejecting request to %s: %v", r.URL.Path, err)
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Optional attaches claims when a valid token is present. A request with a
// bad token is rejected rather than silently treated as anonymous.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Verify(r)
		switch {
		case errors.Is(err, ErrMissingToken):
			next.ServeHTTP(w, r)
		case err != nil:
			unauthorized(w, err)
		default:
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		}
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	msg := "invalid or expired token"
	switch {
	case errors.Is(err, ErrMissingToken):
		msg = "missing Authorization header"
	case errors.Is(err, ErrTokenRevoked):
		msg = "token has been revoked"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
