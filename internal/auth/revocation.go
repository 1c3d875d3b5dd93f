package auth

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RevocationList remembers signed-out token ids until the tokens would have
// expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: make(map[string]time.Time)}
}

func (l *RevocationList) Revoke(claims *Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expires := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	l.mu.Lock()
	l.revoked[claims.ID] = expires
	l.mu.Unlock()
}

func (l *RevocationList) IsRevoked(tokenID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.revoked[tokenID]
	return ok
}

// Run drops expired entries every interval until ctx is done.
func (l *RevocationList) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

func (l *RevocationList) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, expires := range l.revoked {
		if now.After(expires) {
			delete(l.revoked, id)
		}
	}
	logrus.Debugf("revocation list holds %d token(s)", len(l.revoked))
}
