package companion

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const sessionIdleTTL = 30 * time.Minute

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

// Sessions keeps live chat sessions keyed by user id (signed-in users) or by
// an opaque session id (anonymous visitors). Idle sessions are dropped; for
// signed-in users the next request reloads history from the store.
type Sessions struct {
	engine   Responder
	store    MessageStore
	platform string
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func NewSessions(engine Responder, store MessageStore, platform string) *Sessions {
	return &Sessions{
		engine:   engine,
		store:    store,
		platform: platform,
		ttl:      sessionIdleTTL,
		entries:  make(map[string]*sessionEntry),
	}
}

// Get returns the session for key, creating it when needed. userID is empty
// for anonymous sessions.
func (m *Sessions) Get(ctx context.Context, key, userID string) *Session {
	m.mu.Lock()
	if e, ok := m.entries[key]; ok && e.session.UserID() == userID {
		e.lastUsed = time.Now()
		m.mu.Unlock()
		return e.session
	}
	m.mu.Unlock()

	s := NewSession(m.engine, m.store, userID, m.platform)
	if err := s.Load(ctx); err != nil {
		logrus.WithField("user_id", userID).Warnf("starting chat session without history: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && e.session.UserID() == userID {
		e.lastUsed = time.Now()
		return e.session
	}
	m.entries[key] = &sessionEntry{session: s, lastUsed: time.Now()}
	return s
}

// Drop forgets the session for key.
func (m *Sessions) Drop(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Run evicts idle sessions until ctx is done.
func (m *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

func (m *Sessions) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if now.Sub(e.lastUsed) > m.ttl {
			logrus.Debugf("dropping idle chat session %s", key)
			delete(m.entries, key)
		}
	}
}
