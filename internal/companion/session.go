package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mindease/internal/llm"
	"mindease/internal/messagestore/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrEmptyInput = errors.New("message is empty")

type Responder interface {
	Reply(ctx context.Context, history []llm.Message) (Reply, error)
}

// MessageStore persists turns of authenticated users.
type MessageStore interface {
	StoreMessage(ctx context.Context, userID, role, content, platform string) (*models.ChatMessage, error)
	GetMessageHistory(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
}

// Session is one user's conversation. An empty userID makes it an anonymous
// session whose messages live only in memory.
type Session struct {
	engine   Responder
	store    MessageStore
	userID   string
	platform string
	now      func() time.Time

	sendMu   sync.Mutex
	mu       sync.RWMutex
	messages []models.ChatMessage
}

func NewSession(engine Responder, store MessageStore, userID, platform string) *Session {
	if platform == "" {
		platform = models.PlatformWeb
	}
	return &Session{
		engine:   engine,
		store:    store,
		userID:   userID,
		platform: platform,
		now:      time.Now,
	}
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) persistent() bool {
	return s.userID != "" && s.store != nil
}

// Load replaces the in-memory transcript with the user's stored history.
func (s *Session) Load(ctx context.Context) error {
	if !s.persistent() {
		return nil
	}
	history, err := s.store.GetMessageHistory(ctx, s.userID, 0)
	if err != nil {
		return fmt.Errorf("load chat history: %w", err)
	}
	s.mu.Lock()
	s.messages = history
	s.mu.Unlock()
	return nil
}

// History returns a copy of the transcript.
func (s *Session) History() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// Send records the user's message, asks the engine for a reply and records
// exactly one assistant message. Turns of one session are processed one at a
// time.
func (s *Session) Send(ctx context.Context, text string) (userMsg, assistantMsg models.ChatMessage, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, models.ChatMessage{}, ErrEmptyInput
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	userMsg = s.record(ctx, llm.RoleUser, text)

	reply, err := s.engine.Reply(ctx, s.turns())
	if err != nil {
		logrus.WithField("user_id", s.userID).Errorf("companion engine failed: %v", err)
		reply = Reply{Text: FallbackMessage, Source: SourceFallback}
	}
	if strings.TrimSpace(reply.Text) == "" {
		reply.Text = FallbackMessage
	}

	assistantMsg = s.record(ctx, llm.RoleAssistant, reply.Text)
	logrus.WithFields(logrus.Fields{
		"user_id": s.userID,
		"source":  reply.Source,
		"model":   reply.Model,
	}).Debug("companion replied")
	return userMsg, assistantMsg, nil
}

func (s *Session) turns() []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]llm.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// record appends a message, persisting it when the session belongs to a
// signed-in user. A failed insert keeps the message in memory with a local id.
func (s *Session) record(ctx context.Context, role, content string) models.ChatMessage {
	if s.persistent() {
		stored, err := s.store.StoreMessage(ctx, s.userID, role, content, s.platform)
		if err == nil && stored != nil {
			s.append(*stored)
			return *stored
		}
		logrus.WithField("user_id", s.userID).Warnf("could not persist %s message, keeping it in memory: %v", role, err)
	}

	msg := models.ChatMessage{
		ID:       uuid.NewString(),
		UserID:   s.userID,
		Role:     role,
		Content:  content,
		Platform: s.platform,
	}
	s.mu.Lock()
	msg.CreatedAt = s.now().UTC()
	if n := len(s.messages); n > 0 && msg.CreatedAt.Before(s.messages[n-1].CreatedAt) {
		msg.CreatedAt = s.messages[n-1].CreatedAt
	}
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg
}

func (s *Session) append(msg models.ChatMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}
