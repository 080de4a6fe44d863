// Package memory keeps chat sessions in process memory. Sessions are
// conversational state, not records of interest, so they are never persisted
// past a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"leadgate/contexts/lead-capture/assistant-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/assistant-service/domain/errors"

	"github.com/google/uuid"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entities.Conversation
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]entities.Conversation),
	}
}

func (s *SessionStore) LoadConversation(_ context.Context, sessionID string) (entities.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.sessions[sessionID]
	if !ok {
		return entities.Conversation{}, domainerrors.ErrSessionNotFound
	}
	return copyConversation(conv), nil
}

func (s *SessionStore) SaveConversation(_ context.Context, conv entities.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[conv.SessionID] = copyConversation(conv)
	return nil
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// copyConversation detaches the message slice so callers cannot mutate
// stored state through a retained reference.
func copyConversation(conv entities.Conversation) entities.Conversation {
	messages := make([]entities.Message, len(conv.Messages))
	copy(messages, conv.Messages)
	conv.Messages = messages
	return conv
}

// The store doubles as clock and id generator for in-memory wiring.

func (s *SessionStore) Now() time.Time {
	return time.Now()
}

func (s *SessionStore) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}
