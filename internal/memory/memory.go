// Package memory provides in-process conversation history storage for clients
// that track sessions server-side instead of sending explicit history.
package memory

import (
	"sync"
	"time"

	"github.com/jlacunza/udcito/internal/llm"
)

// conversation holds the message history for one session.
type conversation struct {
	messages  []llm.Message
	updatedAt time.Time
}

// Store provides in-memory conversation storage with TTL-based expiry.
// The pipeline itself never reads or writes this store; only the HTTP
// layer uses it, and only when a request carries a session ID.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
	maxMessages   int
	ttl           time.Duration
}

// NewStore creates a new conversation memory store.
func NewStore(maxMessages int, ttl time.Duration) *Store {
	s := &Store{
		conversations: make(map[string]*conversation),
		maxMessages:   maxMessages,
		ttl:           ttl,
	}

	go s.cleanupLoop()

	return s
}

// DefaultStore creates a store with sensible defaults:
// 20 messages per conversation (10 turns), 1 hour idle TTL.
func DefaultStore() *Store {
	return NewStore(20, 1*time.Hour)
}

// AddUserMessage appends a user message to the session.
func (s *Store) AddUserMessage(sessionID, content string) {
	s.add(sessionID, llm.Message{Role: llm.RoleUser, Content: content})
}

// AddAssistantMessage appends an assistant message to the session.
func (s *Store) AddAssistantMessage(sessionID, content string) {
	s.add(sessionID, llm.Message{Role: llm.RoleAssistant, Content: content})
}

func (s *Store) add(sessionID string, msg llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[sessionID]
	if !exists {
		conv = &conversation{}
		s.conversations[sessionID] = conv
	}

	conv.messages = append(conv.messages, msg)
	conv.updatedAt = time.Now()

	if len(conv.messages) > s.maxMessages {
		conv.messages = conv.messages[len(conv.messages)-s.maxMessages:]
	}
}

// History returns a copy of the session history, oldest first.
// Returns nil if the session does not exist.
func (s *Store) History(sessionID string) []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[sessionID]
	if !exists {
		return nil
	}

	messages := make([]llm.Message, len(conv.messages))
	copy(messages, conv.messages)
	return messages
}

// ClearSession removes a conversation from memory.
func (s *Store) ClearSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, sessionID)
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}

func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, conv := range s.conversations {
		if now.Sub(conv.updatedAt) > s.ttl {
			delete(s.conversations, id)
		}
	}
}
