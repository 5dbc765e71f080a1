package memory

import (
	"testing"
	"time"

	"github.com/jlacunza/udcito/internal/llm"
)

func TestStore_AddAndHistory(t *testing.T) {
	s := NewStore(10, time.Hour)

	s.AddUserMessage("session", "hello")
	s.AddAssistantMessage("session", "hi there")

	history := s.History("session")
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != llm.RoleUser || history[0].Content != "hello" {
		t.Errorf("unexpected first message: %+v", history[0])
	}
	if history[1].Role != llm.RoleAssistant || history[1].Content != "hi there" {
		t.Errorf("unexpected second message: %+v", history[1])
	}
}

func TestStore_UnknownSession(t *testing.T) {
	s := NewStore(10, time.Hour)

	if history := s.History("nope"); history != nil {
		t.Errorf("expected nil for unknown session, got %v", history)
	}
}

func TestStore_TrimsToMaxMessages(t *testing.T) {
	s := NewStore(4, time.Hour)

	for i := 0; i < 6; i++ {
		s.AddUserMessage("session", "message")
	}

	if got := len(s.History("session")); got != 4 {
		t.Errorf("expected history capped at 4, got %d", got)
	}
}

func TestStore_HistoryReturnsCopy(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.AddUserMessage("session", "original")

	history := s.History("session")
	history[0].Content = "mutated"

	if got := s.History("session")[0].Content; got != "original" {
		t.Errorf("stored history was mutated through the returned slice: %q", got)
	}
}

func TestStore_ClearSession(t *testing.T) {
	s := NewStore(10, time.Hour)
	s.AddUserMessage("session", "hello")

	s.ClearSession("session")

	if history := s.History("session"); history != nil {
		t.Errorf("expected nil after clear, got %v", history)
	}
}

func TestStore_CleanupRemovesExpired(t *testing.T) {
	s := NewStore(10, time.Millisecond)
	s.AddUserMessage("session", "hello")

	time.Sleep(5 * time.Millisecond)
	s.cleanup()

	if history := s.History("session"); history != nil {
		t.Errorf("expected session expired, got %v", history)
	}
}
