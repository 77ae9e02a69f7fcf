package memory

import (
	"sync"

	"gemini-telegram-bot/internal/domain"
)

// Store is an in-memory domain.ConversationStore bounded per user:
// appending beyond the bound evicts the oldest entries first.
type Store struct {
	mu            sync.Mutex
	maxHistory    int
	conversations map[int64][]domain.ChatMessage
}

func NewStore(maxHistory int) *Store {
	return &Store{
		maxHistory:    maxHistory,
		conversations: make(map[int64][]domain.ChatMessage),
	}
}

func (s *Store) Append(userID int64, msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.conversations[userID], msg)
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.conversations[userID] = history
}

// History returns a copy; entries are never edited after append, only evicted.
func (s *Store) History(userID int64) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.conversations[userID]
	if len(history) == 0 {
		return nil
	}
	return append([]domain.ChatMessage(nil), history...)
}

func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, userID)
}
