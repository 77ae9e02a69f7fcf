package chat

import (
	"context"
	"log/slog"
	"sync"

	"gemini-telegram-bot/internal/domain"
)

// Service runs one conversation turn: append the user message, build the
// prompt window, call the provider, append the reply.
type Service struct {
	store        domain.ConversationStore
	client       domain.LLMClient
	systemPrompt string
	logger       *slog.Logger

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

func NewService(store domain.ConversationStore, client domain.LLMClient, systemPrompt string, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		client:       client,
		systemPrompt: systemPrompt,
		logger:       logger,
		users:        make(map[int64]*sync.Mutex),
	}
}

// Reply processes one normalized user message and returns the model's text.
// The whole turn runs under a per-user lock so two in-flight messages from
// the same user cannot interleave their history appends; turns for
// different users proceed concurrently.
func (s *Service) Reply(ctx context.Context, userID int64, msg domain.ChatMessage) (string, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.store.Append(userID, msg)
	history := s.store.History(userID)

	// The system prompt is prepended fresh on every call; it is never
	// stored and never counts against the history bound.
	window := make([]domain.ChatMessage, 0, len(history)+1)
	window = append(window, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: s.systemPrompt,
	})
	window = append(window, history...)

	reply, err := s.client.Generate(ctx, window)
	if err != nil {
		return "", err
	}
	if reply == "" {
		s.logger.Error("llm returned empty text", "user_id", userID)
		return "", domain.ErrEmptyReply
	}

	s.store.Append(userID, domain.ChatMessage{
		Role:    domain.RoleAssistant,
		Content: reply,
	})
	return reply, nil
}

// Reset clears the user's conversation history.
func (s *Service) Reset(userID int64) {
	s.store.Reset(userID)
	s.logger.Info("context reset", "user_id", userID)
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.users[userID] = lock
	}
	return lock
}
