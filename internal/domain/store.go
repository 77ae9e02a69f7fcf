package domain

import "context"

// ConversationStore keeps a bounded per-user log of chat turns.
// History is process-lifetime only; a durable implementation (Redis, SQL)
// would plug in behind this same interface.
type ConversationStore interface {
	History(userID int64) []ChatMessage
	Append(userID int64, msg ChatMessage)
	Reset(userID int64)
}

// LLMClient is the provider capability: one ordered window of messages in,
// the model's text out. An empty string with a nil error means the provider
// answered with no text.
type LLMClient interface {
	Generate(ctx context.Context, messages []ChatMessage) (string, error)
}
