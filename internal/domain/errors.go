package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded means the provider rate-limited us (HTTP 429).
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	// ErrOverloaded means the provider is temporarily saturated (HTTP 503).
	ErrOverloaded = errors.New("llm overloaded")
	// ErrEmptyReply means the provider answered successfully but with no text.
	ErrEmptyReply = errors.New("llm returned no text")
	// ErrUnsupportedContent means the inbound message carried nothing usable.
	ErrUnsupportedContent = errors.New("unsupported message content")
)

// LLMError is any provider or transport failure outside the transient pair
// above. Status is the provider's HTTP-like code, 0 when the failure was not
// an API response (network, decode, unexpected).
type LLMError struct {
	Status int
	Err    error
}

func (e *LLMError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm request failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("llm request failed: %v", e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }
