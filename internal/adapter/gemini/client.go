package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"gemini-telegram-bot/internal/domain"
)

// generator is the slice of the genai SDK the client needs; *genai.Models
// satisfies it.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client is the Gemini implementation of domain.LLMClient.
type Client struct {
	models generator
	model  string
	logger *slog.Logger
}

func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{models: client.Models, model: model, logger: logger}, nil
}

func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	contents := convertMessages(messages)
	if len(contents) == 0 {
		return "", &domain.LLMError{Err: errors.New("no sendable messages")}
	}

	c.logger.Info("sending request to gemini", "model", c.model, "turns", len(contents))
	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", mapError(err)
	}
	c.logger.Info("response from gemini received")

	return resp.Text(), nil
}

// convertMessages maps provider-agnostic messages onto Gemini turns.
// Gemini has no system role, so system entries are sent as user turns; this
// is a deliberate lossy mapping. Parts are ordered text, images, audios,
// files; a message yielding zero parts is dropped.
func convertMessages(messages []domain.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}

		parts := make([]*genai.Part, 0, 1+len(msg.Images)+len(msg.Audios)+len(msg.Files))
		if msg.Content != "" {
			parts = append(parts, genai.NewPartFromText(msg.Content))
		}
		for _, img := range msg.Images {
			parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
		}
		for _, a := range msg.Audios {
			parts = append(parts, genai.NewPartFromBytes(a.Data, a.MimeType))
		}
		for _, f := range msg.Files {
			parts = append(parts, genai.NewPartFromBytes(f.Data, f.MimeType))
		}
		if len(parts) == 0 {
			continue
		}

		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

// mapError folds provider failures into the domain taxonomy.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return domain.ErrQuotaExceeded
		case http.StatusServiceUnavailable:
			return domain.ErrOverloaded
		default:
			return &domain.LLMError{Status: apiErr.Code, Err: err}
		}
	}
	return &domain.LLMError{Err: err}
}
