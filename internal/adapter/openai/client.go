package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openaiapi "github.com/sashabaranov/go-openai"

	"gemini-telegram-bot/internal/domain"
)

// completer is the slice of the SDK the client uses; *openaiapi.Client
// satisfies it.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openaiapi.ChatCompletionRequest) (openaiapi.ChatCompletionResponse, error)
}

// Client is the OpenAI implementation of domain.LLMClient.
type Client struct {
	api    completer
	model  string
	logger *slog.Logger
}

func NewClient(token, model string, logger *slog.Logger) *Client {
	return &Client{
		api:    openaiapi.NewClient(token),
		model:  model,
		logger: logger,
	}
}

func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	apiMessages := c.convertMessages(messages)
	if len(apiMessages) == 0 {
		return "", &domain.LLMError{Err: errors.New("no sendable messages")}
	}

	c.logger.Info("sending request to openai", "model", c.model, "turns", len(apiMessages))
	resp, err := c.api.CreateChatCompletion(ctx, openaiapi.ChatCompletionRequest{
		Model:    c.model,
		Messages: apiMessages,
	})
	if err != nil {
		return "", mapError(err)
	}
	c.logger.Info("response from openai received")

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// convertMessages maps provider-agnostic messages onto chat completion
// messages. OpenAI understands system turns natively; images travel as
// base64 data URLs. The chat completions API has no inline slot for audio
// or generic file bytes, so those parts are dropped with a warning.
func (c *Client) convertMessages(messages []domain.ChatMessage) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		if len(msg.Audios) > 0 || len(msg.Files) > 0 {
			c.logger.Warn("dropping audio/file parts unsupported by the openai chat API",
				"audios", len(msg.Audios), "files", len(msg.Files))
		}

		if len(msg.Images) == 0 {
			if msg.Content == "" {
				continue
			}
			res = append(res, openaiapi.ChatCompletionMessage{
				Role:    msg.Role,
				Content: msg.Content,
			})
			continue
		}

		parts := make([]openaiapi.ChatMessagePart, 0, len(msg.Images)+1)
		if msg.Content != "" {
			parts = append(parts, openaiapi.ChatMessagePart{
				Type: openaiapi.ChatMessagePartTypeText,
				Text: msg.Content,
			})
		}
		for _, img := range msg.Images {
			parts = append(parts, openaiapi.ChatMessagePart{
				Type: openaiapi.ChatMessagePartTypeImageURL,
				ImageURL: &openaiapi.ChatMessageImageURL{
					URL:    dataURL(img),
					Detail: openaiapi.ImageURLDetailAuto,
				},
			})
		}
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:         msg.Role,
			MultiContent: parts,
		})
	}
	return res
}

func dataURL(img domain.MediaPart) string {
	return fmt.Sprintf("data:%s;base64,%s",
		img.MimeType, base64.StdEncoding.EncodeToString(img.Data))
}

func mapError(err error) error {
	var apiErr *openaiapi.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return domain.ErrQuotaExceeded
		case http.StatusServiceUnavailable:
			return domain.ErrOverloaded
		default:
			return &domain.LLMError{Status: apiErr.HTTPStatusCode, Err: err}
		}
	}
	return &domain.LLMError{Err: err}
}
