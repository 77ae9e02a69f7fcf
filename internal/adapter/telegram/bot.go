package telegram

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gemini-telegram-bot/internal/config"
	"gemini-telegram-bot/internal/domain"
	"gemini-telegram-bot/internal/markup"
	"gemini-telegram-bot/internal/usecase/chat"
)

const (
	greetingNotice    = "Hi! Send me text, an image, a file, audio or video and I will analyze it."
	resetNotice       = "Context cleared."
	unsupportedNotice = "I can only work with text, images, files, audio and video for now."
	quotaNotice       = "The model is rate-limited right now, please try again in a minute."
	overloadedNotice  = "The model is temporarily overloaded, please try again later."
	llmFailureNotice  = "The model service had a problem answering, please try again later."
	emptyReplyNotice  = "I could not get an answer from the model."
	formattingNotice  = "Formatting failed, sending the reply as plain text."
	unexpectedNotice  = "Something went wrong, please try again."
	deniedNotice      = "Access denied."
)

type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        config.Config
	chat       *chat.Service
	normalizer *Normalizer
	logger     *slog.Logger
}

func NewBot(cfg config.Config, chatSvc *chat.Service, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	prompts := DefaultPrompts{
		Image: cfg.ImagePrompt,
		File:  cfg.FilePrompt,
		Audio: cfg.AudioPrompt,
		Video: cfg.VideoPrompt,
	}
	return &Bot{
		api:        api,
		cfg:        cfg,
		chat:       chatSvc,
		normalizer: NewNormalizer(&botDownloader{api: api}, prompts, logger),
		logger:     logger,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage drives one inbound message to a terminal state: exactly one
// reply, success or notice. Nothing here may crash the dispatch loop.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling message",
				"user_id", msg.From.ID, "message_id", msg.MessageID, "panic", r)
			b.sendPlain(msg.Chat.ID, msg.MessageID, unexpectedNotice)
		}
	}()

	userID := msg.From.ID
	if !b.isAllowedUser(userID) {
		b.sendPlain(msg.Chat.ID, msg.MessageID, deniedNotice)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	userMessage, err := b.normalizer.Normalize(msg)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedContent) {
			b.sendPlain(msg.Chat.ID, msg.MessageID, unsupportedNotice)
			return
		}
		b.logger.Error("normalization failed",
			"user_id", userID, "message_id", msg.MessageID, "error", err)
		b.sendPlain(msg.Chat.ID, msg.MessageID, unexpectedNotice)
		return
	}

	b.sendChatAction(msg.Chat.ID)

	reply, err := b.chat.Reply(ctx, userID, userMessage)
	if err != nil {
		b.logger.Error("llm turn failed",
			"user_id", userID, "message_id", msg.MessageID, "error", err)
		b.sendPlain(msg.Chat.ID, msg.MessageID, noticeForError(err))
		return
	}

	b.sendReply(msg.Chat.ID, msg.MessageID, reply)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendPlain(msg.Chat.ID, msg.MessageID, greetingNotice)
	case "reset":
		b.chat.Reset(msg.From.ID)
		b.sendPlain(msg.Chat.ID, msg.MessageID, resetNotice)
	default:
		b.sendPlain(msg.Chat.ID, msg.MessageID, unsupportedNotice)
	}
}

// noticeForError maps the error taxonomy onto exactly one user-facing
// notice.
func noticeForError(err error) string {
	var llmErr *domain.LLMError
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return quotaNotice
	case errors.Is(err, domain.ErrOverloaded):
		return overloadedNotice
	case errors.Is(err, domain.ErrEmptyReply):
		return emptyReplyNotice
	case errors.As(err, &llmErr):
		return llmFailureNotice
	default:
		return unexpectedNotice
	}
}

// sendReply formats the model output as MarkdownV2 chunks and sends them in
// order, waiting for each send. On a formatting failure the raw text goes
// out unformatted after a degrade notice; on a per-chunk parse rejection
// the chunk is resent plain.
func (b *Bot) sendReply(chatID int64, replyTo int, text string) {
	chunks, err := markup.Render(text, b.cfg.MaxMessageLen)
	if err != nil {
		b.logger.Error("reply formatting failed", "chat_id", chatID, "error", err)
		b.sendPlain(chatID, replyTo, formattingNotice)
		for _, chunk := range markup.Split(text, b.cfg.MaxMessageLen) {
			b.sendPlain(chatID, 0, chunk)
		}
		return
	}

	for idx, chunk := range chunks {
		out := tgbotapi.NewMessage(chatID, chunk)
		out.ParseMode = tgbotapi.ModeMarkdownV2
		if idx == 0 {
			out.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(out); err != nil {
			b.logger.Error("markdown send failed, resending plain",
				"chat_id", chatID, "chunk", idx, "error", err)
			b.sendPlain(chatID, 0, chunk)
		}
	}
}

func (b *Bot) sendPlain(chatID int64, replyTo int, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	if replyTo != 0 {
		out.ReplyToMessageID = replyTo
	}
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendChatAction(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Error("failed to send chat action", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) isAllowedUser(userID int64) bool {
	for _, id := range b.cfg.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	if len(b.cfg.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
