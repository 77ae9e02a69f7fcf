package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"gemini-telegram-bot/internal/adapter/gemini"
	"gemini-telegram-bot/internal/adapter/memory"
	"gemini-telegram-bot/internal/adapter/openai"
	"gemini-telegram-bot/internal/adapter/telegram"
	"gemini-telegram-bot/internal/config"
	"gemini-telegram-bot/internal/domain"
	"gemini-telegram-bot/internal/logging"
	"gemini-telegram-bot/internal/usecase/chat"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.Init(cfg)
	if err != nil {
		log.Printf("file logging unavailable: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	llmClient, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to init llm client: %v", err)
	}

	store := memory.NewStore(cfg.MaxHistory)
	chatSvc := chat.NewService(store, llmClient, cfg.SystemPrompt, logger)

	bot, err := telegram.NewBot(cfg, chatSvc, logger)
	if err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}

	if err := bot.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("shutdown", "reason", err)
			return
		}
		log.Fatalf("bot stopped with error: %v", err)
	}
}

func buildLLMClient(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.LLMClient, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		logger.Info("using gemini llm provider", "model", cfg.GeminiModel)
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	case config.ProviderOpenAI:
		logger.Info("using openai llm provider", "model", cfg.OpenAIModel)
		return openai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.LLMProvider)
	}
}
