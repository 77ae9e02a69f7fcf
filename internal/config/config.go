package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	TelegramToken string
	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIKey     string
	OpenAIModel   string

	MaxHistory    int
	MaxMessageLen int

	SystemPrompt string
	ImagePrompt  string
	FilePrompt   string
	AudioPrompt  string
	VideoPrompt  string

	AdminUserIDs   []int64
	AllowedUserIDs []int64

	LogLevel  string
	LogFile   string
	LogFormat string
}

// Load reads configuration from the given .env file (if present) and the
// environment, environment winning. Credentials are validated here so the
// process fails fast instead of at the first message.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}
	v.AutomaticEnv()

	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("MAX_HISTORY", 10)
	v.SetDefault("MAX_MESSAGE_LEN", 4000)
	v.SetDefault("SYSTEM_PROMPT",
		"You are an assistant that analyzes and summarizes material the user sends, "+
			"answering in a structured way with short conclusions where useful.")
	v.SetDefault("IMAGE_PROMPT", "Describe this image.")
	v.SetDefault("FILE_PROMPT", "Please analyze this file.")
	v.SetDefault("AUDIO_PROMPT", "Transcribe and briefly summarize this audio.")
	v.SetDefault("VIDEO_PROMPT", "Describe and briefly summarize this video.")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "logs/app.log")
	v.SetDefault("LOG_FORMAT", "json")

	cfg := Config{
		TelegramToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		LLMProvider:   strings.ToLower(v.GetString("LLM_PROVIDER")),
		GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
		GeminiModel:   v.GetString("GEMINI_MODEL"),
		OpenAIKey:     v.GetString("OPENAI_API_KEY"),
		OpenAIModel:   v.GetString("OPENAI_MODEL"),
		MaxHistory:    v.GetInt("MAX_HISTORY"),
		MaxMessageLen: v.GetInt("MAX_MESSAGE_LEN"),
		SystemPrompt:  v.GetString("SYSTEM_PROMPT"),
		ImagePrompt:   v.GetString("IMAGE_PROMPT"),
		FilePrompt:    v.GetString("FILE_PROMPT"),
		AudioPrompt:   v.GetString("AUDIO_PROMPT"),
		VideoPrompt:   v.GetString("VIDEO_PROMPT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFile:       v.GetString("LOG_FILE"),
		LogFormat:     v.GetString("LOG_FORMAT"),
	}

	var err error
	if cfg.AdminUserIDs, err = parseIDs(v.GetString("ADMIN_USER_IDS")); err != nil {
		return Config{}, fmt.Errorf("ADMIN_USER_IDS: %w", err)
	}
	if cfg.AllowedUserIDs, err = parseIDs(v.GetString("ALLOWED_USER_IDS")); err != nil {
		return Config{}, fmt.Errorf("ALLOWED_USER_IDS: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %q", c.LLMProvider)
	}
	if c.MaxHistory <= 0 {
		return errors.New("MAX_HISTORY must be positive")
	}
	if c.MaxMessageLen <= 0 {
		return errors.New("MAX_MESSAGE_LEN must be positive")
	}
	return nil
}

func parseIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
