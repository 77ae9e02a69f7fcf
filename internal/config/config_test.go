package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("GEMINI_API_KEY", "gm-key")
}

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLMProvider != ProviderGemini {
		t.Errorf("provider = %q", cfg.LLMProvider)
	}
	if cfg.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10", cfg.MaxHistory)
	}
	if cfg.MaxMessageLen != 4000 {
		t.Errorf("MaxMessageLen = %d, want 4000", cfg.MaxMessageLen)
	}
	for name, prompt := range map[string]string{
		"SystemPrompt": cfg.SystemPrompt,
		"ImagePrompt":  cfg.ImagePrompt,
		"FilePrompt":   cfg.FilePrompt,
		"AudioPrompt":  cfg.AudioPrompt,
		"VideoPrompt":  cfg.VideoPrompt,
	} {
		if prompt == "" {
			t.Errorf("%s must have a default", name)
		}
	}
}

func TestLoadFailsWithoutTelegramToken(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Fatal("expected an error for the missing telegram token")
	}
}

func TestLoadFailsWithoutProviderKey(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Fatal("expected an error for the missing gemini key")
	}
}

func TestLoadOpenAIProviderRequiresItsKey(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Fatal("expected an error for the missing openai key")
	}

	t.Setenv("OPENAI_API_KEY", "oa-key")
	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("provider = %q", cfg.LLMProvider)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LLM_PROVIDER", "oracle")

	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestLoadParsesUserIDs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_USER_IDS", "1, 2,3")
	t.Setenv("ALLOWED_USER_IDS", "42")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AdminUserIDs) != 3 || cfg.AdminUserIDs[2] != 3 {
		t.Errorf("AdminUserIDs = %v", cfg.AdminUserIDs)
	}
	if len(cfg.AllowedUserIDs) != 1 || cfg.AllowedUserIDs[0] != 42 {
		t.Errorf("AllowedUserIDs = %v", cfg.AllowedUserIDs)
	}
}

func TestLoadRejectsMalformedUserIDs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_USER_IDS", "1,abc")

	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Fatal("expected an error for malformed ids")
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "MAX_HISTORY=5\nMAX_MESSAGE_LEN=2000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxHistory != 5 {
		t.Errorf("MaxHistory = %d, want 5 from the env file", cfg.MaxHistory)
	}
	if cfg.MaxMessageLen != 2000 {
		t.Errorf("MaxMessageLen = %d, want 2000 from the env file", cfg.MaxMessageLen)
	}
}
