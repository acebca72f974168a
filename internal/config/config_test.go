package config

import (
	"testing"
	"time"

	"speclens/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "GIN_MODE", "OPS_PORT", "OPS_ENABLED",
		"DATABASE_URL", "SSL_MODE",
		"AI_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
		"MAX_TOKENS", "TEMPERATURE", "AI_TIMEOUT", "AI_MAX_RETRIES", "PROMPTS_DIR",
		"AUDIT_STRICT_CONTEXTUAL", "AUDIT_TRUNCATE_CHARS",
		"AUDIT_MAX_DOCUMENT_BYTES", "AUDIT_MAX_CONCURRENT", "CHECKLIST_FILE",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("server port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.AI.Provider != ProviderDisabled {
		t.Errorf("provider = %q, want disabled with no keys", cfg.AI.Provider)
	}
	if cfg.ContextualEnabled() {
		t.Error("contextual enabled without any provider key")
	}
	if cfg.Audit.TruncateChars != 20000 {
		t.Errorf("truncate chars = %d, want 20000", cfg.Audit.TruncateChars)
	}
	if cfg.Audit.MaxDocumentBytes != 1<<20 {
		t.Errorf("max document bytes = %d, want %d", cfg.Audit.MaxDocumentBytes, 1<<20)
	}
	if cfg.Audit.StrictContextual {
		t.Error("strict mode on by default")
	}
	if cfg.Database.URL != "" {
		t.Errorf("database url = %q, want empty", cfg.Database.URL)
	}
	if cfg.AI.Timeout != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", cfg.AI.Timeout)
	}
}

func TestLoadInfersProviderFromKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Errorf("provider = %q, want openai", cfg.AI.Provider)
	}
	if !cfg.ContextualEnabled() {
		t.Error("contextual not enabled with an OpenAI key")
	}
}

func TestLoadGeminiKeyInference(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != ProviderGemini {
		t.Errorf("provider = %q, want gemini", cfg.AI.Provider)
	}
}

func TestLoadRejectsProviderWithoutKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "openai")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for openai provider without key")
	}
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "mainframe")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadRejectsBadAuditSettings(t *testing.T) {
	cases := map[string]string{
		"AUDIT_TRUNCATE_CHARS":     "-1",
		"AUDIT_MAX_DOCUMENT_BYTES": "0",
		"AUDIT_MAX_CONCURRENT":     "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9191")
	t.Setenv("AUDIT_STRICT_CONTEXTUAL", "true")
	t.Setenv("AUDIT_TRUNCATE_CHARS", "5000")
	t.Setenv("AI_TIMEOUT", "10s")
	t.Setenv("DATABASE_URL", "postgres://localhost/speclens")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9191" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if !cfg.Audit.StrictContextual {
		t.Error("strict override not applied")
	}
	if cfg.Audit.TruncateChars != 5000 {
		t.Errorf("truncate = %d", cfg.Audit.TruncateChars)
	}
	if cfg.AI.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Database.URL == "" {
		t.Error("database url override not applied")
	}
}

func TestConnString(t *testing.T) {
	cases := []struct {
		name string
		db   DatabaseConfig
		want string
	}{
		{
			name: "appends sslmode",
			db:   DatabaseConfig{URL: "postgres://localhost/speclens", SSLMode: "disable"},
			want: "postgres://localhost/speclens?sslmode=disable",
		},
		{
			name: "keeps existing parameters",
			db:   DatabaseConfig{URL: "postgres://localhost/speclens?sslmode=require", SSLMode: "disable"},
			want: "postgres://localhost/speclens?sslmode=require",
		},
		{
			name: "empty url",
			db:   DatabaseConfig{URL: "", SSLMode: "disable"},
			want: "",
		},
		{
			name: "no sslmode configured",
			db:   DatabaseConfig{URL: "postgres://localhost/speclens"},
			want: "postgres://localhost/speclens",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.db.ConnString(); got != tc.want {
				t.Errorf("ConnString() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_TOKENS", "not-a-number")
	t.Setenv("TEMPERATURE", "warm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.MaxTokens != 4000 {
		t.Errorf("max tokens = %d, want default 4000", cfg.AI.MaxTokens)
	}
	if cfg.AI.Temperature != 0.1 {
		t.Errorf("temperature = %v, want default 0.1", cfg.AI.Temperature)
	}
}
