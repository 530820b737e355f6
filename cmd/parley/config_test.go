package main

import (
	"testing"
	"time"

	"parley/internal/logging"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PARLEY_PORT", "PARLEY_AUTH_TOKEN", "PARLEY_ALLOWED_ORIGINS",
		"PARLEY_STATIC_DIR", "PARLEY_ROSTER", "PARLEY_PRODUCTS",
		"PARLEY_ROUNDS", "PARLEY_LOG_LEVEL", "PARLEY_LLM_BASE_URL",
		"PARLEY_LLM_MODEL", "PARLEY_LLM_TIMEOUT", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Rounds != 3 {
		t.Fatalf("expected default rounds 3, got %d", cfg.Rounds)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("expected default level info, got %s", cfg.LogLevel)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("expected no default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PARLEY_PORT", "9191")
	t.Setenv("PARLEY_AUTH_TOKEN", "secret")
	t.Setenv("PARLEY_ALLOWED_ORIGINS", "app.example, other.example ,")
	t.Setenv("PARLEY_ROUNDS", "5")
	t.Setenv("PARLEY_LOG_LEVEL", "debug")
	t.Setenv("PARLEY_LLM_TIMEOUT", "45s")

	cfg := loadConfig()
	if cfg.Port != 9191 {
		t.Fatalf("expected port 9191, got %d", cfg.Port)
	}
	if cfg.AuthToken != "secret" {
		t.Fatalf("expected token from env, got %q", cfg.AuthToken)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "app.example" || cfg.AllowedOrigins[1] != "other.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.Rounds != 5 {
		t.Fatalf("expected rounds 5, got %d", cfg.Rounds)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("expected debug level, got %s", cfg.LogLevel)
	}
	if cfg.LLMTimeout != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %s", cfg.LLMTimeout)
	}
}

func TestLoadConfigIgnoresInvalidValues(t *testing.T) {
	t.Setenv("PARLEY_PORT", "not-a-port")
	t.Setenv("PARLEY_ROUNDS", "-2")
	t.Setenv("PARLEY_LOG_LEVEL", "verbose")
	t.Setenv("PARLEY_LLM_TIMEOUT", "soon")

	cfg := loadConfig()
	if cfg.Port != 8080 || cfg.Rounds != 3 || cfg.LogLevel != logging.LevelInfo || cfg.LLMTimeout != 0 {
		t.Fatalf("invalid values must fall back to defaults: %+v", cfg)
	}
}

func TestApplyFlagsOverridesEnvironment(t *testing.T) {
	t.Setenv("PARLEY_PORT", "9191")
	t.Setenv("PARLEY_ALLOWED_ORIGINS", "env.example")

	cfg := loadConfig()
	err := applyFlags(&cfg, []string{
		"-port", "7070",
		"-rounds", "4",
		"-allowed-origins", "flag.example,another.example",
		"-log-level", "warning",
	})
	if err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("flag must beat env: got port %d", cfg.Port)
	}
	if cfg.Rounds != 4 {
		t.Fatalf("expected rounds 4, got %d", cfg.Rounds)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "flag.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.LogLevel != logging.LevelWarning {
		t.Fatalf("expected warning level, got %s", cfg.LogLevel)
	}
}

func TestApplyFlagsKeepsEnvWhenAbsent(t *testing.T) {
	t.Setenv("PARLEY_PORT", "9191")

	cfg := loadConfig()
	if err := applyFlags(&cfg, nil); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.Port != 9191 {
		t.Fatalf("env value must survive without flags: got %d", cfg.Port)
	}
}
