package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Chdir(t.TempDir()) // no config file present

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.ModelName != DefaultModel {
		t.Errorf("ModelName = %q, want %q", cfg.ModelName, DefaultModel)
	}
	if cfg.ChunkSize != 800 || cfg.ChunkOverlap != 150 {
		t.Errorf("chunking = (%d, %d), want (800, 150)", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.RateLimit != 10 || cfg.RateWindow != 5*time.Minute {
		t.Errorf("rate limiting = (%d, %v), want (10, 5m)", cfg.RateLimit, cfg.RateWindow)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if !cfg.ModerationEnabled {
		t.Error("ModerationEnabled should default to true")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FERBOT_RATE_LIMIT", "5")
	t.Setenv("FERBOT_MODERATION_ENABLED", "false")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit = %d, want 5 (env override)", cfg.RateLimit)
	}
	if cfg.ModerationEnabled {
		t.Error("ModerationEnabled should be false (env override)")
	}
}

func TestLoad_InvalidEnvValueFailsValidation(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FERBOT_TEMPERATURE", "9.5")
	t.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("Load() with out-of-range temperature should fail validation")
	}
}
