package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":3000" {
		t.Fatalf("BindAddr = %q, want :3000", cfg.BindAddr)
	}
	if cfg.SessionRetention != 50 {
		t.Fatalf("SessionRetention = %d, want 50", cfg.SessionRetention)
	}
	if cfg.DefaultOCRProvider != "tesseract" {
		t.Fatalf("DefaultOCRProvider = %q, want tesseract", cfg.DefaultOCRProvider)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
	}
	if cfg.MockProvider != "openai" || cfg.MockModel != "gpt-4" {
		t.Fatalf("mock defaults = %q/%q", cfg.MockProvider, cfg.MockModel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_BIND_ADDR", ":9999")
	t.Setenv("SESSION_RETENTION_CAP", "7")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("OCR_DEFAULT_PROVIDER", "google")
	t.Setenv("OPENAI_API_KEY", " sk-test ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9999" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.SessionRetention != 7 {
		t.Fatalf("SessionRetention = %d", cfg.SessionRetention)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf("OpenAIAPIKey = %q, want trimmed", cfg.OpenAIAPIKey)
	}
	if !cfg.HasGenerationKey() {
		t.Fatalf("HasGenerationKey() = false, want true")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_RETENTION_CAP", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero retention cap")
	}

	t.Setenv("SESSION_RETENTION_CAP", "10")
	t.Setenv("OCR_DEFAULT_PROVIDER", "clipboard")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown ocr provider")
	}
}
