package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the interview copilot backend.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	OpenAIAPIKey       string
	AnthropicAPIKey    string
	GeminiAPIKey       string
	DeepgramAPIKey     string
	GoogleVisionAPIKey string

	TesseractCLI       string
	DefaultOCRProvider string
	AudioSampleRate    int

	DataDir          string
	DatabaseURL      string
	SessionRetention int

	MockProvider string
	MockModel    string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":3000"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "candidly"),
		// The desktop shell connects from an app:// origin during local use,
		// so the websocket endpoint accepts any origin unless locked down.
		AllowAnyOrigin:     true,
		OpenAIAPIKey:       trimmedEnv("OPENAI_API_KEY"),
		AnthropicAPIKey:    trimmedEnv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:       trimmedEnv("GEMINI_API_KEY"),
		DeepgramAPIKey:     trimmedEnv("DEEPGRAM_API_KEY"),
		GoogleVisionAPIKey: trimmedEnv("GOOGLE_VISION_API_KEY"),
		TesseractCLI:       envOrDefault("TESSERACT_CLI", "tesseract"),
		DefaultOCRProvider: envOrDefault("OCR_DEFAULT_PROVIDER", "tesseract"),
		AudioSampleRate:    16000,
		DataDir:            envOrDefault("APP_DATA_DIR", "data"),
		DatabaseURL:        trimmedEnv("DATABASE_URL"),
		SessionRetention:   50,
		MockProvider:       envOrDefault("MOCK_INTERVIEW_PROVIDER", "openai"),
		MockModel:          envOrDefault("MOCK_INTERVIEW_MODEL", "gpt-4"),
		ShutdownTimeout:    15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionRetention, err = intFromEnv("SESSION_RETENTION_CAP", cfg.SessionRetention)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.AudioSampleRate, err = intFromEnv("AUDIO_SAMPLE_RATE", cfg.AudioSampleRate)
	if err != nil {
		return Config{}, err
	}

	if cfg.AudioSampleRate <= 0 {
		return Config{}, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive")
	}

	if cfg.SessionRetention <= 0 {
		return Config{}, fmt.Errorf("SESSION_RETENTION_CAP must be positive")
	}
	switch cfg.DefaultOCRProvider {
	case "tesseract", "google":
	default:
		return Config{}, fmt.Errorf("OCR_DEFAULT_PROVIDER must be tesseract or google, got %q", cfg.DefaultOCRProvider)
	}

	return cfg, nil
}

// HasGenerationKey reports whether at least one answer-generation backend is
// configured. Missing keys produce a startup warning, not a hard failure:
// the mock backend keeps local development usable without keys.
func (c Config) HasGenerationKey() bool {
	return c.OpenAIAPIKey != "" || c.AnthropicAPIKey != "" || c.GeminiAPIKey != ""
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
