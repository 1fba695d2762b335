// Package app wires configuration into a runnable server: provider backends,
// transcription, OCR engines, the history store, and the HTTP/WebSocket API.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/antoniostano/candidly/internal/config"
	"github.com/antoniostano/candidly/internal/conns"
	"github.com/antoniostano/candidly/internal/history"
	"github.com/antoniostano/candidly/internal/httpapi"
	"github.com/antoniostano/candidly/internal/interview"
	"github.com/antoniostano/candidly/internal/observability"
	"github.com/antoniostano/candidly/internal/ocr"
	"github.com/antoniostano/candidly/internal/providers"
	"github.com/antoniostano/candidly/internal/speech"
)

// Version is reported to clients in the connected event.
const Version = "1.2.0"

const perfWindowSamples = 256

type BuildResult struct {
	Config       config.Config
	API          *httpapi.Server
	Registry     *conns.Registry
	Orchestrator *interview.Orchestrator
	Store        history.Store
	Metrics      *observability.Metrics
	Perf         *observability.StageWindow

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, log *logrus.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	perf := observability.NewStageWindow(perfWindowSamples)

	store, err := history.NewStore(ctx, cfg.DatabaseURL, cfg.DataDir, cfg.SessionRetention, log)
	if err != nil {
		return nil, fmt.Errorf("history store init failed: %w", err)
	}

	var backends []providers.Backend
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, providers.NewOpenAIBackend(cfg.OpenAIAPIKey, ""))
	}
	if cfg.AnthropicAPIKey != "" {
		backends = append(backends, providers.NewAnthropicBackend(cfg.AnthropicAPIKey, ""))
	}
	if cfg.GeminiAPIKey != "" {
		backends = append(backends, providers.NewGeminiBackend(cfg.GeminiAPIKey, ""))
	}
	if !cfg.HasGenerationKey() {
		log.Warn("no generation API keys configured, answers will come from the mock backend")
		backends = append(backends, providers.NewMockBackendNamed(providers.ProviderOpenAI))
	}
	gateway := providers.NewGateway(log, backends...)

	var transcriber speech.Transcriber
	if cfg.DeepgramAPIKey != "" {
		transcriber = speech.NewDeepgram(cfg.DeepgramAPIKey, cfg.AudioSampleRate)
	} else {
		log.Warn("DEEPGRAM_API_KEY not set, transcription runs in mock mode")
		transcriber = speech.NewMock("")
	}

	var engines []ocr.Engine
	if tess, err := ocr.NewTesseract(cfg.TesseractCLI); err != nil {
		log.WithError(err).Warn("tesseract unavailable")
	} else {
		engines = append(engines, tess)
	}
	if cfg.GoogleVisionAPIKey != "" {
		engines = append(engines, ocr.NewGoogleVision(cfg.GoogleVisionAPIKey))
	}
	if len(engines) == 0 {
		log.Warn("no OCR engine available, screenshots run in mock mode")
		engines = append(engines, ocr.NewMock(cfg.DefaultOCRProvider, ""))
	}
	ocrEngines := ocr.NewRegistry(cfg.DefaultOCRProvider, engines...)
	if ocrEngines.Engine("") == nil {
		// The configured default must resolve or every screenshot would fail.
		ocrEngines = ocr.NewRegistry(engines[0].Name(), engines...)
	}

	registry := conns.NewRegistry()
	orchestrator := interview.NewOrchestrator(
		log,
		metrics,
		perf,
		registry,
		store,
		gateway,
		transcriber,
		ocrEngines,
		Version,
		cfg.MockProvider,
		cfg.MockModel,
	)

	api := httpapi.New(
		cfg,
		log,
		registry,
		orchestrator,
		store,
		gateway,
		ocrEngines,
		transcriber.Name(),
		metrics,
		perf,
	)

	return &BuildResult{
		Config:       cfg,
		API:          api,
		Registry:     registry,
		Orchestrator: orchestrator,
		Store:        store,
		Metrics:      metrics,
		Perf:         perf,
		Cleanup:      store.Close,
	}, nil
}
