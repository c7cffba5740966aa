package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/narravox/tts-studio/internal/audio"
	"github.com/narravox/tts-studio/internal/config"
	"github.com/narravox/tts-studio/internal/elevenlabs"
	"github.com/narravox/tts-studio/internal/httpapi"
	"github.com/narravox/tts-studio/internal/observability"
	"github.com/narravox/tts-studio/internal/pipeline"
	"github.com/narravox/tts-studio/internal/quota"
	"github.com/narravox/tts-studio/internal/store"
	"github.com/narravox/tts-studio/internal/synth"
	"github.com/narravox/tts-studio/internal/voiceclone"
	"github.com/narravox/tts-studio/internal/voices"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("model", cfg.ElevenLabsModel).
		Str("output_format", cfg.OutputFormat).
		Int("voice_cap", cfg.MaxVoicesPerUser).
		Int("generation_cap", cfg.MaxGenerationsPerUser).
		Msg("TTS Studio Service starting")

	ctx := context.Background()

	// Open the usage store
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open usage store")
	}
	defer st.Close()

	// Assemble the pipeline components
	client := elevenlabs.NewClient(cfg)

	sink, err := audio.NewSink(cfg.OutputsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output sink")
	}

	assembler, err := audio.NewAssembler(cfg.OutputsDir, cfg.MergeGap())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create assembler")
	}

	guard := quota.NewGuard(st, cfg.MaxVoicesPerUser, cfg.MaxGenerationsPerUser)
	batch := synth.NewBatchSynthesizer(client, st, sink, cfg.OutputFormat, cfg.SynthesisCallTimeout())
	pipe := pipeline.New(guard, batch, assembler)

	cloner, err := voiceclone.NewCoordinator(client, st, guard, cfg.SamplesDir, cfg.CloneCallTimeout())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create voice clone coordinator")
	}

	catalog := voices.NewCatalog(client, cfg.VoiceFetchAttempts, cfg.VoiceFetchCallTimeout())

	// Create HTTP server
	mux := http.NewServeMux()

	api := httpapi.NewServer(cfg, pipe, cloner, catalog, st, sink)
	api.Register(mux)

	// Health check endpoint
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	// Readiness endpoint
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"database": func(ctx context.Context) (bool, error) {
			if err := st.Ping(ctx); err != nil {
				return false, err
			}
			return true, nil
		},
		"elevenlabs": func(ctx context.Context) (bool, error) {
			// Config validation only; no API call to avoid costs
			if cfg.ElevenLabsAPIKey == "" {
				return false, fmt.Errorf("provider API key not configured")
			}
			return true, nil
		},
	}))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute, // generation batches block on provider calls
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
