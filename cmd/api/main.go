package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Lumi_V0.1/internal/aiservice"
	"Lumi_V0.1/internal/appstate"
	"Lumi_V0.1/internal/config"
	"Lumi_V0.1/internal/database"
	"Lumi_V0.1/internal/logging"
	"Lumi_V0.1/internal/server"
	"Lumi_V0.1/internal/utility"
	"github.com/rs/zerolog/log"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// newModel picks the hosted model backend.
func newModel(cfg config.Config) aiservice.Model {
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		return aiservice.NewOpenAIClient(aiservice.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Timeout:     cfg.AIRequestTimeout,
			MaxAttempts: cfg.AIMaxAttempts,
		})
	default:
		return aiservice.NewGeminiClient(aiservice.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			BaseURL:     cfg.GeminiBaseURL,
			Timeout:     cfg.AIRequestTimeout,
			MaxAttempts: cfg.AIMaxAttempts,
		})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	kv, err := database.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("could not open storage")
	}
	defer kv.Close() // Ensure the database connection is closed on exit.
	log.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	hub := utility.NewHub()
	states, err := appstate.NewRegistry(kv, cfg.StateCacheSize,
		appstate.WithDateLayout(cfg.DateLayout),
		appstate.WithOnChange(hub.Notify),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create state registry")
	}

	analyzer := aiservice.NewAnalyzer(aiservice.NewFlows(newModel(cfg)))

	apiServer := server.NewServer(cfg, server.Deps{
		Storage:  kv,
		Analyzer: analyzer,
		States:   states,
		Hub:      hub,
	})

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	log.Info().Str("addr", apiServer.Addr).Str("provider", cfg.AIProvider).Msg("http server listening")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
