package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog/log"

	"tourism-system/internal/config"
	"tourism-system/internal/geodata/nominatim"
	"tourism-system/internal/geodata/openmeteo"
	"tourism-system/internal/geodata/overpass"
	httphandler "tourism-system/internal/http"
	"tourism-system/internal/services/intent"
	"tourism-system/internal/services/llm"
	"tourism-system/internal/services/query"
	"tourism-system/internal/translate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Redis backs the rate limiter; without an address rate limiting is off.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, rate limiting will fail open")
		}
		cancel()
	}

	// The LLM collaborator is optional; without a key the intent
	// extractor runs on its deterministic fallback.
	var llmClient llm.Client
	if cfg.OpenAI.APIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create LLM client")
		}
		llmClient = client
		log.Info().Str("model", cfg.OpenAI.Model).Msg("LLM intent extraction enabled")
	} else {
		log.Info().Msg("No OpenAI API key configured, using keyword intent extraction")
	}

	// Initialize providers and services
	geoResolver := nominatim.NewClient(cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent, cfg.Nominatim.Timeout)
	weatherProvider := openmeteo.NewClient(cfg.OpenMeteo.BaseURL, cfg.OpenMeteo.Timeout)
	placeProvider := overpass.NewClient(cfg.Overpass.BaseURL, cfg.Overpass.Timeout)
	translator := translate.NewClient(cfg.Translate.BaseURL, cfg.Translate.FallbackURL, cfg.Translate.Timeout)

	extractor := intent.NewExtractor(llmClient)
	service := query.NewService(geoResolver, weatherProvider, placeProvider, overpass.MaxAttractions)
	composer := query.NewComposer(translator)

	// Initialize HTTP router
	router := httphandler.NewRouter(redisClient, cfg.RateLimit.RequestsPerMinute)

	// Register routes
	queryHandler := httphandler.NewQueryHandler(extractor, service, composer)
	router.RegisterQueryRoutes(queryHandler)
	router.RegisterHealthRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
