package main

import (
	"bussd-route-service/internal/adapters/cache"
	"bussd-route-service/internal/adapters/events"
	"bussd-route-service/internal/adapters/repositories"
	"bussd-route-service/internal/adapters/tfl"
	"bussd-route-service/internal/api"
	"bussd-route-service/internal/api/handlers"
	"bussd-route-service/internal/config"
	"bussd-route-service/internal/platform/db"
	"bussd-route-service/internal/platform/metrics"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/ports"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, TfL, Redis, NATS) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	obs.SetupLogging(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	checks := map[string]handlers.HealthCheck{}

	var routes ports.RouteRepository
	switch cfg.RouteStore {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory route store, records are lost on restart")
		routes = repositories.NewMemoryRouteRepository()
	default:
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize schema")
		}
		routes = repositories.NewPostgresRouteRepository(conn)
		checks["postgres"] = conn.PingContext
	}

	// TfL sequences change rarely; a Redis cache keeps repeated lookups off the upstream API.
	var sequenceCache *cache.RedisSequenceCache
	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDatabase,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddress).Msg("redis unavailable, sequence cache disabled")
		} else {
			sequenceCache = cache.NewRedisSequenceCache(client, cfg.SequenceTTL)
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			log.Info().Str("addr", cfg.RedisAddress).Dur("ttl", cfg.SequenceTTL).Msg("sequence cache enabled")
		}
	}

	provider, err := tfl.NewTfLProvider(cfg.TfLURL, cfg.TfLAPIKey, cfg.HTTPTimeout, sequenceCache, collector)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create TfL provider")
	}

	var publisher ports.RouteEventPublisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL, collector)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer np.Close()
		publisher = np
	}

	router := api.NewRouter(api.Deps{
		Routes:  routes,
		Lines:   provider,
		Stops:   provider,
		Network: provider,
		Events:  publisher,
		Metrics: collector,
		Checks:  checks,
	})

	// Write timeout leaves room for a TfL call with retries.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout*2 + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.RouteStore).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
