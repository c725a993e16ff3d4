// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "time/tzdata"

	"carpool/internal/config"
	carpoolhttp "carpool/internal/http"
	"carpool/internal/infra"
	"carpool/internal/maps"
	"carpool/internal/modules/carpool"
	"carpool/internal/modules/plans"
	"carpool/internal/timeaddr"
)

func main() {
	if os.Getenv("CARPOOL_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	if os.Getenv("CARPOOL_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, err := timeaddr.NewResolver()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load timezone table")
	}

	var geocoder carpool.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init maps client")
		}
		geocoder = g
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	plansStore := plans.NewStore(dbPool, redisClient)
	if err := plansStore.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate plan archive")
	}
	plansSvc := plans.NewService(plansStore)

	carpoolSvc := carpool.NewService(resolver, geocoder, cfg.Engine)

	var verifier infra.TokenVerifier
	if cfg.Firebase.ProjectID != "" {
		verifier, err = infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init firebase verifier")
		}
	} else {
		log.Warn().Msg("no firebase project configured, API auth disabled")
	}

	router := carpoolhttp.NewRouter(carpoolhttp.RouterDeps{
		Carpool:  carpoolSvc,
		Plans:    plansSvc,
		Verifier: verifier,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
