// Command verproxy serves /health, /mysql_ver and /extern.
//
//	@title						verproxy API
//	@version					0.1.0
//	@description				Liveness, database version lookup and an external JSON relay.
//	@BasePath					/
//	@schemes					http https
//	@produce					json
//	@tag.name					Health
//	@tag.description			Liveness and readiness probes
//	@tag.name					Database
//	@tag.description			Database server version
//	@tag.name					Extern
//	@tag.description			External JSON relay
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/verproxy/internal/config"
	httpapi "github.com/tbourn/verproxy/internal/http"
	"github.com/tbourn/verproxy/internal/observability"
	"github.com/tbourn/verproxy/internal/provider"
	"github.com/tbourn/verproxy/internal/repo"
	"github.com/tbourn/verproxy/internal/server"
	"github.com/tbourn/verproxy/internal/sysutil"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("verproxy exited")
	}
}

func run() error {
	envFile, envErr := sysutil.LoadDotEnv(sysutil.FirstNonEmpty(os.Getenv("ENV_FILE"), ".env"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.ConfigureLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, config.ServiceName)
	if envErr != nil {
		log.Warn().Err(envErr).Str("file", envFile).Msg("ignoring unreadable env file")
	} else if envFile != "" {
		log.Debug().Str("file", envFile).Msg("loaded env file")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, config.Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.Open(cfg.DatabaseURL, cfg.DB)
	if err != nil {
		return err
	}

	dbp, err := provider.NewDBProvider(db)
	if err != nil {
		_ = repo.Close(db)
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := observability.RegisterDBStats(nil, sqlDB, "primary"); err != nil {
			log.Warn().Err(err).Msg("db stats collector not registered")
		}
	}
	hcp := provider.NewHTTPClientProvider(cfg.Extern)

	engine := httpapi.NewEngine()
	if err := httpapi.RegisterRoutes(engine, httpapi.Deps{DB: dbp, HTTP: hcp}, cfg); err != nil {
		_ = repo.Close(db)
		return err
	}

	srv := server.New(server.Options{
		Addr:              cfg.ListenHost,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}, engine)
	srv.OnShutdown(hcp.CloseIdle)
	srv.OnShutdown(func() {
		if err := repo.Close(db); err != nil {
			log.Error().Err(err).Msg("database close")
		}
	})

	log.Info().
		Str("addr", cfg.ListenHost).
		Str("dialect", string(repo.DialectOf(db))).
		Str("extern_url", cfg.Extern.URL).
		Str("version", config.Version).
		Msg("verproxy starting")

	return srv.Run(ctx)
}
