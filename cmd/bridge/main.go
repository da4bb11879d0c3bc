package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/config"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/server"
	"github.com/littlehorse-enterprises/lh-user-tasks-bridge-sub000/internal/tenant"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("BRIDGE_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("BRIDGE_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment, then the tenant topology.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tenants, err := config.LoadTenants(cfg.TenantsFile)
	if err != nil {
		return err
	}

	// Build the read-only tenant registry: one backend client and identity
	// binding per tenant, constructed once and shared by all requests.
	registry, err := tenant.NewRegistry(ctx, tenants)
	if err != nil {
		return err
	}
	log.Info().Strs("tenants", registry.IDs()).Msg("tenant registry built")

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, registry)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("bridge listening")
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("bridge stopped")
	return nil
}
