package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finanze/internal/auth"
	"finanze/internal/backend"
	"finanze/internal/cli"
	apphttp "finanze/internal/http"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if err := backendConfig.Validate(); err != nil {
		logger.Error("invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("failed to create backend", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}

	authService := auth.NewService(result.Backend, []byte(cfg.JWTSecret), cfg.BcryptCost)

	srv := apphttp.NewServer(cfg, result.Backend, authService, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("starting finanze server", "addr", cfg.Addr, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err, "addr", cfg.Addr)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("server stopped gracefully")
}
