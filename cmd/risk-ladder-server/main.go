package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/risk-ladder/internal/config"
	"github.com/iwvelando/risk-ladder/internal/logging"
	"github.com/iwvelando/risk-ladder/internal/metrics"
	"github.com/iwvelando/risk-ladder/internal/server"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	envLoaded, envErr := config.LoadEnv(constants.DefaultEnvFile)

	configLocation := flag.String("config", config.EnvOr(constants.EnvServerConfigPath, constants.DefaultServerConfigFile), "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", config.EnvOr(constants.EnvLogLevel, ""), "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if envErr != nil {
		logger.Warn("failed to load env file",
			zap.String("op", "main"),
			zap.Error(envErr),
		)
	} else if envLoaded {
		logger.Debug("loaded env file",
			zap.String("op", "main"),
			zap.String("path", constants.DefaultEnvFile),
		)
	}

	opts := server.Options{
		MaxUploadSize:  cfg.UploadSizeBytes(),
		RequestTimeout: cfg.RequestTimeoutDuration(),
		Version:        version,
	}
	if cfg.MetricsEnabled() {
		opts.Metrics = metrics.NewCollector()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("risk-ladder server listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.Bool("metrics", opts.Metrics != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
