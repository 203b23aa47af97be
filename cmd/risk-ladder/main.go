package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/risk-ladder/internal/config"
	"github.com/iwvelando/risk-ladder/internal/logging"
	"github.com/iwvelando/risk-ladder/internal/planner"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/output"
	"github.com/iwvelando/risk-ladder/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Values in .env seed the flag defaults below.
	envLoaded, envErr := config.LoadEnv(constants.DefaultEnvFile)

	configLocation := flag.String("config", config.EnvOr(constants.EnvConfigPath, constants.DefaultConfigFile), "path to configuration file")
	mode := flag.String("mode", config.EnvOr(constants.EnvMode, constants.RunModeOptimize), "run mode: ladder, optimize, bound, stop")
	outputFormatFlag := flag.String("output-format", config.EnvOr(constants.EnvOutputFormat, ""), "type of output override: pretty, csv, json, yaml")
	logLevel := flag.String("log-level", config.EnvOr(constants.EnvLogLevel, ""), "log level override (debug, info, warn, error)")
	currentPrice := flag.Float64("current-price", 0, "current market price; narrows the zone before searching")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
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

	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if *currentPrice > 0 {
		conf.CurrentPrice = *currentPrice
	}

	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := planner.Plan(ctx, logger, *conf, *mode, nil)
	if err != nil {
		logger.Fatal("failed to plan ladder",
			zap.String("op", "main"),
			zap.String("mode", *mode),
			zap.Error(err),
		)
	}

	for _, warning := range report.Warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if err := output.Write(os.Stdout, conf.Output.Format, *report); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
