package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/league-night/internal/app"
	"github.com/riskibarqy/league-night/internal/config"
	"github.com/riskibarqy/league-night/internal/observability"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

const telemetryStopTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, flushLogs, err := observability.InitBetterStackLogger(cfg, logging.New(cfg.Development(), cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	logging.SetDefault(logger)
	defer stopTelemetry(nil, "betterstack", flushLogs)

	starters := []struct {
		name  string
		start func(config.Config, *logging.Logger) (observability.ShutdownFunc, error)
	}{
		{name: "uptrace", start: observability.InitUptrace},
		{name: "pyroscope", start: observability.InitPyroscope},
		{name: "pprof", start: observability.StartPprofServer},
	}
	for _, s := range starters {
		stop, err := s.start(cfg, logger)
		if err != nil {
			return fmt.Errorf("init %s: %w", s.name, err)
		}
		defer stopTelemetry(logger, s.name, stop)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return err
	}
	return application.Run(ctx)
}

// stopTelemetry runs one exporter shutdown with a bounded wait. A nil logger
// reports to stderr, for the exporter the logger itself depends on.
func stopTelemetry(logger *logging.Logger, name string, stop observability.ShutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryStopTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		if logger == nil {
			fmt.Fprintf(os.Stderr, "stop %s: %v\n", name, err)
			return
		}
		logger.Error("telemetry shutdown failed", "exporter", name, "error", err)
	}
}
