package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/go-logr/stdr"

	"github.com/vsinha/stockout/pkg/infrastructure/telemetry"
	"github.com/vsinha/stockout/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		dbPath          = flag.String("db", getEnv("STOCKOUT_DB", "stockout.db"), "SQLite database file")
		format          = flag.String("format", "text", "Output format: text, json")
		strategy        = flag.String("strategy", "proportional", "Feedback strategy: proportional, fixed")
		forecastTimeout = flag.Duration("forecast-timeout", 5*time.Second, "Maximum time spent fitting a forecast")
		otlpEndpoint    = flag.String("otlp-endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), "OTLP/HTTP endpoint for traces (optional)")
		verbose         = flag.Bool("verbose", false, "Enable verbose output")
		help            = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	stdr.SetVerbosity(0)
	if *verbose {
		stdr.SetVerbosity(1)
	}
	logger := stdr.New(log.New(os.Stderr, "[stockout] ", log.LstdFlags))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{ServiceName: "stockout", Endpoint: *otlpEndpoint}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if *help {
		args = nil
	}

	// Create command configuration
	config := commands.Config{
		DBPath:          *dbPath,
		Format:          *format,
		Verbose:         *verbose,
		Strategy:        *strategy,
		ForecastTimeout: *forecastTimeout,
		Args:            args,
		Out:             os.Stdout,
		Logger:          logger,
	}

	// Create and execute command
	cmd := commands.NewCommand(config)
	runErr := cmd.Execute(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(flushCtx); err != nil {
		logger.Error(err, "failed to flush traces")
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
