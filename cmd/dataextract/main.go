package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/config"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	logpkg "github.com/kailas-cloud/dataextract/internal/logger"
	"github.com/kailas-cloud/dataextract/internal/metrics"
	"github.com/kailas-cloud/dataextract/internal/version"
)

const usage = `usage: dataextract [command]

commands:
  serve              run the HTTP API (default)
  warmup             rebuild and persist the field catalog, then exit
  fields [type ...]  print available field names, e.g. "fields datetime"
  version            print build information`

func main() {
	cmd, args := "serve", []string(nil)
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	switch cmd {
	case "version":
		fmt.Println(version.String())
		return
	case "serve", "warmup", "fields":
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	logger = logpkg.WithFile(logger, logpkg.FileOptions{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer func() { _ = logger.Sync() }()

	// Register metrics explicitly (no init())
	metrics.RegisterCatalogMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := context.Background()
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise", zap.Error(err))
	}
	defer a.Close()

	switch cmd {
	case "warmup":
		if err := a.dict.WarmUp(ctx); err != nil {
			logger.Fatal("Warm-up failed", zap.Error(err))
		}
	case "fields":
		types, err := field.ParseTypes(args)
		if err != nil {
			logger.Fatal("Invalid field type", zap.Error(err))
		}
		names, err := a.dict.AvailableFields(ctx, types...)
		if err != nil {
			logger.Fatal("Failed to list fields", zap.Error(err))
		}
		printFields(os.Stdout, names, isatty.IsTerminal(os.Stdout.Fd()))
	default:
		serve(ctx, a, cfg, env, logger)
	}
}
