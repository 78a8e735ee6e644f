package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/distill/internal/api"
	"github.com/MikeSquared-Agency/distill/internal/config"
	"github.com/MikeSquared-Agency/distill/internal/events"
	"github.com/MikeSquared-Agency/distill/internal/pipeline"
	"github.com/MikeSquared-Agency/distill/internal/session"
	"github.com/MikeSquared-Agency/distill/internal/store"
	"github.com/MikeSquared-Agency/distill/internal/telemetry"
	"github.com/MikeSquared-Agency/distill/internal/validate"
	"github.com/MikeSquared-Agency/distill/internal/window"
)

const usage = `distill — turn agent session transcripts into training datasets

Usage:
  distill run       [flags]    execute the full pipeline
  distill extract   <file>     reconstruct one session transcript and print it
  distill validate  <file...>  check dataset files and print a report
  distill serve                serve run status and stats over HTTP
`

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(cfg, os.Args[2:])
	case "extract":
		err = extractCmd(os.Args[2:])
	case "validate":
		err = validateCmd(os.Args[2:])
	case "serve":
		err = serveCmd(cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runCmd(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	sessionsDir := fs.String("sessions-dir", cfg.SessionsDir, "directory to scan for session transcripts")
	outputDir := fs.String("output-dir", cfg.OutputDir, "directory for dataset files")
	role := fs.String("role", "", "process only sessions of this role")
	maxSessions := fs.Int("max-sessions", 0, "stop after this many sessions (0 = unlimited)")
	fresh := fs.Bool("fresh", false, "ignore previous run state and reprocess everything")
	dryRun := fs.Bool("dry-run", false, "report stats without writing files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	var outcomes pipeline.OutcomeSource
	if cfg.TelemetryEnabled {
		outcomes = telemetry.NewClient(cfg.MetricsURL, cfg.LogsURL, logger)
		slog.Info("telemetry outcome signal enabled", "logs_url", cfg.LogsURL)
	}

	var catalog pipeline.Catalog
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		catalog = db
		slog.Info("database connected")
	}

	var publisher pipeline.EventPublisher
	if cfg.NatsURL != "" {
		nc, err := events.NewPublisher(cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer nc.Close()
		publisher = nc
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	runner := pipeline.NewRunner(pipeline.Config{
		SessionsDir: *sessionsDir,
		OutputDir:   *outputDir,
		StatePath:   cfg.StatePath,
		RoleFilter:  *role,
		MaxSessions: *maxSessions,
		Fresh:       *fresh,
		DryRun:      *dryRun,
		Window: window.Params{
			Size:     cfg.WindowTurns,
			Stride:   cfg.Stride,
			MaxChars: cfg.MaxChars,
		},
	}, outcomes, catalog, publisher, logger)

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func extractCmd(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("extract takes exactly one transcript path")
	}

	sess, err := session.Extract(fs.Arg(0), slog.Default())
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("no usable conversation data in %s", fs.Arg(0))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sess)
}

func validateCmd(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("validate takes one or more dataset paths")
	}

	allValid := true
	for _, path := range fs.Args() {
		report, err := validate.File(path)
		if err != nil {
			return fmt.Errorf("validate %s: %w", path, err)
		}
		report.RenderTable(os.Stdout)
		if !report.Valid() {
			allValid = false
		}
	}
	if !allValid {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func serveCmd(cfg config.Config) error {
	var runs api.RunReader
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		runs = db
	} else {
		slog.Warn("DATABASE_URL not set — serving without run catalog")
	}

	srv := api.NewServer(cfg.Port, cfg.StatePath, runs)
	return srv.Start()
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
