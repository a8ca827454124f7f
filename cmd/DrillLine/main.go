package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CallForge/DrillLine/internal/alerts"
	"github.com/CallForge/DrillLine/internal/api"
	"github.com/CallForge/DrillLine/internal/events"
	"github.com/CallForge/DrillLine/internal/ivr"
	"github.com/CallForge/DrillLine/internal/store"
	"github.com/CallForge/DrillLine/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultPort is the listen port when $PORT is not set.
	DefaultPort = "3000"
	// DefaultSMTPPort is the SMTP port when $SMTP_PORT is not set.
	DefaultSMTPPort = 587
)

// Version is the build version string, set via -ldflags at build time.
var Version = "dev"

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	registry, err := buildRegistry(flags)
	if err != nil {
		slog.Error("Failed to load flow definitions", "error", err)
		os.Exit(1)
	}

	eventOpts, closeJournal, err := buildEventOptions(flags)
	if err != nil {
		slog.Error("Failed to open event journal", "error", err)
		os.Exit(1)
	}
	defer closeJournal()

	fanout := alerts.NewFanout(config.Alerts)
	eventLogger := events.NewLogger(eventOpts...)
	server := api.NewServer(registry, eventLogger, fanout, buildAPIOptions(flags)...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping DrillLine", "addr", *flags.addr, "alert_channels", fanout.Channels())
	if err := server.Run(ctx); err != nil {
		slog.Error("DrillLine failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("DrillLine exited successfully")
}

// Config holds environment configuration
type Config struct {
	Addr       string
	EventDBDSN string
	FlowsPath  string
	Alerts     alerts.Config
}

// Flags holds command line flag values
type Flags struct {
	addr       *string
	eventDBDSN *string
	flowsPath  *string
}

// initializeLogger sets up structured logging; $DEBUG enables debug level.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
		slog.Debug("No PORT set, using default", "default_port", port)
	}

	config := Config{
		Addr:       ":" + port,
		EventDBDSN: os.Getenv("EVENT_DB_DSN"),
		FlowsPath:  os.Getenv("FLOWS_CONFIG"),
		Alerts: alerts.Config{
			SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			WebhookURL:      os.Getenv("ALERT_WEBHOOK_URL"),
			EmailTo:         os.Getenv("ALERT_EMAIL_TO"),
			SMTPHost:        os.Getenv("SMTP_HOST"),
			SMTPPort:        util.ParseIntEnv("SMTP_PORT", DefaultSMTPPort),
			SMTPUser:        os.Getenv("SMTP_USER"),
			SMTPPass:        os.Getenv("SMTP_PASS"),
			EmailFrom:       os.Getenv("ALERT_FROM"),
		},
	}

	slog.Debug("environment variables loaded",
		"PORT", port,
		"EVENT_DB_DSN_SET", config.EventDBDSN != "",
		"FLOWS_CONFIG", config.FlowsPath,
		"SLACK_WEBHOOK_URL_SET", config.Alerts.SlackWebhookURL != "",
		"ALERT_WEBHOOK_URL_SET", config.Alerts.WebhookURL != "",
		"ALERT_EMAIL_TO_SET", config.Alerts.EmailTo != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		addr:       flag.String("addr", config.Addr, "listen address (overrides $PORT)"),
		eventDBDSN: flag.String("event-db-dsn", config.EventDBDSN, "event journal DSN, SQLite path or Postgres URL (overrides $EVENT_DB_DSN)"),
		flowsPath:  flag.String("flows-config", config.FlowsPath, "YAML flow definitions file (overrides $FLOWS_CONFIG)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"addr", *flags.addr,
		"eventDBDSN_set", *flags.eventDBDSN != "",
		"flowsPath", *flags.flowsPath)

	return flags
}

// buildRegistry loads flow definitions, from file when configured.
func buildRegistry(flags Flags) (*ivr.Registry, error) {
	if *flags.flowsPath == "" {
		return ivr.NewRegistry(), nil
	}
	return ivr.NewRegistryFromFile(*flags.flowsPath)
}

// buildEventOptions constructs transition logger options, opening the
// optional event journal. The returned func closes the journal on shutdown.
func buildEventOptions(flags Flags) ([]events.Option, func(), error) {
	if *flags.eventDBDSN == "" {
		slog.Debug("No event journal DSN provided, transitions go to stdout only")
		return nil, func() {}, nil
	}

	dsn := *flags.eventDBDSN
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring Postgres event journal")
		journal, err := store.NewPostgresJournal(store.WithDSN(dsn))
		if err != nil {
			return nil, nil, err
		}
		return []events.Option{events.WithJournal(journal)}, closeQuietly(journal.Close), nil
	}

	slog.Debug("Detected SQLite DSN, configuring SQLite event journal", "db_path", dsn)
	journal, err := store.NewSQLiteJournal(store.WithDSN(dsn))
	if err != nil {
		return nil, nil, err
	}
	return []events.Option{events.WithJournal(journal)}, closeQuietly(journal.Close), nil
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.addr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.addr))
	}
	apiOpts = append(apiOpts, api.WithVersion(Version))
	return apiOpts
}

func closeQuietly(fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			slog.Error("Failed to close event journal", "error", err)
		}
	}
}
