package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rendis/jenkgate/internal/config"
	"github.com/rendis/jenkgate/internal/credentials"
	"github.com/rendis/jenkgate/internal/jenkins"
	"github.com/rendis/jenkgate/internal/logging"
	"github.com/rendis/jenkgate/internal/store"
	"github.com/rendis/jenkgate/pkg/mcp"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "credentials":
		os.Exit(runCredentials(args))
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: jenkgate [command]

Commands:
  serve                             start the MCP server on stdio (default)
  credentials set <user> <token>    store Jenkins credentials in the platform vault
  credentials delete                remove stored credentials
  credentials check                 report whether credentials are resolvable
  version                           print the version

Credentials may also be supplied via JENKGATE_USERNAME and JENKGATE_API_TOKEN,
which take precedence over the vault.
`)
}

func runServe() int {
	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	for _, w := range cfg.Warnings {
		logger.Warn("settings.json violation", "detail", w)
	}

	settings, err := config.Resolve(cfg.Raw)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	if settings.ServerURL == "" {
		logger.Error("no server_url configured; set JENKGATE_SERVER_URL or add server_url to " + settingsPath())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credStore := credentials.NewDefaultStore(logger)
	creds, ok := credStore.Read(ctx, settings.AccountName)
	if !ok {
		logger.Error("no credentials found",
			"account", settings.AccountName,
			"hint", "set JENKGATE_USERNAME and JENKGATE_API_TOKEN, or run 'jenkgate credentials set'")
		return 1
	}

	client, err := jenkins.NewClient(settings, *creds, logger)
	if err != nil {
		logger.Error("client construction failed", "error", err)
		return 1
	}

	var audit store.AuditStore
	if settings.AuditEnabled {
		audit, err = openAuditStore(ctx, cfg.AuditDBPath)
		if err != nil {
			logger.Warn("audit store unavailable, continuing without persistence", "error", err)
			audit = nil
		} else {
			defer audit.Close()
		}
	}

	srv := mcp.NewJenkgateServer(mcp.JenkgateServerDeps{
		Client:   client,
		Settings: settings,
		Audit:    audit,
		Logger:   logger,
	})

	logger.Info("jenkgate serving on stdio",
		"server_url", settings.ServerURL,
		"account", settings.AccountName,
		"allowed_parameters", len(settings.AllowedParameters),
		"audit", audit != nil)

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// stdout carries the MCP protocol; everything else goes to stderr.
	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}

func openAuditStore(ctx context.Context, dbPath string) (store.AuditStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, err
	}
	s, err := store.NewLibSQLStore("file:" + dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
