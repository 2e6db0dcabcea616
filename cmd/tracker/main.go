// Command tracker is the terminal client. By default it talks to the API at
// TRACKER_API_URL; with -local it opens a SQLite database directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"miplata/internal/client"
	"miplata/internal/config"
	"miplata/internal/database"
	"miplata/internal/ledger"
	"miplata/internal/logger"
	"miplata/internal/services"
	"miplata/internal/session"
	"miplata/internal/tracker"
)

func main() {
	env := os.Getenv("ENV")
	if env == "" {
		// Keep development logs off the interactive terminal.
		env = "production"
	}
	logger.Init(env)
	defer logger.Sync()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tracker:", err)
		os.Exit(1)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	apiURL := flag.String("api", appConfig.TrackerAPIURL, "API base URL")
	local := flag.Bool("local", false, "use a local SQLite database instead of the API")
	dbPath := flag.String("db", appConfig.SQLitePath, "SQLite file for -local")
	locale := flag.String("locale", appConfig.Locale, "locale for amounts and month names")
	currency := flag.String("currency", appConfig.Currency, "ISO currency code for amounts")
	remember := flag.Bool("remember", true, "keep the session between runs (API mode)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := tracker.Options{
		In:       os.Stdin,
		Out:      os.Stdout,
		Clock:    tracker.SystemClock,
		Locale:   *locale,
		Currency: *currency,
	}

	if *local {
		localConfig := *appConfig
		localConfig.DBDriver = "sqlite"
		localConfig.SQLitePath = *dbPath

		dbConfig, err := database.NewConfig(&localConfig)
		if err != nil {
			return fmt.Errorf("failed to load database configuration: %w", err)
		}
		dbManager, err := database.NewManager(dbConfig)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", *dbPath, err)
		}
		defer dbManager.Close()
		if err := dbManager.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", *dbPath, err)
		}

		opts.Auth = tracker.NewLocalAuth(services.NewUserService(dbManager.DB()))
		opts.Gateways = tracker.LocalGateways(dbManager.DB())
		opts.Summaries = tracker.LocalSummaries(dbManager.DB(), opts.Clock)
		return tracker.New(opts).Run(ctx)
	}

	c := client.New(client.Config{BaseURL: *apiURL, Timeout: appConfig.TrackerTimeout})

	var store *session.FileStore
	if *remember {
		if path, err := session.DefaultPath(); err == nil {
			store = &session.FileStore{Path: path}
		}
	}
	auth := client.NewAuthGateway(c, store)
	auth.Restore(ctx)

	opts.Auth = auth
	opts.Gateways = func(session.Session) ledger.Gateways { return client.Gateways(c) }
	opts.Summaries = func(session.Session) tracker.Summarizer { return c }
	return tracker.New(opts).Run(ctx)
}
