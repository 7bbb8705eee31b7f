// tally-worker mirrors the ledger into Google Sheets. It consumes the
// mutation events published by the CLI and rewrites the spreadsheet
// from the shared database after each change.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"tally/internal/cli"
	"tally/internal/config"
	"tally/internal/events"
	"tally/internal/export"
	gsheet "tally/internal/export/google"
	"tally/internal/kv/sqlite"
	"tally/internal/ledger"
	applog "tally/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentExport)
	logger.Info("Starting tally-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		logger.Error("Worker requires the sqlite backend", applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("Worker requires AMQP_URL")
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer db.Close()

	sheets, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to broker", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		client.Close()
	})

	// The database is the source of truth; each event triggers a fresh
	// read so concurrent CLI writes are never missed.
	sync := func(evt ledger.Event) error {
		store := ledger.New(db)
		if err := store.Hydrate(ctx); err != nil {
			return err
		}
		rows, err := export.SyncAll(ctx, sheets, store.Expenses())
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Sheet synced",
			applog.FieldCollection, evt.Collection,
			"op", evt.Op,
			"rows", rows)
		return nil
	}

	// Catch up on anything missed while the worker was down.
	if err := sync(ledger.Event{Collection: "startup", Op: "sync"}); err != nil {
		logger.Error("Startup sync failed", applog.FieldError, err)
	}

	if err := client.ConsumeLedgerEvents(ctx, sync); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", applog.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
}
