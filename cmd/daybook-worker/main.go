package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"daybook/internal/amqp"
	"daybook/internal/cli"
	"daybook/internal/log"
	gsheet "daybook/internal/sheets/google"
	"daybook/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	logger.Info("Starting daybook-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.SheetsEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// the worker only reads the ledger; it never publishes
	readCfg := *cfg
	readCfg.AMQPURL = ""
	res := cli.InitBackend(ctx, logger, &readCfg)
	defer res.Cleanup()

	renderer, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets renderer", log.FieldError, err)
		os.Exit(1)
	}

	mirror := worker.NewMirrorWorker(res.Service, renderer)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPEnabled() {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer consumer.Close()

		g.Go(func() error {
			return consumer.ConsumeLedgerChanged(gctx, mirror.HandleLedgerChanged)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic mirror only")
	}

	g.Go(func() error {
		return mirror.RunPeriodic(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}
