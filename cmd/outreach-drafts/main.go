package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"outreach/internal/config"
	"outreach/internal/connectors"
	"outreach/internal/logging"
	"outreach/internal/mailer"
	"outreach/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logger, err := logging.NewFromConfig(cfg)
	must(err)
	rules, err := pipeline.LoadRules(cfg.RulesPath)
	must(err)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, closeConn, err := mailer.NewConnector(ctx, cfg)
	must(err)
	defer closeConn()

	composer, err := connectors.NewComposer(cfg, pipeline.NewNormalizer(rules))
	must(err)
	drafts := connectors.NewDraftService(composer, cfg.RawMailDir, conn, logger)

	logger.Info("watching for output tables", "inbox", cfg.DraftsInboxDir, "provider", cfg.DraftsProvider, "interval_sec", cfg.DraftsPollIntervalSec)
	must(mailer.NewService(cfg, drafts, logger).Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
