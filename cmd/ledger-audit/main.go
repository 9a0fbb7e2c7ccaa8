// Command ledger-audit consumes the ledger events published by financeflow
// and writes them to the log.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"financeflow/internal/amqp"
	"financeflow/internal/cli"
	applog "financeflow/internal/log"
	"financeflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit consumer")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	audit := worker.NewAuditWorker(logger)
	logger.Info("Starting ledger-audit", "queue", cfg.AMQPQueue, applog.FieldOperation, applog.OpStartup)

	// reconnect with a fixed pause while the broker is away
	for {
		err := client.ConsumeLedgerEvents(ctx, func(e *amqp.LedgerEvent) error {
			return audit.HandleLedgerEvent(ctx, e)
		})
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			break
		}
		logger.Error("Ledger event consumption stopped, retrying", applog.FieldError, err)
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}

	snap := audit.Snapshot()
	logger.Info("ledger-audit stopped",
		"events", snap.Counts,
		"amounts_added", snap.AmountsAdded.StringFixed(2))
}
