package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"mealbook/internal/amqp"
	"mealbook/internal/backend"
	"mealbook/internal/cli"
	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/services"
	"mealbook/internal/worker"
)

func main() {
	periodFlag := flag.String("period", "", "export one locked month (YYYY-MM) and exit")
	allFlag := flag.Bool("all", false, "export every locked month and exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg)
	defer repo.Close()

	backends, err := backend.NewFactory(logger.Logger).CreateExporter(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize report exporter", "error", err, "backend", cfg.ExportBackend)
		os.Exit(1)
	}
	logger.Info("Report exporter ready", "backend", cfg.ExportBackend)

	w := worker.NewReportWorker(services.NewSettlementService(repo, nil), repo, backends.Exporter)

	switch {
	case *periodFlag != "":
		period, err := core.ParsePeriod(*periodFlag)
		if err != nil {
			logger.Error("Invalid --period", "error", err, "period", *periodFlag)
			os.Exit(2)
		}
		ref, err := w.ExportPeriod(context.Background(), period)
		if err != nil {
			logger.Error("Export failed", "error", err, "period", period.String())
			os.Exit(1)
		}
		logger.Info("Export complete", "period", period.String(), "ref", ref)
		if backends.Memory != nil {
			if rows, ok := backends.Memory.Report(period); ok {
				printReport(rows)
			}
		}
		return

	case *allFlag:
		n, err := w.ExportAllLocked(context.Background())
		logger.Info("Exported locked months", "count", n)
		if err != nil {
			logger.Error("Some exports failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required unless --period or --all is given")
		os.Exit(2)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", "error", err)
		}
	})

	logger.Info("Starting report worker", "queue", cfg.AMQPQueue, "backend", cfg.ExportBackend)
	if err := amqpClient.ConsumeMonthSettled(ctx, w.HandleMonthSettled); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Report worker stopped")
}

// printReport writes exported rows as tab-separated lines for the memory
// backend, which keeps nothing after exit.
func printReport(rows [][]string) {
	for _, row := range rows {
		fmt.Println(strings.Join(row, "\t"))
	}
}
