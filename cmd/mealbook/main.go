package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"mealbook/internal/amqp"
	"mealbook/internal/auth"
	"mealbook/internal/cli"
	apphttp "mealbook/internal/http"
	"mealbook/internal/log"
	"mealbook/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateServerConfig(logger)

	repo := cli.InitSQLite(logger, cfg)
	defer repo.Close()

	// Settlement events are optional; without a broker Settle still locks.
	var publisher services.SettlementPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("AMQP publisher enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - settlement events will not be published")
	}

	srv := apphttp.NewServer(apphttp.Services{
		Members:    services.NewMemberService(repo),
		Meals:      services.NewMealService(repo),
		Expenses:   services.NewExpenseService(repo),
		Deposits:   services.NewDepositService(repo),
		Dashboard:  services.NewDashboardService(repo),
		Settlement: services.NewSettlementService(repo, publisher),
	}, apphttp.Options{
		Addr:               ":" + cfg.Port,
		Logger:             logger.WithComponent(log.ComponentHTTP),
		JWT:                auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Ready:              repo,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
	})

	logger.Info("Starting mealbook server", "port", cfg.Port, "db", cfg.SQLiteDBPath, log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
