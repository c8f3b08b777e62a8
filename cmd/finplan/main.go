package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/amqp"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/backend"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/cache"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/cli"
	apphttp "github.com/FireWonders/personal-finance-assistant-ai-agent/internal/http"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/log"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig(os.Stdout)

	res := cli.InitBackend(context.Background(), logger, cfg)
	repo := res.Repository

	cacheManager := cache.NewManager()
	for _, c := range res.Cleaners {
		cacheManager.Register(c)
	}
	if len(res.Cleaners) > 0 {
		cacheManager.StartCleanup(time.Minute)
	}

	table, err := cli.LoadTaxTable(logger, cfg.TaxTableFile)
	if err != nil {
		logger.Error("Failed to load tax table", "error", err)
		os.Exit(1)
	}

	// A nil publisher disables analysis events; goals are still analyzed on request.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, analysis events disabled", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	deps := apphttp.Deps{
		Goals:     services.NewGoalService(repo, publisher, cfg.AnalysisConcurrency),
		Recurring: services.NewRecurringService(repo, publisher),
		Tax:       services.NewTaxService(table),
	}
	if p, ok := repo.(backend.Pinger); ok {
		deps.Ready = p
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             log.New(log.Config{Component: "finplan", Handler: logger.Handler()}),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting finplan server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"tax_table", table.Version,
		"events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
