package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/amqp"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/cli"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig(os.Stdout)
	logger.Info("Starting projection-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the projection worker")
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is private to this process; snapshots will not be visible to finplan")
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}
	}()

	// Analysis requests arrive from the broker, so this process never publishes.
	goals := services.NewGoalService(res.Repository, nil, cfg.AnalysisConcurrency)
	projectionWorker := worker.NewProjectionWorker(goals)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		projectionWorker.Stop()
	})

	logger.Info("Performing startup snapshot refresh...")
	if err := projectionWorker.StartupRefresh(ctx); err != nil {
		logger.Error("Startup refresh failed", "error", err)
	}

	if err := projectionWorker.StartSchedule(ctx, cfg.SnapshotSchedule); err != nil {
		logger.Error("Failed to start snapshot schedule", "error", err, "schedule", cfg.SnapshotSchedule)
		os.Exit(1)
	}

	go func() {
		err := amqpClient.ConsumeAnalysisRequests(ctx, projectionWorker.HandleAnalysisRequest)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	logger.Info("Projection worker started",
		"backend", cfg.DataBackend,
		"queue", cfg.AMQPQueue,
		"schedule", cfg.SnapshotSchedule)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Projection worker stopped")
}
