// Package worker recomputes goal snapshots in response to analysis requests
// and on a schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/amqp"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

// SnapshotRefresher is the part of the goal service the worker drives.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, id int64, reason string) (store.Snapshot, error)
	RefreshAll(ctx context.Context, reason string) (int, error)
}

// ProjectionWorker keeps persisted goal snapshots current.
type ProjectionWorker struct {
	goals SnapshotRefresher
	cron  *cron.Cron
}

func NewProjectionWorker(goals SnapshotRefresher) *ProjectionWorker {
	return &ProjectionWorker{goals: goals}
}

// HandleAnalysisRequest processes one request from the queue. A request for
// a goal deleted since it was published is acknowledged and dropped.
func (w *ProjectionWorker) HandleAnalysisRequest(ctx context.Context, msg *amqp.AnalysisRequestMessage) error {
	if msg.AllGoals() {
		if _, err := w.goals.RefreshAll(ctx, msg.Reason); err != nil {
			return fmt.Errorf("refresh all goals: %w", err)
		}
		return nil
	}

	_, err := w.goals.RefreshSnapshot(ctx, msg.GoalID, msg.Reason)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Goal no longer exists, skipping analysis request",
			"goal_id", msg.GoalID,
			"timestamp", msg.Timestamp)
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh goal %d: %w", msg.GoalID, err)
	}
	return nil
}

// StartupRefresh recomputes every snapshot so that requests missed while the
// worker was down are covered.
func (w *ProjectionWorker) StartupRefresh(ctx context.Context) error {
	start := time.Now()
	saved, err := w.goals.RefreshAll(ctx, services.ReasonScheduled)
	if err != nil {
		return fmt.Errorf("startup refresh: %w", err)
	}
	slog.InfoContext(ctx, "Startup refresh completed",
		"snapshots", saved,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// StartSchedule runs RefreshAll on a standard cron spec (e.g. "@daily" or
// "0 3 * * *") until ctx ends or Stop is called.
func (w *ProjectionWorker) StartSchedule(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.goals.RefreshAll(ctx, services.ReasonScheduled); err != nil {
			slog.ErrorContext(ctx, "Scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}

	w.cron = c
	c.Start()
	slog.InfoContext(ctx, "Snapshot schedule started", "schedule", spec)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (w *ProjectionWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}
