// Package store declares the persistence ports used by the services and the
// backends that implement them.
package store

import (
	"context"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/forecast"
)

// Ports for outbound adapters. Lookups of a missing ID return an error
// wrapping core.ErrNotFound.
type (
	GoalRepository interface {
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		GetGoal(ctx context.Context, id int64) (core.Goal, error)
		ListGoals(ctx context.Context) ([]core.Goal, error)
		DeleteGoal(ctx context.Context, id int64) error
	}

	RecurringRepository interface {
		CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error)
		GetRecurring(ctx context.Context, id int64) (core.RecurringTransaction, error)
		ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error)
		UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error)
		DeleteRecurring(ctx context.Context, id int64) error
	}

	// SnapshotRepository keeps the most recent analysis per goal.
	SnapshotRepository interface {
		SaveSnapshot(ctx context.Context, s Snapshot) error
		LatestSnapshot(ctx context.Context, goalID int64) (Snapshot, error)
	}

	// Repository is implemented by every backend.
	Repository interface {
		GoalRepository
		RecurringRepository
		SnapshotRepository
		Close() error
	}
)

// Snapshot is a persisted analysis result.
type Snapshot struct {
	GoalID     int64           `json:"goal_id"`
	Reason     string          `json:"reason"`
	ComputedAt time.Time       `json:"computed_at"`
	Result     forecast.Result `json:"result"`
}
