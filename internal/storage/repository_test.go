package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/forecast"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

var _ store.Repository = (*SQLiteRepository)(nil)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "finplan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v1)

	v2, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestSQLiteGoalRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	fixed := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	created, err := repo.CreateGoal(ctx, core.Goal{
		Title:         "Car",
		TargetAmount:  core.Money{Units: 25000000},
		TargetDate:    core.NewDate(2028, 3, 1),
		CurrentAmount: core.Money{Units: 1200000},
		Description:   "second hand",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.CreatedAt.Equal(fixed))

	got, err := repo.GetGoal(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	list, err := repo.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2028-03-01", list[0].TargetDate.String())

	_, err = repo.GetGoal(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteCreateGoalValidates(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateGoal(context.Background(), core.Goal{Title: "x", TargetDate: core.NewDate(2027, 1, 1)})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestSQLiteRecurringRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rt := core.RecurringTransaction{
		Description: "Gym",
		Amount:      core.Money{Units: 25000},
		Category:    "health",
		Type:        core.Expense,
		Frequency:   core.Weekly,
		StartDate:   core.NewDate(2026, 2, 1),
	}
	created, err := repo.CreateRecurring(ctx, rt)
	require.NoError(t, err)
	assert.Zero(t, created.DayOfMonth)
	assert.True(t, created.EndDate.IsEmpty())

	created.DayOfMonth = 31
	created.EndDate = core.NewDate(2026, 12, 31)
	updated, err := repo.UpdateRecurring(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 31, updated.DayOfMonth)
	assert.Equal(t, "2026-12-31", updated.EndDate.String())

	list, err := repo.ListRecurring(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, updated, list[0])

	missing := updated
	missing.ID = 77
	_, err = repo.UpdateRecurring(ctx, missing)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, repo.DeleteRecurring(ctx, created.ID))
	assert.ErrorIs(t, repo.DeleteRecurring(ctx, created.ID), core.ErrNotFound)
	_, err = repo.GetRecurring(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	goal, err := repo.CreateGoal(ctx, core.Goal{
		Title:        "Trip",
		TargetAmount: core.Money{Units: 3000000},
		TargetDate:   core.NewDate(2027, 7, 1),
	})
	require.NoError(t, err)

	err = repo.SaveSnapshot(ctx, store.Snapshot{GoalID: 404})
	assert.ErrorIs(t, err, core.ErrNotFound)

	at := time.Date(2026, 10, 16, 3, 0, 0, 0, time.UTC)
	result := forecast.Result{
		GoalID:      goal.ID,
		FinalAmount: 2500000,
		Shortfall:   500000,
		MonthlyData: []forecast.MonthlyDatum{{Date: "2026-10", ProjectedAmount: 0, TargetLine: 3000000}},
	}
	require.NoError(t, repo.SaveSnapshot(ctx, store.Snapshot{GoalID: goal.ID, Reason: "scheduled", ComputedAt: at, Result: result}))

	result.FinalAmount = 2600000
	require.NoError(t, repo.SaveSnapshot(ctx, store.Snapshot{GoalID: goal.ID, Reason: "manual", ComputedAt: at.Add(time.Hour), Result: result}))

	snap, err := repo.LatestSnapshot(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "manual", snap.Reason)
	assert.Equal(t, int64(2600000), snap.Result.FinalAmount)
	assert.True(t, snap.ComputedAt.Equal(at.Add(time.Hour)))
	assert.Equal(t, result.MonthlyData, snap.Result.MonthlyData)

	require.NoError(t, repo.DeleteGoal(ctx, goal.ID))
	_, err = repo.LatestSnapshot(ctx, goal.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.ErrorIs(t, repo.DeleteGoal(ctx, goal.ID), core.ErrNotFound)
}
