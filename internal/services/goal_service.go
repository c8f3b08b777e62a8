// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/forecast"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

// Reasons attached to analysis requests and snapshots.
const (
	ReasonGoalCreated      = "goal_created"
	ReasonRecurringChanged = "recurring_changed"
	ReasonScheduled        = "scheduled"
	ReasonManual           = "manual"
)

// EventPublisher announces that goal analyses are stale. goalID 0 means
// every goal.
type EventPublisher interface {
	PublishAnalysisRequest(ctx context.Context, goalID int64, reason string) error
}

// GoalService orchestrates goal CRUD and projections over a repository.
type GoalService struct {
	repo        store.Repository
	publisher   EventPublisher
	expander    forecast.Expander
	concurrency int
	now         func() time.Time
}

// NewGoalService builds a service. publisher may be nil when no broker is
// configured; concurrency bounds AnalyzeAll.
func NewGoalService(repo store.Repository, publisher EventPublisher, concurrency int) *GoalService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GoalService{
		repo:        repo,
		publisher:   publisher,
		expander:    forecast.NewExpander(),
		concurrency: concurrency,
		now:         time.Now,
	}
}

func (s *GoalService) ListGoals(ctx context.Context) ([]core.Goal, error) {
	goals, err := s.repo.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *GoalService) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	return s.repo.GetGoal(ctx, id)
}

// CreateGoal validates and stores the goal, then requests an analysis.
func (s *GoalService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	created, err := s.repo.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal created",
		"goal_id", created.ID,
		"target_amount", created.TargetAmount.Units,
		"target_date", created.TargetDate.String())

	s.publish(ctx, created.ID, ReasonGoalCreated)
	return created, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, id int64) error {
	if err := s.repo.DeleteGoal(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Goal deleted", "goal_id", id)
	return nil
}

// Analyze projects the goal against the current recurring transactions.
func (s *GoalService) Analyze(ctx context.Context, id int64) (forecast.Result, error) {
	goal, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return forecast.Result{}, err
	}
	txs, err := s.repo.ListRecurring(ctx)
	if err != nil {
		return forecast.Result{}, fmt.Errorf("list recurring transactions: %w", err)
	}
	return s.analyze(ctx, goal, txs), nil
}

func (s *GoalService) analyze(ctx context.Context, goal core.Goal, txs []core.RecurringTransaction) forecast.Result {
	res := s.expander.Analyze(goal, txs, s.now())
	slog.DebugContext(ctx, "Goal analyzed",
		"goal_id", goal.ID,
		"final_amount", res.FinalAmount,
		"shortfall", res.Shortfall,
		"is_achievable", res.IsAchievable,
		"months", len(res.MonthlyData)-1)
	return res
}

// AnalyzeAll evaluates every goal concurrently. Results keep the order of
// ListGoals.
func (s *GoalService) AnalyzeAll(ctx context.Context) ([]forecast.Result, error) {
	goals, err := s.repo.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	txs, err := s.repo.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}

	results := make([]forecast.Result, len(goals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, goal := range goals {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.analyze(gctx, goal, txs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RefreshSnapshot recomputes and persists the analysis of one goal.
func (s *GoalService) RefreshSnapshot(ctx context.Context, id int64, reason string) (store.Snapshot, error) {
	res, err := s.Analyze(ctx, id)
	if err != nil {
		return store.Snapshot{}, err
	}
	snap := store.Snapshot{GoalID: id, Reason: reason, ComputedAt: s.now().UTC(), Result: res}
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return store.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Goal snapshot refreshed",
		"goal_id", id,
		"reason", reason,
		"is_achievable", res.IsAchievable)
	return snap, nil
}

// RefreshAll recomputes every goal's snapshot and returns how many were saved.
func (s *GoalService) RefreshAll(ctx context.Context, reason string) (int, error) {
	results, err := s.AnalyzeAll(ctx)
	if err != nil {
		return 0, err
	}
	at := s.now().UTC()
	saved := 0
	for _, res := range results {
		snap := store.Snapshot{GoalID: res.GoalID, Reason: reason, ComputedAt: at, Result: res}
		if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
			slog.ErrorContext(ctx, "Failed to save goal snapshot", "goal_id", res.GoalID, "error", err)
			continue
		}
		saved++
	}
	slog.InfoContext(ctx, "Goal snapshots refreshed", "reason", reason, "saved", saved, "total", len(results))
	return saved, nil
}

func (s *GoalService) LatestSnapshot(ctx context.Context, id int64) (store.Snapshot, error) {
	return s.repo.LatestSnapshot(ctx, id)
}

// RequestRefresh publishes a refresh request for goalID (0 for all goals).
func (s *GoalService) RequestRefresh(ctx context.Context, goalID int64, reason string) {
	s.publish(ctx, goalID, reason)
}

func (s *GoalService) publish(ctx context.Context, goalID int64, reason string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping analysis request", "goal_id", goalID)
		return
	}
	// The write already succeeded; a lost event only delays the snapshot.
	if err := s.publisher.PublishAnalysisRequest(ctx, goalID, reason); err != nil {
		slog.ErrorContext(ctx, "Failed to publish analysis request",
			"goal_id", goalID, "reason", reason, "error", err)
	}
}
