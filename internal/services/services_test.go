package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store/memory"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/tax"
)

var fixedNow = time.Date(2026, time.October, 16, 14, 30, 0, 0, time.UTC)

type publishedEvent struct {
	goalID int64
	reason string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishAnalysisRequest(_ context.Context, goalID int64, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{goalID: goalID, reason: reason})
	return p.err
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func newGoalService(t *testing.T, pub EventPublisher) (*GoalService, *memory.Store) {
	t.Helper()
	repo := memory.New()
	svc := NewGoalService(repo, pub, 2)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func seedBudget(t *testing.T, repo *memory.Store) {
	t.Helper()
	ctx := context.Background()
	start := core.NewDate(2026, 10, 1)
	for _, rt := range []core.RecurringTransaction{
		{Description: "Salary", Amount: core.Money{Units: 3000000}, Type: core.Income, Frequency: core.Monthly, StartDate: start},
		{Description: "Living", Amount: core.Money{Units: 1500000}, Type: core.Expense, Frequency: core.Monthly, StartDate: start},
	} {
		_, err := repo.CreateRecurring(ctx, rt)
		require.NoError(t, err)
	}
}

func depositGoal(target int64) core.Goal {
	return core.Goal{
		Title:        "Deposit",
		TargetAmount: core.Money{Units: target},
		TargetDate:   core.NewDate(2027, 10, 16),
	}
}

func TestCreateGoalPublishesAnalysisRequest(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newGoalService(t, pub)

	g, err := svc.CreateGoal(context.Background(), depositGoal(18000000))
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.ID)
	assert.Equal(t, []publishedEvent{{goalID: 1, reason: ReasonGoalCreated}}, pub.published())
}

func TestCreateGoalRejectsInvalidInput(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newGoalService(t, pub)

	_, err := svc.CreateGoal(context.Background(), core.Goal{Title: " "})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
	assert.Empty(t, pub.published())
}

func TestCreateGoalSurvivesPublisherFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, _ := newGoalService(t, pub)

	_, err := svc.CreateGoal(context.Background(), depositGoal(1000))
	require.NoError(t, err)
}

func TestCreateGoalWithoutPublisher(t *testing.T) {
	svc, _ := newGoalService(t, nil)

	_, err := svc.CreateGoal(context.Background(), depositGoal(1000))
	require.NoError(t, err)
}

func TestAnalyzeGoal(t *testing.T) {
	ctx := context.Background()
	svc, repo := newGoalService(t, nil)
	seedBudget(t, repo)
	g, err := svc.CreateGoal(ctx, depositGoal(30000000))
	require.NoError(t, err)

	res, err := svc.Analyze(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, res.GoalID)
	assert.Equal(t, int64(18000000), res.FinalAmount)
	assert.False(t, res.IsAchievable)
	assert.Equal(t, int64(12000000), res.Shortfall)
	assert.Equal(t, int64(1000000), res.MonthlySavingNeeded)
	assert.Len(t, res.MonthlyData, 13)
}

func TestAnalyzeUnknownGoal(t *testing.T) {
	svc, _ := newGoalService(t, nil)

	_, err := svc.Analyze(context.Background(), 42)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAnalyzeAllKeepsOrder(t *testing.T) {
	ctx := context.Background()
	svc, repo := newGoalService(t, nil)
	seedBudget(t, repo)
	for _, target := range []int64{1000, 18000000, 30000000, 5000000} {
		_, err := svc.CreateGoal(ctx, depositGoal(target))
		require.NoError(t, err)
	}

	results, err := svc.AnalyzeAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, int64(i+1), res.GoalID)
	}
	assert.True(t, results[1].IsAchievable)
	assert.False(t, results[2].IsAchievable)
}

func TestAnalyzeAllCancelled(t *testing.T) {
	svc, repo := newGoalService(t, nil)
	_, err := repo.CreateGoal(context.Background(), depositGoal(1000))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.AnalyzeAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefreshSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, repo := newGoalService(t, nil)
	seedBudget(t, repo)
	g, err := svc.CreateGoal(ctx, depositGoal(18000000))
	require.NoError(t, err)

	snap, err := svc.RefreshSnapshot(ctx, g.ID, ReasonManual)
	require.NoError(t, err)
	assert.Equal(t, ReasonManual, snap.Reason)
	assert.True(t, snap.ComputedAt.Equal(fixedNow))

	latest, err := svc.LatestSnapshot(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Result, latest.Result)
	assert.True(t, latest.Result.IsAchievable)
}

func TestRefreshAll(t *testing.T) {
	ctx := context.Background()
	svc, repo := newGoalService(t, nil)
	seedBudget(t, repo)
	for _, target := range []int64{1000, 30000000} {
		_, err := svc.CreateGoal(ctx, depositGoal(target))
		require.NoError(t, err)
	}

	saved, err := svc.RefreshAll(ctx, ReasonScheduled)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	snap, err := svc.LatestSnapshot(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ReasonScheduled, snap.Reason)
	assert.Equal(t, int64(12000000), snap.Result.Shortfall)
}

func TestDeleteGoalDropsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGoalService(t, nil)
	g, err := svc.CreateGoal(ctx, depositGoal(1000))
	require.NoError(t, err)
	_, err = svc.RefreshSnapshot(ctx, g.ID, ReasonManual)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGoal(ctx, g.ID))
	_, err = svc.LatestSnapshot(ctx, g.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteGoal(ctx, g.ID), core.ErrNotFound)
}

func salary() core.RecurringTransaction {
	return core.RecurringTransaction{
		Description: "Salary",
		Amount:      core.Money{Units: 3000000},
		Category:    "work",
		Type:        core.Income,
		Frequency:   core.Monthly,
		DayOfMonth:  25,
		StartDate:   core.NewDate(2026, 1, 1),
	}
}

func TestRecurringWritesPublishRefreshAll(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewRecurringService(memory.New(), pub)

	created, err := svc.Create(ctx, salary())
	require.NoError(t, err)

	created.Amount = core.Money{Units: 3200000}
	updated, err := svc.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, int64(3200000), updated.Amount.Units)

	require.NoError(t, svc.Delete(ctx, created.ID))

	events := pub.published()
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, publishedEvent{goalID: 0, reason: ReasonRecurringChanged}, e)
	}
}

func TestRecurringInvalidInputDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewRecurringService(memory.New(), pub)

	rt := salary()
	rt.Frequency = "daily"
	_, err := svc.Create(context.Background(), rt)
	assert.ErrorIs(t, err, core.ErrInvalidFrequency)

	err = svc.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, pub.published())
}

func TestRecurringSchedule(t *testing.T) {
	ctx := context.Background()
	svc := NewRecurringService(memory.New(), nil)
	rt := salary()
	rt.DayOfMonth = 31
	created, err := svc.Create(ctx, rt)
	require.NoError(t, err)

	occ, err := svc.Schedule(ctx, created.ID, core.Month{Year: 2027, Month: time.February}, 2)
	require.NoError(t, err)
	require.Len(t, occ, 2)
	assert.Equal(t, 28, occ[0].Day)
	assert.Equal(t, 31, occ[1].Day)
	assert.Equal(t, int64(3000000), occ[0].Amount)

	_, err = svc.Schedule(ctx, created.ID, core.Month{Year: 2027, Month: time.January}, 0)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
	_, err = svc.Schedule(ctx, created.ID, core.Month{Year: 2027, Month: time.January}, MaxScheduleMonths+1)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestRecurringSummary(t *testing.T) {
	ctx := context.Background()
	svc := NewRecurringService(memory.New(), nil)
	_, err := svc.Create(ctx, salary())
	require.NoError(t, err)
	_, err = svc.Create(ctx, core.RecurringTransaction{
		Description: "Rent",
		Amount:      core.Money{Units: 900000},
		Category:    "housing",
		Type:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2026, 1, 1),
	})
	require.NoError(t, err)

	flow, err := svc.Summary(ctx, core.Month{Year: 2026, Month: time.October})
	require.NoError(t, err)
	assert.Equal(t, int64(3000000), flow.Income.Units)
	assert.Equal(t, int64(900000), flow.Expense.Units)
	assert.Equal(t, int64(2100000), flow.Net())
}

func TestTaxServiceRejectsUnknownKind(t *testing.T) {
	svc := newTaxService(t)

	_, err := svc.Calculate(context.Background(), "capital_gains", 1000000, 0)
	assert.ErrorIs(t, err, ErrInvalidTaxType)
}

func TestTaxServiceSalary(t *testing.T) {
	svc := newTaxService(t)

	b, err := svc.Calculate(context.Background(), "salary", 3000000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3000000), b.GrossAmount)
	assert.Equal(t, int64(2505450), b.NetAmount)
	assert.Equal(t, "kr-2024", svc.TableVersion())
}

func newTaxService(t *testing.T) *TaxService {
	t.Helper()
	table, err := tax.LoadTable("")
	require.NoError(t, err)
	return NewTaxService(table)
}
