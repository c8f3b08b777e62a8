package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/forecast"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

// MaxScheduleMonths bounds schedule listings.
const MaxScheduleMonths = 120

// RecurringService manages recurring transactions. Every write marks all goal
// analyses stale.
type RecurringService struct {
	repo      store.RecurringRepository
	publisher EventPublisher
	expander  forecast.Expander
}

func NewRecurringService(repo store.RecurringRepository, publisher EventPublisher) *RecurringService {
	return &RecurringService{
		repo:      repo,
		publisher: publisher,
		expander:  forecast.NewExpander(),
	}
}

func (s *RecurringService) List(ctx context.Context) ([]core.RecurringTransaction, error) {
	txs, err := s.repo.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	return txs, nil
}

func (s *RecurringService) Get(ctx context.Context, id int64) (core.RecurringTransaction, error) {
	return s.repo.GetRecurring(ctx, id)
}

func (s *RecurringService) Create(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	created, err := s.repo.CreateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("save recurring transaction: %w", err)
	}
	slog.InfoContext(ctx, "Recurring transaction created",
		"recurring_id", created.ID,
		"amount", created.Amount.Units,
		"frequency", created.Frequency)
	s.changed(ctx)
	return created, nil
}

func (s *RecurringService) Update(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	updated, err := s.repo.UpdateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	slog.InfoContext(ctx, "Recurring transaction updated", "recurring_id", updated.ID)
	s.changed(ctx)
	return updated, nil
}

func (s *RecurringService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRecurring(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Recurring transaction deleted", "recurring_id", id)
	s.changed(ctx)
	return nil
}

// Schedule lists the occurrences of one definition over months calendar
// months starting at from.
func (s *RecurringService) Schedule(ctx context.Context, id int64, from core.Month, months int) ([]forecast.Occurrence, error) {
	if months < 1 || months > MaxScheduleMonths {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", core.ErrInvalidMonth, MaxScheduleMonths)
	}
	rt, err := s.repo.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expander.Schedule(rt, from, months), nil
}

// Summary totals the recurring cash flow for one month.
func (s *RecurringService) Summary(ctx context.Context, month core.Month) (core.CashFlow, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return core.CashFlow{}, err
	}
	return s.expander.Summarize(txs, month), nil
}

func (s *RecurringService) changed(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalysisRequest(ctx, 0, ReasonRecurringChanged); err != nil {
		slog.ErrorContext(ctx, "Failed to publish analysis request", "reason", ReasonRecurringChanged, "error", err)
	}
}
