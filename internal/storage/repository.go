package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"

	_ "modernc.org/sqlite"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db), nil
}

func newRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, core.ErrNotFound)
	}
	return fmt.Errorf("get %s %d: %w", what, id, err)
}

// CreateGoal implements store.GoalRepository
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	row, err := r.queries.CreateGoal(ctx, CreateGoalParams{
		Title:         g.Title,
		TargetAmount:  g.TargetAmount.Units,
		TargetDate:    g.TargetDate.String(),
		CurrentAmount: g.CurrentAmount.Units,
		Description:   g.Description,
		CreatedAt:     r.now().UTC().Format(timestampLayout),
	})
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved to SQLite",
		"id", row.ID,
		"title", row.Title,
		"target_amount", row.TargetAmount,
		"target_date", row.TargetDate)

	return goalFromRow(row)
}

// GetGoal implements store.GoalRepository
func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	row, err := r.queries.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, notFound(err, "goal", id)
	}
	return goalFromRow(row)
}

// ListGoals implements store.GoalRepository
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	goals := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := goalFromRow(row)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// DeleteGoal removes the goal and its snapshot in one transaction.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete goal: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteSnapshot(ctx, id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := q.DeleteGoal(ctx, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal deleted", "id", id)
	return nil
}

// CreateRecurring implements store.RecurringRepository
func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	row, err := r.queries.CreateRecurring(ctx, CreateRecurringParams{
		Description: rt.Description,
		Amount:      rt.Amount.Units,
		Category:    rt.Category,
		Type:        string(rt.Type),
		Frequency:   string(rt.Frequency),
		DayOfMonth:  nullDay(rt.DayOfMonth),
		StartDate:   rt.StartDate.String(),
		EndDate:     nullDate(rt.EndDate),
		CreatedAt:   r.now().UTC().Format(timestampLayout),
	})
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}

	slog.InfoContext(ctx, "Recurring transaction saved to SQLite",
		"id", row.ID,
		"description", row.Description,
		"amount", row.Amount,
		"frequency", row.Frequency)

	return recurringFromRow(row)
}

// GetRecurring implements store.RecurringRepository
func (r *SQLiteRepository) GetRecurring(ctx context.Context, id int64) (core.RecurringTransaction, error) {
	row, err := r.queries.GetRecurring(ctx, id)
	if err != nil {
		return core.RecurringTransaction{}, notFound(err, "recurring transaction", id)
	}
	return recurringFromRow(row)
}

// ListRecurring implements store.RecurringRepository
func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	rows, err := r.queries.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	out := make([]core.RecurringTransaction, 0, len(rows))
	for _, row := range rows {
		rt, err := recurringFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, nil
}

// UpdateRecurring implements store.RecurringRepository
func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	row, err := r.queries.UpdateRecurring(ctx, UpdateRecurringParams{
		Description: rt.Description,
		Amount:      rt.Amount.Units,
		Category:    rt.Category,
		Type:        string(rt.Type),
		Frequency:   string(rt.Frequency),
		DayOfMonth:  nullDay(rt.DayOfMonth),
		StartDate:   rt.StartDate.String(),
		EndDate:     nullDate(rt.EndDate),
		ID:          rt.ID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.RecurringTransaction{}, fmt.Errorf("recurring transaction %d: %w", rt.ID, core.ErrNotFound)
		}
		return core.RecurringTransaction{}, fmt.Errorf("update recurring transaction: %w", err)
	}
	slog.InfoContext(ctx, "Recurring transaction updated", "id", row.ID)
	return recurringFromRow(row)
}

// DeleteRecurring implements store.RecurringRepository
func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteRecurring(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recurring transaction %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Recurring transaction deleted", "id", id)
	return nil
}

// SaveSnapshot implements store.SnapshotRepository
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, s store.Snapshot) error {
	if _, err := r.queries.GetGoal(ctx, s.GoalID); err != nil {
		return notFound(err, "goal", s.GoalID)
	}
	payload, err := json.Marshal(s.Result)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = r.queries.UpsertSnapshot(ctx, UpsertSnapshotParams{
		GoalID:     s.GoalID,
		Reason:     s.Reason,
		ComputedAt: s.ComputedAt.UTC().Format(timestampLayout),
		ResultJson: string(payload),
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot implements store.SnapshotRepository
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, goalID int64) (store.Snapshot, error) {
	row, err := r.queries.GetSnapshot(ctx, goalID)
	if err != nil {
		return store.Snapshot{}, notFound(err, "snapshot for goal", goalID)
	}
	computedAt, err := time.Parse(timestampLayout, row.ComputedAt)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("parse snapshot time: %w", err)
	}
	s := store.Snapshot{GoalID: row.GoalID, Reason: row.Reason, ComputedAt: computedAt}
	if err := json.Unmarshal([]byte(row.ResultJson), &s.Result); err != nil {
		return store.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func goalFromRow(row Goal) (core.Goal, error) {
	target, err := core.ParseDate(row.TargetDate)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %d target date: %w", row.ID, err)
	}
	createdAt, err := time.Parse(timestampLayout, row.CreatedAt)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %d created_at: %w", row.ID, err)
	}
	return core.Goal{
		ID:            row.ID,
		Title:         row.Title,
		TargetAmount:  core.Money{Units: row.TargetAmount},
		TargetDate:    target,
		CurrentAmount: core.Money{Units: row.CurrentAmount},
		Description:   row.Description,
		CreatedAt:     createdAt,
	}, nil
}

func recurringFromRow(row RecurringTransaction) (core.RecurringTransaction, error) {
	start, err := core.ParseDate(row.StartDate)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("recurring %d start date: %w", row.ID, err)
	}
	var end core.Date
	if row.EndDate.Valid {
		if end, err = core.ParseDate(row.EndDate.String); err != nil {
			return core.RecurringTransaction{}, fmt.Errorf("recurring %d end date: %w", row.ID, err)
		}
	}
	createdAt, err := time.Parse(timestampLayout, row.CreatedAt)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("recurring %d created_at: %w", row.ID, err)
	}
	return core.RecurringTransaction{
		ID:          row.ID,
		Description: row.Description,
		Amount:      core.Money{Units: row.Amount},
		Category:    row.Category,
		Type:        core.TransactionType(row.Type),
		Frequency:   core.Frequency(row.Frequency),
		DayOfMonth:  int(row.DayOfMonth.Int64),
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   createdAt,
	}, nil
}

func nullDay(day int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(day), Valid: day != 0}
}

func nullDate(d core.Date) sql.NullString {
	return sql.NullString{String: d.String(), Valid: !d.IsEmpty()}
}
