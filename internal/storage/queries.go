package storage

import (
	"context"
	"database/sql"
)

const createGoal = `
INSERT INTO goals (title, target_amount, target_date, current_amount, description, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, title, target_amount, target_date, current_amount, description, created_at
`

type CreateGoalParams struct {
	Title         string
	TargetAmount  int64
	TargetDate    string
	CurrentAmount int64
	Description   string
	CreatedAt     string
}

func (q *Queries) CreateGoal(ctx context.Context, arg CreateGoalParams) (Goal, error) {
	row := q.db.QueryRowContext(ctx, createGoal,
		arg.Title,
		arg.TargetAmount,
		arg.TargetDate,
		arg.CurrentAmount,
		arg.Description,
		arg.CreatedAt,
	)
	var i Goal
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.TargetAmount,
		&i.TargetDate,
		&i.CurrentAmount,
		&i.Description,
		&i.CreatedAt,
	)
	return i, err
}

const getGoal = `
SELECT id, title, target_amount, target_date, current_amount, description, created_at
FROM goals
WHERE id = ?
`

func (q *Queries) GetGoal(ctx context.Context, id int64) (Goal, error) {
	row := q.db.QueryRowContext(ctx, getGoal, id)
	var i Goal
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.TargetAmount,
		&i.TargetDate,
		&i.CurrentAmount,
		&i.Description,
		&i.CreatedAt,
	)
	return i, err
}

const listGoals = `
SELECT id, title, target_amount, target_date, current_amount, description, created_at
FROM goals
ORDER BY id
`

func (q *Queries) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		var i Goal
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.TargetAmount,
			&i.TargetDate,
			&i.CurrentAmount,
			&i.Description,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteGoal = `
DELETE FROM goals WHERE id = ?
`

func (q *Queries) DeleteGoal(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGoal, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createRecurring = `
INSERT INTO recurring_transactions (description, amount, category, type, frequency, day_of_month, start_date, end_date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, description, amount, category, type, frequency, day_of_month, start_date, end_date, created_at
`

type CreateRecurringParams struct {
	Description string
	Amount      int64
	Category    string
	Type        string
	Frequency   string
	DayOfMonth  sql.NullInt64
	StartDate   string
	EndDate     sql.NullString
	CreatedAt   string
}

func (q *Queries) CreateRecurring(ctx context.Context, arg CreateRecurringParams) (RecurringTransaction, error) {
	row := q.db.QueryRowContext(ctx, createRecurring,
		arg.Description,
		arg.Amount,
		arg.Category,
		arg.Type,
		arg.Frequency,
		arg.DayOfMonth,
		arg.StartDate,
		arg.EndDate,
		arg.CreatedAt,
	)
	return scanRecurring(row)
}

const getRecurring = `
SELECT id, description, amount, category, type, frequency, day_of_month, start_date, end_date, created_at
FROM recurring_transactions
WHERE id = ?
`

func (q *Queries) GetRecurring(ctx context.Context, id int64) (RecurringTransaction, error) {
	return scanRecurring(q.db.QueryRowContext(ctx, getRecurring, id))
}

const listRecurring = `
SELECT id, description, amount, category, type, frequency, day_of_month, start_date, end_date, created_at
FROM recurring_transactions
ORDER BY id
`

func (q *Queries) ListRecurring(ctx context.Context) ([]RecurringTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listRecurring)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringTransaction
	for rows.Next() {
		i, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateRecurring = `
UPDATE recurring_transactions
SET description = ?, amount = ?, category = ?, type = ?, frequency = ?, day_of_month = ?, start_date = ?, end_date = ?
WHERE id = ?
RETURNING id, description, amount, category, type, frequency, day_of_month, start_date, end_date, created_at
`

type UpdateRecurringParams struct {
	Description string
	Amount      int64
	Category    string
	Type        string
	Frequency   string
	DayOfMonth  sql.NullInt64
	StartDate   string
	EndDate     sql.NullString
	ID          int64
}

func (q *Queries) UpdateRecurring(ctx context.Context, arg UpdateRecurringParams) (RecurringTransaction, error) {
	row := q.db.QueryRowContext(ctx, updateRecurring,
		arg.Description,
		arg.Amount,
		arg.Category,
		arg.Type,
		arg.Frequency,
		arg.DayOfMonth,
		arg.StartDate,
		arg.EndDate,
		arg.ID,
	)
	return scanRecurring(row)
}

const deleteRecurring = `
DELETE FROM recurring_transactions WHERE id = ?
`

func (q *Queries) DeleteRecurring(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRecurring, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const upsertSnapshot = `
INSERT INTO goal_snapshots (goal_id, reason, computed_at, result_json)
VALUES (?, ?, ?, ?)
ON CONFLICT (goal_id) DO UPDATE SET
    reason = excluded.reason,
    computed_at = excluded.computed_at,
    result_json = excluded.result_json
`

type UpsertSnapshotParams struct {
	GoalID     int64
	Reason     string
	ComputedAt string
	ResultJson string
}

func (q *Queries) UpsertSnapshot(ctx context.Context, arg UpsertSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, upsertSnapshot,
		arg.GoalID,
		arg.Reason,
		arg.ComputedAt,
		arg.ResultJson,
	)
	return err
}

const getSnapshot = `
SELECT goal_id, reason, computed_at, result_json
FROM goal_snapshots
WHERE goal_id = ?
`

func (q *Queries) GetSnapshot(ctx context.Context, goalID int64) (GoalSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshot, goalID)
	var i GoalSnapshot
	err := row.Scan(
		&i.GoalID,
		&i.Reason,
		&i.ComputedAt,
		&i.ResultJson,
	)
	return i, err
}

const deleteSnapshot = `
DELETE FROM goal_snapshots WHERE goal_id = ?
`

func (q *Queries) DeleteSnapshot(ctx context.Context, goalID int64) error {
	_, err := q.db.ExecContext(ctx, deleteSnapshot, goalID)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecurring(row scanner) (RecurringTransaction, error) {
	var i RecurringTransaction
	err := row.Scan(
		&i.ID,
		&i.Description,
		&i.Amount,
		&i.Category,
		&i.Type,
		&i.Frequency,
		&i.DayOfMonth,
		&i.StartDate,
		&i.EndDate,
		&i.CreatedAt,
	)
	return i, err
}
