package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

func newMockRepo(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newRepository(db), mock
}

func TestListGoalsQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM goals").WillReturnError(errors.New("disk I/O error"))

	_, err := repo.ListGoals(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list goals")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListGoalsRejectsCorruptDate(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := sqlmock.NewRows([]string{"id", "title", "target_amount", "target_date", "current_amount", "description", "created_at"}).
		AddRow(1, "t", 100, "not-a-date", 0, "", "2026-10-16T00:00:00Z")
	mock.ExpectQuery("FROM goals").WillReturnRows(rows)

	_, err := repo.ListGoals(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestGetRecurringDriverError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM recurring_transactions").WithArgs(int64(3)).WillReturnError(errors.New("database is locked"))

	_, err := repo.GetRecurring(context.Background(), 3)
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrNotFound))
	assert.Contains(t, err.Error(), "database is locked")
}

func TestDeleteGoalRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM goal_snapshots").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM goals").WithArgs(int64(5)).WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err := repo.DeleteGoal(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete goal")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecurringMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM recurring_transactions").WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteRecurring(context.Background(), 8)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSaveSnapshotUpsertError(t *testing.T) {
	repo, mock := newMockRepo(t)
	goalRows := sqlmock.NewRows([]string{"id", "title", "target_amount", "target_date", "current_amount", "description", "created_at"}).
		AddRow(1, "t", 100, "2027-01-01", 0, "", "2026-10-16T00:00:00Z")
	mock.ExpectQuery("FROM goals").WithArgs(int64(1)).WillReturnRows(goalRows)
	mock.ExpectExec("INSERT INTO goal_snapshots").WillReturnError(errors.New("readonly database"))

	err := repo.SaveSnapshot(context.Background(), snapshotFor(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func snapshotFor(goalID int64) store.Snapshot {
	return store.Snapshot{GoalID: goalID, Reason: "test"}
}
