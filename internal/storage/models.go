package storage

import "database/sql"

type Goal struct {
	ID            int64
	Title         string
	TargetAmount  int64
	TargetDate    string
	CurrentAmount int64
	Description   string
	CreatedAt     string
}

type RecurringTransaction struct {
	ID          int64
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

type GoalSnapshot struct {
	GoalID     int64
	Reason     string
	ComputedAt string
	ResultJson string
}
