package forecast

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
)

func TestProjectFirstEntryIsUnmodified(t *testing.T) {
	from := month(2026, time.October)
	txs := []core.RecurringTransaction{
		recurring(core.Income, core.Monthly, 3000000, core.NewDate(2026, 10, 1)),
		recurring(core.Expense, core.Monthly, 1500000, core.NewDate(2026, 10, 1)),
	}
	traj := Project(250000, txs, from, from.AddMonths(3))

	require.Len(t, traj, 4)
	assert.Equal(t, Point{Month: from, Balance: 250000}, traj[0])
	assert.Equal(t, Point{Month: from.AddMonths(1), Balance: 1750000}, traj[1])
	assert.Equal(t, Point{Month: from.AddMonths(3), Balance: 4750000}, traj[3])
}

func TestProjectLength(t *testing.T) {
	from := month(2026, time.January)
	for _, k := range []int{0, 1, 11, 12, 60} {
		traj := Project(0, nil, from, from.AddMonths(k))
		assert.Len(t, traj, k+1, "horizon %d", k)
	}
}

func TestProjectCollapsesWhenTargetPassed(t *testing.T) {
	from := month(2026, time.October)
	txs := []core.RecurringTransaction{recurring(core.Income, core.Monthly, 100, core.NewDate(2020, 1, 1))}

	traj := Project(500000, txs, from, month(2025, time.January))
	require.Len(t, traj, 1)
	assert.Equal(t, int64(500000), traj.Final())
}

func TestProjectEmptyListIsFlat(t *testing.T) {
	traj := Project(42, nil, month(2026, time.January), month(2026, time.December))
	for _, p := range traj {
		assert.Equal(t, int64(42), p.Balance)
	}
}

func TestProjectOrderIndependent(t *testing.T) {
	start := core.NewDate(2026, 2, 1)
	txs := []core.RecurringTransaction{
		recurring(core.Income, core.Monthly, 3100000, start),
		recurring(core.Expense, core.Weekly, 73000, start),
		recurring(core.Expense, core.Yearly, 950000, core.NewDate(2026, 7, 1)),
		recurring(core.Income, core.Yearly, 2000000, core.NewDate(2025, 12, 24)),
	}
	from, to := month(2026, time.January), month(2028, time.June)
	want := Project(1000000, txs, from, to)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]core.RecurringTransaction(nil), txs...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Project(1000000, shuffled, from, to))
	}
}

func TestProjectMonotonicity(t *testing.T) {
	start := core.NewDate(2026, 1, 1)
	from, to := month(2026, time.January), month(2027, time.January)
	base := []core.RecurringTransaction{
		recurring(core.Income, core.Monthly, 2000000, start),
		recurring(core.Expense, core.Weekly, 200000, start),
	}
	baseline := Project(0, base, from, to).Final()

	moreIncome := append([]core.RecurringTransaction(nil), base...)
	moreIncome[0].Amount.Units += 1
	assert.GreaterOrEqual(t, Project(0, moreIncome, from, to).Final(), baseline)

	moreExpense := append([]core.RecurringTransaction(nil), base...)
	moreExpense[1].Amount.Units += 1
	assert.LessOrEqual(t, Project(0, moreExpense, from, to).Final(), baseline)
}

func TestProjectSaturatesInsteadOfWrapping(t *testing.T) {
	start := core.NewDate(2026, 1, 1)
	from, to := month(2026, time.January), month(2026, time.March)

	smaller := Project(0, []core.RecurringTransaction{recurring(core.Income, core.Monthly, 4e18, start)}, from, to)
	larger := Project(0, []core.RecurringTransaction{recurring(core.Income, core.Monthly, 5e18, start)}, from, to)

	assert.Equal(t, int64(8e18), smaller.Final())
	assert.Equal(t, int64(math.MaxInt64), larger.Final())
	assert.GreaterOrEqual(t, larger.Final(), smaller.Final())
	for i := 1; i < len(larger); i++ {
		assert.GreaterOrEqual(t, larger[i].Balance, larger[i-1].Balance, "month %d", i)
	}

	debt := Project(0, []core.RecurringTransaction{recurring(core.Expense, core.Monthly, 5e18, start)}, from, to)
	assert.Equal(t, int64(math.MinInt64), debt.Final())
}

func TestEvaluateSaturatedBalanceShortfall(t *testing.T) {
	goal := core.Goal{Title: "x", TargetAmount: core.Money{Units: 1000}, TargetDate: core.NewDate(2026, 3, 1)}
	traj := Trajectory{{Month: month(2026, time.January), Balance: math.MinInt64}}

	res := Evaluate(goal, traj, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, res.IsAchievable)
	assert.Equal(t, int64(math.MaxInt64), res.Shortfall)
	assert.Positive(t, res.MonthlySavingNeeded)
}
